package export

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/photoedit"
	canvasrenderer "github.com/ByLCY/keepsake/renderer/canvas"
)

// 纪念照片各元素在 300 DPI 下的像素尺寸，其他 DPI 按比例换算。
const (
	printTextPx       = 48.0
	printLogoRatio    = 0.2
	printFrameWidthPx = 20.0
	printFramePadPx   = 40.0
	printReferenceDPI = 300.0
)

var frameColors = map[design.FrameStyle]design.RGB{
	design.FrameGold:   design.ParseHex("#c9a34f"),
	design.FrameSilver: design.ParseHex("#e5e7eb"),
	design.FrameBlack:  design.ParseHex("#111827"),
}

// MemorialPrint 导出纪念照片大幅打印。照片的裁剪、亮度与旋转都会烘焙进最终位图。
func (e *Engine) MemorialPrint(ctx context.Context, p design.PhotoPrint) (*Artifact, error) {
	log := e.opts.Logger
	ctx = log.WithField(ctx, "printSize", p.Size)

	img, err := e.PrintRaster(ctx, p)
	if err != nil {
		log.Error(ctx, "导出纪念照片失败", err)
		return nil, err
	}
	wIn, hIn := design.ParsePrintSize(string(p.Size)).Inches()
	art, err := e.finish([]*image.RGBA{img}, wIn, hIn, e.opts.PrintPattern, DocumentInfo{Title: "Memorial Photo", Subject: string(p.Size)})
	if err != nil {
		log.Error(ctx, "写入纪念照片 PDF 失败", err)
		return nil, err
	}
	log.Info(log.WithField(ctx, "file", art.Filename), "纪念照片导出完成")
	return art, nil
}

// PrintRaster 绘制纪念照片的整页位图。
func (e *Engine) PrintRaster(ctx context.Context, p design.PhotoPrint) (*image.RGBA, error) {
	photo, err := e.loadImage(ctx, p.Image, "照片")
	if err != nil {
		return nil, err
	}
	session, err := photoedit.Open(photo, photoedit.Options{BakeRotation: true})
	if err != nil {
		return nil, err
	}
	if p.Crop != nil {
		session.SetCrop(*p.Crop)
	}
	session.SetRotation(p.Rotation)
	session.SetBrightness(p.Brightness)
	if p.Zoom > 0 {
		session.SetZoom(p.Zoom)
	}
	baked := session.Save()

	dpi := e.opts.DPI
	k := dpi / printReferenceDPI
	wIn, hIn := design.ParsePrintSize(string(p.Size)).Inches()
	w, h := float64(pixels(wIn, dpi)), float64(pixels(hIn, dpi))

	scene := canvasrenderer.PrintScene{
		Width:    w,
		Height:   h,
		Photo:    baked.Image,
		Zoom:     session.Zoom(),
		Text:     p.TextOverlay,
		TextX:    p.TextX / 100 * w,
		TextY:    p.TextY / 100 * h,
		TextSize: printTextPx * k,
	}
	if p.Logo != "" {
		logo, err := e.loadImage(ctx, p.Logo, "标志")
		if err != nil {
			return nil, err
		}
		scene.Logo = logo
		scene.LogoX = p.LogoX / 100 * w
		scene.LogoY = p.LogoY / 100 * h
		scene.LogoWidth = w * printLogoRatio
	}
	if c, ok := frameColors[design.ParseFrameStyle(string(p.Frame))]; ok {
		scene.Frame = &c
		scene.FrameWidth = printFrameWidthPx * k
		scene.FramePadding = printFramePadPx * k
	}
	return e.painter.RasterPrint(ctx, scene)
}

func (e *Engine) loadImage(ctx context.Context, ref, what string) (image.Image, error) {
	if ref == "" {
		return nil, apperrors.Validation("缺少%s", what)
	}
	if e.images == nil {
		return nil, apperrors.New(apperrors.CodeResourceLoad, fmt.Sprintf("未配置图片来源，无法加载%s", what))
	}
	img, err := e.images.Image(ctx, ref)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeResourceLoad, err, fmt.Sprintf("加载%s失败", what))
	}
	return img, nil
}

// pixels 将英寸换算为整数像素。
func pixels(in, dpi float64) int {
	return int(math.Round(in * dpi))
}
