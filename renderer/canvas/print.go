package canvasrenderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/fonts"
	"github.com/ByLCY/keepsake/layout"
)

// PrintScene 描述纪念照片大幅打印的一页：一张铺满画面的照片、可选的文字、可选的标志、
// 可选的矩形描边框。单位为目标像素，坐标均为中心点。
type PrintScene struct {
	Width  float64
	Height float64

	Photo image.Image
	Zoom  float64

	Text     string
	TextX    float64
	TextY    float64
	TextSize float64

	Logo      image.Image
	LogoX     float64
	LogoY     float64
	LogoWidth float64

	Frame        *design.RGB
	FrameWidth   float64
	FramePadding float64
}

// RasterPrint 按 照片 → 文字 → 标志 → 边框 的顺序绘制到新画布并栅格化。
func (r *Renderer) RasterPrint(ctx context.Context, scene PrintScene) (*image.RGBA, error) {
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, fmt.Errorf("绘制表面尺寸无效: %g×%g", scene.Width, scene.Height)
	}
	if scene.Photo == nil || scene.Photo.Bounds().Empty() {
		return nil, fmt.Errorf("纪念照片为空")
	}
	c := canvas.New(scene.Width, scene.Height)
	p := &painter{
		r:   r,
		ctx: canvas.NewContext(c),
		res: &layout.Result{Width: scene.Width, Height: scene.Height, ScaleX: 1, ScaleY: 1},
	}
	p.fillPolygon(rectPoints(layout.Rect{Width: scene.Width, Height: scene.Height}), canvas.White)

	p.drawImage(scene.Photo, coverBox(scene), 0, imaging.Lanczos)

	if text := strings.TrimSpace(scene.Text); text != "" && scene.TextSize > 0 {
		var lines []layout.TextLine
		for _, l := range strings.Split(text, "\n") {
			lines = append(lines, layout.TextLine{Content: l})
		}
		tb := &layout.TextBox{
			Content:    text,
			X:          scene.TextX,
			Y:          scene.TextY - float64(len(lines)-1)*scene.TextSize/2,
			FontSize:   scene.TextSize,
			LineHeight: scene.TextSize,
			Font:       layout.FontSpec{Family: fonts.Sans, Bold: true},
			Color:      design.RGB{R: 255, G: 255, B: 255},
			Lines:      lines,
		}
		if err := p.drawText(tb); err != nil {
			return nil, err
		}
	}

	if scene.Logo != nil && !scene.Logo.Bounds().Empty() && scene.LogoWidth > 0 {
		b := scene.Logo.Bounds()
		h := scene.LogoWidth * float64(b.Dy()) / float64(b.Dx())
		p.drawImage(scene.Logo, layout.Box{X: scene.LogoX, Y: scene.LogoY, Width: scene.LogoWidth, Height: h}, 0, imaging.Lanczos)
	}

	if scene.Frame != nil && scene.FrameWidth > 0 {
		p.strokeRect(layout.Rect{
			X:      scene.FramePadding,
			Y:      scene.FramePadding,
			Width:  scene.Width - 2*scene.FramePadding,
			Height: scene.Height - 2*scene.FramePadding,
		}, scene.FrameWidth, colorOf(*scene.Frame))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace), nil
}

// coverBox 让照片等比铺满整个画面后再按 zoom 缩放，始终居中。
func coverBox(scene PrintScene) layout.Box {
	b := scene.Photo.Bounds()
	zoom := scene.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	k := math.Max(scene.Width/float64(b.Dx()), scene.Height/float64(b.Dy())) * zoom
	return layout.Box{
		X:      scene.Width / 2,
		Y:      scene.Height / 2,
		Width:  float64(b.Dx()) * k,
		Height: float64(b.Dy()) * k,
	}
}

// strokeRect 以四条填充带绘制居中于矩形路径的描边。
func (p *painter) strokeRect(r layout.Rect, width float64, col color.Color) {
	half := width / 2
	outer := layout.Rect{X: r.X - half, Y: r.Y - half, Width: r.Width + width, Height: r.Height + width}
	bands := []layout.Rect{
		{X: outer.X, Y: outer.Y, Width: outer.Width, Height: width},
		{X: outer.X, Y: outer.Y + outer.Height - width, Width: outer.Width, Height: width},
		{X: outer.X, Y: outer.Y, Width: width, Height: outer.Height},
		{X: outer.X + outer.Width - width, Y: outer.Y, Width: width, Height: outer.Height},
	}
	for _, b := range bands {
		p.fillPolygon(rectPoints(b), col)
	}
}
