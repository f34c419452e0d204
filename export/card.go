// Package export 在固定 DPI 的离屏表面上重新绘制设计，加上出血与裁切标记后输出 PDF。
// 导出只读取文档快照，每次调用使用全新的绘制表面。
package export

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/binding"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/layout"
	"github.com/ByLCY/keepsake/logger"
	"github.com/ByLCY/keepsake/renderer"
	canvasrenderer "github.com/ByLCY/keepsake/renderer/canvas"
)

// 默认文件名模板。
const (
	DefaultCardPattern  = "prayer-card-${timestamp}.pdf"
	DefaultPrintPattern = "memorial-photo-${timestamp}.pdf"
)

// Options 配置导出引擎。
type Options struct {
	DPI float64
	// BleedInches 小于等于 0 时使用 layout.BleedInches；需要无出血时设置 NoBleed。
	BleedInches float64
	NoBleed     bool
	// LegacyBorder 使用“填充边框色 + 回填背景”的旧画法，而不是与预览共用的装饰边框。
	LegacyBorder bool
	// BackPage 额外输出背面页；开启时祷文只出现在背面。
	BackPage     bool
	CardPattern  string
	PrintPattern string
	Now          func() time.Time
	Logger       *logger.Logger
}

// Artifact 是一次导出的结果。
type Artifact struct {
	Filename    string
	Data        []byte
	WidthIn     float64
	HeightIn    float64
	Orientation Orientation
	Pages       int
}

// Engine 是印刷导出引擎。
type Engine struct {
	painter *canvasrenderer.Renderer
	images  renderer.ImageSource
	opts    Options
}

// NewEngine 创建导出引擎。painter 负责卡片绘制，images 用于纪念照片打印的素材加载。
func NewEngine(painter *canvasrenderer.Renderer, images renderer.ImageSource, opts Options) *Engine {
	if opts.DPI <= 0 {
		opts.DPI = layout.ExportDPI
	}
	switch {
	case opts.NoBleed:
		opts.BleedInches = 0
	case opts.BleedInches <= 0:
		opts.BleedInches = layout.BleedInches
	}
	if opts.CardPattern == "" {
		opts.CardPattern = DefaultCardPattern
	}
	if opts.PrintPattern == "" {
		opts.PrintPattern = DefaultPrintPattern
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Engine{painter: painter, images: images, opts: opts}
}

// CardPageInches 返回卡片页面尺寸：裁切尺寸加四周出血。
func (e *Engine) CardPageInches(size design.CardSize) (float64, float64) {
	w, h := design.ParseCardSize(string(size)).Inches()
	return w + 2*e.opts.BleedInches, h + 2*e.opts.BleedInches
}

// Layout 解析文档在导出空间中的布局。导出与预览使用同一解析算法，只在其后做线性缩放并加出血。
func (e *Engine) Layout(doc design.Document, view layout.View) (*layout.Result, error) {
	space := layout.PreviewSpace(doc.CardSize, view)
	res, err := layout.Resolve(doc, space, layout.Options{
		Typesetter:    e.painter,
		PrayerOnFront: view == layout.ViewFront && !e.opts.BackPage,
	})
	if err != nil {
		return nil, err
	}
	return res.ToExportWithBleed(e.opts.DPI, e.opts.BleedInches), nil
}

// Raster 绘制一面卡片的印刷位图（含出血与裁切标记）。
func (e *Engine) Raster(ctx context.Context, doc design.Document, view layout.View) (*image.RGBA, error) {
	res, err := e.Layout(doc, view)
	if err != nil {
		return nil, fmt.Errorf("解析导出布局失败: %w", err)
	}
	return e.painter.Raster(ctx, res, canvasrenderer.PaintOptions{
		LegacyBorder: e.opts.LegacyBorder,
		CropMarks:    true,
	})
}

// Card 导出卡片 PDF。任何图片加载失败都会中止导出，不产生部分文件。
func (e *Engine) Card(ctx context.Context, doc design.Document) (*Artifact, error) {
	snapshot := doc.Clone()
	log := e.opts.Logger
	ctx = log.WithFields(ctx, map[string]any{"cardType": snapshot.CardType, "cardSize": snapshot.CardSize})

	views := []layout.View{layout.ViewFront}
	if e.opts.BackPage {
		views = append(views, layout.ViewBack)
	}
	pages := make([]*image.RGBA, 0, len(views))
	for _, v := range views {
		img, err := e.Raster(ctx, snapshot, v)
		if err != nil {
			log.Error(ctx, "导出卡片失败", err)
			return nil, err
		}
		pages = append(pages, img)
	}

	wIn, hIn := e.CardPageInches(snapshot.CardSize)
	art, err := e.finish(pages, wIn, hIn, e.opts.CardPattern, DocumentInfo{Title: "Prayer Card", Subject: string(snapshot.CardSize)})
	if err != nil {
		log.Error(ctx, "写入卡片 PDF 失败", err)
		return nil, err
	}
	log.Info(log.WithField(ctx, "file", art.Filename), "卡片导出完成")
	return art, nil
}

func (e *Engine) finish(pages []*image.RGBA, wIn, hIn float64, pattern string, info DocumentInfo) (*Artifact, error) {
	name, err := binding.Filename(pattern, e.opts.Now())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "生成文件名失败")
	}
	info.Creator = "keepsake"
	data, err := writePDF(pages, wIn, hIn, info)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "生成 PDF 失败")
	}
	return &Artifact{
		Filename:    name,
		Data:        data,
		WidthIn:     wIn,
		HeightIn:    hIn,
		Orientation: OrientationOf(wIn, hIn),
		Pages:       len(pages),
	}, nil
}
