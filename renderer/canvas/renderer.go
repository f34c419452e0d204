package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/layout"
	"github.com/ByLCY/keepsake/ornament"
	"github.com/ByLCY/keepsake/renderer"
)

// 旧边框宽度（pt）。
const legacyBorderPt = 8.0

// 椭圆转多边形时的分段数。
const ellipseSegments = 64

// Renderer 使用 github.com/tdewolff/canvas 绘制布局结果。
// 画布单位等于目标像素，预览与导出共用同一套绘制流程，只是输入的布局结果缩放不同。
type Renderer struct {
	images renderer.ImageSource

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// PaintOptions 控制同一场景在不同输出中的差异。
type PaintOptions struct {
	// LegacyBorder 使用“整面填充边框色，再回填内部背景”的旧画法代替装饰边框。
	LegacyBorder bool
	// CropMarks 在裁切框四角外绘制裁切标记。
	CropMarks bool
	// ClipCorners 按卡片圆角裁掉四角（仅预览；印刷由模切完成圆角）。
	ClipCorners bool
}

// NewRenderer 创建渲染器。images 为空时遇到任何图片元素都会报错。
func NewRenderer(images renderer.ImageSource) *Renderer {
	return &Renderer{
		images:       images,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

// Render 将结果绘制为预览 PNG。
func (r *Renderer) Render(ctx context.Context, result *layout.Result) ([]byte, error) {
	img, err := r.Raster(ctx, result, PaintOptions{ClipCorners: true})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("编码预览 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// Raster 将结果绘制到新建的画布并栅格化，每次调用都使用独立的绘制表面。
func (r *Renderer) Raster(ctx context.Context, result *layout.Result, opts PaintOptions) (*image.RGBA, error) {
	c, err := r.Paint(ctx, result, opts)
	if err != nil {
		return nil, err
	}
	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	if opts.ClipCorners {
		clipCorners(img, result.Trim, result.Card.CornerRadius)
	}
	return img, nil
}

// Paint 按固定顺序把结果绘制到一张新画布上：
// 背景 → 边框 → 照片 → 姓名 → 日期 → 祷文 → 二维码 → 贴纸 → 标志 → 裁切标记。
func (r *Renderer) Paint(ctx context.Context, result *layout.Result, opts PaintOptions) (*canvas.Canvas, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Width <= 0 || result.Height <= 0 {
		return nil, fmt.Errorf("绘制表面尺寸无效: %g×%g", result.Width, result.Height)
	}
	c := canvas.New(result.Width, result.Height)
	p := &painter{
		r:    r,
		ctx:  canvas.NewContext(c),
		res:  result,
		opts: opts,
	}
	for _, s := range p.steps() {
		if err := s.draw(ctx); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type step struct {
	name string
	draw func(context.Context) error
}

// painter 持有一次绘制的全部状态，不跨调用复用。
// canvas 默认 y 轴向上，布局坐标 y 轴向下，统一经 flip 换算。
type painter struct {
	r    *Renderer
	ctx  *canvas.Context
	res  *layout.Result
	opts PaintOptions
}

func (p *painter) steps() []step {
	return []step{
		{"background", p.drawBackground},
		{"border", p.drawBorder},
		{"photo", p.drawPhoto},
		{"name", p.textStep(p.res.Name)},
		{"dates", p.textStep(p.res.Dates)},
		{"prayer", p.drawPrayer},
		{"qr", p.drawQR},
		{"stickers", p.drawStickers},
		{"logo", p.drawLogo},
		{"cropMarks", p.drawCropMarks},
	}
}

func (p *painter) flip(y float64) float64 { return p.res.Height - y }

func (p *painter) drawBackground(context.Context) error {
	p.fillBackground(layout.Rect{Width: p.res.Width, Height: p.res.Height})
	return nil
}

// fillBackground 纸质卡填白色，金属卡填对应的渐变。
func (p *painter) fillBackground(rect layout.Rect) {
	stops, ok := metalStops[p.res.Card.Background]
	if p.res.Card.Type != design.CardMetal || !ok {
		p.fillPolygon(rectPoints(rect), canvas.White)
		return
	}
	w, h := int(math.Ceil(rect.Width)), int(math.Ceil(rect.Height))
	img := gradientImage(w, h, stops)
	p.ctx.DrawImage(rect.X, p.flip(rect.Y+float64(h)), img, canvas.DPMM(1.0))
}

func (p *painter) drawBorder(context.Context) error {
	card := p.res.Card
	if card.BorderStyle == design.BorderNone {
		return nil
	}
	if p.opts.LegacyBorder {
		bx := legacyBorderPt * p.res.Space.PxPerPtX() * p.res.ScaleX
		by := legacyBorderPt * p.res.Space.PxPerPtY() * p.res.ScaleY
		p.fillPolygon(rectPoints(layout.Rect{Width: p.res.Width, Height: p.res.Height}), colorOf(legacyBorderColor(card.BorderColor)))
		p.fillBackground(layout.Rect{X: bx, Y: by, Width: p.res.Width - 2*bx, Height: p.res.Height - 2*by})
		return nil
	}
	trim := p.res.Trim
	p.drawShapes(ornament.For(card.BorderStyle, card.BorderColor).Place(trim.X, trim.Y, trim.Width, trim.Height))
	return nil
}

func (p *painter) drawPhoto(ctx context.Context) error {
	box := p.res.Photo
	if box == nil {
		return nil
	}
	img, err := p.load(ctx, box.Source, "照片")
	if err != nil {
		return err
	}
	p.drawImage(img, box.Box, box.Rotation, imaging.Lanczos)
	return nil
}

func (p *painter) textStep(tb *layout.TextBox) func(context.Context) error {
	return func(context.Context) error { return p.drawText(tb) }
}

func (p *painter) drawPrayer(context.Context) error {
	if err := p.drawText(p.res.Prayer); err != nil {
		return err
	}
	return p.drawText(p.res.Additional)
}

// drawText 每行以 (X, 行中心) 居中绘制，基线由字体上升/下降部换算。
func (p *painter) drawText(tb *layout.TextBox) error {
	if tb == nil || tb.FontSize <= 0 {
		return nil
	}
	face, err := p.r.fontFace(tb.Font, tb.FontSize, colorOf(tb.Color))
	if err != nil {
		return err
	}
	metrics := face.Metrics()
	shift := (metrics.Ascent - metrics.Descent) / 2
	for i, line := range tb.Lines {
		if strings.TrimSpace(line.Content) == "" {
			continue
		}
		centerY := tb.Y + float64(i)*tb.LineHeight
		p.ctx.DrawText(tb.X, p.flip(centerY+shift), canvas.NewTextLine(face, line.Content, canvas.Center))
	}
	return nil
}

func (p *painter) drawQR(ctx context.Context) error {
	box := p.res.QR
	if box == nil {
		return nil
	}
	img, err := p.load(ctx, box.Source, "二维码")
	if err != nil {
		return err
	}
	p.drawImage(img, box.Box, 0, imaging.NearestNeighbor)
	return nil
}

// drawStickers 按列表顺序绘制；图案表中的贴纸画矢量图形，其余按文字绘制。
func (p *painter) drawStickers(context.Context) error {
	for _, s := range p.res.Stickers {
		half := s.Size / 2
		if sym, ok := ornament.Symbol(s.Glyph); ok {
			p.drawShapes(sym.Place(s.X-half, s.Y-half, s.Size, s.Size))
			continue
		}
		tb := &layout.TextBox{
			Content:    s.Glyph,
			X:          s.X,
			Y:          s.Y,
			FontSize:   s.Size,
			LineHeight: s.Size,
			Lines:      []layout.TextLine{{Content: s.Glyph}},
		}
		if err := p.drawText(tb); err != nil {
			return err
		}
	}
	return nil
}

// drawLogo 标志宽度固定，高度按图片宽高比在预览空间求出后再按 Y 轴缩放。
func (p *painter) drawLogo(ctx context.Context) error {
	box := p.res.Logo
	if box == nil {
		return nil
	}
	img, err := p.load(ctx, box.Source, "标志")
	if err != nil {
		return err
	}
	b := box.Box
	if box.FitHeight || b.Height <= 0 {
		bounds := img.Bounds()
		if bounds.Dx() == 0 {
			return apperrors.New(apperrors.CodeResourceLoad, "标志图片宽度为 0")
		}
		previewWidth := b.Width / p.res.ScaleX
		b.Height = previewWidth * float64(bounds.Dy()) / float64(bounds.Dx()) * p.res.ScaleY
	}
	p.drawImage(img, b, 0, imaging.Lanczos)
	return nil
}

func (p *painter) drawCropMarks(context.Context) error {
	if !p.opts.CropMarks {
		return nil
	}
	p.ctx.SetFillColor(color.RGBA{})
	p.ctx.SetStrokeColor(canvas.Black)
	p.ctx.SetStrokeWidth(1)
	for _, m := range p.res.CropMarks() {
		path := &canvas.Path{}
		path.MoveTo(m.X1, p.flip(m.Y1))
		path.LineTo(m.X2, p.flip(m.Y2))
		p.ctx.DrawPath(0, 0, path)
	}
	return nil
}

// load 顺序加载图片；任何失败都中止整次绘制。
func (p *painter) load(ctx context.Context, ref, what string) (image.Image, error) {
	if p.r.images == nil {
		return nil, apperrors.New(apperrors.CodeResourceLoad, fmt.Sprintf("未配置图片来源，无法加载%s", what))
	}
	img, err := p.r.images.Image(ctx, ref)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeResourceLoad, err, fmt.Sprintf("加载%s失败", what))
	}
	if img == nil || img.Bounds().Empty() {
		return nil, apperrors.New(apperrors.CodeResourceLoad, fmt.Sprintf("%s图片为空", what))
	}
	return img, nil
}

// drawImage 将图片拉伸到中心定位的 box，并绕 box 中心按顺时针角度旋转。
func (p *painter) drawImage(img image.Image, box layout.Box, rotation float64, filter imaging.ResampleFilter) {
	w, h := int(math.Round(box.Width)), int(math.Round(box.Height))
	if w <= 0 || h <= 0 {
		return
	}
	scaled := imaging.Resize(img, w, h, filter)
	left, top := box.TopLeft()
	p.ctx.Push()
	if rotation != 0 {
		p.ctx.RotateAbout(-rotation, box.X, p.flip(box.Y))
	}
	p.ctx.DrawImage(left, p.flip(top+box.Height), scaled, canvas.DPMM(1.0))
	p.ctx.Pop()
}

func (p *painter) drawShapes(shapes []ornament.Shape) {
	for _, s := range shapes {
		col := alphaColor(s.Color, s.Alpha)
		switch s.Kind {
		case ornament.Ellipse:
			p.fillPolygon(ellipsePoints(s), col)
		default:
			p.fillPolygon(s.Points, col)
		}
	}
}

func (p *painter) fillPolygon(points []ornament.Point, col color.Color) {
	if len(points) < 3 {
		return
	}
	path := &canvas.Path{}
	for i, pt := range points {
		if i == 0 {
			path.MoveTo(pt.X, p.flip(pt.Y))
			continue
		}
		path.LineTo(pt.X, p.flip(pt.Y))
	}
	path.Close()
	p.ctx.SetFillColor(col)
	p.ctx.SetStrokeColor(color.RGBA{})
	p.ctx.SetStrokeWidth(0)
	p.ctx.DrawPath(0, 0, path)
}

func rectPoints(r layout.Rect) []ornament.Point {
	return []ornament.Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

func ellipsePoints(s ornament.Shape) []ornament.Point {
	pts := make([]ornament.Point, ellipseSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		pts[i] = ornament.Point{X: s.CX + s.RX*math.Cos(a), Y: s.CY + s.RY*math.Sin(a)}
	}
	return pts
}
