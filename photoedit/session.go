// Package photoedit 实现上传照片时的裁剪/缩放/平移/旋转/亮度编辑会话。
//
// 保存时裁剪与亮度总是烘焙进输出位图；旋转是否烘焙由 Options.BakeRotation 决定：
// 卡片设计器只在编辑时预览旋转，纪念照片打印则把旋转烘焙进最终位图。
package photoedit

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
)

// 控件取值范围。
const (
	MinZoom          = 0.5
	MaxZoom          = 3.0
	MaxRotation      = 180.0
	MaxBrightness    = 100.0
	DefaultCropRatio = 0.8
)

// Options 控制保存行为。
type Options struct {
	BakeRotation bool
}

// Session 是一次照片编辑。裁剪框始终为正方形，坐标以源图像素为单位。
type Session struct {
	src  image.Image
	opts Options

	crop       design.CropRect
	zoom       float64
	panX, panY float64
	rotation   float64
	brightness float64
}

// Result 是保存后的输出：烘焙后的位图以及写回文档的数值状态。
type Result struct {
	Image      *image.NRGBA
	Crop       design.CropRect
	Brightness float64
	Rotation   float64
}

// Open 以默认状态打开编辑会话：居中的正方形裁剪框，边长为短边的 80%。
func Open(src image.Image, opts Options) (*Session, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, apperrors.Validation("图片为空，无法编辑")
	}
	s := &Session{src: src, opts: opts}
	s.Reset()
	return s, nil
}

// Reset 恢复全部控件的默认值。
func (s *Session) Reset() {
	w, h := s.naturalSize()
	side := math.Min(w, h) * DefaultCropRatio
	s.crop = design.CropRect{X: (w - side) / 2, Y: (h - side) / 2, Width: side, Height: side}
	s.zoom = 1
	s.panX, s.panY = 0, 0
	s.rotation = 0
	s.brightness = 0
}

func (s *Session) naturalSize() (float64, float64) {
	b := s.src.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *Session) Crop() design.CropRect { return s.crop }
func (s *Session) Zoom() float64         { return s.zoom }
func (s *Session) Rotation() float64     { return s.rotation }
func (s *Session) Brightness() float64   { return s.brightness }

// Pan 返回当前平移量（显示像素）。
func (s *Session) Pan() (float64, float64) { return s.panX, s.panY }

// SetCrop 以源图像素设置裁剪框。宽高取较小值保持正方形，并整体限制在图片内。
func (s *Session) SetCrop(r design.CropRect) {
	w, h := s.naturalSize()
	side := math.Min(r.Width, r.Height)
	side = math.Max(1, math.Min(side, math.Min(w, h)))
	s.crop = design.CropRect{
		X:      clamp(r.X, 0, w-side),
		Y:      clamp(r.Y, 0, h-side),
		Width:  side,
		Height: side,
	}
}

// SetDisplayCrop 以编辑视口中的坐标设置裁剪框。视口按 displayW×displayH 显示整张图片，
// 再以视口中心为原点缩放 zoom 倍并平移 pan；这里把视口坐标换算回源图像素。
func (s *Session) SetDisplayCrop(r design.CropRect, displayW, displayH float64) error {
	if displayW <= 0 || displayH <= 0 {
		return apperrors.Validation("显示尺寸无效: %.0f×%.0f", displayW, displayH)
	}
	w, h := s.naturalSize()
	kx, ky := w/displayW, h/displayH
	cx, cy := displayW/2, displayH/2
	toSource := func(vx, vy float64) (float64, float64) {
		ux := (vx-cx-s.panX)/s.zoom + cx
		uy := (vy-cy-s.panY)/s.zoom + cy
		return ux * kx, uy * ky
	}
	x0, y0 := toSource(r.X, r.Y)
	x1, y1 := toSource(r.X+r.Width, r.Y+r.Height)
	s.SetCrop(design.CropRect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0})
	return nil
}

// SetZoom 限制在 [0.5, 3]；缩放回到 1 倍及以下时平移归零。
func (s *Session) SetZoom(z float64) {
	s.zoom = clamp(z, MinZoom, MaxZoom)
	if s.zoom <= 1 {
		s.panX, s.panY = 0, 0
	}
}

// PanBy 只在放大超过 1 倍时生效，返回是否发生了平移。
func (s *Session) PanBy(dx, dy float64) bool {
	if s.zoom <= 1 {
		return false
	}
	s.panX += dx
	s.panY += dy
	return true
}

// SetRotation 限制在 [-180, 180] 度。
func (s *Session) SetRotation(deg float64) {
	s.rotation = clamp(deg, -MaxRotation, MaxRotation)
}

// SetBrightness 限制在 [-100, 100]。
func (s *Session) SetBrightness(b float64) {
	s.brightness = clamp(b, -MaxBrightness, MaxBrightness)
}

// Save 将裁剪与亮度合成为一张新位图；BakeRotation 时再按顺时针角度旋转。
// 未烘焙的旋转在结果中记为 0。
func (s *Session) Save() Result {
	rect := image.Rect(
		int(math.Round(s.crop.X)),
		int(math.Round(s.crop.Y)),
		int(math.Round(s.crop.X+s.crop.Width)),
		int(math.Round(s.crop.Y+s.crop.Height)),
	).Add(s.src.Bounds().Min)
	out := imaging.Crop(s.src, rect)
	out = Brighten(out, s.brightness)

	res := Result{Crop: s.crop, Brightness: s.brightness}
	if s.opts.BakeRotation && s.rotation != 0 {
		out = imaging.Rotate(out, -s.rotation, color.Transparent)
		res.Rotation = s.rotation
	}
	res.Image = out
	return res
}

// Brighten 以 (brightness+100)/100 的倍率缩放每个颜色分量，alpha 不变。
func Brighten(img image.Image, brightness float64) *image.NRGBA {
	factor := (clamp(brightness, -MaxBrightness, MaxBrightness) + 100) / 100
	if factor == 1 {
		return imaging.Clone(img)
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: scaleChannel(c.R, factor),
			G: scaleChannel(c.G, factor),
			B: scaleChannel(c.B, factor),
			A: c.A,
		}
	})
}

func scaleChannel(v uint8, factor float64) uint8 {
	return uint8(clamp(math.Round(float64(v)*factor), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
