package layout

import "github.com/ByLCY/keepsake/design"

// View 选择卡片的正面或背面。
type View string

const (
	ViewFront View = "front"
	ViewBack  View = "back"
)

// ParseView 未知取值回退为正面。
func ParseView(s string) View {
	if View(s) == ViewBack {
		return ViewBack
	}
	return ViewFront
}

// Space 是预览坐标空间：固定像素尺寸，加上它所代表的物理卡片尺寸。
// 正反面的预览宽高比并不相同，换算到导出空间时 X/Y 各自独立缩放。
type Space struct {
	Width    float64         `json:"width"`
	Height   float64         `json:"height"`
	WidthIn  float64         `json:"widthIn"`
	HeightIn float64         `json:"heightIn"`
	Size     design.CardSize `json:"size"`
	View     View            `json:"view"`
}

// PreviewSpace 返回给定尺寸与视图的预览空间。
//
//	standard: 正面 300×510，背面 300×450
//	large:    正面 360×570，背面 360×540
func PreviewSpace(size design.CardSize, view View) Space {
	size = design.ParseCardSize(string(size))
	wIn, hIn := size.Inches()
	s := Space{WidthIn: wIn, HeightIn: hIn, Size: size, View: ParseView(string(view))}
	switch {
	case size == design.SizeLarge && s.View == ViewBack:
		s.Width, s.Height = 360, 540
	case size == design.SizeLarge:
		s.Width, s.Height = 360, 570
	case s.View == ViewBack:
		s.Width, s.Height = 300, 450
	default:
		s.Width, s.Height = 300, 510
	}
	return s
}

// PxPerPtX 预览空间中一个点在水平方向上对应的像素数。
func (s Space) PxPerPtX() float64 { return s.Width / (s.WidthIn * PointsPerInch) }

// PxPerPtY 预览空间中一个点在垂直方向上对应的像素数。
func (s Space) PxPerPtY() float64 { return s.Height / (s.HeightIn * PointsPerInch) }

// Contains 报告中心点是否位于卡片内容区域内。
func (s Space) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= s.Width && y <= s.Height
}

// Clamp 将中心点限制在卡片内容区域内。
func (s Space) Clamp(x, y float64) (float64, float64) {
	return clamp(x, 0, s.Width), clamp(y, 0, s.Height)
}

// ExportScale 返回预览空间到 dpi 分辨率导出空间的缩放系数，X/Y 独立计算：
// scale = 物理英寸 × dpi / 预览像素。
func (s Space) ExportScale(dpi float64) (sx, sy float64) {
	return Inches(s.WidthIn).Pixels(dpi) / s.Width, Inches(s.HeightIn).Pixels(dpi) / s.Height
}

// BleedPixels 返回 dpi 分辨率下的出血像素数。
func BleedPixels(dpi float64) float64 { return Inches(BleedInches).Pixels(dpi) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
