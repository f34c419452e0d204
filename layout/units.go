package layout

// 该文件定义与物理尺寸相关的单位换算，预览空间与导出空间之间的一切换算都经过这里。

// Unit 表示长度的原始单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位的系数
	UnitMM               // 毫米
	UnitIN               // 英寸
	UnitPT               // 点（1/72 英寸）
)

// 换算常量。
const (
	PtToMm        = 0.352777
	MmToPt        = 1.0 / PtToMm
	MmPerInch     = 25.4
	PointsPerInch = 72.0

	// ExportDPI 是印刷导出的固定分辨率。
	ExportDPI = 300.0
	// BleedInches 是四周统一的出血宽度。
	BleedInches = 0.125
)

// String 返回单位的简写。
func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length 保留数值与原始单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Inches 构造英寸长度。
func Inches(v float64) Length { return Length{Value: v, Unit: UnitIN} }

// Points 构造点长度。
func Points(v float64) Length { return Length{Value: v, Unit: UnitPT} }

// To 将长度换算到目标单位；UnitNone 原样返回数值。
func (l Length) To(target Unit) float64 {
	if l.Unit == target || l.Unit == UnitNone || target == UnitNone {
		return l.Value
	}
	var mm float64
	switch l.Unit {
	case UnitMM:
		mm = l.Value
	case UnitIN:
		mm = l.Value * MmPerInch
	case UnitPT:
		mm = l.Value * PtToMm
	}
	switch target {
	case UnitIN:
		return mm / MmPerInch
	case UnitPT:
		return mm * MmToPt
	default:
		return mm
	}
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// Pixels 按给定 DPI 换算为像素。点与英寸之间直接用 72 换算，避免经过毫米引入误差。
func (l Length) Pixels(dpi float64) float64 {
	switch l.Unit {
	case UnitIN:
		return l.Value * dpi
	case UnitPT:
		return l.Value * dpi / PointsPerInch
	case UnitMM:
		return l.Value / MmPerInch * dpi
	default:
		return l.Value
	}
}

// LineHeightKind 区分倍数行高与绝对行高。
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec 行高：字号倍数或绝对长度。
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// PrayerLineHeight 是祷文的固定行高倍数。
var PrayerLineHeight = LineHeightSpec{Kind: LineHeightFactor, Factor: 1.5}

// Resolve 以 fontSize 计算目标单位下的绝对行高。
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * 1.5
	}
}
