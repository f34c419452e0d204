package design

import "strings"

// PrintSize 纪念照片大幅打印的两种固定尺寸。
type PrintSize string

const (
	Print16x20 PrintSize = "16x20"
	Print18x24 PrintSize = "18x24"
)

// ParsePrintSize 未知取值回退为 16x20。
func ParsePrintSize(s string) PrintSize {
	if PrintSize(strings.TrimSpace(s)) == Print18x24 {
		return Print18x24
	}
	return Print16x20
}

func (p *PrintSize) UnmarshalText(raw []byte) error {
	*p = ParsePrintSize(string(raw))
	return nil
}

// Inches 返回打印尺寸（英寸）。
func (p PrintSize) Inches() (width, height float64) {
	if p == Print18x24 {
		return 18, 24
	}
	return 16, 20
}

// FrameStyle 纪念照片的矩形描边框。
type FrameStyle string

const (
	FrameNone   FrameStyle = "none"
	FrameGold   FrameStyle = "gold"
	FrameSilver FrameStyle = "silver"
	FrameBlack  FrameStyle = "black"
)

// ParseFrameStyle 未知取值回退为 none。
func ParseFrameStyle(s string) FrameStyle {
	switch FrameStyle(strings.ToLower(strings.TrimSpace(s))) {
	case FrameGold:
		return FrameGold
	case FrameSilver:
		return FrameSilver
	case FrameBlack:
		return FrameBlack
	default:
		return FrameNone
	}
}

func (f *FrameStyle) UnmarshalText(raw []byte) error {
	*f = ParseFrameStyle(string(raw))
	return nil
}

// PhotoPrint 纪念照片编辑器的数据模型：一张平面图 + 可选文字 + 可选标志 + 可选描边框。
// 文字与标志位置以画面宽高的百分比表示。
type PhotoPrint struct {
	Image       string     `json:"image"`
	Size        PrintSize  `json:"size"`
	Crop        *CropRect  `json:"crop,omitempty"`
	Zoom        float64    `json:"zoom,omitempty"`
	Rotation    float64    `json:"rotation,omitempty"`
	Brightness  float64    `json:"brightness,omitempty"`
	TextOverlay string     `json:"textOverlay,omitempty"`
	TextX       float64    `json:"textX"`
	TextY       float64    `json:"textY"`
	Logo        string     `json:"logo,omitempty"`
	LogoX       float64    `json:"logoX"`
	LogoY       float64    `json:"logoY"`
	Frame       FrameStyle `json:"frame,omitempty"`
}

// NewPhotoPrint 返回带默认文字/标志位置的纪念照片。
func NewPhotoPrint(image string, size PrintSize) PhotoPrint {
	return PhotoPrint{
		Image: image,
		Size:  ParsePrintSize(string(size)),
		Zoom:  1,
		TextX: 50,
		TextY: 50,
		LogoX: 80,
		LogoY: 80,
		Frame: FrameNone,
	}
}
