package layout

import "github.com/ByLCY/keepsake/design"

// 该文件定义布局结果，供预览、导出与调试 JSON 共用。
// 所有坐标都是中心点；需要矩形定位时通过 TopLeft 换算。

// Result 是一次解析得到的全部元素位置。Width/Height 为绘制表面尺寸，Trim 为裁切框。
// 预览时二者重合；导出缩放后表面向四周扩展出血。ScaleX/ScaleY 记录相对预览空间的累计缩放。
type Result struct {
	Space  Space   `json:"space"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	Trim   Rect    `json:"trim"`
	Card   Card    `json:"card"`

	Photo      *ImageBox    `json:"photo,omitempty"`
	Name       *TextBox     `json:"name,omitempty"`
	Dates      *TextBox     `json:"dates,omitempty"`
	Prayer     *TextBox     `json:"prayer,omitempty"`
	Additional *TextBox     `json:"additional,omitempty"`
	QR         *ImageBox    `json:"qr,omitempty"`
	Stickers   []StickerBox `json:"stickers,omitempty"`
	Logo       *ImageBox    `json:"logo,omitempty"`
}

// Card 描述卡面本身（背景、边框、圆角），不涉及位置。
type Card struct {
	Type         design.CardType    `json:"type"`
	Background   design.Background  `json:"background,omitempty"`
	BorderStyle  design.BorderStyle `json:"borderStyle,omitempty"`
	BorderColor  design.BorderColor `json:"borderColor,omitempty"`
	CornerRadius float64            `json:"cornerRadius,omitempty"`
}

// Rect 为左上角定位的矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box 为中心点定位的矩形。Explicit 表示坐标来自文档而不是自动摆放。
type Box struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Explicit bool    `json:"explicit,omitempty"`
}

// TopLeft 将中心点换算为左上角。
func (b Box) TopLeft() (float64, float64) {
	return b.X - b.Width/2, b.Y - b.Height/2
}

// Rect 返回左上角定位的等价矩形。
func (b Box) Rect() Rect {
	x, y := b.TopLeft()
	return Rect{X: x, Y: y, Width: b.Width, Height: b.Height}
}

// FontSpec 选择字体族与字形变体。
type FontSpec struct {
	Family string `json:"family"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// TextBox 表示一个水平居中的文本块。X 为水平中心，Y 为第一行的垂直中心。
// MaxWidth 为 0 时不折行。
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	MaxWidth   float64    `json:"maxWidth,omitempty"`
	FontSize   float64    `json:"fontSize"`
	LineHeight float64    `json:"lineHeight"`
	Font       FontSpec   `json:"font"`
	Color      design.RGB `json:"color"`
	Lines      []TextLine `json:"lines"`
	Explicit   bool       `json:"explicit,omitempty"`
}

// Height 返回文本块占用的总高度。
func (t TextBox) Height() float64 { return float64(len(t.Lines)) * t.LineHeight }

// TextLine 表示排版后的一行文本及其宽度。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// ImageBox 图片元素。FitHeight 为 true 时高度由图片宽高比决定（标志），绘制端负责换算，
// 中心点保持不变。
type ImageBox struct {
	Box
	Source     string           `json:"source"`
	Rotation   float64          `json:"rotation,omitempty"`
	Brightness float64          `json:"brightness,omitempty"`
	Crop       *design.CropRect `json:"crop,omitempty"`
	FitHeight  bool             `json:"fitHeight,omitempty"`
}

// StickerBox 贴纸以字号（正方形边长）描述大小。
type StickerBox struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Glyph    string  `json:"glyph"`
	Explicit bool    `json:"explicit,omitempty"`
}
