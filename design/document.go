package design

import "encoding/json"

// DefaultQuantity 是新建设计的默认印数。
const DefaultQuantity = 55

// Document 是一张卡片的完整可序列化设计状态，不包含任何渲染逻辑。
// 所有坐标均为预览空间中的中心点；nil 表示由布局阶段自动摆放。
type Document struct {
	CardType       CardType    `json:"cardType"`
	CardSize       CardSize    `json:"cardSize"`
	BorderStyle    BorderStyle `json:"borderStyle,omitempty"`
	BorderColor    BorderColor `json:"borderColor,omitempty"`
	Background     Background  `json:"background,omitempty"`
	RoundedCorners bool        `json:"roundedCorners,omitempty"`
	Font           string      `json:"font,omitempty"`
	TextColor      RGB         `json:"textColor"`

	FrontPhoto      PhotoElement  `json:"frontPhoto"`
	FrontName       TextElement   `json:"frontName"`
	FrontDates      TextElement   `json:"frontDates"`
	BackPrayer      PrayerElement `json:"backPrayer"`
	QRCode          ImageElement  `json:"qrCode"`
	FuneralHomeLogo ImageElement  `json:"funeralHomeLogo"`
	Stickers        []Sticker     `json:"stickers,omitempty"`

	Quantity         int  `json:"quantity"`
	PremiumThickness bool `json:"premiumThickness,omitempty"`
	ExtraDesigns     int  `json:"extraDesigns,omitempty"`
}

// PhotoElement 正面照片。Source 为图片引用（data URL、文件路径或 s3:// 键）。
type PhotoElement struct {
	Source     string    `json:"source,omitempty"`
	X          *float64  `json:"x,omitempty"`
	Y          *float64  `json:"y,omitempty"`
	Width      *float64  `json:"width,omitempty"`
	Height     *float64  `json:"height,omitempty"`
	Rotation   float64   `json:"rotation,omitempty"`
	Brightness float64   `json:"brightness,omitempty"`
	Crop       *CropRect `json:"crop,omitempty"`
}

// TextElement 正面的单行文本（姓名、日期）。Size 单位为 pt。
type TextElement struct {
	Text   string   `json:"text,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Size   *float64 `json:"size,omitempty"`
	Bold   bool     `json:"bold,omitempty"`
	Italic bool     `json:"italic,omitempty"`
}

// PrayerElement 背面祷文，始终居中，没有位置字段。
type PrayerElement struct {
	Text           string   `json:"text,omitempty"`
	Size           *float64 `json:"size,omitempty"`
	AdditionalText string   `json:"additionalText,omitempty"`
	ShowAdditional bool     `json:"showAdditional,omitempty"`
}

// ImageElement 二维码与殡仪馆标志共用的图片元素。
// Link 仅对二维码有意义，记录生成二维码时使用的 URL。
type ImageElement struct {
	Source string   `json:"source,omitempty"`
	Link   string   `json:"link,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

// Sticker 贴纸。列表顺序即绘制顺序（靠后的在上层）。
type Sticker struct {
	Glyph string   `json:"glyph"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// CropRect 以源图像素为单位的裁剪矩形。
type CropRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// New 创建只带材质、尺寸与默认边框/字体的新设计。
func New(cardType CardType, size CardSize) Document {
	return Document{
		CardType:    ParseCardType(string(cardType)),
		CardSize:    ParseCardSize(string(size)),
		BorderStyle: BorderClassic,
		BorderColor: ColorGold,
		Font:        "serif",
		TextColor:   Black,
		Quantity:    DefaultQuantity,
	}
}

// EffectiveBackground 返回金属卡的背景处理，纸质卡返回空串。
func (d Document) EffectiveBackground() Background {
	if d.CardType != CardMetal {
		return ""
	}
	if d.Background == "" {
		return BackgroundBrushed
	}
	return d.Background
}

// Clone 深拷贝文档，用于加入购物车时冻结快照。
func (d Document) Clone() Document {
	out := d
	out.FrontPhoto = d.FrontPhoto.clone()
	out.FrontName = d.FrontName.clone()
	out.FrontDates = d.FrontDates.clone()
	out.BackPrayer.Size = clonePtr(d.BackPrayer.Size)
	out.QRCode = d.QRCode.clone()
	out.FuneralHomeLogo = d.FuneralHomeLogo.clone()
	out.Stickers = cloneStickers(d.Stickers)
	return out
}

// Freeze 将文档冻结为购物车行项目的不透明载荷。
func (d Document) Freeze() (json.RawMessage, error) {
	return json.Marshal(d.Clone())
}

// Thaw 从购物车载荷恢复文档；枚举字段在解码时完成归一。
func Thaw(payload json.RawMessage) (Document, error) {
	var d Document
	if err := json.Unmarshal(payload, &d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (p PhotoElement) clone() PhotoElement {
	out := p
	out.X, out.Y = clonePtr(p.X), clonePtr(p.Y)
	out.Width, out.Height = clonePtr(p.Width), clonePtr(p.Height)
	if p.Crop != nil {
		c := *p.Crop
		out.Crop = &c
	}
	return out
}

func (t TextElement) clone() TextElement {
	out := t
	out.X, out.Y, out.Size = clonePtr(t.X), clonePtr(t.Y), clonePtr(t.Size)
	return out
}

func (i ImageElement) clone() ImageElement {
	out := i
	out.X, out.Y = clonePtr(i.X), clonePtr(i.Y)
	return out
}

func cloneStickers(in []Sticker) []Sticker {
	if in == nil {
		return nil
	}
	out := make([]Sticker, len(in))
	for i, s := range in {
		out[i] = Sticker{Glyph: s.Glyph, X: clonePtr(s.X), Y: clonePtr(s.Y)}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr 返回 v 的指针，便于构造可选字段。
func Ptr[T any](v T) *T { return &v }
