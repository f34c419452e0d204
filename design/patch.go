package design

// Patch 描述一次部分更新：只覆盖提供了的字段，其余字段保持不变。
// 数组字段（贴纸列表）整体替换，不做逐元素合并。
type Patch struct {
	CardType       *CardType    `json:"cardType,omitempty"`
	CardSize       *CardSize    `json:"cardSize,omitempty"`
	BorderStyle    *BorderStyle `json:"borderStyle,omitempty"`
	BorderColor    *BorderColor `json:"borderColor,omitempty"`
	Background     *Background  `json:"background,omitempty"`
	RoundedCorners *bool        `json:"roundedCorners,omitempty"`
	Font           *string      `json:"font,omitempty"`
	TextColor      *RGB         `json:"textColor,omitempty"`

	FrontPhoto      *PhotoPatch  `json:"frontPhoto,omitempty"`
	FrontName       *TextPatch   `json:"frontName,omitempty"`
	FrontDates      *TextPatch   `json:"frontDates,omitempty"`
	BackPrayer      *PrayerPatch `json:"backPrayer,omitempty"`
	QRCode          *ImagePatch  `json:"qrCode,omitempty"`
	FuneralHomeLogo *ImagePatch  `json:"funeralHomeLogo,omitempty"`
	Stickers        *[]Sticker   `json:"stickers,omitempty"`

	Quantity         *int  `json:"quantity,omitempty"`
	PremiumThickness *bool `json:"premiumThickness,omitempty"`
	ExtraDesigns     *int  `json:"extraDesigns,omitempty"`
}

// PhotoPatch 照片元素的部分更新。
type PhotoPatch struct {
	Source     *string   `json:"source,omitempty"`
	X          *float64  `json:"x,omitempty"`
	Y          *float64  `json:"y,omitempty"`
	Width      *float64  `json:"width,omitempty"`
	Height     *float64  `json:"height,omitempty"`
	Rotation   *float64  `json:"rotation,omitempty"`
	Brightness *float64  `json:"brightness,omitempty"`
	Crop       *CropRect `json:"crop,omitempty"`
}

// TextPatch 文本元素的部分更新。
type TextPatch struct {
	Text   *string  `json:"text,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Size   *float64 `json:"size,omitempty"`
	Bold   *bool    `json:"bold,omitempty"`
	Italic *bool    `json:"italic,omitempty"`
}

// PrayerPatch 祷文的部分更新。
type PrayerPatch struct {
	Text           *string  `json:"text,omitempty"`
	Size           *float64 `json:"size,omitempty"`
	AdditionalText *string  `json:"additionalText,omitempty"`
	ShowAdditional *bool    `json:"showAdditional,omitempty"`
}

// ImagePatch 二维码/标志的部分更新。
type ImagePatch struct {
	Source *string  `json:"source,omitempty"`
	Link   *string  `json:"link,omitempty"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
}

// Apply 将 p 叠加到 d 上。本层不做任何校验。
func (d *Document) Apply(p Patch) {
	set(&d.CardType, p.CardType)
	set(&d.CardSize, p.CardSize)
	set(&d.BorderStyle, p.BorderStyle)
	set(&d.BorderColor, p.BorderColor)
	set(&d.Background, p.Background)
	set(&d.RoundedCorners, p.RoundedCorners)
	set(&d.Font, p.Font)
	set(&d.TextColor, p.TextColor)

	if p.FrontPhoto != nil {
		d.FrontPhoto.apply(*p.FrontPhoto)
	}
	if p.FrontName != nil {
		d.FrontName.apply(*p.FrontName)
	}
	if p.FrontDates != nil {
		d.FrontDates.apply(*p.FrontDates)
	}
	if p.BackPrayer != nil {
		set(&d.BackPrayer.Text, p.BackPrayer.Text)
		setPtr(&d.BackPrayer.Size, p.BackPrayer.Size)
		set(&d.BackPrayer.AdditionalText, p.BackPrayer.AdditionalText)
		set(&d.BackPrayer.ShowAdditional, p.BackPrayer.ShowAdditional)
	}
	if p.QRCode != nil {
		d.QRCode.apply(*p.QRCode)
	}
	if p.FuneralHomeLogo != nil {
		d.FuneralHomeLogo.apply(*p.FuneralHomeLogo)
	}
	if p.Stickers != nil {
		d.Stickers = cloneStickers(*p.Stickers)
		if d.Stickers == nil {
			d.Stickers = []Sticker{}
		}
	}

	set(&d.Quantity, p.Quantity)
	set(&d.PremiumThickness, p.PremiumThickness)
	set(&d.ExtraDesigns, p.ExtraDesigns)
}

func (e *PhotoElement) apply(p PhotoPatch) {
	set(&e.Source, p.Source)
	setPtr(&e.X, p.X)
	setPtr(&e.Y, p.Y)
	setPtr(&e.Width, p.Width)
	setPtr(&e.Height, p.Height)
	set(&e.Rotation, p.Rotation)
	set(&e.Brightness, p.Brightness)
	if p.Crop != nil {
		c := *p.Crop
		e.Crop = &c
	}
}

func (e *TextElement) apply(p TextPatch) {
	set(&e.Text, p.Text)
	setPtr(&e.X, p.X)
	setPtr(&e.Y, p.Y)
	setPtr(&e.Size, p.Size)
	set(&e.Bold, p.Bold)
	set(&e.Italic, p.Italic)
}

func (e *ImageElement) apply(p ImagePatch) {
	set(&e.Source, p.Source)
	set(&e.Link, p.Link)
	setPtr(&e.X, p.X)
	setPtr(&e.Y, p.Y)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setPtr 拷贝值而不是共享指针，避免补丁与文档互相影响。
func setPtr[T any](dst **T, v *T) {
	if v != nil {
		cp := *v
		*dst = &cp
	}
}
