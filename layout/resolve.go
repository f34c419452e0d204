package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/keepsake/binding"
	"github.com/ByLCY/keepsake/design"
)

// 自动摆放的默认值，单位为预览像素。
const (
	PhotoAnchorY     = 120.0
	DefaultPhotoSize = 200.0
	NameAnchorY      = 320.0
	DatesAnchorY     = 360.0
	QRInset          = 80.0
	QRSize           = 64.0
	LogoAnchor       = 20.0
	LogoWidthRatio   = 0.25
	CornerRadius     = 12.0
)

// 默认字号（pt）。
const (
	DefaultNamePt   = 24.0
	DefaultDatesPt  = 18.0
	DefaultPrayerPt = 14.0
	StickerPt       = 32.0
)

// 正面祷文相对卡片垂直中心的偏移（pt）：基准 -100，有姓名时 +50，有日期时 +80。
const (
	prayerBaseOffsetPt  = -100.0
	prayerNameOffsetPt  = 50.0
	prayerDatesOffsetPt = 80.0
	// 祷文左右各留 0.25 英寸。
	prayerSideMarginIn = 0.25
)

// Resolve 计算 doc 在 space 中每个可定位元素的中心点与尺寸。
// 文档中存在显式坐标时无条件使用；缺失时应用自动摆放。解析过程不修改 doc。
func Resolve(doc design.Document, space Space, opts Options) (*Result, error) {
	res := &Result{
		Space:  space,
		Width:  space.Width,
		Height: space.Height,
		ScaleX: 1,
		ScaleY: 1,
		Trim:   Rect{Width: space.Width, Height: space.Height},
		Card:   cardOf(doc),
	}

	if space.View == ViewBack {
		if err := resolveBack(res, doc, space, opts); err != nil {
			return nil, err
		}
		return res, nil
	}

	res.Photo = resolvePhoto(doc.FrontPhoto, space)

	var err error
	if res.Name, err = resolveLine(doc.FrontName, space, doc, NameAnchorY, DefaultNamePt, opts); err != nil {
		return nil, fmt.Errorf("解析姓名失败: %w", err)
	}
	if res.Dates, err = resolveLine(doc.FrontDates, space, doc, DatesAnchorY, DefaultDatesPt, opts); err != nil {
		return nil, fmt.Errorf("解析日期失败: %w", err)
	}

	if opts.PrayerOnFront {
		offset := prayerBaseOffsetPt
		if doc.FrontName.Text != "" {
			offset += prayerNameOffsetPt
		}
		if doc.FrontDates.Text != "" {
			offset += prayerDatesOffsetPt
		}
		top := space.Height/2 + offset*space.PxPerPtY()
		if err := resolvePrayer(res, doc, space, opts, func(int) float64 { return top }); err != nil {
			return nil, err
		}
	}

	res.QR = resolveImage(doc.QRCode, space.Width-QRInset, space.Height-QRInset, QRSize, QRSize)
	res.Stickers = resolveStickers(doc.Stickers, space)
	if logo := resolveImage(doc.FuneralHomeLogo, LogoAnchor, LogoAnchor, space.Width*LogoWidthRatio, 0); logo != nil {
		logo.FitHeight = true
		res.Logo = logo
	}
	return res, nil
}

func cardOf(doc design.Document) Card {
	c := Card{
		Type:        design.ParseCardType(string(doc.CardType)),
		Background:  doc.EffectiveBackground(),
		BorderStyle: doc.BorderStyle,
		BorderColor: doc.BorderColor,
	}
	if c.Type == design.CardMetal && doc.RoundedCorners {
		c.CornerRadius = CornerRadius
	}
	return c
}

func resolvePhoto(p design.PhotoElement, space Space) *ImageBox {
	if p.Source == "" {
		return nil
	}
	box := &ImageBox{
		Box: Box{
			X:      orDefault(p.X, space.Width/2),
			Y:      orDefault(p.Y, PhotoAnchorY),
			Width:  orDefault(p.Width, DefaultPhotoSize),
			Height: orDefault(p.Height, DefaultPhotoSize),
		},
		Source:     p.Source,
		Rotation:   p.Rotation,
		Brightness: p.Brightness,
	}
	box.Explicit = p.X != nil || p.Y != nil
	if p.Crop != nil {
		c := *p.Crop
		box.Crop = &c
	}
	return box
}

func resolveLine(t design.TextElement, space Space, doc design.Document, anchorY, defaultPt float64, opts Options) (*TextBox, error) {
	if t.Text == "" {
		return nil, nil
	}
	sizePt := orDefault(t.Size, defaultPt)
	font := FontSpec{Family: doc.Font, Bold: t.Bold, Italic: t.Italic}
	fontSize := sizePt * space.PxPerPtX()
	lines, err := typeset(opts.Typesetter, t.Text, 0, font, fontSize)
	if err != nil {
		return nil, err
	}
	return &TextBox{
		Content:    t.Text,
		X:          orDefault(t.X, space.Width/2),
		Y:          orDefault(t.Y, anchorY),
		FontSize:   fontSize,
		LineHeight: PrayerLineHeight.Resolve(Points(sizePt), UnitPT) * space.PxPerPtY(),
		Font:       font,
		Color:      doc.TextColor,
		Lines:      lines,
		Explicit:   t.X != nil || t.Y != nil,
	}, nil
}

// resolvePrayer 排版祷文与附加文字。firstLine 根据总行数返回第一行的中心 Y。
func resolvePrayer(res *Result, doc design.Document, space Space, opts Options, firstLine func(total int) float64) error {
	p := doc.BackPrayer
	sizePt := orDefault(p.Size, DefaultPrayerPt)
	font := FontSpec{Family: doc.Font}
	fontSize := sizePt * space.PxPerPtX()
	lineHeight := PrayerLineHeight.Resolve(Points(sizePt), UnitPT) * space.PxPerPtY()
	maxWidth := space.Width * (1 - 2*prayerSideMarginIn/space.WidthIn)
	vars := map[string]any{"name": doc.FrontName.Text, "dates": doc.FrontDates.Text}

	newBox := func(text string) (*TextBox, error) {
		content := binding.Interpolate(text, vars)
		lines, err := typeset(opts.Typesetter, content, maxWidth, font, fontSize)
		if err != nil {
			return nil, err
		}
		return &TextBox{
			Content:    content,
			X:          space.Width / 2,
			MaxWidth:   maxWidth,
			FontSize:   fontSize,
			LineHeight: lineHeight,
			Font:       font,
			Color:      doc.TextColor,
			Lines:      lines,
		}, nil
	}

	var prayer, extra *TextBox
	var err error
	if strings.TrimSpace(p.Text) != "" {
		if prayer, err = newBox(p.Text); err != nil {
			return fmt.Errorf("排版祷文失败: %w", err)
		}
	}
	if p.ShowAdditional && strings.TrimSpace(p.AdditionalText) != "" {
		if extra, err = newBox(p.AdditionalText); err != nil {
			return fmt.Errorf("排版附加文字失败: %w", err)
		}
	}

	total := 0
	if prayer != nil {
		total += len(prayer.Lines)
	}
	if extra != nil {
		if prayer != nil {
			total++ // 段间空一行
		}
		total += len(extra.Lines)
	}
	if total == 0 {
		return nil
	}

	y := firstLine(total)
	if prayer != nil {
		prayer.Y = y
		y += float64(len(prayer.Lines)+1) * lineHeight
		res.Prayer = prayer
	}
	if extra != nil {
		extra.Y = y
		res.Additional = extra
	}
	return nil
}

func resolveBack(res *Result, doc design.Document, space Space, opts Options) error {
	return resolvePrayer(res, doc, space, opts, func(total int) float64 {
		lineHeight := PrayerLineHeight.Resolve(Points(orDefault(doc.BackPrayer.Size, DefaultPrayerPt)), UnitPT) * space.PxPerPtY()
		return space.Height/2 - float64(total-1)*lineHeight/2
	})
}

func resolveImage(img design.ImageElement, defaultX, defaultY, width, height float64) *ImageBox {
	if img.Source == "" {
		return nil
	}
	return &ImageBox{
		Box: Box{
			X:        orDefault(img.X, defaultX),
			Y:        orDefault(img.Y, defaultY),
			Width:    width,
			Height:   height,
			Explicit: img.X != nil || img.Y != nil,
		},
		Source: img.Source,
	}
}

// resolveStickers 保持列表顺序（即绘制顺序）；未移动过的贴纸全部落在卡片正中，彼此重叠。
func resolveStickers(stickers []design.Sticker, space Space) []StickerBox {
	if len(stickers) == 0 {
		return nil
	}
	size := StickerPt * space.PxPerPtX()
	out := make([]StickerBox, 0, len(stickers))
	for _, s := range stickers {
		if s.Glyph == "" {
			continue
		}
		out = append(out, StickerBox{
			X:        orDefault(s.X, space.Width/2),
			Y:        orDefault(s.Y, space.Height/2),
			Size:     size,
			Glyph:    s.Glyph,
			Explicit: s.X != nil || s.Y != nil,
		})
	}
	return out
}

func typeset(ts Typesetter, content string, maxWidth float64, font FontSpec, fontSize float64) ([]TextLine, error) {
	if ts == nil {
		parts := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
		lines := make([]TextLine, len(parts))
		for i, p := range parts {
			lines[i] = TextLine{Content: p}
		}
		return lines, nil
	}
	lines, err := ts.LayoutLines(content, maxWidth, font, fontSize)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{}}
	}
	return lines, nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
