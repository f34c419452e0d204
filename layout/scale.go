package layout

import "github.com/ByLCY/keepsake/design"

// Scale 将结果线性映射到另一坐标空间：x' = ox + x*sx，y' = oy + y*sy。
// ox/oy 同时作为四周对称的边距，绘制表面相应扩大。
// 水平量（字号、宽度）随 sx 缩放，垂直量（行高、高度）随 sy 缩放。
func (r *Result) Scale(sx, sy, ox, oy float64) *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		Space:  r.Space,
		Width:  r.Width*sx + 2*ox,
		Height: r.Height*sy + 2*oy,
		ScaleX: r.ScaleX * sx,
		ScaleY: r.ScaleY * sy,
		Trim: Rect{
			X:      ox + r.Trim.X*sx,
			Y:      oy + r.Trim.Y*sy,
			Width:  r.Trim.Width * sx,
			Height: r.Trim.Height * sy,
		},
		Card: r.Card,
	}
	out.Card.CornerRadius = r.Card.CornerRadius * sx

	out.Photo = r.Photo.scale(sx, sy, ox, oy)
	out.Name = r.Name.scale(sx, sy, ox, oy)
	out.Dates = r.Dates.scale(sx, sy, ox, oy)
	out.Prayer = r.Prayer.scale(sx, sy, ox, oy)
	out.Additional = r.Additional.scale(sx, sy, ox, oy)
	out.QR = r.QR.scale(sx, sy, ox, oy)
	out.Logo = r.Logo.scale(sx, sy, ox, oy)
	if len(r.Stickers) > 0 {
		out.Stickers = make([]StickerBox, len(r.Stickers))
		for i, s := range r.Stickers {
			s.X = ox + s.X*sx
			s.Y = oy + s.Y*sy
			s.Size *= sx
			out.Stickers[i] = s
		}
	}
	return out
}

// ToExport 将预览空间的结果映射到 dpi 分辨率的导出空间，并加上标准出血。
func (r *Result) ToExport(dpi float64) *Result {
	return r.ToExportWithBleed(dpi, BleedInches)
}

// ToExportWithBleed 与 ToExport 相同，但出血宽度（英寸）由调用方指定。
func (r *Result) ToExportWithBleed(dpi, bleedInches float64) *Result {
	if r == nil {
		return nil
	}
	sx, sy := r.Space.ExportScale(dpi)
	bleed := Inches(bleedInches).Pixels(dpi)
	return r.Scale(sx, sy, bleed, bleed)
}

func (b *ImageBox) scale(sx, sy, ox, oy float64) *ImageBox {
	if b == nil {
		return nil
	}
	out := *b
	out.X = ox + b.X*sx
	out.Y = oy + b.Y*sy
	out.Width = b.Width * sx
	out.Height = b.Height * sy
	return &out
}

func (t *TextBox) scale(sx, sy, ox, oy float64) *TextBox {
	if t == nil {
		return nil
	}
	out := *t
	out.X = ox + t.X*sx
	out.Y = oy + t.Y*sy
	out.MaxWidth = t.MaxWidth * sx
	out.FontSize = t.FontSize * sx
	out.LineHeight = t.LineHeight * sy
	out.Lines = make([]TextLine, len(t.Lines))
	for i, l := range t.Lines {
		out.Lines[i] = TextLine{Content: l.Content, Width: l.Width * sx}
	}
	return &out
}

// Renormalize 在预览空间之间按比例换算文档中的显式坐标，返回新文档。
// 自动摆放的元素保持为空，仍由目标空间的默认值决定。
func Renormalize(doc design.Document, from, to Space) design.Document {
	out := doc.Clone()
	if from.Width <= 0 || from.Height <= 0 {
		return out
	}
	fx, fy := to.Width/from.Width, to.Height/from.Height

	scaleX := func(v *float64) {
		if v != nil {
			*v *= fx
		}
	}
	scaleY := func(v *float64) {
		if v != nil {
			*v *= fy
		}
	}

	scaleX(out.FrontPhoto.X)
	scaleY(out.FrontPhoto.Y)
	scaleX(out.FrontPhoto.Width)
	scaleY(out.FrontPhoto.Height)
	for _, t := range []*design.TextElement{&out.FrontName, &out.FrontDates} {
		scaleX(t.X)
		scaleY(t.Y)
	}
	for _, img := range []*design.ImageElement{&out.QRCode, &out.FuneralHomeLogo} {
		scaleX(img.X)
		scaleY(img.Y)
	}
	for i := range out.Stickers {
		scaleX(out.Stickers[i].X)
		scaleY(out.Stickers[i].Y)
	}
	return out
}
