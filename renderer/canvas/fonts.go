package canvasrenderer

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/fonts"
	"github.com/ByLCY/keepsake/layout"
)

var variantStyles = map[fonts.Variant]canvas.FontStyle{
	fonts.Regular:    canvas.FontRegular,
	fonts.Bold:       canvas.FontBold,
	fonts.Italic:     canvas.FontItalic,
	fonts.BoldItalic: canvas.FontBold | canvas.FontItalic,
}

// fontFace 以像素字号创建字体面。画布单位即像素，canvas 以 pt 接收字号、以 mm 作为单位，
// 因此在边界做一次 px→pt 换算。
func (r *Renderer) fontFace(spec layout.FontSpec, sizePx float64, col color.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(spec.Family)
	if err != nil {
		return nil, err
	}
	style := variantStyles[fonts.VariantOf(spec.Bold, spec.Italic)]
	return family.Face(sizePx*layout.MmToPt, col, style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(id string) (*canvas.FontFamily, error) {
	id = fonts.Normalize(id)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[id]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily("keepsake-" + id)
	for variant, style := range variantStyles {
		data, err := fonts.Load(id, variant)
		if err != nil {
			return nil, err
		}
		if err := family.LoadFont(data, 0, style); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", id, err)
		}
	}
	r.fontFamilies[id] = family
	return family, nil
}

func colorOf(c design.RGB) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// alphaColor 返回非预乘的带透明度颜色。
func alphaColor(c design.RGB, alpha float64) color.Color {
	if alpha >= 1 {
		return colorOf(c)
	}
	if alpha < 0 {
		alpha = 0
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha*255 + 0.5)}
}
