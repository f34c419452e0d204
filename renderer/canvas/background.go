package canvasrenderer

import (
	"image"
	"image/color"
	"math"

	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/layout"
)

// 金属卡背景：135° 线性渐变，色标均匀分布。
var metalStops = map[design.Background][]design.RGB{
	design.BackgroundBrushed: {design.ParseHex("#c0c0c0"), design.ParseHex("#e8e8e8"), design.ParseHex("#c0c0c0")},
	design.BackgroundMarble: {
		design.ParseHex("#f5f5f5"), design.ParseHex("#e0e0e0"), design.ParseHex("#f5f5f5"),
		design.ParseHex("#e8e8e8"), design.ParseHex("#f5f5f5"),
	},
	design.BackgroundSolid: {design.ParseHex("#d4d4d4"), design.ParseHex("#f0f0f0")},
}

// legacyBorderColors 旧导出边框的填充色，未知颜色按 gold。
var legacyBorderColors = map[design.BorderColor]design.RGB{
	design.ColorGold:   design.ParseHex("#f59e0b"),
	design.ColorSilver: design.ParseHex("#9ca3af"),
	design.ColorBronze: design.ParseHex("#d97706"),
	design.ColorCopper: design.ParseHex("#ea580c"),
}

func legacyBorderColor(c design.BorderColor) design.RGB {
	if rgb, ok := legacyBorderColors[c]; ok {
		return rgb
	}
	return legacyBorderColors[design.ColorGold]
}

// gradientImage 生成 w×h 的 135° 渐变位图（左上到右下）。
// 对角方向的投影 t = ((x-cx)+(y-cy))/(w+h) + 0.5。
func gradientImage(w, h int, stops []design.RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 || len(stops) == 0 {
		return img
	}
	cx, cy := float64(w)/2, float64(h)/2
	span := float64(w + h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t := ((float64(x)+0.5-cx)+(float64(y)+0.5-cy))/span + 0.5
			img.SetNRGBA(x, y, sample(stops, t))
		}
	}
	return img
}

func sample(stops []design.RGB, t float64) color.NRGBA {
	if len(stops) == 1 || t <= 0 {
		c := stops[0]
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	if t >= 1 {
		c := stops[len(stops)-1]
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := stops[i], stops[i+1]
	mix := func(p, q uint8) uint8 {
		return uint8(math.Round(float64(p)*(1-frac) + float64(q)*frac))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// clipCorners 将裁切框四角半径 radius 以外的像素置为透明。
func clipCorners(img *image.RGBA, trim layout.Rect, radius float64) {
	if img == nil || radius <= 0 {
		return
	}
	left, top := trim.X, trim.Y
	right, bottom := trim.X+trim.Width, trim.Y+trim.Height
	corners := [4][2]float64{
		{left + radius, top + radius},
		{right - radius, top + radius},
		{left + radius, bottom - radius},
		{right - radius, bottom - radius},
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		py := float64(y) + 0.5
		for x := b.Min.X; x < b.Max.X; x++ {
			px := float64(x) + 0.5
			for i, c := range corners {
				inX := (i%2 == 0 && px < c[0]) || (i%2 == 1 && px > c[0])
				inY := (i < 2 && py < c[1]) || (i >= 2 && py > c[1])
				if inX && inY && math.Hypot(px-c[0], py-c[1]) > radius {
					img.SetRGBA(x, y, color.RGBA{})
					break
				}
			}
		}
	}
}
