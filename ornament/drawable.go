package ornament

import (
	_ "embed"
	"fmt"
	"math"
	"sort"

	"github.com/ByLCY/keepsake/design"
)

//go:embed sheet.orn
var sheetSource string

var builtin = mustCompile("sheet.orn", sheetSource)

func mustCompile(name, src string) *catalogue {
	sheet, err := ParseString(name, src)
	if err != nil {
		panic(err)
	}
	cat, err := compile(sheet)
	if err != nil {
		panic(fmt.Sprintf("编译内置装饰表失败: %v", err))
	}
	return cat
}

// swatches 边框色到固定 RGB 的映射。
var swatches = map[design.BorderColor]design.RGB{
	design.ColorGold:   design.ParseHex("#f5e882"),
	design.ColorYellow: design.ParseHex("#ffd700"),
	design.ColorSilver: design.ParseHex("#c0c0c0"),
	design.ColorBronze: design.ParseHex("#cd7f32"),
	design.ColorCopper: design.ParseHex("#b87333"),
	design.ColorPink:   design.ParseHex("#ffc0cb"),
	design.ColorWhite:  design.ParseHex("#ffffff"),
}

// Swatch 返回边框色的 RGB；未知颜色回退为 gold。
func Swatch(c design.BorderColor) design.RGB {
	if rgb, ok := swatches[c]; ok {
		return rgb
	}
	return swatches[design.ColorGold]
}

// Kind 是可绘制形状的种类。
type Kind int

const (
	Polygon Kind = iota
	Ellipse
)

// Point 是绘制空间中的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape 是已放置到具体容器中的填充形状。Polygon 使用 Points；Ellipse 使用 CX/CY/RX/RY。
type Shape struct {
	Kind   Kind       `json:"kind"`
	Points []Point    `json:"points,omitempty"`
	CX     float64    `json:"cx,omitempty"`
	CY     float64    `json:"cy,omitempty"`
	RX     float64    `json:"rx,omitempty"`
	RY     float64    `json:"ry,omitempty"`
	Color  design.RGB `json:"color"`
	Alpha  float64    `json:"alpha"`
}

// Drawable 是与尺寸无关的装饰描述，Place 之后才得到具体坐标。
type Drawable struct {
	Name  string
	color design.RGB
	prims []primitive
}

// For 返回边框样式 × 颜色的装饰。该函数是全函数：未知样式回退为 classic，未知颜色回退为 gold，
// 从不返回空结果。
func For(style design.BorderStyle, color design.BorderColor) Drawable {
	name := string(style)
	prims, ok := builtin.styles[name]
	if !ok {
		name = string(design.BorderClassic)
		prims = builtin.styles[name]
	}
	return Drawable{Name: name, color: Swatch(color), prims: prims}
}

// Symbol 返回贴纸图案；glyph 不在图案表中时返回 false，调用方应按文本绘制。
func Symbol(glyph string) (Drawable, bool) {
	prims, ok := builtin.symbols[glyph]
	if !ok {
		return Drawable{}, false
	}
	return Drawable{Name: glyph, prims: prims}, true
}

// Symbols 按字母序列出全部贴纸图案名。
func Symbols() []string {
	out := make([]string, 0, len(builtin.symbols))
	for name := range builtin.symbols {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// 渐变描边沿边分段的数量。
const gradientSegments = 8

// Place 将装饰拉伸到左上角为 (x,y)、宽高为 w×h 的容器中（不保持宽高比），
// 返回按绘制顺序排列的填充形状。所有形状都裁剪在容器内。
func (d Drawable) Place(x, y, w, h float64) []Shape {
	if w <= 0 || h <= 0 {
		return nil
	}
	m := mapper{x: x, y: y, sx: w / 100, sy: h / 100}
	var out []Shape
	for _, p := range d.prims {
		col := d.color
		if p.color != nil {
			col = *p.color
		}
		switch p.shape {
		case shapeRect:
			rx, ry, rw, rh := p.args[0], p.args[1], p.args[2], p.args[3]
			if p.fill {
				if s, ok := m.quad(rx, ry, rx+rw, ry+rh, col, p.opacity*p.gradient.at(rx+rw/2, ry+rh/2)); ok {
					out = append(out, s)
				}
			}
			if p.stroke > 0 {
				out = append(out, m.frame(rx, ry, rw, rh, p, col)...)
			}
		case shapeCircle:
			out = append(out, m.ellipse(p.args[0], p.args[1], p.args[2], p.args[2], col, p.opacity*p.gradient.at(p.args[0], p.args[1])))
		case shapeEllipse:
			out = append(out, m.ellipse(p.args[0], p.args[1], p.args[2], p.args[3], col, p.opacity*p.gradient.at(p.args[0], p.args[1])))
		case shapeLine:
			out = append(out, m.line(p.args[0], p.args[1], p.args[2], p.args[3], p.stroke, col, p.opacity))
		case shapePolygon:
			pts := make([]Point, 0, len(p.args)/2)
			var cx, cy float64
			for i := 0; i+1 < len(p.args); i += 2 {
				pts = append(pts, m.point(p.args[i], p.args[i+1]))
				cx += p.args[i]
				cy += p.args[i+1]
			}
			n := float64(len(pts))
			out = append(out, Shape{Kind: Polygon, Points: pts, Color: col, Alpha: p.opacity * p.gradient.at(cx/n, cy/n)})
		}
	}
	return out
}

// mapper 将 0..100 视框坐标映射到容器坐标。
type mapper struct {
	x, y, sx, sy float64
}

func (m mapper) point(nx, ny float64) Point {
	return Point{X: m.x + nx*m.sx, Y: m.y + ny*m.sy}
}

func (m mapper) ellipse(cx, cy, rx, ry float64, col design.RGB, alpha float64) Shape {
	c := m.point(cx, cy)
	return Shape{Kind: Ellipse, CX: c.X, CY: c.Y, RX: rx * m.sx, RY: ry * m.sy, Color: col, Alpha: alpha}
}

// quad 生成视框坐标下的轴对齐矩形，超出 0..100 的部分被裁掉。
func (m mapper) quad(x0, y0, x1, y1 float64, col design.RGB, alpha float64) (Shape, bool) {
	x0, x1 = clampView(x0), clampView(x1)
	y0, y1 = clampView(y0), clampView(y1)
	if x1 <= x0 || y1 <= y0 || alpha <= 0 {
		return Shape{}, false
	}
	return Shape{
		Kind:   Polygon,
		Points: []Point{m.point(x0, y0), m.point(x1, y0), m.point(x1, y1), m.point(x0, y1)},
		Color:  col,
		Alpha:  alpha,
	}, true
}

// frame 将矩形描边拆成四条边的填充矩形。上下边覆盖四角，左右边不含四角，避免半透明重叠。
// 描边宽度随所在轴缩放，与非等比拉伸的矢量描边一致。
func (m mapper) frame(rx, ry, rw, rh float64, p primitive, col design.RGB) []Shape {
	half := p.stroke / 2
	var out []Shape
	emit := func(x0, y0, x1, y1, gx, gy float64) {
		if s, ok := m.quad(x0, y0, x1, y1, col, p.opacity*p.gradient.at(gx, gy)); ok {
			out = append(out, s)
		}
	}
	for _, seg := range segments(rx-half, rx+rw+half, p) {
		mid := (seg[0] + seg[1]) / 2
		emit(seg[0], ry-half, seg[1], ry+half, mid, ry)
	}
	for _, seg := range segments(ry+half, ry+rh-half, p) {
		mid := (seg[0] + seg[1]) / 2
		emit(rx+rw-half, seg[0], rx+rw+half, seg[1], rx+rw, mid)
	}
	for _, seg := range segments(rx-half, rx+rw+half, p) {
		mid := (seg[0] + seg[1]) / 2
		emit(seg[0], ry+rh-half, seg[1], ry+rh+half, mid, ry+rh)
	}
	for _, seg := range segments(ry+half, ry+rh-half, p) {
		mid := (seg[0] + seg[1]) / 2
		emit(rx-half, seg[0], rx+half, seg[1], rx, mid)
	}
	return out
}

// segments 将一条边切成虚线段或渐变分段。
func segments(start, end float64, p primitive) [][2]float64 {
	if end <= start {
		return nil
	}
	if len(p.dash) == 2 {
		var out [][2]float64
		for pos := start; pos < end; pos += p.dash[0] + p.dash[1] {
			out = append(out, [2]float64{pos, min(pos+p.dash[0], end)})
		}
		return out
	}
	if p.gradient == nil {
		return [][2]float64{{start, end}}
	}
	out := make([][2]float64, gradientSegments)
	step := (end - start) / gradientSegments
	for i := range out {
		out[i] = [2]float64{start + float64(i)*step, start + float64(i+1)*step}
	}
	out[gradientSegments-1][1] = end
	return out
}

// line 将线段加粗为四边形（视框坐标下计算法线，再映射）。
func (m mapper) line(x1, y1, x2, y2, width float64, col design.RGB, alpha float64) Shape {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	var nx, ny float64
	if length > 0 {
		nx, ny = -dy/length*width/2, dx/length*width/2
	}
	return Shape{
		Kind: Polygon,
		Points: []Point{
			m.point(x1+nx, y1+ny),
			m.point(x2+nx, y2+ny),
			m.point(x2-nx, y2-ny),
			m.point(x1-nx, y1-ny),
		},
		Color: col,
		Alpha: alpha,
	}
}

func clampView(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
