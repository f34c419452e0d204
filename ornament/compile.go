package ornament

import (
	"fmt"
	"strconv"

	"github.com/ByLCY/keepsake/design"
)

type shapeKind int

const (
	shapeRect shapeKind = iota
	shapeCircle
	shapeEllipse
	shapeLine
	shapePolygon
)

type gradientDir int

const (
	gradientDiagonal gradientDir = iota
	gradientHorizontal
	gradientVertical
)

// gradient 描述沿某方向均匀分布的不透明度色标。
type gradient struct {
	dir   gradientDir
	stops []float64
}

// at 返回归一化坐标 (x,y) 处的不透明度。
func (g *gradient) at(x, y float64) float64 {
	if g == nil || len(g.stops) == 0 {
		return 1
	}
	if len(g.stops) == 1 {
		return g.stops[0]
	}
	var t float64
	switch g.dir {
	case gradientHorizontal:
		t = x / 100
	case gradientVertical:
		t = y / 100
	default:
		t = (x + y) / 200
	}
	t = clamp01(t)
	pos := t * float64(len(g.stops)-1)
	i := int(pos)
	if i >= len(g.stops)-1 {
		return g.stops[len(g.stops)-1]
	}
	frac := pos - float64(i)
	return g.stops[i]*(1-frac) + g.stops[i+1]*frac
}

type primitive struct {
	shape    shapeKind
	args     []float64
	stroke   float64
	fill     bool
	color    *design.RGB
	opacity  float64
	dash     []float64
	gradient *gradient
}

// catalogue 是编译后的装饰表。
type catalogue struct {
	styles  map[string][]primitive
	symbols map[string][]primitive
}

// compile 校验并编译装饰表：参数个数、数值格式、重复定义都会报错。
func compile(sheet *Sheet) (*catalogue, error) {
	cat := &catalogue{styles: map[string][]primitive{}, symbols: map[string][]primitive{}}
	if sheet == nil {
		return cat, nil
	}
	for _, def := range sheet.Defs {
		target := cat.styles
		if def.Kind == "symbol" {
			target = cat.symbols
		}
		if _, dup := target[def.Name]; dup {
			return nil, fmt.Errorf("%s: %s %s 重复定义", def.Pos, def.Kind, def.Name)
		}
		prims := make([]primitive, 0, len(def.Primitives))
		for _, p := range def.Primitives {
			prim, err := compilePrimitive(p)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", def.Kind, def.Name, err)
			}
			prims = append(prims, prim)
		}
		target[def.Name] = prims
	}
	return cat, nil
}

func compilePrimitive(p *Primitive) (primitive, error) {
	out := primitive{opacity: 1}
	switch p.Shape {
	case "rect":
		out.shape = shapeRect
	case "circle":
		out.shape = shapeCircle
	case "ellipse":
		out.shape = shapeEllipse
	case "line":
		out.shape = shapeLine
	case "polygon":
		out.shape = shapePolygon
	default:
		return out, fmt.Errorf("%s: 未知图元 %s", p.Pos, p.Shape)
	}

	args, err := parseNumbers(p.Args)
	if err != nil {
		return out, fmt.Errorf("%s: %w", p.Pos, err)
	}
	want := map[shapeKind]int{shapeRect: 4, shapeCircle: 3, shapeEllipse: 4, shapeLine: 4}
	if n, fixed := want[out.shape]; fixed && len(args) != n {
		return out, fmt.Errorf("%s: %s 需要 %d 个参数，实际 %d", p.Pos, p.Shape, n, len(args))
	}
	if out.shape == shapePolygon && (len(args) < 6 || len(args)%2 != 0) {
		return out, fmt.Errorf("%s: polygon 需要至少 3 个坐标点，实际 %d 个数值", p.Pos, len(args))
	}
	out.args = args

	for _, a := range p.Attrs {
		vals, err := parseNumbers(a.Values)
		if err != nil {
			return out, fmt.Errorf("%s: %s: %w", p.Pos, a.Key, err)
		}
		if a.Color != "" {
			c := design.ParseHex(a.Color)
			out.color = &c
		}
		switch a.Key {
		case "stroke":
			if len(vals) != 1 || vals[0] <= 0 {
				return out, fmt.Errorf("%s: stroke 需要一个正数宽度", p.Pos)
			}
			out.stroke = vals[0]
		case "fill":
			out.fill = true
		case "opacity":
			if len(vals) != 1 {
				return out, fmt.Errorf("%s: opacity 需要一个数值", p.Pos)
			}
			out.opacity = clamp01(vals[0])
		case "dash":
			if len(vals) != 2 || vals[0] <= 0 || vals[1] < 0 {
				return out, fmt.Errorf("%s: dash 需要实线与间隔两个数值", p.Pos)
			}
			out.dash = vals
		case "gradient":
			if len(vals) == 0 {
				return out, fmt.Errorf("%s: gradient 至少需要一个色标", p.Pos)
			}
			g := &gradient{stops: vals}
			switch a.Mode {
			case "horizontal":
				g.dir = gradientHorizontal
			case "vertical":
				g.dir = gradientVertical
			default:
				g.dir = gradientDiagonal
			}
			out.gradient = g
		}
	}

	if out.stroke > 0 && out.shape != shapeRect && out.shape != shapeLine {
		return out, fmt.Errorf("%s: 只有 rect 与 line 支持 stroke", p.Pos)
	}
	if !out.fill && out.stroke == 0 {
		return out, fmt.Errorf("%s: %s 既没有 fill 也没有 stroke", p.Pos, p.Shape)
	}
	if out.shape == shapeLine && out.stroke == 0 {
		return out, fmt.Errorf("%s: line 需要 stroke 宽度", p.Pos)
	}
	return out, nil
}

func parseNumbers(raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("数值 %q 无法解析: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
