package ornament

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/keepsake/design"
)

func TestBuiltinSheetDefinesAllStyles(t *testing.T) {
	for _, style := range design.BorderStyles {
		if _, ok := builtin.styles[string(style)]; !ok {
			t.Fatalf("内置装饰表缺少样式 %s", style)
		}
	}
	want := []string{"butterfly", "candle", "cloud", "dove", "flower", "heart", "leaf", "prayer", "rose", "shine", "sparkle", "star"}
	if got := Symbols(); !reflect.DeepEqual(got, want) {
		t.Fatalf("贴纸图案列表不一致: %v", got)
	}
}

func TestUnknownStyleFallsBackToClassicGold(t *testing.T) {
	classic := For(design.BorderClassic, design.ColorGold).Place(0, 0, 300, 510)
	vintage := For(design.BorderStyle("vintage"), design.ColorGold).Place(0, 0, 300, 510)
	if len(classic) == 0 {
		t.Fatalf("classic 边框不应为空")
	}
	if !reflect.DeepEqual(classic, vintage) {
		t.Fatalf("未知样式 vintage 应与 classic 完全一致")
	}
	purple := For(design.BorderStyle("vintage"), design.BorderColor("purple")).Place(0, 0, 300, 510)
	if !reflect.DeepEqual(classic, purple) {
		t.Fatalf("未知颜色应回退为 gold")
	}
}

func TestEveryStyleColorPairIsNonEmpty(t *testing.T) {
	for _, s := range design.BorderStyles {
		for _, c := range design.BorderColors {
			shapes := For(s, c).Place(10, 10, 100, 200)
			if len(shapes) == 0 {
				t.Fatalf("%s/%s 输出为空", s, c)
			}
			for _, sh := range shapes {
				if sh.Color != Swatch(c) {
					t.Fatalf("%s/%s 颜色应为 %s，实际 %s", s, c, Swatch(c).Hex(), sh.Color.Hex())
				}
			}
		}
	}
}

func TestSwatches(t *testing.T) {
	if got := Swatch(design.ColorGold).Hex(); got != "#f5e882" {
		t.Fatalf("gold 色值错误: %s", got)
	}
	if got := Swatch(design.ColorCopper).Hex(); got != "#b87333" {
		t.Fatalf("copper 色值错误: %s", got)
	}
	if got := Swatch(design.ColorUnset).Hex(); got != "#f5e882" {
		t.Fatalf("未设置颜色应回退为 gold: %s", got)
	}
}

func TestPlaceStaysInsideContainer(t *testing.T) {
	x, y, w, h := 37.5, 37.5, 1050.0, 1575.0
	for _, s := range design.BorderStyles {
		for _, sh := range For(s, design.ColorSilver).Place(x, y, w, h) {
			if sh.Kind != Polygon {
				continue
			}
			for _, p := range sh.Points {
				if p.X < x-1e-9 || p.X > x+w+1e-9 || p.Y < y-1e-9 || p.Y > y+h+1e-9 {
					t.Fatalf("%s 的形状超出容器: %#v", s, p)
				}
			}
		}
	}
}

func TestModernFrameScalesNonUniformly(t *testing.T) {
	shapes := For(design.BorderModern, design.ColorGold).Place(0, 0, 300, 600)
	// 第一段为上边，可见厚度为 2 个视框单位（外侧一半被裁掉），按高度缩放
	top := shapes[0]
	if got := top.Points[2].Y - top.Points[0].Y; math.Abs(got-12) > 1e-9 {
		t.Fatalf("上边厚度应为 12，实际 %g", got)
	}
	// 横向渐变 0.5→1→0.5：左端透明度低于中间
	mid := shapes[gradientSegments/2]
	if !(top.Alpha < mid.Alpha) {
		t.Fatalf("渐变不生效: 左端 %g 中间 %g", top.Alpha, mid.Alpha)
	}
}

func TestOrnateDashedInnerFrame(t *testing.T) {
	classic := For(design.BorderClassic, design.ColorGold).Place(0, 0, 100, 100)
	ornate := For(design.BorderOrnate, design.ColorGold).Place(0, 0, 100, 100)
	ellipses := 0
	for _, s := range ornate {
		if s.Kind == Ellipse {
			ellipses++
		}
	}
	if ellipses != 4 {
		t.Fatalf("ornate 应有 4 个角饰，实际 %d", ellipses)
	}
	if len(ornate) <= len(classic) {
		t.Fatalf("ornate 虚线内框应拆成多段: %d <= %d", len(ornate), len(classic))
	}
}

func TestSymbolLookup(t *testing.T) {
	heart, ok := Symbol("heart")
	if !ok {
		t.Fatalf("缺少 heart 图案")
	}
	shapes := heart.Place(0, 0, 64, 64)
	if len(shapes) != 1 || shapes[0].Color.Hex() != "#e11d48" {
		t.Fatalf("heart 图案错误: %#v", shapes)
	}
	if _, ok := Symbol("🕊️"); ok {
		t.Fatalf("未知图案应返回 false")
	}
}

func TestCompileRejectsBadSheets(t *testing.T) {
	cases := map[string]string{
		"参数个数": "style x {\n  rect 0 0 100 stroke 1\n}\n",
		"缺少绘制": "style x {\n  circle 5 5 1\n}\n",
		"重复定义": "style x {\n  rect 0 0 1 1 fill\n}\nstyle x {\n  rect 0 0 1 1 fill\n}\n",
		"圆形描边": "symbol y {\n  circle 5 5 1 stroke 2\n}\n",
	}
	for name, src := range cases {
		sheet, err := ParseString(name, src)
		if err != nil {
			t.Fatalf("%s: 语法应能通过: %v", name, err)
		}
		if _, err := compile(sheet); err == nil {
			t.Fatalf("%s: 期望编译失败", name)
		}
	}
	if _, err := ParseString("bad", "style {\n}"); err == nil || !strings.Contains(err.Error(), "解析装饰表失败") {
		t.Fatalf("缺少名称应解析失败: %v", err)
	}
}
