package layout

import (
	"fmt"
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 14, 24, 72, 1000}
	for _, pt := range samples {
		back := Length{Value: Points(pt).ToMM(), Unit: UnitMM}.ToPT()
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%gpt back=%g diff=%g", pt, back, diff)
		}
	}
}

// TestLengthPixels 英寸与点按 DPI 直接换算为像素。
func TestLengthPixels(t *testing.T) {
	if got := Inches(3.5).Pixels(ExportDPI); got != 1050 {
		t.Fatalf("3.5in@300dpi 期望 1050px，实际 %g", got)
	}
	if got := Points(72).Pixels(ExportDPI); got != 300 {
		t.Fatalf("72pt@300dpi 期望 300px，实际 %g", got)
	}
	if got := BleedPixels(ExportDPI); got != 37.5 {
		t.Fatalf("出血期望 37.5px，实际 %g", got)
	}
	if got := Inches(3.75).ToMM(); math.Abs(got-95.25) > 1e-9 {
		t.Fatalf("3.75in 转 mm 期望 95.25，实际 %g", got)
	}
	if got := fmt.Sprint(Points(1).Unit); got != "pt" {
		t.Fatalf("单位简写期望 pt，实际 %q", got)
	}
}

// TestLineHeightResolve 倍数与绝对值两种行高语义。
func TestLineHeightResolve(t *testing.T) {
	if got := PrayerLineHeight.Resolve(Points(14), UnitPT); math.Abs(got-21) > 1e-9 {
		t.Fatalf("14pt×1.5 期望 21pt，实际 %g", got)
	}
	abs := LineHeightSpec{Kind: LineHeightAbsolute, Len: Length{Value: 6, Unit: UnitMM}}
	if got := abs.Resolve(Points(12), UnitMM); got != 6 {
		t.Fatalf("6mm 行高期望 6，实际 %g", got)
	}
}
