package design

import (
	"encoding/json"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	d := New(CardPaper, SizeStandard)
	if d.BorderStyle != BorderClassic || d.BorderColor != ColorGold {
		t.Fatalf("默认边框应为 classic/gold，实际 %s/%s", d.BorderStyle, d.BorderColor)
	}
	if d.Font != "serif" || d.TextColor != Black || d.Quantity != DefaultQuantity {
		t.Fatalf("默认字体/颜色/数量不正确: %#v", d)
	}
	if d.FrontName.X != nil || d.FrontPhoto.Y != nil || d.QRCode.X != nil {
		t.Fatalf("新文档不应包含显式坐标")
	}
}

func TestApplyOverlaysOnlySuppliedFields(t *testing.T) {
	d := New(CardMetal, SizeStandard)
	d.FrontName.Text = "Mary"
	d.FrontName.Bold = true

	d.Apply(Patch{FrontName: &TextPatch{X: Ptr(10.0), Y: Ptr(20.0)}})

	if d.FrontName.Text != "Mary" || !d.FrontName.Bold {
		t.Fatalf("未提供的字段被覆盖: %#v", d.FrontName)
	}
	if *d.FrontName.X != 10 || *d.FrontName.Y != 20 {
		t.Fatalf("坐标未写入: %v,%v", *d.FrontName.X, *d.FrontName.Y)
	}
	if d.CardType != CardMetal {
		t.Fatalf("cardType 不应改变")
	}
}

func TestApplyReplacesStickersWholesale(t *testing.T) {
	d := New(CardPaper, SizeStandard)
	d.Stickers = []Sticker{{Glyph: "a"}, {Glyph: "b"}, {Glyph: "c"}}
	next := []Sticker{{Glyph: "z"}}
	d.Apply(Patch{Stickers: &next})
	if len(d.Stickers) != 1 || d.Stickers[0].Glyph != "z" {
		t.Fatalf("贴纸列表应整体替换，实际 %#v", d.Stickers)
	}
	next[0].Glyph = "mutated"
	if d.Stickers[0].Glyph != "z" {
		t.Fatalf("补丁切片与文档共享了底层数组")
	}
}

func TestApplyDoesNotAliasPatchPointers(t *testing.T) {
	d := New(CardPaper, SizeStandard)
	x := 42.0
	d.Apply(Patch{QRCode: &ImagePatch{X: &x}})
	x = 1
	if *d.QRCode.X != 42 {
		t.Fatalf("文档坐标随补丁变量改变: %v", *d.QRCode.X)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := New(CardPaper, SizeLarge)
	d.FrontPhoto.X = Ptr(5.0)
	d.FrontPhoto.Crop = &CropRect{Width: 10, Height: 10}
	d.Stickers = []Sticker{{Glyph: "star", X: Ptr(1.0)}}

	c := d.Clone()
	*d.FrontPhoto.X = 99
	d.FrontPhoto.Crop.Width = 99
	*d.Stickers[0].X = 99

	if *c.FrontPhoto.X != 5 || c.FrontPhoto.Crop.Width != 10 || *c.Stickers[0].X != 1 {
		t.Fatalf("Clone 不是深拷贝: %#v", c)
	}
}

func TestUnknownEnumsCoercedAtBoundary(t *testing.T) {
	raw := `{"cardType":"wood","cardSize":"huge","borderStyle":"vintage","borderColor":"purple","background":"glitter","textColor":"zzz"}`
	var d Document
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if d.CardType != CardPaper || d.CardSize != SizeStandard {
		t.Fatalf("材质/尺寸未回退: %s %s", d.CardType, d.CardSize)
	}
	if d.BorderStyle != BorderClassic || d.BorderColor != ColorGold {
		t.Fatalf("边框未回退到 classic/gold: %s %s", d.BorderStyle, d.BorderColor)
	}
	if d.Background != BackgroundBrushed || d.TextColor != Black {
		t.Fatalf("背景/文字颜色未回退: %s %v", d.Background, d.TextColor)
	}
}

func TestFreezeThawRoundTrip(t *testing.T) {
	d := New(CardMetal, SizeLarge)
	d.Background = BackgroundMarble
	d.TextColor = ParseHex("#336699")
	d.FrontDates = TextElement{Text: "1945 - 2025", X: Ptr(150.0), Size: Ptr(18.0)}

	payload, err := d.Freeze()
	if err != nil {
		t.Fatalf("冻结失败: %v", err)
	}
	back, err := Thaw(payload)
	if err != nil {
		t.Fatalf("解冻失败: %v", err)
	}
	if back.TextColor.Hex() != "#336699" || *back.FrontDates.X != 150 || back.Background != BackgroundMarble {
		t.Fatalf("往返后字段不一致: %#v", back)
	}
}

func TestCardSizeInches(t *testing.T) {
	if w, h := SizeStandard.Inches(); w != 3.5 || h != 5.25 {
		t.Fatalf("standard 尺寸错误: %gx%g", w, h)
	}
	if w, h := SizeLarge.Inches(); w != 4 || h != 6 {
		t.Fatalf("large 尺寸错误: %gx%g", w, h)
	}
}
