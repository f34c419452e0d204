package design

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义设计文档中出现的封闭枚举。外部输入在边界处（UnmarshalText/Parse*）被强制归一到
// 已知取值，渲染层只会看到合法的枚举值。

// CardType 卡片材质，影响基础价格与默认背景。
type CardType string

const (
	CardPaper CardType = "paper"
	CardMetal CardType = "metal"
)

// ParseCardType 未知取值回退为 paper。
func ParseCardType(s string) CardType {
	switch CardType(strings.ToLower(strings.TrimSpace(s))) {
	case CardMetal:
		return CardMetal
	default:
		return CardPaper
	}
}

func (t *CardType) UnmarshalText(b []byte) error {
	*t = ParseCardType(string(b))
	return nil
}

// CardSize 决定物理尺寸与尺寸加价。
type CardSize string

const (
	SizeStandard CardSize = "standard"
	SizeLarge    CardSize = "large"
)

// ParseCardSize 未知取值回退为 standard。
func ParseCardSize(s string) CardSize {
	switch CardSize(strings.ToLower(strings.TrimSpace(s))) {
	case SizeLarge:
		return SizeLarge
	default:
		return SizeStandard
	}
}

func (s *CardSize) UnmarshalText(b []byte) error {
	*s = ParseCardSize(string(b))
	return nil
}

// Inches 返回裁切线内的物理尺寸（英寸）。
func (s CardSize) Inches() (width, height float64) {
	if s == SizeLarge {
		return 4, 6
	}
	return 3.5, 5.25
}

// BorderStyle 边框样式；空值表示无边框。
type BorderStyle string

const (
	BorderNone      BorderStyle = ""
	BorderClassic   BorderStyle = "classic"
	BorderOrnate    BorderStyle = "ornate"
	BorderModern    BorderStyle = "modern"
	BorderElegant   BorderStyle = "elegant"
	BorderFloral    BorderStyle = "floral"
	BorderGeometric BorderStyle = "geometric"
)

// BorderStyles 按展示顺序列出全部样式。
var BorderStyles = []BorderStyle{BorderClassic, BorderOrnate, BorderModern, BorderElegant, BorderFloral, BorderGeometric}

// ParseBorderStyle 空串保持“无边框”，其余未知取值回退为 classic。
func ParseBorderStyle(s string) BorderStyle {
	v := BorderStyle(strings.ToLower(strings.TrimSpace(s)))
	if v == BorderNone {
		return BorderNone
	}
	for _, known := range BorderStyles {
		if v == known {
			return v
		}
	}
	return BorderClassic
}

func (b *BorderStyle) UnmarshalText(raw []byte) error {
	*b = ParseBorderStyle(string(raw))
	return nil
}

// BorderColor 边框色；空值在渲染时按 gold 处理。
type BorderColor string

const (
	ColorUnset  BorderColor = ""
	ColorGold   BorderColor = "gold"
	ColorSilver BorderColor = "silver"
	ColorBronze BorderColor = "bronze"
	ColorCopper BorderColor = "copper"
	ColorYellow BorderColor = "yellow"
	ColorPink   BorderColor = "pink"
	ColorWhite  BorderColor = "white"
)

// BorderColors 按展示顺序列出全部颜色。
var BorderColors = []BorderColor{ColorGold, ColorSilver, ColorBronze, ColorCopper, ColorYellow, ColorPink, ColorWhite}

// ParseBorderColor 未知（或空）取值回退为 gold。
func ParseBorderColor(s string) BorderColor {
	v := BorderColor(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BorderColors {
		if v == known {
			return v
		}
	}
	return ColorGold
}

func (c *BorderColor) UnmarshalText(raw []byte) error {
	if strings.TrimSpace(string(raw)) == "" {
		*c = ColorUnset
		return nil
	}
	*c = ParseBorderColor(string(raw))
	return nil
}

// Background 仅对金属卡生效。
type Background string

const (
	BackgroundBrushed Background = "brushed"
	BackgroundMarble  Background = "marble"
	BackgroundSolid   Background = "solid"
)

// ParseBackground 未知取值回退为 brushed。
func ParseBackground(s string) Background {
	switch Background(strings.ToLower(strings.TrimSpace(s))) {
	case BackgroundMarble:
		return BackgroundMarble
	case BackgroundSolid:
		return BackgroundSolid
	default:
		return BackgroundBrushed
	}
}

func (b *Background) UnmarshalText(raw []byte) error {
	if strings.TrimSpace(string(raw)) == "" {
		*b = ""
		return nil
	}
	*b = ParseBackground(string(raw))
	return nil
}

// RGB 采用 0-255 的颜色分量，JSON 中以 #rrggbb 表示。
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// Black 是文字颜色的默认值。
var Black = RGB{}

// ParseHex 解析 #rgb / #rrggbb；无法解析时返回黑色。
func ParseHex(value string) RGB {
	c, err := parseHex(value)
	if err != nil {
		return Black
	}
	return c
}

func parseHex(value string) (RGB, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 && len(v) != 8 {
		return RGB{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(v[:6], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// Hex 返回 #rrggbb 形式。
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

func (c *RGB) UnmarshalText(raw []byte) error {
	*c = ParseHex(string(raw))
	return nil
}

// ProductType 区分购物车行项目的产品类别。
type ProductType string

const (
	ProductCard       ProductType = "card"
	ProductPhotoPrint ProductType = "photo_print"
)
