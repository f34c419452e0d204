package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

// 设计文档中可选的字体 id。
const (
	Serif   = "serif"
	Sans    = "sans"
	Script  = "script"
	Elegant = "elegant"
)

// Variant 字形变体。
type Variant int

const (
	Regular Variant = iota
	Bold
	Italic
	BoldItalic
)

// VariantOf 由粗体/斜体标志得到变体。
func VariantOf(bold, italic bool) Variant {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

// family 记录一个字体 id 的四个变体，缺失的变体回退到 Regular。
type family [4][]byte

var families = map[string]family{
	Serif:   {lmroman10regular.TTF, lmroman10bold.TTF, lmroman10italic.TTF, lmroman10bolditalic.TTF},
	Sans:    {goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF},
	Script:  {lmroman10italic.TTF, lmroman10bolditalic.TTF, lmroman10italic.TTF, lmroman10bolditalic.TTF},
	Elegant: {gosmallcaps.TTF, gosmallcaps.TTF, gosmallcapsitalic.TTF, gosmallcapsitalic.TTF},
}

// IDs 按展示顺序返回全部字体 id。
func IDs() []string { return []string{Serif, Script, Sans, Elegant} }

// Normalize 将任意输入归一为已知字体 id，未知值回退为 serif。
func Normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if _, ok := families[id]; ok {
		return id
	}
	return Serif
}

// Load 返回内置字体的 TTF 数据。id 可写为 "embed:serif" 或直接 "serif"。
func Load(id string, v Variant) ([]byte, error) {
	id = Normalize(strings.TrimPrefix(id, "embed:"))
	if v < Regular || v > BoldItalic {
		return nil, fmt.Errorf("字体 %s 的变体 %d 无效", id, v)
	}
	data := families[id][v]
	if len(data) == 0 {
		data = families[id][Regular]
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 数据为空", id)
	}
	return data, nil
}
