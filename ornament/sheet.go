package ornament

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	sheetLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "Color", Pattern: `#[0-9A-Fa-f]{6}\b`},
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+|\.\d+)`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	sheetParser = participle.MustBuild[Sheet](
		participle.Lexer(sheetLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Sheet 是装饰表文件的根节点，由若干 style/symbol 定义组成。
type Sheet struct {
	Defs []*Def `parser:"Newline* ( @@ Newline* )*"`
}

// Def 定义一个边框样式或贴纸图案。
type Def struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Kind       string         `parser:"@( 'style' | 'symbol' )"`
	Name       string         `parser:"@Ident"`
	Primitives []*Primitive   `parser:"'{' Newline* ( @@ Newline* )* '}'"`
}

// Primitive 是一条绘图指令：形状 + 数值参数 + 属性。
type Primitive struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Shape string         `parser:"@( 'rect' | 'circle' | 'ellipse' | 'line' | 'polygon' )"`
	Args  []string       `parser:"@Number*"`
	Attrs []*Attr        `parser:"@@*"`
}

// Attr 是图元属性，例如 `stroke 4`、`fill #e11d48`、`gradient diagonal 1 0.7`。
type Attr struct {
	Key    string   `parser:"@( 'stroke' | 'fill' | 'opacity' | 'dash' | 'gradient' )"`
	Mode   string   `parser:"@( 'diagonal' | 'horizontal' | 'vertical' )?"`
	Values []string `parser:"@Number*"`
	Color  string   `parser:"@Color?"`
}

// Parse 从 io.Reader 解析装饰表。
func Parse(name string, r io.Reader) (*Sheet, error) {
	sheet, err := sheetParser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("解析装饰表失败: %w", err)
	}
	return sheet, nil
}

// ParseString 从字符串解析装饰表。
func ParseString(name, src string) (*Sheet, error) {
	sheet, err := sheetParser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("解析装饰表失败: %w", err)
	}
	return sheet, nil
}
