package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/layout"
)

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// fontSize 与 maxWidth 均为当前坐标空间的像素；maxWidth <= 0 时只按显式换行拆分。
func (r *Renderer) LayoutLines(content string, maxWidth float64, font layout.FontSpec, fontSize float64) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, fontSize, colorOf(design.Black))
	if err != nil {
		return nil, err
	}
	lines := greedyWrapTokens(content, maxWidth, face)
	if len(lines) == 0 {
		lines = []layout.TextLine{{}}
	}
	return lines, nil
}

// greedyWrapTokens 优先在空白处断行，单词本身超宽时在词内拆分。行尾空白不计入宽度。
func greedyWrapTokens(content string, width float64, face *canvas.FontFace) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	tokens := tokenizeContent(content)
	var lines []layout.TextLine
	var builder strings.Builder

	measure := func(s string) float64 {
		return face.TextWidth(strings.TrimRightFunc(s, unicode.IsSpace))
	}
	emit := func(force bool) {
		line := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		builder.Reset()
		if line == "" && !force {
			return
		}
		lines = append(lines, layout.TextLine{Content: line, Width: face.TextWidth(line)})
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}
		isSpace := strings.TrimSpace(token) == ""
		if isSpace {
			// 行首空白丢弃，其余暂存，超宽判断时不计入
			if builder.Len() > 0 {
				builder.WriteString(token)
			}
			continue
		}

		candidate := builder.String() + token
		if builder.Len() > 0 && measure(candidate) > limit {
			emit(false)
		}
		if face.TextWidth(token) <= limit {
			builder.WriteString(token)
			continue
		}

		chunks := splitTokenByWidth(token, limit, face)
		for i, chunk := range chunks {
			if builder.Len() > 0 && measure(builder.String()+chunk) > limit {
				emit(false)
			}
			builder.WriteString(chunk)
			if i < len(chunks)-1 {
				emit(false)
			}
		}
	}

	emit(true)
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
