// Package binding 实现 ${path} 形式的文本插值，用于祷文中的姓名/日期引用与导出文件名。
package binding

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Vars 是插值使用的变量表，值可以是嵌套的 map 或切片。
type Vars map[string]any

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholderPath(match)
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Render 与 Interpolate 相同，但任何无法解析的占位符都会返回错误。
func Render(text string, data any) (string, error) {
	var missing []string
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholderPath(match)
		if val, ok := resolvePath(data, path); ok && path != "" {
			return fmt.Sprint(val)
		}
		missing = append(missing, match)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("无法解析占位符 %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Placeholders 按出现顺序返回文本中引用的路径（去重）。
func Placeholders(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range exprPattern.FindAllString(text, -1) {
		p := placeholderPath(m)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Filename 以毫秒时间戳展开文件名模板中的 ${timestamp}。
func Filename(pattern string, now time.Time) (string, error) {
	return Render(pattern, Vars{"timestamp": now.UnixMilli()})
}

func placeholderPath(match string) string {
	groups := exprPattern.FindStringSubmatch(match)
	if len(groups) < 2 {
		return ""
	}
	return strings.TrimSpace(groups[1])
}

// resolvePath 沿以点分隔的路径逐级进入嵌套 map。
func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, key := range strings.Split(path, ".") {
		var ok bool
		if current, ok = descendMap(current, key); !ok {
			return nil, false
		}
	}
	return current, true
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case Vars:
		val, ok := c[key]
		return val, ok
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}
