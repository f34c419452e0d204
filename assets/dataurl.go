package assets

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// EncodeDataURL 将数据编码为 base64 data URL。
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL 解析 data URL，返回声明的 MIME 类型与原始数据。
// 同时支持 base64 与百分号编码两种载荷。
func DecodeDataURL(ref string) (string, []byte, error) {
	if !strings.HasPrefix(ref, "data:") {
		return "", nil, fmt.Errorf("不是 data URL")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("data URL 缺少逗号分隔的数据部分")
	}
	mime := header
	isBase64 := false
	if i := strings.Index(header, ";"); i >= 0 {
		mime = header[:i]
		for _, param := range strings.Split(header[i+1:], ";") {
			if strings.EqualFold(strings.TrimSpace(param), "base64") {
				isBase64 = true
			}
		}
	}
	if mime == "" {
		mime = "text/plain"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return "", nil, fmt.Errorf("data URL base64 解码失败: %w", err)
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL 解码失败: %w", err)
	}
	return mime, []byte(text), nil
}
