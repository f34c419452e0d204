// Package qr 将任意 URL 生成固定尺寸的正方形二维码位图。
package qr

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/ByLCY/keepsake/apperrors"
)

// Size 为生成位图的边长（像素）。
const Size = 200

// Image 生成 url 的二维码位图。空 url 属于输入校验错误。
func Image(url string) (image.Image, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperrors.Validation("二维码链接不能为空")
	}
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "二维码生成失败")
	}
	img := code.Image(Size)
	if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
		img = imaging.Resize(img, Size, Size, imaging.NearestNeighbor)
	}
	return img, nil
}

// PNG 生成 url 的二维码并编码为 PNG。
func PNG(url string) ([]byte, error) {
	img, err := Image(url)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "二维码编码失败")
	}
	return buf.Bytes(), nil
}
