// Package assets 负责图片素材的校验、存储与按引用加载。
//
// 支持三种引用：
//
//	data:image/png;base64,...   内联 data URL
//	s3://<key>                  对象存储中的键
//	其他                         相对 BaseDir 的文件路径
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/renderer"
)

const s3Scheme = "s3://"

// 允许上传的图片类型。
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Library 实现 renderer.ImageSource。
type Library struct {
	baseDir  string
	store    ObjectStore
	maxBytes int
}

var _ renderer.ImageSource = (*Library)(nil)

// Options 配置素材库。Store 为空时上传结果以 data URL 返回。
type Options struct {
	BaseDir  string
	Store    ObjectStore
	MaxBytes int
}

func NewLibrary(opts Options) *Library {
	return &Library{baseDir: opts.BaseDir, store: opts.Store, maxBytes: opts.MaxBytes}
}

// SniffImage 按文件内容（而非扩展名或声明的类型）判断是否为受支持的图片。
func SniffImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.Validation("文件为空")
	}
	mt := mimetype.Detect(data)
	if !allowedImageTypes[mt.String()] {
		return "", apperrors.Validation("不支持的文件类型 %s，请上传图片", mt.String())
	}
	return mt.String(), nil
}

// Save 校验并保存上传的图片，返回可写入设计文档的引用。
func (l *Library) Save(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if l.maxBytes > 0 && len(data) > l.maxBytes {
		return "", apperrors.Validation("文件大小 %d 字节超过上限 %d", len(data), l.maxBytes)
	}
	mime, err := SniffImage(data)
	if err != nil {
		return "", err
	}
	if l.store == nil {
		return EncodeDataURL(mime, data), nil
	}
	key, err := l.store.Put(ctx, folder, filename, mime, data)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeDependency, err, "保存图片失败")
	}
	return s3Scheme + key, nil
}

// Bytes 按引用读取原始数据。
func (l *Library) Bytes(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, fmt.Errorf("图片引用为空")
	case strings.HasPrefix(ref, "data:"):
		_, data, err := DecodeDataURL(ref)
		return data, err
	case strings.HasPrefix(ref, s3Scheme):
		if l.store == nil {
			return nil, fmt.Errorf("未配置对象存储，无法读取 %s", ref)
		}
		return l.store.Get(ctx, strings.TrimPrefix(ref, s3Scheme))
	default:
		path, err := l.resolvePath(ref)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取图片 %s 失败: %w", ref, err)
		}
		return data, nil
	}
}

// Image 按引用加载并解码图片，实现 renderer.ImageSource。
func (l *Library) Image(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.Bytes(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

// resolvePath 只允许访问 BaseDir 之内的文件。
func (l *Library) resolvePath(ref string) (string, error) {
	if l.baseDir == "" {
		return "", fmt.Errorf("未指定资源目录时不允许使用文件路径：%s", ref)
	}
	base, err := filepath.Abs(l.baseDir)
	if err != nil {
		return "", fmt.Errorf("解析资源目录失败: %w", err)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, ref)
	}
	rel, err := filepath.Rel(base, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("图片路径 %s 超出资源目录", ref)
	}
	return path, nil
}
