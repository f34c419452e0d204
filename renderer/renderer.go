package renderer

import (
	"context"
	"image"

	"github.com/ByLCY/keepsake/layout"
)

// Renderer 将布局结果输出为最终文件，例如预览 PNG 或 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(ctx context.Context, result *layout.Result) ([]byte, error)
}

// ImageSource 按引用（data URL、文件路径、对象存储键）加载位图。
// 加载失败必须返回错误，调用方据此中止整次绘制。
type ImageSource interface {
	Image(ctx context.Context, ref string) (image.Image, error)
}

// ImageSourceFunc 让普通函数满足 ImageSource。
type ImageSourceFunc func(ctx context.Context, ref string) (image.Image, error)

func (f ImageSourceFunc) Image(ctx context.Context, ref string) (image.Image, error) {
	return f(ctx, ref)
}
