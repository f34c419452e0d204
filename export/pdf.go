package export

import (
	"bytes"
	"fmt"
	"image"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/keepsake/layout"
)

// Orientation 页面方向，由宽高比较决定。
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// OrientationOf 宽大于高为横向，其余为纵向。
func OrientationOf(width, height float64) Orientation {
	if width > height {
		return Landscape
	}
	return Portrait
}

// DocumentInfo 写入 PDF 的元信息。
type DocumentInfo struct {
	Title   string
	Subject string
	Creator string
}

// writePDF 每张位图占一页，页面为 widthIn×heightIn 英寸，图片铺满整页。
func writePDF(pages []*image.RGBA, widthIn, heightIn float64, info DocumentInfo) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("缺少可写入的页面")
	}
	wMM, hMM := widthIn*layout.MmPerInch, heightIn*layout.MmPerInch

	var buf bytes.Buffer
	writer := pdf.New(&buf, wMM, hMM, nil)
	writer.SetInfo(info.Title, info.Subject, "", "", info.Creator)
	for i, img := range pages {
		if i > 0 {
			writer.NewPage(wMM, hMM)
		}
		c := canvas.New(wMM, hMM)
		ctx := canvas.NewContext(c)
		dpmm := float64(img.Bounds().Dx()) / wMM
		ctx.DrawImage(0, 0, img, canvas.DPMM(dpmm))
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}
