// Package editor 实现设计器的交互预览会话：在预览空间中渲染文档、提交拖动后的坐标、
// 切换正反面、修改尺寸、管理贴纸，以及经由照片编辑流程挂载照片。
//
// Session 是文档的唯一持有者，不支持并发调用。
package editor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/assets"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/layout"
	"github.com/ByLCY/keepsake/logger"
	"github.com/ByLCY/keepsake/photoedit"
	"github.com/ByLCY/keepsake/qr"
	"github.com/ByLCY/keepsake/renderer"
)

// Element 标识可拖动的单个元素。贴纸按下标单独处理。
type Element string

const (
	ElementPhoto Element = "photo"
	ElementName  Element = "name"
	ElementDates Element = "dates"
	ElementQR    Element = "qrCode"
	ElementLogo  Element = "logo"
)

// ImageStore 保存上传的图片并返回可写入文档的引用。
type ImageStore interface {
	Save(ctx context.Context, folder, filename string, data []byte) (string, error)
}

// DraftSaver 在每次修改后接收文档快照。实现必须自行吞掉错误。
type DraftSaver interface {
	Save(ctx context.Context, doc design.Document)
}

// Options 配置会话依赖。
type Options struct {
	Typesetter layout.Typesetter
	Previewer  renderer.Renderer
	Images     ImageStore
	Drafts     DraftSaver
	Logger     *logger.Logger
	// KeepLiteralCoordinates 修改尺寸时不换算已有的显式坐标，按字面值解释到新尺寸中。
	KeepLiteralCoordinates bool
}

// Session 持有正在编辑的文档与当前视图。
type Session struct {
	doc  design.Document
	view layout.View
	opts Options
}

// NewSession 以 doc 的副本开始编辑，默认显示正面。
func NewSession(doc design.Document, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Session{doc: doc.Clone(), view: layout.ViewFront, opts: opts}
}

// Document 返回当前文档的深拷贝。
func (s *Session) Document() design.Document { return s.doc.Clone() }

// View 返回当前视图。
func (s *Session) View() layout.View { return s.view }

// SetView 切换正反面，不修改文档。
func (s *Session) SetView(v layout.View) { s.view = layout.ParseView(string(v)) }

// Space 返回当前尺寸与视图的预览空间。
func (s *Session) Space() layout.Space { return layout.PreviewSpace(s.doc.CardSize, s.view) }

// Resolve 在当前预览空间中解析文档。
func (s *Session) Resolve() (*layout.Result, error) {
	return layout.Resolve(s.doc, s.Space(), layout.Options{Typesetter: s.opts.Typesetter})
}

// Preview 渲染当前视图的预览 PNG。
func (s *Session) Preview(ctx context.Context) ([]byte, error) {
	if s.opts.Previewer == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "未配置预览渲染器")
	}
	res, err := s.Resolve()
	if err != nil {
		return nil, fmt.Errorf("解析预览布局失败: %w", err)
	}
	return s.opts.Previewer.Render(ctx, res)
}

// Apply 叠加一次部分更新。照片来源只能经由 UploadPhoto 写入；尺寸变化会按需换算坐标。
func (s *Session) Apply(ctx context.Context, p design.Patch) error {
	if p.FrontPhoto != nil && p.FrontPhoto.Source != nil && *p.FrontPhoto.Source != "" {
		return apperrors.Validation("照片必须经过编辑后才能添加")
	}
	if p.CardSize != nil {
		s.resize(design.ParseCardSize(string(*p.CardSize)))
		p.CardSize = nil
	}
	s.doc.Apply(p)
	s.changed(ctx)
	return nil
}

// SetCardSize 修改卡片尺寸。默认按预览空间比例换算已有的显式坐标。
func (s *Session) SetCardSize(ctx context.Context, size design.CardSize) {
	s.resize(design.ParseCardSize(string(size)))
	s.opts.Logger.Debug(s.opts.Logger.WithField(ctx, "cardSize", s.doc.CardSize), "卡片尺寸已更新")
	s.changed(ctx)
}

func (s *Session) resize(size design.CardSize) {
	if size == s.doc.CardSize {
		return
	}
	if !s.opts.KeepLiteralCoordinates {
		from := layout.PreviewSpace(s.doc.CardSize, layout.ViewFront)
		to := layout.PreviewSpace(size, layout.ViewFront)
		s.doc = layout.Renormalize(s.doc, from, to)
	}
	s.doc.CardSize = size
}

// Commit 在拖动结束时写回元素的新中心点。坐标被限制在卡片内容区域内，
// 元素有尺寸时整个元素框都保持在卡片内。
func (s *Session) Commit(ctx context.Context, el Element, x, y float64) error {
	if s.view != layout.ViewFront {
		return apperrors.Validation("背面没有可拖动的元素")
	}
	res, err := s.Resolve()
	if err != nil {
		return fmt.Errorf("解析布局失败: %w", err)
	}
	space := s.Space()

	var p design.Patch
	switch el {
	case ElementPhoto:
		if res.Photo == nil {
			return apperrors.New(apperrors.CodeNotFound, "尚未添加照片")
		}
		x, y = clampBox(space, x, y, res.Photo.Width, res.Photo.Height)
		p.FrontPhoto = &design.PhotoPatch{X: &x, Y: &y}
	case ElementName, ElementDates:
		box := res.Name
		if el == ElementDates {
			box = res.Dates
		}
		if box == nil {
			return apperrors.New(apperrors.CodeNotFound, "文本为空，无法拖动")
		}
		x, y = space.Clamp(x, y)
		tp := &design.TextPatch{X: &x, Y: &y}
		if el == ElementName {
			p.FrontName = tp
		} else {
			p.FrontDates = tp
		}
	case ElementQR:
		if res.QR == nil {
			return apperrors.New(apperrors.CodeNotFound, "尚未生成二维码")
		}
		x, y = clampBox(space, x, y, res.QR.Width, res.QR.Height)
		p.QRCode = &design.ImagePatch{X: &x, Y: &y}
	case ElementLogo:
		if res.Logo == nil {
			return apperrors.New(apperrors.CodeNotFound, "尚未上传标志")
		}
		x, y = clampBox(space, x, y, res.Logo.Width, 0)
		p.FuneralHomeLogo = &design.ImagePatch{X: &x, Y: &y}
	default:
		return apperrors.Validation("未知元素 %s", el)
	}
	s.doc.Apply(p)
	s.changed(ctx)
	return nil
}

// AddSticker 在列表末尾（最上层）追加贴纸，返回其下标。新贴纸没有坐标，默认落在卡片正中。
func (s *Session) AddSticker(ctx context.Context, glyph string) (int, error) {
	if glyph == "" {
		return 0, apperrors.Validation("贴纸不能为空")
	}
	next := append(s.stickers(), design.Sticker{Glyph: glyph})
	s.doc.Apply(design.Patch{Stickers: &next})
	s.changed(ctx)
	return len(next) - 1, nil
}

// MoveSticker 写回第 i 个贴纸拖动后的中心点，不改变其层级。
func (s *Session) MoveSticker(ctx context.Context, i int, x, y float64) error {
	if i < 0 || i >= len(s.doc.Stickers) {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("贴纸 %d 不存在", i))
	}
	if s.view != layout.ViewFront {
		return apperrors.Validation("背面没有可拖动的元素")
	}
	size := layout.StickerPt * s.Space().PxPerPtX()
	x, y = clampBox(s.Space(), x, y, size, size)
	next := s.stickers()
	next[i].X, next[i].Y = &x, &y
	s.doc.Apply(design.Patch{Stickers: &next})
	s.changed(ctx)
	return nil
}

// RemoveSticker 删除第 i 个贴纸，其余贴纸保持原有顺序。
func (s *Session) RemoveSticker(ctx context.Context, i int) error {
	if i < 0 || i >= len(s.doc.Stickers) {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("贴纸 %d 不存在", i))
	}
	cur := s.stickers()
	next := append(cur[:i:i], cur[i+1:]...)
	s.doc.Apply(design.Patch{Stickers: &next})
	s.changed(ctx)
	return nil
}

// stickers 返回贴纸列表的副本，便于整体替换。
func (s *Session) stickers() []design.Sticker {
	out := make([]design.Sticker, len(s.doc.Stickers))
	copy(out, s.doc.Stickers)
	return out
}

// UploadPhoto 校验上传的图片，交给 edit 调整裁剪与亮度后保存，再把结果挂到文档上。
// 卡片设计器不烘焙旋转，保存后旋转归零。任何一步失败文档都保持不变。
func (s *Session) UploadPhoto(ctx context.Context, data []byte, edit func(*photoedit.Session) error) error {
	if _, err := assets.SniffImage(data); err != nil {
		return err
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeResourceLoad, err, "图片无法解码")
	}
	ps, err := photoedit.Open(src, photoedit.Options{BakeRotation: false})
	if err != nil {
		return err
	}
	if edit != nil {
		if err := edit(ps); err != nil {
			return err
		}
	}
	out := ps.Save()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out.Image, imaging.PNG); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "编码照片失败")
	}
	ref, err := s.store(ctx, "photos", "photo.png", buf.Bytes())
	if err != nil {
		return err
	}
	crop := out.Crop
	zero := 0.0
	s.doc.Apply(design.Patch{FrontPhoto: &design.PhotoPatch{
		Source:     &ref,
		Crop:       &crop,
		Brightness: &out.Brightness,
		Rotation:   &zero,
	}})
	s.opts.Logger.Debug(s.opts.Logger.WithField(ctx, "photo", ref), "照片已更新")
	s.changed(ctx)
	return nil
}

// SetLogo 校验并挂载殡仪馆标志。
func (s *Session) SetLogo(ctx context.Context, filename string, data []byte) error {
	if _, err := assets.SniffImage(data); err != nil {
		return err
	}
	ref, err := s.store(ctx, "logos", filename, data)
	if err != nil {
		return err
	}
	s.doc.Apply(design.Patch{FuneralHomeLogo: &design.ImagePatch{Source: &ref}})
	s.changed(ctx)
	return nil
}

// SetQRCode 为 url 生成二维码并挂载；空链接被拒绝且文档不变。
func (s *Session) SetQRCode(ctx context.Context, url string) error {
	png, err := qr.PNG(url)
	if err != nil {
		return err
	}
	ref, err := s.store(ctx, "qr", "qr.png", png)
	if err != nil {
		return err
	}
	s.doc.Apply(design.Patch{QRCode: &design.ImagePatch{Source: &ref, Link: &url}})
	s.changed(ctx)
	return nil
}

func (s *Session) store(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if s.opts.Images == nil {
		mime, err := assets.SniffImage(data)
		if err != nil {
			return "", err
		}
		return assets.EncodeDataURL(mime, data), nil
	}
	return s.opts.Images.Save(ctx, folder, filename, data)
}

func (s *Session) changed(ctx context.Context) {
	if s.opts.Drafts != nil {
		s.opts.Drafts.Save(ctx, s.doc.Clone())
	}
}

// clampBox 让宽 w、高 h 的中心点框留在卡片内；元素比卡片大时居中。
func clampBox(space layout.Space, x, y, w, h float64) (float64, float64) {
	return clampAxis(x, w, space.Width), clampAxis(y, h, space.Height)
}

func clampAxis(v, size, limit float64) float64 {
	lo, hi := size/2, limit-size/2
	if lo > hi {
		return limit / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
