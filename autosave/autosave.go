// Package autosave 将“当前设计”草稿保存到单一槽位。
//
// 保存是尽力而为的：照片、标志与二维码位图不会写入草稿，超出配额或存储失败只记录警告，
// 从不向调用方返回错误。恢复时二维码按保存的链接重新生成，照片与标志需要重新上传。
package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/assets"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/logger"
	"github.com/ByLCY/keepsake/qr"
)

// 默认值与配置中的默认值一致。
const (
	DefaultKey      = "keepsake:draft"
	DefaultTTL      = 30 * 24 * time.Hour
	DefaultMaxBytes = 5 << 20
)

// Options 配置草稿槽位。
type Options struct {
	Key      string
	TTL      time.Duration
	MaxBytes int
	Logger   *logger.Logger
}

// Service 是单槽位的自动保存服务。
type Service struct {
	store    Store
	key      string
	ttl      time.Duration
	maxBytes int
	log      *logger.Logger
}

func New(store Store, opts Options) *Service {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Service{store: store, key: opts.Key, ttl: opts.TTL, maxBytes: opts.MaxBytes, log: opts.Logger}
}

// Slot 返回共享同一存储、但使用 key 下子槽位的服务，供多个客户端各自保存草稿。
func (s *Service) Slot(id string) *Service {
	cp := *s
	if id != "" {
		cp.key = s.key + ":" + id
	}
	return &cp
}

// Key 返回草稿槽位的键。
func (s *Service) Key() string { return s.key }

// Strip 去掉不写入草稿的位图字段，其余内容（包括二维码链接与照片数值状态）保留。
func Strip(doc design.Document) design.Document {
	out := doc.Clone()
	out.FrontPhoto.Source = ""
	out.FuneralHomeLogo.Source = ""
	out.QRCode.Source = ""
	return out
}

// Save 覆盖槽位中的草稿。任何失败都只记录警告。
func (s *Service) Save(ctx context.Context, doc design.Document) {
	if err := s.save(ctx, doc); err != nil {
		s.log.Warn(s.log.WithField(ctx, "draftKey", s.key), "自动保存草稿失败", err)
	}
}

func (s *Service) save(ctx context.Context, doc design.Document) error {
	if s.store == nil {
		return apperrors.New(apperrors.CodeStorage, "未配置草稿存储")
	}
	data, err := json.Marshal(Strip(doc))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, err, "序列化草稿失败")
	}
	if len(data) > s.maxBytes {
		return apperrors.New(apperrors.CodeStorage, "草稿超出存储配额").
			WithDetails(map[string]int{"size": len(data), "limit": s.maxBytes})
	}
	if err := s.store.Set(ctx, s.key, data, s.ttl); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, err, "写入草稿失败")
	}
	return nil
}

// Load 恢复草稿。没有草稿或草稿损坏时返回 false；二维码按链接重新生成。
func (s *Service) Load(ctx context.Context) (design.Document, bool) {
	if s.store == nil {
		return design.Document{}, false
	}
	data, err := s.store.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn(s.log.WithField(ctx, "draftKey", s.key), "读取草稿失败", err)
		}
		return design.Document{}, false
	}
	doc, err := design.Thaw(data)
	if err != nil {
		s.log.Warn(s.log.WithField(ctx, "draftKey", s.key), "草稿已损坏，忽略", err)
		return design.Document{}, false
	}
	doc = Strip(doc)
	if doc.QRCode.Link != "" {
		png, err := qr.PNG(doc.QRCode.Link)
		if err != nil {
			s.log.Warn(ctx, "恢复二维码失败", err)
		} else {
			doc.QRCode.Source = assets.EncodeDataURL("image/png", png)
		}
	}
	return doc, true
}

// Clear 清空槽位，例如加入购物车之后。
func (s *Service) Clear(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Del(ctx, s.key); err != nil {
		s.log.Warn(s.log.WithField(ctx, "draftKey", s.key), "清除草稿失败", err)
	}
}
