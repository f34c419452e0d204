package autosave

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/logger"
)

func sampleDoc() design.Document {
	doc := design.New(design.CardMetal, design.SizeLarge)
	doc.FrontName.Text = "Jane Doe"
	doc.FrontName.X = design.Ptr(40.0)
	doc.FrontPhoto.Source = "data:image/png;base64," + strings.Repeat("A", 4096)
	doc.FrontPhoto.Brightness = 30
	doc.FrontPhoto.Crop = &design.CropRect{Width: 10, Height: 10}
	doc.FuneralHomeLogo.Source = "s3://logos/a.png"
	doc.QRCode.Source = "data:image/png;base64,QQ=="
	doc.QRCode.Link = "https://example.com/jane"
	doc.Stickers = []design.Sticker{{Glyph: "dove"}}
	return doc
}

func TestStripExcludesBitmapsOnly(t *testing.T) {
	doc := sampleDoc()
	out := Strip(doc)
	if out.FrontPhoto.Source != "" || out.FuneralHomeLogo.Source != "" || out.QRCode.Source != "" {
		t.Fatalf("位图字段应被剔除: %+v", out)
	}
	if out.QRCode.Link != doc.QRCode.Link || out.FrontPhoto.Brightness != 30 || out.FrontPhoto.Crop == nil {
		t.Fatalf("非位图字段应保留")
	}
	if doc.FrontPhoto.Source == "" {
		t.Fatalf("Strip 不应修改入参")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := New(NewMemoryStore(), Options{})
	svc.Save(ctx, sampleDoc())

	doc, ok := svc.Load(ctx)
	if !ok {
		t.Fatalf("应能恢复草稿")
	}
	if doc.CardType != design.CardMetal || doc.FrontName.Text != "Jane Doe" || *doc.FrontName.X != 40 {
		t.Fatalf("草稿内容错误: %+v", doc)
	}
	if doc.FrontPhoto.Source != "" || doc.FuneralHomeLogo.Source != "" {
		t.Fatalf("照片与标志不应被恢复")
	}
	if !strings.HasPrefix(doc.QRCode.Source, "data:image/png;base64,") {
		t.Fatalf("二维码应按链接重新生成")
	}
	if len(doc.Stickers) != 1 || doc.Stickers[0].Glyph != "dove" {
		t.Fatalf("贴纸应被恢复")
	}
}

func TestLoadWithoutDraft(t *testing.T) {
	if _, ok := New(NewMemoryStore(), Options{}).Load(context.Background()); ok {
		t.Fatalf("没有草稿时不应恢复")
	}
	if _, ok := New(nil, Options{}).Load(context.Background()); ok {
		t.Fatalf("未配置存储时不应恢复")
	}
}

func TestQuotaOverflowIsSwallowedAndLogged(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	store := NewMemoryStore()
	svc := New(store, Options{MaxBytes: 64, Logger: logger.New(logger.Options{Output: &buf})})

	svc.Save(ctx, sampleDoc())
	if _, err := store.Get(ctx, svc.Key()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("超出配额的草稿不应写入")
	}
	if !strings.Contains(buf.String(), "STORAGE_ERROR") || !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("应以 warn 记录存储错误: %s", buf.String())
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (failingStore) Del(context.Context, string) error { return errors.New("down") }

func TestStoreFailuresNeverPropagate(t *testing.T) {
	ctx := context.Background()
	svc := New(failingStore{}, Options{})
	svc.Save(ctx, sampleDoc())
	svc.Clear(ctx)
	if _, ok := svc.Load(ctx); ok {
		t.Fatalf("读取失败时不应恢复")
	}
}

func TestCorruptDraftIsIgnored(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := New(store, Options{})
	_ = store.Set(ctx, svc.Key(), []byte("{not json"), 0)
	if _, ok := svc.Load(ctx); ok {
		t.Fatalf("损坏的草稿应被忽略")
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	svc := New(NewMemoryStore(), Options{Key: "drafts"})
	a, b := svc.Slot("a"), svc.Slot("b")
	if a.Key() != "drafts:a" {
		t.Fatalf("子槽位键错误: %s", a.Key())
	}
	a.Save(ctx, sampleDoc())
	if _, ok := b.Load(ctx); ok {
		t.Fatalf("不同槽位不应共享草稿")
	}
	a.Clear(ctx)
	if _, ok := a.Load(ctx); ok {
		t.Fatalf("清除后不应恢复")
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisStoreUsesTTLAndMapsNil(t *testing.T) {
	ctx := context.Background()
	mock := &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
	store := &RedisStore{store: mock}
	svc := New(store, Options{TTL: time.Hour})

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("redis.Nil 应映射为 ErrNotFound: %v", err)
	}
	svc.Save(ctx, sampleDoc())
	if mock.ttls[DefaultKey] != time.Hour {
		t.Fatalf("应带 TTL 写入: %v", mock.ttls[DefaultKey])
	}
	if _, ok := svc.Load(ctx); !ok {
		t.Fatalf("应能从 redis 恢复草稿")
	}
	svc.Clear(ctx)
	if _, ok := mock.data[DefaultKey]; ok {
		t.Fatalf("清除后键应被删除")
	}
}
