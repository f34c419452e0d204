package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ByLCY/keepsake/assets"
	"github.com/ByLCY/keepsake/autosave"
	"github.com/ByLCY/keepsake/cart"
	"github.com/ByLCY/keepsake/checkout"
	"github.com/ByLCY/keepsake/config"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/editor"
	"github.com/ByLCY/keepsake/export"
	"github.com/ByLCY/keepsake/layout"
	"github.com/ByLCY/keepsake/logger"
	"github.com/ByLCY/keepsake/orders"
	"github.com/ByLCY/keepsake/payments"
	canvasrenderer "github.com/ByLCY/keepsake/renderer/canvas"
	"github.com/ByLCY/keepsake/server"
)

const usage = `用法:
  keepsake render -in design.json -out card.pdf [-png preview.png] [-debug layout.json] [-view front|back]
  keepsake render -print -in photo.json -out print.pdf
  keepsake serve`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "keepsake",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.IsDev(),
	})

	switch os.Args[1] {
	case "render":
		err = runRender(cfg, logg, os.Args[2:])
	case "serve":
		err = runServe(cfg, logg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logg.Error(context.Background(), "执行失败", err)
		os.Exit(1)
	}
}

type renderFlags struct {
	input   string
	output  string
	png     string
	debug   string
	view    string
	isPrint bool
}

func parseRenderFlags(args []string) (renderFlags, error) {
	var f renderFlags
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVar(&f.input, "in", "design.json", "设计 JSON 文件路径")
	fs.StringVar(&f.output, "out", "", "PDF 输出路径，默认按文件名模板生成")
	fs.StringVar(&f.png, "png", "", "预览 PNG 输出路径")
	fs.StringVar(&f.debug, "debug", "", "布局调试 JSON 输出路径")
	fs.StringVar(&f.view, "view", "front", "预览与调试使用的视图（front|back）")
	fs.BoolVar(&f.isPrint, "print", false, "输入为纪念照片而不是卡片")
	if err := fs.Parse(args); err != nil {
		return renderFlags{}, err
	}
	return f, nil
}

// newEngine 按配置组装素材库、绘制器与导出引擎。
func newEngine(cfg *config.Config, logg *logger.Logger, lib *assets.Library) (*canvasrenderer.Renderer, *export.Engine) {
	painter := canvasrenderer.NewRenderer(lib)
	engine := export.NewEngine(painter, lib, export.Options{
		DPI:          cfg.Export.DPI,
		BleedInches:  cfg.Export.BleedInches,
		NoBleed:      cfg.Export.BleedInches == 0,
		LegacyBorder: cfg.Export.LegacyBorder(),
		BackPage:     cfg.Export.BackPage,
		CardPattern:  cfg.Export.FilePattern,
		PrintPattern: cfg.Export.PrintPattern,
		Logger:       logg,
	})
	return painter, engine
}

func newLibrary(cfg *config.Config) (*assets.Library, error) {
	opts := assets.Options{
		BaseDir:  cfg.Assets.BaseDir,
		MaxBytes: cfg.Assets.MaxUploadMB << 20,
	}
	if cfg.Assets.S3Enabled() {
		store, err := assets.NewS3Storage(assets.S3Config{
			Endpoint:        cfg.Assets.S3Endpoint,
			Region:          cfg.Assets.S3Region,
			Bucket:          cfg.Assets.S3Bucket,
			AccessKeyID:     cfg.Assets.S3AccessKey,
			SecretAccessKey: cfg.Assets.S3SecretKey,
			PublicURL:       cfg.Assets.S3PublicURL,
			UsePathStyle:    cfg.Assets.S3UsePathMode,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化对象存储失败: %w", err)
		}
		opts.Store = store
	}
	return assets.NewLibrary(opts), nil
}

// runRender 读取设计 JSON，导出 PDF，并按需输出预览与布局调试文件。
func runRender(cfg *config.Config, logg *logger.Logger, args []string) error {
	f, err := parseRenderFlags(args)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(f.input)
	if err != nil {
		return fmt.Errorf("读取设计文件 %s 失败: %w", f.input, err)
	}
	if cfg.Assets.BaseDir == "." {
		cfg.Assets.BaseDir = filepath.Dir(f.input)
	}
	lib, err := newLibrary(cfg)
	if err != nil {
		return err
	}
	painter, engine := newEngine(cfg, logg, lib)
	ctx := context.Background()

	var art *export.Artifact
	if f.isPrint {
		var p design.PhotoPrint
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("解析纪念照片 JSON 失败: %w", err)
		}
		if art, err = engine.MemorialPrint(ctx, p); err != nil {
			return err
		}
	} else {
		var doc design.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("解析设计 JSON 失败: %w", err)
		}
		if err := writePreview(ctx, painter, doc, f); err != nil {
			return err
		}
		if art, err = engine.Card(ctx, doc); err != nil {
			return err
		}
	}

	out := f.output
	if out == "" {
		out = art.Filename
	}
	if err := writeFile(out, art.Data); err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"file":  out,
		"pages": art.Pages,
		"size":  fmt.Sprintf("%.2fx%.2fin", art.WidthIn, art.HeightIn),
	}), "已生成 PDF")
	return nil
}

func writePreview(ctx context.Context, painter *canvasrenderer.Renderer, doc design.Document, f renderFlags) error {
	if f.png == "" && f.debug == "" {
		return nil
	}
	s := editor.NewSession(doc, editor.Options{Typesetter: painter, Previewer: painter})
	s.SetView(layout.ParseView(f.view))
	if f.debug != "" {
		res, err := s.Resolve()
		if err != nil {
			return fmt.Errorf("布局计算失败: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(f.debug), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := layout.WriteDebugJSON(res, f.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if f.png != "" {
		png, err := s.Preview(ctx)
		if err != nil {
			return err
		}
		if err := writeFile(f.png, png); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

// runServe 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出。
func runServe(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lib, err := newLibrary(cfg)
	if err != nil {
		return err
	}
	painter, engine := newEngine(cfg, logg, lib)

	var store autosave.Store = autosave.NewMemoryStore()
	if cfg.Redis.URL != "" {
		rs, err := autosave.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("连接 Redis 失败: %w", err)
		}
		defer func() {
			if err := rs.Close(); err != nil {
				logg.Error(context.Background(), "关闭 Redis 失败", err)
			}
		}()
		store = rs
	} else {
		logg.Warn(ctx, "未配置 Redis，草稿仅保存在内存中", nil)
	}
	drafts := autosave.New(store, autosave.Options{
		Key:      cfg.Redis.DraftKey,
		TTL:      cfg.Redis.DraftTTL,
		MaxBytes: cfg.Redis.MaxDraftBytes,
		Logger:   logg,
	})

	db, err := orders.Open(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	repo := orders.NewRepository(db)

	var provider payments.Provider = payments.Unavailable{}
	if cfg.Stripe.Enabled() {
		sp, err := payments.NewStripeProvider(payments.StripeConfig{
			APIKey:   cfg.Stripe.SecretKey,
			Currency: cfg.Stripe.Currency,
			Logger:   logg,
		})
		if err != nil {
			return fmt.Errorf("初始化支付通道失败: %w", err)
		}
		provider = sp
	} else {
		logg.Warn(ctx, "未配置 Stripe 密钥，结账将不可用", nil)
	}

	handler := server.NewRouter(server.Deps{
		Logger:  logg,
		Painter: painter,
		Export:  engine,
		Assets:  lib,
		Drafts:  drafts,
		Carts:   cart.NewRegistry(),
		Checkout: checkout.NewService(repo, provider, checkout.Options{
			Currency: cfg.Stripe.Currency,
			Logger:   logg,
		}),
		Orders:         repo,
		MaxUploadBytes: int64(cfg.Assets.MaxUploadMB) << 20,
	})

	addr := ":" + cfg.App.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(logCtx, "HTTP 服务启动")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP 服务异常退出: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	logg.Info(logCtx, "HTTP 服务已停止")
	return nil
}
