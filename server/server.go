// Package server 提供设计预览、导出、购物车、结账与后台订单的 HTTP 接口。
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ByLCY/keepsake/assets"
	"github.com/ByLCY/keepsake/autosave"
	"github.com/ByLCY/keepsake/cart"
	"github.com/ByLCY/keepsake/checkout"
	"github.com/ByLCY/keepsake/export"
	"github.com/ByLCY/keepsake/logger"
	"github.com/ByLCY/keepsake/orders"
	canvasrenderer "github.com/ByLCY/keepsake/renderer/canvas"
)

// Deps 路由依赖。Drafts、Checkout 与 Orders 为空时对应接口返回依赖错误。
type Deps struct {
	Logger         *logger.Logger
	Painter        *canvasrenderer.Renderer
	Export         *export.Engine
	Assets         *assets.Library
	Drafts         *autosave.Service
	Carts          *cart.Registry
	Checkout       *checkout.Service
	Orders         orders.Repository
	MaxUploadBytes int64
}

type handler struct {
	Deps
}

// NewRouter 组装全部路由。
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Carts == nil {
		d.Carts = cart.NewRegistry()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	h := &handler{Deps: d}

	r := chi.NewRouter()
	r.Use(
		recoverer(d.Logger),
		requestID(d.Logger),
		requestLogger(d.Logger),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/designs", func(r chi.Router) {
			r.Post("/preview", h.previewDesign)
			r.Post("/layout", h.layoutDesign)
			r.Post("/export", h.exportDesign)
		})
		r.Post("/prints/export", h.exportPrint)
		r.Post("/qr", h.qrCode)
		r.Post("/assets/{folder}", h.uploadAsset)

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.loadDraft)
			r.Put("/", h.saveDraft)
			r.Delete("/", h.clearDraft)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{itemID}", h.updateCartItem)
			r.Delete("/items/{itemID}", h.removeCartItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.startCheckout)
			r.Post("/{orderNumber}/confirm", h.confirmCheckout)
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Get("/summary", h.orderSummary)
			r.Patch("/{id}/status", h.updateOrderStatus)
		})
	})
	return r
}
