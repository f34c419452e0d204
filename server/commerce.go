package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/cart"
	"github.com/ByLCY/keepsake/checkout"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/orders"
	"github.com/ByLCY/keepsake/pricing"
)

type cartResponse struct {
	Items  []cart.LineItem `json:"items"`
	Totals pricing.Totals  `json:"totals"`
}

type addItemRequest struct {
	ProductType design.ProductType `json:"productType" validate:"required,oneof=card photo_print"`
	Design      json.RawMessage    `json:"design" validate:"required"`
	Quantity    int                `json:"quantity" validate:"omitempty,min=1,max=100000"`
}

type updateItemRequest struct {
	Quantity *int   `json:"quantity" validate:"omitempty,min=1,max=100000"`
	Upsell   string `json:"upsell" validate:"omitempty,oneof=upgrade_large toggle_premium add_extra_design remove_extra_design"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *handler) cartFor(w http.ResponseWriter, r *http.Request) *cart.Cart {
	return h.Carts.Get(clientID(w, r))
}

func (h *handler) writeCart(w http.ResponseWriter, r *http.Request, c *cart.Cart) {
	free, _ := strconv.ParseBool(r.URL.Query().Get("freeShipping"))
	writeSuccess(w, cartResponse{
		Items:  c.Items(),
		Totals: pricing.Checkout(c.Total(), free),
	})
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.cartFor(w, r))
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(w, r)
	c.Clear()
	h.writeCart(w, r, c)
}

func (h *handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(w, r)
	var req addItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}

	var (
		item cart.LineItem
		err  error
	)
	switch req.ProductType {
	case design.ProductCard:
		var doc design.Document
		if err := json.Unmarshal(req.Design, &doc); err != nil {
			writeError(r.Context(), h.Logger, w, apperrors.Wrap(apperrors.CodeValidation, err, "设计数据无法解析"))
			return
		}
		if req.Quantity > 0 {
			doc.Quantity = req.Quantity
		}
		item, err = c.AddCard(doc)
	default:
		var p design.PhotoPrint
		if err := json.Unmarshal(req.Design, &p); err != nil {
			writeError(r.Context(), h.Logger, w, apperrors.Wrap(apperrors.CodeValidation, err, "纪念照片数据无法解析"))
			return
		}
		item, err = c.AddPrint(p)
	}
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, item)
}

func (h *handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(w, r)
	id := chi.URLParam(r, "itemID")
	var req updateItemRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	if req.Quantity == nil && req.Upsell == "" {
		writeError(r.Context(), h.Logger, w, apperrors.Validation("没有需要更新的内容"))
		return
	}
	if req.Quantity != nil {
		if err := c.UpdateQuantity(id, *req.Quantity); err != nil {
			writeError(r.Context(), h.Logger, w, err)
			return
		}
	}
	if req.Upsell != "" {
		u, err := cart.ParseUpsell(req.Upsell)
		if err != nil {
			writeError(r.Context(), h.Logger, w, err)
			return
		}
		if _, err := c.ApplyUpsell(id, u); err != nil {
			writeError(r.Context(), h.Logger, w, err)
			return
		}
	}
	item, err := c.Get(id)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccess(w, item)
}

func (h *handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(w, r)
	if err := c.Remove(chi.URLParam(r, "itemID")); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	h.writeCart(w, r, c)
}

func (h *handler) startCheckout(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(w, r)
	if h.Checkout == nil {
		writeError(r.Context(), h.Logger, w, apperrors.New(apperrors.CodeDependency, "未配置结账服务"))
		return
	}
	var req checkout.Request
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	session, err := h.Checkout.Start(r.Context(), c, req)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, session)
}

func (h *handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	c := h.cartFor(w, r)
	if h.Checkout == nil {
		writeError(r.Context(), h.Logger, w, apperrors.New(apperrors.CodeDependency, "未配置结账服务"))
		return
	}
	order, err := h.Checkout.Confirm(r.Context(), c, chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccess(w, order)
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	if !h.ordersReady(w, r) {
		return
	}
	q := r.URL.Query()
	filter := orders.Filter{Query: q.Get("q")}
	if s := q.Get("status"); s != "" && s != "all" {
		st, err := orders.ParseStatus(s)
		if err != nil {
			writeError(r.Context(), h.Logger, w, err)
			return
		}
		filter.Status = st
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit"), 50); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	if filter.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	list, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	writeSuccess(w, list)
}

func (h *handler) orderSummary(w http.ResponseWriter, r *http.Request) {
	if !h.ordersReady(w, r) {
		return
	}
	s, err := h.Orders.Summary(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccess(w, s)
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !h.ordersReady(w, r) {
		return
	}
	var req statusRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	st, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Orders.UpdateStatus(r.Context(), id, st); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	order, err := h.Orders.FindByID(r.Context(), id)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccess(w, order)
}

func (h *handler) ordersReady(w http.ResponseWriter, r *http.Request) bool {
	if h.Orders == nil {
		writeError(r.Context(), h.Logger, w, apperrors.New(apperrors.CodeDependency, "未配置订单存储"))
		return false
	}
	return true
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperrors.Validation("参数 %q 必须为非负整数", raw)
	}
	return v, nil
}
