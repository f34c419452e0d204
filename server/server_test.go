package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	_ "image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/keepsake/assets"
	"github.com/ByLCY/keepsake/autosave"
	"github.com/ByLCY/keepsake/cart"
	"github.com/ByLCY/keepsake/checkout"
	"github.com/ByLCY/keepsake/config"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/export"
	"github.com/ByLCY/keepsake/orders"
	"github.com/ByLCY/keepsake/payments"
	canvasrenderer "github.com/ByLCY/keepsake/renderer/canvas"
)

type stubProvider struct {
	status string
}

func (s *stubProvider) CreateIntent(_ context.Context, req payments.IntentRequest) (payments.Intent, error) {
	return payments.Intent{ID: "pi_" + req.OrderNumber, ClientSecret: "secret", Status: payments.StatusRequiresPaymentMethod, AmountCents: req.AmountCents}, nil
}

func (s *stubProvider) GetIntent(_ context.Context, id string) (payments.Intent, error) {
	return payments.Intent{ID: id, Status: s.status}, nil
}

type fixture struct {
	handler  http.Handler
	repo     orders.Repository
	provider *stubProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lib := assets.NewLibrary(assets.Options{})
	painter := canvasrenderer.NewRenderer(lib)

	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := orders.Open(context.Background(), config.DBConfig{
		Driver:      "sqlite",
		DSN:         "file:" + name + "?mode=memory&cache=shared",
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo := orders.NewRepository(db)
	provider := &stubProvider{}

	h := NewRouter(Deps{
		Painter:  painter,
		Export:   export.NewEngine(painter, lib, export.Options{DPI: 30, BleedInches: 0.125}),
		Assets:   lib,
		Drafts:   autosave.New(autosave.NewMemoryStore(), autosave.Options{}),
		Carts:    cart.NewRegistry(),
		Checkout: checkout.NewService(repo, provider, checkout.Options{}),
		Orders:   repo,
	})
	return &fixture{handler: h, repo: repo, provider: provider}
}

func (f *fixture) do(t *testing.T, method, path, client string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if client != "" {
		req.Header.Set(clientIDHeader, client)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.NRGBA{R: 200, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestPreviewAndLayout(t *testing.T) {
	f := newFixture(t)
	doc := design.New(design.CardPaper, design.SizeStandard)
	doc.FrontName.Text = "Jane Doe"

	rec := f.do(t, http.MethodPost, "/v1/designs/preview", "", designRequest{Document: doc, View: "back"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, _, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 300, 450), img.Bounds())

	rec = f.do(t, http.MethodPost, "/v1/designs/layout", "", designRequest{Document: doc})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "Jane Doe")

	rec = f.do(t, http.MethodPost, "/v1/designs/preview", "", map[string]any{"document": doc, "view": "side"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestExportDesign(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/designs/export", "", design.New(design.CardMetal, design.SizeLarge))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "prayer-card-")
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	broken := design.New(design.CardPaper, design.SizeStandard)
	broken.QRCode.Source = "data:image/png;base64,@@@"
	rec = f.do(t, http.MethodPost, "/v1/designs/export", "", broken)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "RESOURCE_LOAD_ERROR", errorCode(t, rec))
}

func TestExportPrint(t *testing.T) {
	f := newFixture(t)
	p := design.NewPhotoPrint(assets.EncodeDataURL("image/png", pngBytes(t, 40, 30)), design.Print16x20)
	p.Frame = design.FrameBlack
	rec := f.do(t, http.MethodPost, "/v1/prints/export", "", p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "memorial-photo-")
}

func TestQRCode(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/qr", "", qrRequest{URL: "https://example.com/obituary/jane"})
	require.Equal(t, http.StatusOK, rec.Code)
	img, _, err := image.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())

	rec = f.do(t, http.MethodPost, "/v1/qr", "", qrRequest{URL: "not a url"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAsset(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/assets/logos?filename=logo.png", "", pngBytes(t, 4, 4))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out map[string]string
	decodeData(t, rec, &out)
	require.True(t, strings.HasPrefix(out["ref"], "data:image/png;base64,"))

	rec = f.do(t, http.MethodPost, "/v1/assets/logos", "", "plain text")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/assets/secrets", "", pngBytes(t, 4, 4))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDrafts(t *testing.T) {
	f := newFixture(t)
	doc := design.New(design.CardPaper, design.SizeStandard)
	doc.FrontName.Text = "Jane Doe"
	doc.FrontPhoto.Source = "data:image/png;base64,AAAA"

	rec := f.do(t, http.MethodPut, "/v1/drafts", "c1", doc)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/drafts", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got draftResponse
	decodeData(t, rec, &got)
	require.True(t, got.Found)
	require.Equal(t, "Jane Doe", got.Document.FrontName.Text)
	require.Empty(t, got.Document.FrontPhoto.Source)

	rec = f.do(t, http.MethodGet, "/v1/drafts", "c2", nil)
	decodeData(t, rec, &got)
	require.False(t, got.Found)

	rec = f.do(t, http.MethodDelete, "/v1/drafts", "c1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/v1/drafts", "c1", nil)
	got = draftResponse{}
	decodeData(t, rec, &got)
	require.False(t, got.Found)
}

type cartBody struct {
	Items  []cart.LineItem `json:"items"`
	Totals struct {
		Subtotal    decimal.Decimal `json:"subtotal"`
		AmountCents int64           `json:"amountCents"`
	} `json:"totals"`
}

func TestCartFlow(t *testing.T) {
	f := newFixture(t)
	doc := design.New(design.CardPaper, design.SizeStandard)

	rec := f.do(t, http.MethodPost, "/v1/cart/items", "c1", map[string]any{"productType": "card", "design": doc})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item cart.LineItem
	decodeData(t, rec, &item)
	require.True(t, decimal.RequireFromString("67.10").Equal(item.Price))

	rec = f.do(t, http.MethodGet, "/v1/cart", "c1", nil)
	var body cartBody
	decodeData(t, rec, &body)
	require.Len(t, body.Items, 1)
	require.Equal(t, int64(7846), body.Totals.AmountCents)

	rec = f.do(t, http.MethodGet, "/v1/cart?freeShipping=true", "c1", nil)
	decodeData(t, rec, &body)
	require.Equal(t, int64(7247), body.Totals.AmountCents)

	rec = f.do(t, http.MethodPatch, "/v1/cart/items/"+item.ID, "c1", map[string]any{"upsell": "upgrade_large"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &item)
	require.True(t, decimal.RequireFromString("74.10").Equal(item.Price))

	rec = f.do(t, http.MethodPatch, "/v1/cart/items/"+item.ID, "c1", map[string]any{"upsell": "upgrade_large"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPatch, "/v1/cart/items/"+item.ID, "c1", map[string]any{"upsell": "gift_wrap"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/cart", "c2", nil)
	body = cartBody{}
	decodeData(t, rec, &body)
	require.Empty(t, body.Items)

	rec = f.do(t, http.MethodPost, "/v1/cart/items", "c1", map[string]any{"productType": "photo_print", "design": design.NewPhotoPrint("x", design.Print18x24)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodDelete, "/v1/cart/items/"+item.ID, "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &body)
	require.Len(t, body.Items, 1)
	require.True(t, decimal.RequireFromString("59.99").Equal(body.Totals.Subtotal))

	rec = f.do(t, http.MethodDelete, "/v1/cart/items/missing", "c1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/cart/items", "c1", map[string]any{"productType": "poster", "design": map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutAndAdmin(t *testing.T) {
	f := newFixture(t)
	doc := design.New(design.CardPaper, design.SizeStandard)
	rec := f.do(t, http.MethodPost, "/v1/cart/items", "c1", map[string]any{"productType": "card", "design": doc})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/checkout", "c2", checkout.Request{})
	require.Equal(t, http.StatusBadRequest, rec.Code, "空购物车不能结账")

	rec = f.do(t, http.MethodPost, "/v1/checkout", "c1", checkout.Request{Email: "jane@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session checkout.Session
	decodeData(t, rec, &session)
	require.Equal(t, int64(7846), session.Totals.AmountCents)

	f.provider.status = payments.StatusRequiresPaymentMethod
	rec = f.do(t, http.MethodPost, "/v1/checkout/"+session.OrderNumber+"/confirm", "c1", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	rec = f.do(t, http.MethodGet, "/v1/cart", "c1", nil)
	var body cartBody
	decodeData(t, rec, &body)
	require.Len(t, body.Items, 1)

	f.provider.status = payments.StatusSucceeded
	rec = f.do(t, http.MethodPost, "/v1/checkout/"+session.OrderNumber+"/confirm", "c1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodGet, "/v1/cart", "c1", nil)
	body = cartBody{}
	decodeData(t, rec, &body)
	require.Empty(t, body.Items)

	rec = f.do(t, http.MethodGet, "/v1/admin/orders?status=processing&q=jane", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []orders.Order
	decodeData(t, rec, &list)
	require.Len(t, list, 1)
	require.Equal(t, session.OrderNumber, list[0].OrderNumber)

	rec = f.do(t, http.MethodGet, "/v1/admin/orders?status=lost", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/v1/admin/orders/"+session.OrderID+"/status", "", statusRequest{Status: "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var order orders.Order
	decodeData(t, rec, &order)
	require.Equal(t, orders.StatusShipped, order.Status)

	rec = f.do(t, http.MethodPatch, "/v1/admin/orders/"+session.OrderID+"/status", "", statusRequest{Status: "teleported"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/v1/admin/orders/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary orders.Summary
	decodeData(t, rec, &summary)
	require.Equal(t, orders.Summary{Total: 1, Shipped: 1}, summary)
}

func TestMissingDependencies(t *testing.T) {
	h := NewRouter(Deps{})
	for _, path := range []string{"/v1/drafts", "/v1/admin/orders"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/v1/qr", "", `{"url":"https://example.com","color":"red"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}
