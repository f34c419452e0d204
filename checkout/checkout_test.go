package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/cart"
	"github.com/ByLCY/keepsake/config"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/orders"
	"github.com/ByLCY/keepsake/payments"
)

type fakeProvider struct {
	requests  []payments.IntentRequest
	status    string
	createErr error
}

func (f *fakeProvider) CreateIntent(_ context.Context, req payments.IntentRequest) (payments.Intent, error) {
	if f.createErr != nil {
		return payments.Intent{}, f.createErr
	}
	f.requests = append(f.requests, req)
	return payments.Intent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret",
		Status:       payments.StatusRequiresPaymentMethod,
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
	}, nil
}

func (f *fakeProvider) GetIntent(_ context.Context, id string) (payments.Intent, error) {
	return payments.Intent{ID: id, Status: f.status}, nil
}

type failingRepo struct {
	orders.Repository
}

func (failingRepo) Create(context.Context, *orders.Order) error {
	return errors.New("connection refused")
}

func setup(t *testing.T) (orders.Repository, *fakeProvider, *Service) {
	t.Helper()
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
	provider := &fakeProvider{}
	svc := NewService(repo, provider, Options{Now: func() time.Time { return time.UnixMilli(1700000000000) }})
	return repo, provider, svc
}

func cardCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New()
	_, err := c.AddCard(design.New(design.CardPaper, design.SizeStandard))
	require.NoError(t, err)
	return c
}

func TestStartCreatesPendingOrderBeforeIntent(t *testing.T) {
	repo, provider, svc := setup(t)
	c := cardCart(t)

	session, err := svc.Start(context.Background(), c, Request{Email: "jane@example.com"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(session.OrderNumber, "LPC-1700000000000-"))
	require.Equal(t, "pi_1_secret", session.ClientSecret)
	require.Equal(t, int64(7846), session.Totals.AmountCents)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	require.Equal(t, int64(7846), req.AmountCents)
	require.Equal(t, session.OrderID, req.OrderID)
	require.Equal(t, session.OrderNumber, req.OrderNumber)
	require.Equal(t, "usd", req.Currency)

	order, err := repo.FindByNumber(context.Background(), session.OrderNumber)
	require.NoError(t, err)
	require.Equal(t, orders.StatusPendingPayment, order.Status)
	require.Equal(t, "pi_1", order.PaymentIntentID)
	require.Equal(t, int64(7846), order.TotalCents)
	require.Len(t, order.Items, 1)

	require.Equal(t, 1, c.Len(), "发起结账不应清空购物车")
}

func TestStartFreeShippingForFuneralHome(t *testing.T) {
	repo, _, svc := setup(t)
	session, err := svc.Start(context.Background(), cardCart(t), Request{FreeShipping: true, FuneralHomeID: "fh-1"})
	require.NoError(t, err)
	require.Equal(t, int64(7247), session.Totals.AmountCents)

	order, err := repo.FindByNumber(context.Background(), session.OrderNumber)
	require.NoError(t, err)
	require.True(t, order.FreeShipping)
	require.Equal(t, "fh-1", *order.FuneralHomeID)
}

func TestStartValidation(t *testing.T) {
	_, provider, svc := setup(t)

	_, err := svc.Start(context.Background(), cart.New(), Request{})
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = svc.Start(context.Background(), cardCart(t), Request{Email: "not-an-email"})
	require.True(t, apperrors.Is(err, apperrors.CodeValidation))
	details, ok := apperrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "email")

	tiny := cart.New()
	_, err = tiny.Add(cart.LineItem{ProductType: design.ProductCard, DesignData: json.RawMessage(`{}`), Quantity: 1, Price: decimal.RequireFromString("0.40")})
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), tiny, Request{FreeShipping: true})
	require.True(t, apperrors.Is(err, apperrors.CodeValidation), "0.43 美元低于最低收费")

	require.Empty(t, provider.requests)
}

func TestStartPaymentFailureKeepsCart(t *testing.T) {
	repo, provider, svc := setup(t)
	provider.createErr = errors.New("stripe down")
	c := cardCart(t)

	_, err := svc.Start(context.Background(), c, Request{})
	require.True(t, apperrors.Is(err, apperrors.CodeDependency))
	require.Equal(t, 1, c.Len())

	list, err := repo.List(context.Background(), orders.Filter{Status: orders.StatusPendingPayment})
	require.NoError(t, err)
	require.Len(t, list, 1, "订单先于支付意图创建")
}

func TestStartOrderFailureSkipsPayment(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewService(failingRepo{}, provider, Options{})
	_, err := svc.Start(context.Background(), cardCart(t), Request{})
	require.True(t, apperrors.Is(err, apperrors.CodeDependency))
	require.Empty(t, provider.requests)
}

func TestConfirm(t *testing.T) {
	repo, provider, svc := setup(t)
	ctx := context.Background()
	c := cardCart(t)
	session, err := svc.Start(ctx, c, Request{})
	require.NoError(t, err)

	provider.status = payments.StatusRequiresPaymentMethod
	_, err = svc.Confirm(ctx, c, session.OrderNumber)
	require.True(t, apperrors.Is(err, apperrors.CodeStateConflict))
	require.Equal(t, 1, c.Len())

	provider.status = payments.StatusSucceeded
	order, err := svc.Confirm(ctx, c, session.OrderNumber)
	require.NoError(t, err)
	require.Equal(t, orders.StatusProcessing, order.Status)
	require.Zero(t, c.Len(), "支付成功后清空购物车")

	stored, err := repo.FindByNumber(ctx, session.OrderNumber)
	require.NoError(t, err)
	require.Equal(t, orders.StatusProcessing, stored.Status)
	require.Equal(t, payments.StatusSucceeded, stored.PaymentStatus)

	_, err = svc.Confirm(ctx, c, "LPC-0-NOTHERE00")
	require.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestConfirmCanceledMarksFailure(t *testing.T) {
	repo, provider, svc := setup(t)
	ctx := context.Background()
	c := cardCart(t)
	session, err := svc.Start(ctx, c, Request{})
	require.NoError(t, err)

	provider.status = payments.StatusCanceled
	_, err = svc.Confirm(ctx, c, session.OrderNumber)
	require.True(t, apperrors.Is(err, apperrors.CodeStateConflict))
	require.Equal(t, 1, c.Len())

	stored, err := repo.FindByNumber(ctx, session.OrderNumber)
	require.NoError(t, err)
	require.Equal(t, orders.StatusPaymentFailed, stored.Status)
}
