// Package checkout 编排结账：计算合计 → 创建待支付订单 → 创建支付意图 → 确认。
// 只有确认支付成功后才清空购物车；任何失败都保持购物车原样并直接返回给调用方，不做重试。
package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/cart"
	"github.com/ByLCY/keepsake/logger"
	"github.com/ByLCY/keepsake/orders"
	"github.com/ByLCY/keepsake/payments"
	"github.com/ByLCY/keepsake/pricing"
)

// Request 发起结账的参数。FreeShipping 对应殡仪馆订单。
type Request struct {
	Email           string          `json:"email" validate:"omitempty,email,max=320"`
	FreeShipping    bool            `json:"freeShipping"`
	FuneralHomeID   string          `json:"funeralHomeId" validate:"omitempty,max=64"`
	UserID          string          `json:"userId" validate:"omitempty,max=64"`
	ShippingAddress *orders.Address `json:"shippingAddress"`
}

// Session 前端完成支付所需的信息。
type Session struct {
	OrderID         string         `json:"orderId"`
	OrderNumber     string         `json:"orderNumber"`
	PaymentIntentID string         `json:"paymentIntentId"`
	ClientSecret    string         `json:"clientSecret"`
	Totals          pricing.Totals `json:"totals"`
}

// Options 配置结账服务。
type Options struct {
	Currency string
	Now      func() time.Time
	Logger   *logger.Logger
}

// Service 结账服务。
type Service struct {
	orders   orders.Repository
	payments payments.Provider
	validate *validator.Validate
	currency string
	now      func() time.Time
	log      *logger.Logger
}

// NewService 创建结账服务。
func NewService(repo orders.Repository, provider payments.Provider, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &Service{
		orders:   repo,
		payments: provider,
		validate: newValidator(),
		currency: opts.Currency,
		now:      opts.Now,
		log:      opts.Logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Quote 计算购物车的结账合计，不产生任何副作用。
func (s *Service) Quote(c *cart.Cart, freeShipping bool) pricing.Totals {
	return pricing.Checkout(c.Total(), freeShipping)
}

// Start 为购物车创建待支付订单与支付意图。购物车不会被修改。
func (s *Service) Start(ctx context.Context, c *cart.Cart, req Request) (*Session, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	items := c.Items()
	if len(items) == 0 {
		return nil, apperrors.Validation("购物车为空")
	}
	totals := s.Quote(c, req.FreeShipping)
	if err := pricing.ValidateAmount(totals.AmountCents); err != nil {
		return nil, err
	}

	order := &orders.Order{
		OrderNumber:     orders.NewNumber(s.now()),
		Items:           items,
		TotalCents:      totals.AmountCents,
		CustomerEmail:   strings.TrimSpace(req.Email),
		ShippingAddress: req.ShippingAddress,
		Status:          orders.StatusPendingPayment,
		FreeShipping:    req.FreeShipping,
		PaymentStatus:   payments.StatusRequiresPaymentMethod,
	}
	if req.UserID != "" {
		order.UserID = &req.UserID
	}
	if req.FreeShipping && req.FuneralHomeID != "" {
		order.FuneralHomeID = &req.FuneralHomeID
	}

	ctx = s.log.WithOrderNumber(ctx, order.OrderNumber)
	if err := s.orders.Create(ctx, order); err != nil {
		s.log.Error(ctx, "创建订单失败", err)
		return nil, dependency(err, "创建订单失败")
	}

	intent, err := s.payments.CreateIntent(ctx, payments.IntentRequest{
		AmountCents:    totals.AmountCents,
		Currency:       s.currency,
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		ReceiptEmail:   order.CustomerEmail,
		IdempotencyKey: order.OrderNumber,
	})
	if err != nil {
		s.log.Error(ctx, "创建支付意图失败", err)
		return nil, dependency(err, "创建支付失败")
	}

	if err := s.orders.UpdatePayment(ctx, order.ID, orders.PaymentUpdate{
		IntentID:      intent.ID,
		PaymentStatus: intent.Status,
	}); err != nil {
		s.log.Error(ctx, "保存支付意图失败", err)
		return nil, dependency(err, "保存支付信息失败")
	}

	s.log.Info(s.log.WithField(ctx, "amount", totals.AmountCents), "结账已发起")
	return &Session{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Totals:          totals,
	}, nil
}

// Confirm 查询支付结果并推进订单状态。成功时订单进入 processing 并清空购物车；
// 支付被取消时订单标记为 payment_failed；其他状态视为尚未完成，购物车与订单均保持不变。
func (s *Service) Confirm(ctx context.Context, c *cart.Cart, orderNumber string) (*orders.Order, error) {
	ctx = s.log.WithOrderNumber(ctx, orderNumber)
	order, err := s.orders.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if order.PaymentIntentID == "" {
		return nil, apperrors.New(apperrors.CodeStateConflict, "订单尚未创建支付")
	}
	if order.Status == orders.StatusProcessing {
		return order, nil
	}

	intent, err := s.payments.GetIntent(ctx, order.PaymentIntentID)
	if err != nil {
		s.log.Error(ctx, "查询支付结果失败", err)
		return nil, dependency(err, "查询支付结果失败")
	}

	switch {
	case intent.Succeeded():
		if err := s.orders.UpdatePayment(ctx, order.ID, orders.PaymentUpdate{
			PaymentStatus: intent.Status,
			Status:        orders.StatusProcessing,
		}); err != nil {
			s.log.Error(ctx, "更新订单状态失败", err)
			return nil, dependency(err, "更新订单失败")
		}
		c.Clear()
		order.Status = orders.StatusProcessing
		order.PaymentStatus = intent.Status
		s.log.Info(ctx, "支付成功，订单进入处理")
		return order, nil
	case intent.Failed():
		if err := s.orders.UpdatePayment(ctx, order.ID, orders.PaymentUpdate{
			PaymentStatus: intent.Status,
			Status:        orders.StatusPaymentFailed,
		}); err != nil {
			return nil, dependency(err, "更新订单失败")
		}
		s.log.Warn(ctx, "支付失败", nil)
		return nil, apperrors.New(apperrors.CodeStateConflict, "支付失败").WithDetails(map[string]any{"paymentStatus": intent.Status})
	default:
		return nil, apperrors.New(apperrors.CodeStateConflict, "支付尚未完成").WithDetails(map[string]any{"paymentStatus": intent.Status})
	}
}

func dependency(err error, message string) error {
	if typed := apperrors.As(err); typed != nil && typed.Code() != apperrors.CodeInternal {
		return err
	}
	return apperrors.Wrap(apperrors.CodeDependency, err, message)
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		for _, fe := range errs {
			details[fe.Field()] = fmt.Sprintf("不满足 %s 约束", fe.Tag())
		}
		return apperrors.New(apperrors.CodeValidation, "请求参数校验失败").WithDetails(details)
	}
	return apperrors.Wrap(apperrors.CodeValidation, err, "请求参数校验失败")
}
