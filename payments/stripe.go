package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/ByLCY/keepsake/logger"
)

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeConfig 配置 StripeProvider。Intents 仅供测试注入。
type StripeConfig struct {
	APIKey   string
	Currency string
	Backends *stripe.Backends
	Logger   *logger.Logger
	Intents  stripePaymentIntentAPI
}

// StripeProvider 使用 Stripe PaymentIntents 实现 Provider。
type StripeProvider struct {
	intents  stripePaymentIntentAPI
	currency string
	log      *logger.Logger
}

// NewStripeProvider 创建 Stripe 支付通道。
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Intents == nil {
		return nil, errors.New("stripe: api key is required")
	}
	intents := cfg.Intents
	if intents == nil {
		intents = client.New(apiKey, cfg.Backends).PaymentIntents
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &StripeProvider{intents: intents, currency: currency, log: log}, nil
}

// CreateIntent 创建启用自动支付方式的支付意图，订单 ID 与订单号写入元数据。
func (p *StripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = p.currency
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if email := strings.TrimSpace(req.ReceiptEmail); email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("order_number", req.OrderNumber)

	pi, err := p.intents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	p.log.Info(p.log.WithFields(ctx, map[string]any{
		"paymentIntent": pi.ID,
		"orderNumber":   req.OrderNumber,
		"amount":        pi.Amount,
	}), "支付意图已创建")
	return toIntent(pi), nil
}

// GetIntent 查询支付意图的当前状态。
func (p *StripeProvider) GetIntent(ctx context.Context, id string) (Intent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Intent{}, errors.New("stripe: payment intent id is required")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.intents.Get(id, params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: get payment intent: %w", err)
	}
	return toIntent(pi), nil
}

func toIntent(pi *stripe.PaymentIntent) Intent {
	if pi == nil {
		return Intent{}
	}
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}
}
