// Package payments 封装支付通道。核心只负责传入正确的金额（分）与订单标识，
// 并在确认成功之前不清空购物车。
package payments

import (
	"context"
	"errors"
)

// 支付意图状态，取值与 Stripe 一致。
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusRequiresAction        = "requires_action"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// ErrProviderUnavailable 未配置支付通道。
var ErrProviderUnavailable = errors.New("payments: provider unavailable")

// IntentRequest 创建支付意图的参数。
type IntentRequest struct {
	AmountCents    int64
	Currency       string
	OrderID        string
	OrderNumber    string
	ReceiptEmail   string
	IdempotencyKey string
}

// Intent 客户端确认支付所需的句柄。
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
}

// Succeeded 报告支付是否已完成。
func (i Intent) Succeeded() bool { return i.Status == StatusSucceeded }

// Failed 报告支付是否已终止。
func (i Intent) Failed() bool { return i.Status == StatusCanceled }

// Provider 支付通道。
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	GetIntent(ctx context.Context, id string) (Intent, error)
}

// Unavailable 在未配置支付密钥时使用，所有调用都返回 ErrProviderUnavailable。
type Unavailable struct{}

func (Unavailable) CreateIntent(context.Context, IntentRequest) (Intent, error) {
	return Intent{}, ErrProviderUnavailable
}

func (Unavailable) GetIntent(context.Context, string) (Intent, error) {
	return Intent{}, ErrProviderUnavailable
}
