// Package orders 持久化订单记录：生成订单号，维护状态枚举，并为后台提供筛选、搜索与汇总。
package orders

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/cart"
)

// Status 订单状态。
type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingPayment Status = "pending_payment"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusPaymentFailed  Status = "payment_failed"
)

// Statuses 全部状态，顺序与后台下拉框一致。
var Statuses = []Status{
	StatusPending,
	StatusPendingPayment,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusPaymentFailed,
}

// ParseStatus 校验状态取值；订单状态不做宽松回退。
func ParseStatus(s string) (Status, error) {
	v := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Statuses {
		if v == st {
			return st, nil
		}
	}
	return "", apperrors.Validation("未知的订单状态 %q", s)
}

// NumberPrefix 订单号前缀。
const NumberPrefix = "LPC"

const suffixLen = 9

// NewNumber 生成形如 LPC-<毫秒时间戳>-<9 位大写 36 进制随机串> 的订单号。
func NewNumber(now time.Time) string {
	id := uuid.New()
	suffix := strings.ToUpper(new(big.Int).SetBytes(id[:]).Text(36))
	if len(suffix) > suffixLen {
		suffix = suffix[len(suffix)-suffixLen:]
	}
	suffix = strings.Repeat("0", suffixLen-len(suffix)) + suffix
	return fmt.Sprintf("%s-%d-%s", NumberPrefix, now.UnixMilli(), suffix)
}

// Address 收货地址。
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Order 一笔订单。Items 为下单时购物车行项目的快照。
type Order struct {
	ID              string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"orderNumber"`
	UserID          *string         `gorm:"type:varchar(64)" json:"userId,omitempty"`
	Items           []cart.LineItem `gorm:"type:text;serializer:json" json:"items"`
	TotalCents      int64           `gorm:"not null" json:"totalCents"`
	CustomerEmail   string          `gorm:"type:varchar(320);index" json:"customerEmail,omitempty"`
	ShippingAddress *Address        `gorm:"type:text;serializer:json" json:"shippingAddress,omitempty"`
	Status          Status          `gorm:"type:varchar(32);index;not null" json:"status"`
	FreeShipping    bool            `gorm:"not null;default:false" json:"freeShipping"`
	FuneralHomeID   *string         `gorm:"type:varchar(64)" json:"funeralHomeId,omitempty"`
	PaymentIntentID string          `gorm:"type:varchar(255)" json:"paymentIntentId,omitempty"`
	PaymentStatus   string          `gorm:"type:varchar(64)" json:"paymentStatus,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Total 以金额形式返回订单合计。
func (o Order) Total() decimal.Decimal {
	return decimal.New(o.TotalCents, -2)
}

// Summary 后台看板的状态计数。Pending 同时统计 pending 与 pending_payment。
type Summary struct {
	Total         int64 `json:"total"`
	Pending       int64 `json:"pending"`
	Processing    int64 `json:"processing"`
	Shipped       int64 `json:"shipped"`
	PaymentFailed int64 `json:"paymentFailed"`
}

// Filter 后台订单列表的筛选条件。Query 匹配订单号或邮箱，不区分大小写。
type Filter struct {
	Status Status
	Query  string
	Limit  int
	Offset int
}
