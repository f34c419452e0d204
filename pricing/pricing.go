// Package pricing 计算卡片、纪念照片与结账合计。所有金额使用十进制定点数，最终以分为单位交给支付。
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
)

// MinimumChargeCents 支付通道接受的最低金额（分）。
const MinimumChargeCents int64 = 50

var (
	PaperPerCard     = decimal.RequireFromString("1.22")
	MetalPerCard     = decimal.RequireFromString("1.76")
	LargeSurcharge   = decimal.NewFromInt(7)
	PremiumThickness = decimal.NewFromInt(5)
	ExtraDesign      = decimal.NewFromInt(10)
	Print16x20       = decimal.RequireFromString("49.99")
	Print18x24       = decimal.RequireFromString("59.99")
	StandardShipping = decimal.RequireFromString("5.99")
	TaxRate          = decimal.RequireFromString("0.08")
)

var hundred = decimal.NewFromInt(100)

// PerCard 返回材质对应的单张基础价格。
func PerCard(t design.CardType) decimal.Decimal {
	if design.ParseCardType(string(t)) == design.CardMetal {
		return MetalPerCard
	}
	return PaperPerCard
}

// Card 计算一个卡片行项目的价格：单价 × 数量 + 尺寸加价 + 加厚 + 额外设计。
// 数量缺省时按默认印数计。
func Card(doc design.Document) decimal.Decimal {
	qty := doc.Quantity
	if qty <= 0 {
		qty = design.DefaultQuantity
	}
	total := PerCard(doc.CardType).Mul(decimal.NewFromInt(int64(qty)))
	if design.ParseCardSize(string(doc.CardSize)) == design.SizeLarge {
		total = total.Add(LargeSurcharge)
	}
	if doc.PremiumThickness {
		total = total.Add(PremiumThickness)
	}
	if doc.ExtraDesigns > 0 {
		total = total.Add(ExtraDesign.Mul(decimal.NewFromInt(int64(doc.ExtraDesigns))))
	}
	return total
}

// Print 返回纪念照片的固定价格。
func Print(size design.PrintSize) decimal.Decimal {
	if design.ParsePrintSize(string(size)) == design.Print18x24 {
		return Print18x24
	}
	return Print16x20
}

// Totals 结账合计。
type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Shipping    decimal.Decimal `json:"shipping"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	AmountCents int64           `json:"amountCents"`
}

// Checkout 计算合计：免运费（殡仪馆订单）时运费为 0，税为小计的 8%。
func Checkout(subtotal decimal.Decimal, freeShipping bool) Totals {
	shipping := StandardShipping
	if freeShipping {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate)
	total := subtotal.Add(shipping).Add(tax)
	return Totals{
		Subtotal:    subtotal,
		Shipping:    shipping,
		Tax:         tax,
		Total:       total,
		AmountCents: Cents(total),
	}
}

// Cents 将金额换算为分，半数远离零取整。
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents 将分换算回金额。
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ValidateAmount 低于最低收费额的金额不能发起支付。
func ValidateAmount(cents int64) error {
	if cents < MinimumChargeCents {
		return apperrors.Validation("金额 %d 分低于最低收费 %d 分", cents, MinimumChargeCents)
	}
	return nil
}

// Format 以美元格式输出金额，例如 $5.99。
func Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
