package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/pricing"
)

// Upsell 卡片行项目的加购操作。
type Upsell string

const (
	UpgradeLarge      Upsell = "upgrade_large"
	TogglePremium     Upsell = "toggle_premium"
	AddExtraDesign    Upsell = "add_extra_design"
	RemoveExtraDesign Upsell = "remove_extra_design"
)

// ParseUpsell 校验加购操作名。
func ParseUpsell(s string) (Upsell, error) {
	switch u := Upsell(s); u {
	case UpgradeLarge, TogglePremium, AddExtraDesign, RemoveExtraDesign:
		return u, nil
	}
	return "", apperrors.Validation("未知的加购操作 %q", s)
}

// ApplyUpsell 对卡片行项目执行一次加购，调整价格并整体替换设计数据。
// 设计数据中的其他字段原样保留。
func (c *Cart) ApplyUpsell(id string, u Upsell) (LineItem, error) {
	item, err := c.Get(id)
	if err != nil {
		return LineItem{}, err
	}
	if item.ProductType != design.ProductCard {
		return LineItem{}, apperrors.Validation("只有卡片可以加购")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item.DesignData, &fields); err != nil {
		return LineItem{}, apperrors.Validation("设计数据不是 JSON 对象")
	}
	var (
		size    design.CardSize
		premium bool
		extras  int
	)
	if raw, ok := fields["cardSize"]; ok {
		_ = json.Unmarshal(raw, &size)
	}
	if raw, ok := fields["premiumThickness"]; ok {
		_ = json.Unmarshal(raw, &premium)
	}
	if raw, ok := fields["extraDesigns"]; ok {
		_ = json.Unmarshal(raw, &extras)
	}

	price := item.Price
	switch u {
	case UpgradeLarge:
		if size == design.SizeLarge {
			return LineItem{}, apperrors.New(apperrors.CodeStateConflict, "已经是大尺寸")
		}
		fields["cardSize"] = mustJSON(design.SizeLarge)
		price = price.Add(pricing.LargeSurcharge)
	case TogglePremium:
		if premium {
			price = floor(price.Sub(pricing.PremiumThickness))
		} else {
			price = price.Add(pricing.PremiumThickness)
		}
		fields["premiumThickness"] = mustJSON(!premium)
	case AddExtraDesign:
		fields["extraDesigns"] = mustJSON(extras + 1)
		price = price.Add(pricing.ExtraDesign)
	case RemoveExtraDesign:
		if extras <= 0 {
			return LineItem{}, apperrors.New(apperrors.CodeStateConflict, "没有可移除的额外设计")
		}
		fields["extraDesigns"] = mustJSON(extras - 1)
		price = floor(price.Sub(pricing.ExtraDesign))
	default:
		return LineItem{}, apperrors.Validation("未知的加购操作 %q", u)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return LineItem{}, fmt.Errorf("序列化设计数据失败: %w", err)
	}
	return c.Replace(id, data, price)
}

func floor(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
