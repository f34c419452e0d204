// Package cart 保存购物车行项目。行项目的设计数据是加入时冻结的不透明 JSON，
// 购物车只关心产品类别、数量与价格。
package cart

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/pricing"
)

// LineItem 是购物车中的一行。Price 为整行价格，已包含数量。
type LineItem struct {
	ID          string             `json:"id"`
	ProductType design.ProductType `json:"productType"`
	DesignData  json.RawMessage    `json:"designData"`
	Quantity    int                `json:"quantity"`
	Price       decimal.Decimal    `json:"price"`
}

func (li LineItem) clone() LineItem {
	out := li
	out.DesignData = append(json.RawMessage(nil), li.DesignData...)
	return out
}

// Cart 是一个有序的行项目列表，并发安全。
type Cart struct {
	mu    sync.RWMutex
	items []LineItem
}

// New 创建空购物车。
func New() *Cart {
	return &Cart{}
}

// Add 追加一个行项目并返回它的副本。未指定 ID 时生成新 ID。
func (c *Cart) Add(item LineItem) (LineItem, error) {
	if err := validate(item); err != nil {
		return LineItem{}, err
	}
	item = item.clone()
	if strings.TrimSpace(item.ID) == "" {
		item.ID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.items {
		if existing.ID == item.ID {
			return LineItem{}, apperrors.New(apperrors.CodeStateConflict, fmt.Sprintf("行项目 %s 已存在", item.ID))
		}
	}
	c.items = append(c.items, item)
	return item.clone(), nil
}

// AddCard 冻结设计快照并以计算出的价格加入购物车。
func (c *Cart) AddCard(doc design.Document) (LineItem, error) {
	snapshot := doc.Clone()
	if snapshot.Quantity <= 0 {
		snapshot.Quantity = design.DefaultQuantity
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return LineItem{}, fmt.Errorf("序列化设计失败: %w", err)
	}
	return c.Add(LineItem{
		ProductType: design.ProductCard,
		DesignData:  data,
		Quantity:    snapshot.Quantity,
		Price:       pricing.Card(snapshot),
	})
}

// AddPrint 以固定价格加入一张纪念照片。
func (c *Cart) AddPrint(p design.PhotoPrint) (LineItem, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return LineItem{}, fmt.Errorf("序列化纪念照片失败: %w", err)
	}
	return c.Add(LineItem{
		ProductType: design.ProductPhotoPrint,
		DesignData:  data,
		Quantity:    1,
		Price:       pricing.Print(p.Size),
	})
}

// Items 返回行项目副本，顺序即加入顺序。
func (c *Cart) Items() []LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LineItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}

// Get 按 ID 查找行项目。
func (c *Cart) Get(id string) (LineItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.index(id)
	if i < 0 {
		return LineItem{}, notFound(id)
	}
	return c.items[i].clone(), nil
}

// Remove 删除行项目，其余行保持原有顺序。
func (c *Cart) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return notFound(id)
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// UpdateQuantity 只修改数量，不重新计价。
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity <= 0 {
		return apperrors.Validation("数量必须为正数")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return notFound(id)
	}
	c.items[i].Quantity = quantity
	return nil
}

// Replace 用新的设计数据与价格整体替换一个行项目的内容，ID 与产品类别不变。
func (c *Cart) Replace(id string, data json.RawMessage, price decimal.Decimal) (LineItem, error) {
	if price.IsNegative() {
		return LineItem{}, apperrors.Validation("价格不能为负数")
	}
	if !json.Valid(data) {
		return LineItem{}, apperrors.Validation("设计数据不是合法的 JSON")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.index(id)
	if i < 0 {
		return LineItem{}, notFound(id)
	}
	c.items[i].DesignData = append(json.RawMessage(nil), data...)
	c.items[i].Price = price
	return c.items[i].clone(), nil
}

// Clear 清空购物车。
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Len 返回行数。
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Total 返回所有行价格之和。
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price)
	}
	return total
}

func (c *Cart) index(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func validate(item LineItem) error {
	switch item.ProductType {
	case design.ProductCard, design.ProductPhotoPrint:
	default:
		return apperrors.Validation("未知的产品类别 %q", item.ProductType)
	}
	if item.Quantity <= 0 {
		return apperrors.Validation("数量必须为正数")
	}
	if item.Price.IsNegative() {
		return apperrors.Validation("价格不能为负数")
	}
	if len(item.DesignData) == 0 || !json.Valid(item.DesignData) {
		return apperrors.Validation("设计数据不是合法的 JSON")
	}
	return nil
}

func notFound(id string) error {
	return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("购物车中没有行项目 %s", id))
}
