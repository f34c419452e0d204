package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ByLCY/keepsake/apperrors"
)

// Repository 订单持久化操作。
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdatePayment(ctx context.Context, id string, update PaymentUpdate) error
	Summary(ctx context.Context) (Summary, error)
}

// PaymentUpdate 记录支付意图的进展；Status 为空时不改订单状态。
type PaymentUpdate struct {
	IntentID      string
	PaymentStatus string
	Status        Status
}

type repository struct {
	db *gorm.DB
}

// NewRepository 创建绑定到 db 的订单仓库。
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, order *Order) error {
	if order == nil {
		return apperrors.Validation("订单为空")
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = StatusPending
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "创建订单失败")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) FindByNumber(ctx context.Context, number string) (*Order, error) {
	return r.first(ctx, "order_number = ?", number)
}

func (r *repository) first(ctx context.Context, query string, arg any) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Where(query, arg).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("订单 %v 不存在", arg))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "查询订单失败")
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Order, error) {
	q := r.db.WithContext(ctx).Model(&Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(order_number) LIKE ? OR LOWER(customer_email) LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var out []Order
	if err := q.Order("created_at DESC").Order("order_number DESC").Find(&out).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "查询订单列表失败")
	}
	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	return r.update(ctx, id, map[string]any{"status": status})
}

func (r *repository) UpdatePayment(ctx context.Context, id string, update PaymentUpdate) error {
	updates := map[string]any{}
	if update.IntentID != "" {
		updates["payment_intent_id"] = update.IntentID
	}
	if update.PaymentStatus != "" {
		updates["payment_status"] = update.PaymentStatus
	}
	if update.Status != "" {
		updates["status"] = update.Status
	}
	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, id, updates)
}

func (r *repository) update(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.CodeDependency, res.Error, "更新订单失败")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("订单 %s 不存在", id))
	}
	return nil
}

func (r *repository) Summary(ctx context.Context) (Summary, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.CodeDependency, err, "统计订单失败")
	}

	var s Summary
	for _, row := range rows {
		s.Total += row.Count
		switch row.Status {
		case StatusPending, StatusPendingPayment:
			s.Pending += row.Count
		case StatusProcessing:
			s.Processing += row.Count
		case StatusShipped:
			s.Shipped += row.Count
		case StatusPaymentFailed:
			s.PaymentFailed += row.Count
		}
	}
	return s, nil
}
