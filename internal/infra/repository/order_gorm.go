package repository

import (
	"context"
	"errors"
	"time"

	"chefconnect/internal/domain/model"
	repo "chefconnect/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) error {
	return r.db.WithContext(ctx).Create(&order).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListPendingByChef(ctx context.Context, chefID string, now time.Time) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where("chef_id = ? AND status = ? AND timer_expiry > ?", chefID, model.OrderStatusPending, now).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}

// 読んでから書くのではなく、WHEREに現在ステータスを入れて1文で更新する
func (r *OrderGormRepository) TransitionStatus(
	ctx context.Context,
	orderID string,
	chefID string,
	from model.OrderStatus,
	to model.OrderStatus,
	now time.Time,
) (model.Order, bool, error) {
	var updated []model.Order
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ? AND chef_id = ? AND status = ?", orderID, chefID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		})

	if res.Error != nil {
		return model.Order{}, false, res.Error
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return model.Order{}, false, nil
	}
	return updated[0], true, nil
}

func (r *OrderGormRepository) CancelExpired(ctx context.Context, f repo.ExpiredOrderFilter) ([]model.Order, error) {
	var cancelled []model.Order
	q := r.db.WithContext(ctx).
		Model(&cancelled).
		Clauses(clause.Returning{}).
		Where("status = ? AND timer_expiry <= ?", model.OrderStatusPending, f.Now)

	//シェフ単位（一覧取得時の遅延スイープ）
	if f.ChefID != "" {
		q = q.Where("chef_id = ?", f.ChefID)
	}

	res := q.Updates(map[string]interface{}{
		"status":     model.OrderStatusCancelled,
		"updated_at": f.Now,
	})
	if res.Error != nil {
		return []model.Order{}, res.Error
	}
	return cancelled, nil
}
