package repository

import (
	"context"

	"chefconnect/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error
	//order_id -> 明細（position順）
	ListByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]model.OrderItem, error)
}
