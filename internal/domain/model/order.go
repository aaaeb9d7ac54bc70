package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// 注文作成からシェフが応答できる時間（固定）
const OrderTimerWindow = 5 * time.Minute

// CANCELLED/COMPLETEDからは遷移しない
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusCompleted
}

// 許可された遷移だけtrue。PENDINGへ戻る遷移は存在しない。
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed || next == OrderStatusCancelled
	case OrderStatusConfirmed:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

type Order struct {
	ID             string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerID     string      `gorm:"type:varchar(36);not null;index" json:"customer_id"`
	ChefID         string      `gorm:"type:varchar(36);not null;index:idx_orders_chef_status" json:"chef_id"`
	NumberOfPeople int         `gorm:"not null" json:"number_of_people"`
	SelectedDay    string      `gorm:"type:varchar(64);not null" json:"selected_day"`
	SelectedHours  []string    `gorm:"serializer:json;type:text;not null" json:"selected_hours"`
	TotalBill      int64       `gorm:"not null" json:"total_bill"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index:idx_orders_chef_status;index:idx_orders_status_expiry" json:"status"`
	TimerExpiry    time.Time   `gorm:"not null;index:idx_orders_status_expiry" json:"timer_expiry"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}

// 作成時刻から期限を決める。期限は以後変更しない。
func NewPendingOrder(id string, now time.Time) Order {
	return Order{
		ID:          id,
		Status:      OrderStatusPending,
		TimerExpiry: now.Add(OrderTimerWindow),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// 期限切れかどうか（期限ちょうども期限切れ扱い）
func (o Order) IsExpired(now time.Time) bool {
	return !o.TimerExpiry.After(now)
}
