package model

import "time"

// 注文の明細（名前と価格のスナップショット）
type OrderItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   string    `gorm:"type:varchar(36);not null;index" json:"-"`
	Position  int       `gorm:"not null" json:"-"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
