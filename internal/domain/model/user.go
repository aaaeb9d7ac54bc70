package model

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleChef     Role = "CHEF"
	RoleAdmin    Role = "ADMIN"
)

// ユーザー本体の管理は外部サービス。ここでは参照だけ。
type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	Name         string `gorm:"type:varchar(255);not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'CUSTOMER'"`
	TokenVersion int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsChef() bool {
	return u.Role == RoleChef
}
