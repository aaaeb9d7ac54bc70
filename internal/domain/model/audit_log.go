package model

import (
	"encoding/json"
	"time"
)

// 注文ステータスの遷移ごとに1件。
type AuditAction string

const (
	AuditActionOrderCreated   AuditAction = "ORDER_CREATED"
	AuditActionOrderAccepted  AuditAction = "ORDER_ACCEPTED"
	AuditActionOrderRejected  AuditAction = "ORDER_REJECTED"
	AuditActionOrderExpired   AuditAction = "ORDER_EXPIRED"
	AuditActionOrderCompleted AuditAction = "ORDER_COMPLETED"
)

// 何に対する操作か
type AuditResourceType string

const (
	//注文に対する操作。
	AuditResourceOrder AuditResourceType = "order"
)

// スイープなどシステムが行った操作のactor
const AuditActorSystem = "system"

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。追記のみ。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID（シェフ/顧客）またはsystem。
	ActorUserID string `gorm:"type:varchar(36);not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// ステータス遷移の監査ログを組み立てる
func NewOrderStatusAudit(actor string, action AuditAction, orderID string, before, after OrderStatus, now time.Time) AuditLog {
	b := ""
	if before != "" {
		b = `{"status":"` + string(before) + `"}`
	}
	return AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   b,
		AfterJSON:    `{"status":"` + string(after) + `"}`,
		CreatedAt:    now,
	}
}

type statusSnapshot struct {
	Status OrderStatus `json:"status"`
}

// BeforeJSON/AfterJSONからステータスを取り出す。読めない側は空文字。
func (l AuditLog) StatusChange() (before, after OrderStatus) {
	return snapshotStatus(l.BeforeJSON), snapshotStatus(l.AfterJSON)
}

func snapshotStatus(raw string) OrderStatus {
	if raw == "" {
		return ""
	}
	var s statusSnapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return ""
	}
	return s.Status
}
