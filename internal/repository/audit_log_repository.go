package repository

import (
	"context"

	"chefconnect/internal/domain/model"
)

// 履歴の絞り込み（対象1件分）
type AuditTrailFilter struct {
	ResourceType model.AuditResourceType
	ResourceID   string
	//0なら上限なし
	Limit int
}

// 監査ログは追記のみ。読むのは注文履歴だけ。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//複数件まとめて保存（スイープ用）
	CreateBulk(ctx context.Context, logs []model.AuditLog) error

	//対象の監査ログを古い順に返す
	ListTrail(ctx context.Context, filter AuditTrailFilter) ([]model.AuditLog, error)
}
