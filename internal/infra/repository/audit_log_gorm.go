package repository

import (
	"context"

	"chefconnect/internal/domain/model"
	repo "chefconnect/internal/repository"

	"gorm.io/gorm"
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) CreateBulk(ctx context.Context, logs []model.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

func (r *auditLogGormRepository) ListTrail(ctx context.Context, f repo.AuditTrailFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", f.ResourceType, f.ResourceID).
		//同じ時刻の行は挿入順
		Order("created_at asc, id asc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	logs := []model.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
