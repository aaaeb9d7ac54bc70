package repository

import (
	"chefconnect/internal/domain/model"
	"context"
)

// 参照だけを約束（ユーザー管理は外部）
type UserRepository interface {
	// IDからユーザーを1件取得する。いなければnil, nil。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	// 名前の埋め込み用にまとめて取得する。
	FindByIDs(ctx context.Context, userIDs []string) (map[string]model.User, error)
}
