package repository

import (
	"context"
	"errors"
	"time"

	"chefconnect/internal/domain/model"
)

// 見つかりませんを統一
var ErrNotFound = errors.New("not found")

// 期限切れ注文の絞り込み条件。
type ExpiredOrderFilter struct {
	Now time.Time
	//空なら全シェフ対象（定期スイープ）
	ChefID string
}

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)

	//シェフのPENDINGかつ期限前の注文（新しい順）
	ListPendingByChef(ctx context.Context, chefID string, now time.Time) ([]model.Order, error)
	//顧客の注文一覧（新しい順）
	ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error)

	//status=fromのときだけtoへ更新する（条件付き更新）。
	//0件更新はfalse（競合に負けた/既に遷移済み）でエラーではない。
	TransitionStatus(ctx context.Context, orderID string, chefID string, from model.OrderStatus, to model.OrderStatus, now time.Time) (model.Order, bool, error)

	//PENDINGかつtimer_expiry<=nowをまとめてCANCELLEDにする。
	//このcallで実際に更新した注文だけ返す（同時に複数プロセスが流しても重複しない）。
	CancelExpired(ctx context.Context, f ExpiredOrderFilter) ([]model.Order, error)
}
