package usecase

import (
	"time"

	"chefconnect/internal/realtime"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 状態変化のプッシュ。送れなくてもエラーは返さない。
type Notifier interface {
	Notify(event realtime.EventType, order interface{}, recipients ...string)
}

// 注文作成の入力チェック（validatorパッケージが実装）
type OrderValidator interface {
	ValidateCreateOrder(in CreateOrderInput) error
}
