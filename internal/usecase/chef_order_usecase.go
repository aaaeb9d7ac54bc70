package usecase

import (
	"context"
	"net/http"

	"chefconnect/internal/domain/model"
	"chefconnect/internal/metrics"
	"chefconnect/internal/realtime"
	repo "chefconnect/internal/repository"
)

// シェフの操作（承認/拒否/完了）
type ChefOrderUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	clock    Clock
	metrics  *metrics.Metrics
}

func NewChefOrderUsecase(tx repo.TransactionManager, notifier Notifier, clock Clock, m *metrics.Metrics) *ChefOrderUsecase {
	return &ChefOrderUsecase{tx: tx, notifier: notifier, clock: clock, metrics: m}
}

func (u *ChefOrderUsecase) Accept(ctx context.Context, chefID string, orderID string) (OrderOutput, error) {
	return u.transition(ctx, chefID, orderID, model.OrderStatusPending, model.OrderStatusConfirmed, model.AuditActionOrderAccepted)
}

func (u *ChefOrderUsecase) Reject(ctx context.Context, chefID string, orderID string) (OrderOutput, error) {
	return u.transition(ctx, chefID, orderID, model.OrderStatusPending, model.OrderStatusCancelled, model.AuditActionOrderRejected)
}

func (u *ChefOrderUsecase) Complete(ctx context.Context, chefID string, orderID string) (OrderOutput, error) {
	return u.transition(ctx, chefID, orderID, model.OrderStatusConfirmed, model.OrderStatusCompleted, model.AuditActionOrderCompleted)
}

// 条件付き更新で遷移する。0件なら（スイープに負けた/既に遷移済み）何もせず現在の注文を返す。
func (u *ChefOrderUsecase) transition(
	ctx context.Context,
	chefID string,
	orderID string,
	from model.OrderStatus,
	to model.OrderStatus,
	action model.AuditAction,
) (OrderOutput, error) {
	if chefID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !from.CanTransitionTo(to) {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "invalid transition")
	}

	var (
		out     OrderOutput
		changed bool
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()

		updated, ok, err := r.Orders().TransitionStatus(ctx, orderID, chefID, from, to, now)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !ok {
			cur, err := r.Orders().FindByID(ctx, orderID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			//他のシェフの注文は存在しない扱い
			if cur.ChefID != chefID {
				return NewHTTPError(http.StatusNotFound, "not found")
			}

			outs, err := loadOrderOutputs(ctx, r, []model.Order{cur})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = outs[0]
			return nil
		}

		// ★監査ログ
		if err := r.AuditLogs().Create(ctx, model.NewOrderStatusAudit(chefID, action, orderID, from, to, now)); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs, err := loadOrderOutputs(ctx, r, []model.Order{updated})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = outs[0]
		changed = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if changed {
		u.metrics.Transition(string(to), metrics.SourceChef, 1)
		u.notifier.Notify(realtime.EventOrderUpdate, out, out.CustomerID)
	}
	return out, nil
}
