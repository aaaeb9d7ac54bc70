package usecase

import (
	"context"
	"fmt"

	"chefconnect/internal/domain/model"
	"chefconnect/internal/metrics"
	"chefconnect/internal/realtime"
	repo "chefconnect/internal/repository"

	"github.com/sirupsen/logrus"
)

// ExpiryUsecase は期限切れPENDING注文をCANCELLEDにする共通処理。
// 定期スイープ（worker）とシェフ一覧の遅延スイープの両方から使う。
type ExpiryUsecase struct {
	tx       repo.TransactionManager
	notifier Notifier
	clock    Clock
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func NewExpiryUsecase(
	tx repo.TransactionManager,
	notifier Notifier,
	clock Clock,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *ExpiryUsecase {
	return &ExpiryUsecase{
		tx:       tx,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		metrics:  m,
	}
}

// 全シェフ対象。キャンセルした件数を返す。
func (u *ExpiryUsecase) SweepExpired(ctx context.Context) (int, error) {
	return u.cancelExpired(ctx, repo.ExpiredOrderFilter{Now: u.clock.Now()}, metrics.SourceSweep)
}

// シェフ1人分だけ。
func (u *ExpiryUsecase) SweepChef(ctx context.Context, chefID string) (int, error) {
	return u.cancelExpired(ctx, repo.ExpiredOrderFilter{Now: u.clock.Now(), ChefID: chefID}, metrics.SourceLazy)
}

func (u *ExpiryUsecase) cancelExpired(ctx context.Context, f repo.ExpiredOrderFilter, source string) (int, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//条件付き一括更新。このcallで更新した分だけ返る
		cancelled, err := r.Orders().CancelExpired(ctx, f)
		if err != nil {
			return fmt.Errorf("cancel expired: %w", err)
		}
		if len(cancelled) == 0 {
			return nil
		}

		logs := make([]model.AuditLog, 0, len(cancelled))
		for _, o := range cancelled {
			logs = append(logs, model.NewOrderStatusAudit(
				model.AuditActorSystem,
				model.AuditActionOrderExpired,
				o.ID,
				model.OrderStatusPending,
				model.OrderStatusCancelled,
				f.Now,
			))
		}
		if err := r.AuditLogs().CreateBulk(ctx, logs); err != nil {
			return fmt.Errorf("audit expired: %w", err)
		}

		outs, err = loadOrderOutputs(ctx, r, cancelled)
		if err != nil {
			return fmt.Errorf("load expired: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(outs) == 0 {
		return 0, nil
	}

	u.metrics.Transition(string(model.OrderStatusCancelled), source, len(outs))

	//commit後に通知（両当事者）
	for _, o := range outs {
		u.notifier.Notify(realtime.EventOrderUpdate, o, o.ChefID, o.CustomerID)
	}

	entry := u.logger.WithFields(logrus.Fields{"count": len(outs), "source": source})
	if f.ChefID != "" {
		entry = entry.WithField("chef_id", f.ChefID)
	}
	entry.Info("expired orders cancelled")

	return len(outs), nil
}
