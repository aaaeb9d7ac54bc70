package worker

import (
	"context"
	"time"

	"chefconnect/internal/metrics"
	repo "chefconnect/internal/repository"

	"github.com/sirupsen/logrus"
)

// Sweeper はSweepExpiredだけ使う
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// ExpirySweeper は一定間隔で期限切れPENDING注文をキャンセルする。
// 失敗してもログだけ出して次のtickで再試行する。
type ExpirySweeper struct {
	sweeper  Sweeper
	lock     repo.SweepLock
	interval time.Duration
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

func NewExpirySweeper(sweeper Sweeper, lock repo.SweepLock, interval time.Duration, logger *logrus.Logger, m *metrics.Metrics) *ExpirySweeper {
	if lock == nil {
		lock = repo.NoopSweepLock{}
	}
	return &ExpirySweeper{
		sweeper:  sweeper,
		lock:     lock,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Run はctxがキャンセルされるまでブロックする。
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval.String()).Info("expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick は1回分のスイープ。リースが取れなければ何もしない。
func (s *ExpirySweeper) Tick(ctx context.Context) {
	//TTLはtick間隔より短く（次のtickで別プロセスが取れるように）
	ok, err := s.lock.TryAcquire(ctx, s.leaseTTL())
	if err != nil {
		//redisが落ちていてもスイープは止めない
		s.logger.WithError(err).Warn("sweep lock unavailable, sweeping anyway")
		ok = true
	}
	if !ok {
		s.logger.Debug("sweep lock held by another instance")
		return
	}

	start := time.Now()
	n, err := s.sweeper.SweepExpired(ctx)
	s.metrics.ObserveSweep(time.Since(start))
	if err != nil {
		s.logger.WithError(err).Error("expiry sweep failed")
		return
	}
	if n > 0 {
		s.logger.WithField("count", n).Debug("expiry sweep done")
	}
}

func (s *ExpirySweeper) leaseTTL() time.Duration {
	ttl := s.interval * 8 / 10
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
