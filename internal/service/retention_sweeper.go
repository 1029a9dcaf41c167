package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSweepInterval = 24 * time.Hour

// RetentionSweeper 周期清理超过保留期的原始事件行。
// 启动时立即清扫一次，之后按固定间隔重复，Close 发出停止信号并等待协程退出。
type RetentionSweeper struct {
	analytics *AnalyticsService
	logger    *zap.Logger
	retention time.Duration
	interval  time.Duration
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRetentionSweeper 创建并启动清理协程。interval <= 0 时每天清扫一次。
func NewRetentionSweeper(analytics *AnalyticsService, logger *zap.Logger, retention, interval time.Duration) *RetentionSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &RetentionSweeper{
		analytics: analytics,
		logger:    logger,
		retention: retention,
		interval:  interval,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go s.run()
	return s
}

// Close 停止周期清理并等待当前一轮结束。
func (s *RetentionSweeper) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	<-s.done
}

func (s *RetentionSweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep()

		select {
		case <-ticker.C:
		case <-s.quit:
			return
		}
	}
}

func (s *RetentionSweeper) sweep() {
	cutoff := time.Now().Add(-s.retention)

	pruned, err := s.analytics.PruneBefore(cutoff)
	if err != nil {
		s.logger.Error("event retention sweep failed", zap.Error(err))
		return
	}
	if pruned > 0 {
		s.logger.Info("pruned expired events",
			zap.Int64("rows", pruned), zap.Time("cutoff", cutoff))
	}
}
