package engine

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler 按 cron 表达式定时触发全量重训。
// 交互日志持续累积而派生分只在重训时刷新，夜间低峰重训
// （如 "0 3 * * *"）是典型配置。
type Scheduler struct {
	engine *Engine
	cron   *cron.Cron
	logger zerolog.Logger

	// Timeout 单次重训的超时预算，<=0 时取 10 分钟
	Timeout time.Duration
}

// NewScheduler 创建调度器，spec 为标准 5 段 cron 表达式。
func NewScheduler(e *Engine, spec string, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		engine: e,
		cron:   cron.New(),
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) run() {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.engine.Retrain(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled retrain failed")
	}
}

// Start 启动调度（异步）。
func (s *Scheduler) Start() { s.cron.Start() }

// Stop 停止调度，等待在途任务结束。
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
