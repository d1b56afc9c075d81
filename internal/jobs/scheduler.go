package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/vkaryagin/freelance-market/internal/goroutine"
	"github.com/vkaryagin/freelance-market/internal/logger"
	"github.com/vkaryagin/freelance-market/internal/models"
)

// RefundSweeper один проход возвратов за игнорированные отклики.
type RefundSweeper interface {
	ProcessIgnored(ctx context.Context) (*models.SweepResult, error)
}

// Scheduler запускает фоновый проход возвратов по расписанию.
// singleflight гарантирует, что запуск по cron и ручной запуск из админки
// не идут одновременно: второй вызов дожидается результата первого.
type Scheduler struct {
	cron    *cron.Cron
	sweeper RefundSweeper
	group   singleflight.Group
	spec    string
}

func NewScheduler(sweeper RefundSweeper, spec string) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    spec,
	}
}

const sweepKey = "refund-sweep"

// Start регистрирует задачу и запускает планировщик.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		goroutine.SafeGo(func() {
			if _, err := s.RunSweep(ctx); err != nil && ctx.Err() == nil {
				logger.Log.WithError(err).Error("фоновый проход возвратов завершился с ошибкой")
			}
		})
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Log.WithField("spec", s.spec).Info("планировщик возвратов запущен")
	return nil
}

// RunSweep выполняет один проход. Конкурентные вызовы схлопываются в один.
func (s *Scheduler) RunSweep(ctx context.Context) (*models.SweepResult, error) {
	v, err, _ := s.group.Do(sweepKey, func() (interface{}, error) {
		return s.sweeper.ProcessIgnored(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.SweepResult), nil
}

// Stop останавливает планировщик и дожидается текущих задач.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Log.Info("планировщик возвратов остановлен")
}
