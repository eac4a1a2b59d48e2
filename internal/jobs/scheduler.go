// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасный снимок цен акций
// в историю и ежедневная очистка устаревших точек.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"stargift.ru/economy-api/internal/config"
	"stargift.ru/economy-api/internal/features/exchange"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	exchange *exchange.Service
	cfg      *config.Config
}

// NewScheduler создаёт планировщик задач в часовом поясе из конфигурации.
func NewScheduler(exchangeService *exchange.Service, cfg *config.Config) *Scheduler {
	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		log.WithError(err).Warnf("Не удалось загрузить %s, используем UTC", cfg.AppTimezone)
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		exchange: exchangeService,
		cfg:      cfg,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	// Снимок текущих цен в историю (по умолчанию каждый час)
	_, err := s.cron.AddFunc(s.cfg.PriceSnapshotCron, func() {
		log.Debug("[CRON] Снимок цен акций")
		if err := s.exchange.SnapshotPrices(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка снимка цен")
		}
	})
	if err != nil {
		return err
	}

	// Очистка устаревшей истории (по умолчанию ночью)
	_, err = s.cron.AddFunc(s.cfg.PriceHistoryPrune, func() {
		log.Debug("[CRON] Очистка истории цен")
		if err := s.exchange.PruneHistory(ctx, s.cfg.PriceHistoryDays); err != nil {
			log.WithError(err).Error("[CRON] Ошибка очистки истории")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("timezone", s.cfg.AppTimezone).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
