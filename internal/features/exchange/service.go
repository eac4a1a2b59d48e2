// Package exchange — service.go содержит бизнес-логику биржи.
package exchange

import (
	"context"

	log "github.com/sirupsen/logrus"

	"stargift.ru/economy-api/internal/common"
)

// Лимит точек истории цены в ответе
const priceHistoryLimit = 50

// Service управляет операциями биржи.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис биржи.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Companies возвращает каталог компаний.
func (s *Service) Companies(ctx context.Context) ([]*Company, error) {
	return s.repo.ListCompanies(ctx)
}

// PriceHistory возвращает последние 50 точек истории цены компании.
func (s *Service) PriceHistory(ctx context.Context, companyID int64) ([]*PricePoint, error) {
	return s.repo.PriceHistory(ctx, companyID, priceHistoryLimit)
}

// Portfolio возвращает портфель пользователя.
func (s *Service) Portfolio(ctx context.Context, userID int64) ([]*Position, error) {
	return s.repo.Portfolio(ctx, userID)
}

// Buy покупает акции. Количество должно быть положительным.
func (s *Service) Buy(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error) {
	if shares <= 0 {
		return nil, common.ErrInvalidAmount
	}

	result, err := s.repo.Buy(ctx, userID, companyID, shares)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"company_id": companyID,
		"shares":     shares,
		"total":      result.TotalAmount.String(),
	}).Info("Акции куплены")
	return result, nil
}

// Sell продаёт акции. Количество должно быть положительным.
func (s *Service) Sell(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error) {
	if shares <= 0 {
		return nil, common.ErrInvalidAmount
	}

	result, err := s.repo.Sell(ctx, userID, companyID, shares)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"company_id": companyID,
		"shares":     shares,
		"total":      result.TotalAmount.String(),
	}).Info("Акции проданы")
	return result, nil
}

// SnapshotPrices снимает текущие цены в историю. Вызывается планировщиком.
func (s *Service) SnapshotPrices(ctx context.Context) error {
	n, err := s.repo.SnapshotPrices(ctx)
	if err != nil {
		return err
	}
	log.WithField("companies", n).Debug("Снимок цен записан в историю")
	return nil
}

// PruneHistory удаляет устаревшие точки истории. Вызывается планировщиком.
func (s *Service) PruneHistory(ctx context.Context, days int) error {
	n, err := s.repo.PruneHistory(ctx, days)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithFields(log.Fields{"rows": n, "days": days}).Info("История цен очищена")
	}
	return nil
}
