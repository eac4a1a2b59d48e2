// Package marketplace — service.go содержит бизнес-логику рынка подарков.
package marketplace

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Service управляет магазином и P2P-рынком.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис рынка.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// StoreGifts возвращает каталог магазина.
func (s *Service) StoreGifts(ctx context.Context) ([]*StoreGift, error) {
	return s.repo.StoreGifts(ctx)
}

// Listings возвращает выставленные на продажу экземпляры.
func (s *Service) Listings(ctx context.Context) ([]*Listing, error) {
	return s.repo.Listings(ctx)
}

// History возвращает историю сделок по типу подарка.
func (s *Service) History(ctx context.Context, giftID int64) ([]*GiftTransaction, error) {
	return s.repo.History(ctx, giftID)
}

// MyGifts возвращает коллекцию пользователя.
func (s *Service) MyGifts(ctx context.Context, userID int64) ([]*OwnedGift, error) {
	return s.repo.MyGifts(ctx, userID)
}

// BuyFromStore покупает новый экземпляр в магазине по базовой цене.
func (s *Service) BuyFromStore(ctx context.Context, userID, giftID int64) (*PurchaseResult, error) {
	result, err := s.repo.BuyFromStore(ctx, userID, giftID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id":      userID,
		"gift_id":      giftID,
		"user_gift_id": result.UserGiftID,
	}).Info("Подарок куплен в магазине")
	return result, nil
}

// BuyFromUser покупает экземпляр у другого пользователя по цене лота.
// Покупка собственного лота не запрещена: деньги вернутся продавцу-покупателю,
// а снятие с продажи и история владения отработают как обычно.
func (s *Service) BuyFromUser(ctx context.Context, buyerID, userGiftID int64) (*PurchaseResult, error) {
	result, err := s.repo.BuyFromUser(ctx, buyerID, userGiftID)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"buyer_id":     buyerID,
		"user_gift_id": userGiftID,
	}).Info("Подарок куплен у пользователя")
	return result, nil
}

// ListForSale выставляет экземпляр на продажу. Только текущий владелец
// может выставить свою вещь, цена должна быть положительной. Владелец
// проверяется в той же транзакции, что и установка флага.
func (s *Service) ListForSale(ctx context.Context, userID, userGiftID int64, salePrice decimal.Decimal) error {
	if !salePrice.IsPositive() {
		return common.ErrInvalidAmount
	}

	if err := s.repo.SetOnSale(ctx, userID, userGiftID, salePrice); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":      userID,
		"user_gift_id": userGiftID,
		"sale_price":   salePrice.String(),
	}).Info("Подарок выставлен на продажу")
	return nil
}
