// Package ledger — service.go содержит бизнес-правила денежных операций.
// Валидация сумм выполняется здесь, до обращения к базе.
package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Service управляет балансом пользователей.
type Service struct {
	repo *Repository
}

// NewService создаёт сервис журнала баланса.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Credit начисляет монеты. Сумма должна быть строго положительной.
func (s *Service) Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}
	newBalance, err := s.repo.Credit(ctx, userID, amount, txType, description)
	if err != nil {
		return decimal.Zero, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount.String(),
		"type":    txType,
	}).Info("Начисление выполнено")
	return newBalance, nil
}

// Debit списывает монеты. Сумма должна быть строго положительной.
func (s *Service) Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}
	newBalance, err := s.repo.Debit(ctx, userID, amount, txType, description)
	if err != nil {
		return decimal.Zero, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount.String(),
		"type":    txType,
	}).Info("Списание выполнено")
	return newBalance, nil
}

// CreditTx и DebitTx пробрасываются для составных операций
// (покупка акций, P2P-сделки), которые идут в одной транзакции.

func (s *Service) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}
	return s.repo.CreditTx(ctx, tx, userID, amount, txType, description)
}

func (s *Service) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, common.ErrInvalidAmount
	}
	return s.repo.DebitTx(ctx, tx, userID, amount, txType, description)
}

// GetBalance возвращает текущий баланс пользователя.
func (s *Service) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.repo.GetBalance(ctx, userID)
}

// GetTransactions возвращает последние записи журнала пользователя.
func (s *Service) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.repo.GetTransactions(ctx, userID, limit)
}
