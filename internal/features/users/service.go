// Package users — service.go содержит бизнес-логику учётных записей:
// валидацию регистрации, вход, заявки на вывод.
package users

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/config"
	"stargift.ru/economy-api/internal/features/ledger"
)

// Service управляет учётными записями.
type Service struct {
	repo   *Repository
	ledger *ledger.Service
	cfg    *config.Config
}

// NewService создаёт сервис учётных записей.
func NewService(repo *Repository, ledgerService *ledger.Service, cfg *config.Config) *Service {
	return &Service{repo: repo, ledger: ledgerService, cfg: cfg}
}

// Register создаёт нового пользователя.
// Имя обязательно; имя и telegram_id должны быть свободны.
func (s *Service) Register(ctx context.Context, username string, telegramID *int64, telegramUsername, email *string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, common.ErrUsernameRequired
	}

	exists, err := s.repo.Exists(ctx, username, telegramID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrUserExists
	}

	startingBalance := decimal.NewFromInt(s.cfg.EconomyStartingBalance)
	u, err := s.repo.Create(ctx, username, telegramID, telegramUsername, email, startingBalance)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  u.ID,
		"username": u.Username,
	}).Info("Пользователь зарегистрирован")
	return u, nil
}

// Login находит пользователя по имени и обновляет last_login.
// Пароля нет: идентификация доверительная, по имени.
func (s *Service) Login(ctx context.Context, username string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID возвращает пользователя по ID.
func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// RequestWithdrawal создаёт заявку на вывод средств.
// Деньги при этом не списываются — списание происходит вне платформы
// после одобрения администратором.
func (s *Service) RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, common.ErrInvalidAmount
	}

	// Заявка не должна превышать текущий баланс
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if balance.LessThan(amount) {
		return 0, common.ErrInsufficientBalance
	}

	id, err := s.repo.CreateWithdrawal(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount.String(),
		"request": id,
	}).Info("Создана заявка на вывод")
	return id, nil
}

// Transactions возвращает историю операций пользователя для профиля.
func (s *Service) Transactions(ctx context.Context, userID int64, limit int) ([]*ledger.Transaction, error) {
	// Проверяем, что пользователь существует, чтобы отдать честный 404
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.GetTransactions(ctx, userID, limit)
}
