// Package admin — service.go содержит бизнес-логику консоли администратора.
package admin

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/features/ledger"
	"stargift.ru/economy-api/internal/features/tasks"
	"stargift.ru/economy-api/internal/features/users"
)

// Service управляет операциями админки.
type Service struct {
	repo   *Repository
	ledger *ledger.Service
}

// NewService создаёт сервис админки.
func NewService(repo *Repository, ledgerSvc *ledger.Service) *Service {
	return &Service{repo: repo, ledger: ledgerSvc}
}

// RequireAdmin проверяет права вызывающего. Любой не-админ (в том числе
// несуществующий пользователь) получает отказ.
func (s *Service) RequireAdmin(ctx context.Context, adminID int64) error {
	isAdmin, err := s.repo.IsAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return common.ErrNotAdmin
	}
	return nil
}

// Stats возвращает сводные показатели платформы.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Withdrawals возвращает очередь заявок на вывод.
func (s *Service) Withdrawals(ctx context.Context) ([]*WithdrawalRow, error) {
	return s.repo.Withdrawals(ctx)
}

// Users возвращает пользователей по убыванию баланса.
func (s *Service) Users(ctx context.Context) ([]*UserRow, error) {
	return s.repo.TopUsers(ctx)
}

// AdjustBalance корректирует баланс пользователя на произвольную сумму.
// Положительная сумма начисляется, отрицательная списывается через общий
// журнал: уйти в минус корректировкой нельзя. Нулевая сумма отклоняется.
func (s *Service) AdjustBalance(ctx context.Context, adminID, userID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, common.ErrInvalidAmount
	}
	if strings.TrimSpace(reason) == "" {
		reason = "Admin adjustment"
	}

	var newBalance decimal.Decimal
	var err error
	if amount.IsPositive() {
		newBalance, err = s.ledger.Credit(ctx, userID, amount, ledger.TxTypeAdminAdjustment, reason)
	} else {
		newBalance, err = s.ledger.Debit(ctx, userID, amount.Neg(), ledger.TxTypeAdminAdjustment, reason)
	}
	if err != nil {
		return decimal.Zero, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"user_id":  userID,
		"amount":   amount.String(),
		"reason":   reason,
	}).Info("Баланс скорректирован администратором")
	return newBalance, nil
}

// CreateTask добавляет задание в каталог. Для заданий на подписку
// обязателен канал, иначе их невозможно проверить.
func (s *Service) CreateTask(ctx context.Context, title, description, taskType string, reward decimal.Decimal, channelID *string) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, common.ErrBadRequest
	}
	if !reward.IsPositive() {
		return 0, common.ErrInvalidAmount
	}
	switch taskType {
	case "":
		taskType = tasks.TaskTypeManual
	case tasks.TaskTypeManual:
	case tasks.TaskTypeTelegramSubscribe:
		if channelID == nil || strings.TrimSpace(*channelID) == "" {
			return 0, common.ErrBadRequest
		}
	default:
		return 0, common.ErrBadRequest
	}

	taskID, err := s.repo.CreateTask(ctx, title, description, taskType, reward, channelID)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"task_id": taskID,
		"title":   title,
		"reward":  reward.String(),
	}).Info("Задание создано")
	return taskID, nil
}

// ProcessWithdrawal закрывает заявку на вывод. Допустимые конечные
// статусы — approved и rejected; заявка обрабатывается только один раз.
func (s *Service) ProcessWithdrawal(ctx context.Context, adminID, withdrawalID int64, status, comment string) error {
	if status != users.WithdrawalApproved && status != users.WithdrawalRejected {
		return common.ErrInvalidStatus
	}

	if err := s.repo.ProcessWithdrawal(ctx, withdrawalID, status, comment, adminID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"admin_id":      adminID,
		"withdrawal_id": withdrawalID,
		"status":        status,
	}).Info("Заявка на вывод обработана")
	return nil
}
