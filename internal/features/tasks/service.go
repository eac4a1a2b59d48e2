// Package tasks — service.go содержит бизнес-логику верификации заданий.
package tasks

import (
	"context"

	log "github.com/sirupsen/logrus"

	"stargift.ru/economy-api/internal/common"
)

// Service управляет заданиями.
type Service struct {
	repo    *Repository
	checker MembershipChecker
}

// NewService создаёт сервис заданий.
func NewService(repo *Repository, checker MembershipChecker) *Service {
	return &Service{repo: repo, checker: checker}
}

// ListForUser возвращает активные задания с отметками выполнения.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Task, error) {
	return s.repo.ListForUser(ctx, userID)
}

// Verify проверяет выполнение задания и начисляет награду.
//
// Политика проверки по типу задания:
//   - manual — засчитывается всегда;
//   - telegram_subscribe — запрос getChatMember; засчитывается, только если
//     пользователь состоит в канале. Сбой запроса НЕ засчитывается
//     (в отличие от исторического поведения, где сбой проходил как успех).
//
// Награда выдаётся не более одного раза на пару (user, task).
func (s *Service) Verify(ctx context.Context, userID, taskID, telegramUserID int64) (*VerifyResult, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.TaskType == TaskTypeTelegramSubscribe {
		if task.TelegramChannelID == nil {
			log.WithField("task_id", taskID).Warn("Задание на подписку без telegram_channel_id")
			return nil, common.ErrVerificationFailed
		}
		subscribed, err := s.checker.IsChannelMember(ctx, *task.TelegramChannelID, telegramUserID)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"task_id":          taskID,
				"telegram_user_id": telegramUserID,
			}).Warn("Проверка подписки не удалась")
			return nil, common.ErrVerificationFailed
		}
		if !subscribed {
			return nil, common.ErrVerificationFailed
		}
	}

	newBalance, err := s.repo.CompleteAndReward(ctx, userID, task)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"task_id": taskID,
		"reward":  task.Reward.String(),
	}).Info("Задание выполнено, награда начислена")

	return &VerifyResult{Reward: task.Reward, NewBalance: newBalance}, nil
}
