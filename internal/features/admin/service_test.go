package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Валидация выполняется до обращения к БД, поэтому сервис с пустыми
// зависимостями годится для этих проверок.

func TestProcessWithdrawalStatusValidation(t *testing.T) {
	s := NewService(nil, nil)

	for _, status := range []string{"", "maybe", "PENDING", "Approved", "done"} {
		err := s.ProcessWithdrawal(context.Background(), 1, 3, status, "")
		if !errors.Is(err, common.ErrInvalidStatus) {
			t.Errorf("статус %q: ожидался ErrInvalidStatus, получено %v", status, err)
		}
	}
}

func TestAdjustBalanceZeroAmount(t *testing.T) {
	s := NewService(nil, nil)

	_, err := s.AdjustBalance(context.Background(), 1, 2, decimal.Zero, "")
	if !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("ожидался ErrInvalidAmount, получено %v", err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	s := NewService(nil, nil)
	ctx := context.Background()
	reward := decimal.RequireFromString("50")

	if _, err := s.CreateTask(ctx, "", "d", "manual", reward, nil); !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("пустой заголовок: ожидался ErrBadRequest, получено %v", err)
	}
	if _, err := s.CreateTask(ctx, "t", "d", "manual", decimal.Zero, nil); !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("нулевая награда: ожидался ErrInvalidAmount, получено %v", err)
	}
	if _, err := s.CreateTask(ctx, "t", "d", "hack", reward, nil); !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("неизвестный тип: ожидался ErrBadRequest, получено %v", err)
	}
	// Задание на подписку без канала проверить невозможно
	if _, err := s.CreateTask(ctx, "t", "d", "telegram_subscribe", reward, nil); !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("подписка без канала: ожидался ErrBadRequest, получено %v", err)
	}
	empty := "  "
	if _, err := s.CreateTask(ctx, "t", "d", "telegram_subscribe", reward, &empty); !errors.Is(err, common.ErrBadRequest) {
		t.Errorf("подписка с пустым каналом: ожидался ErrBadRequest, получено %v", err)
	}
}
