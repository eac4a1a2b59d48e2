package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Суммы валидируются до обращения к репозиторию.

func TestCreditRejectsNonPositive(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	for _, amount := range []string{"0", "-1", "-0.01"} {
		_, err := s.Credit(ctx, 1, decimal.RequireFromString(amount), TxTypeTaskReward, "test")
		if !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("Credit(%s): ожидался ErrInvalidAmount, получено %v", amount, err)
		}
	}
}

func TestDebitRejectsNonPositive(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	for _, amount := range []string{"0", "-5"} {
		_, err := s.Debit(ctx, 1, decimal.RequireFromString(amount), TxTypeStockBuy, "test")
		if !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("Debit(%s): ожидался ErrInvalidAmount, получено %v", amount, err)
		}
	}
}

func TestTxVariantsRejectNonPositive(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()
	neg := decimal.RequireFromString("-10")

	if _, err := s.CreditTx(ctx, nil, 1, neg, TxTypeGiftSale, "test"); !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("CreditTx: ожидался ErrInvalidAmount, получено %v", err)
	}
	if _, err := s.DebitTx(ctx, nil, 1, neg, TxTypeGiftP2PBuy, "test"); !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("DebitTx: ожидался ErrInvalidAmount, получено %v", err)
	}
}
