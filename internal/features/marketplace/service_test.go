package marketplace

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Цена лота валидируется до обращения к БД.
func TestListForSaleRejectsNonPositivePrice(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	for _, price := range []string{"0", "-10"} {
		err := s.ListForSale(ctx, 1, 10, decimal.RequireFromString(price))
		if !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("ListForSale(%s): ожидался ErrInvalidAmount, получено %v", price, err)
		}
	}
}
