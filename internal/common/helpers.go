// Package common — helpers.go: форматирование сумм.
package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatAmount форматирует денежную сумму для описаний транзакций.
// Пример: FormatAmount(decimal.NewFromInt(150)) → "150 монет"
func FormatAmount(amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", amount.String(), PluralizeCoins(amount.IntPart()))
}
