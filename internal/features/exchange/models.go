// Package exchange реализует биржу: каталог компаний, история цен,
// портфель пользователя и сделки купли-продажи акций.
// models.go описывает структуры для таблиц companies, stock_price_history,
// user_stocks и stock_transactions.
package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company — компания, чьи акции торгуются на бирже.
type Company struct {
	ID           int64           `json:"id" db:"id"`
	Ticker       string          `json:"ticker" db:"ticker"`
	Name         string          `json:"name" db:"name"`
	Description  string          `json:"description" db:"description"`
	BasePrice    decimal.Decimal `json:"base_price" db:"base_price"`
	CurrentPrice decimal.Decimal `json:"current_price" db:"current_price"`
	Icon         string          `json:"icon" db:"icon"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	// ChangePercent — отклонение текущей цены от базовой, в процентах
	ChangePercent decimal.Decimal `json:"change_percent" db:"-"`
}

// PricePoint — точка истории цены.
type PricePoint struct {
	Price      decimal.Decimal `json:"price" db:"price"`
	RecordedAt time.Time       `json:"recorded_at" db:"recorded_at"`
}

// Position — позиция в портфеле пользователя.
type Position struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	CompanyID       int64           `json:"company_id" db:"company_id"`
	Shares          int64           `json:"shares" db:"shares"`
	AverageBuyPrice decimal.Decimal `json:"average_buy_price" db:"average_buy_price"`
	CompanyName     string          `json:"name" db:"-"`
	Ticker          string          `json:"ticker" db:"-"`
	CurrentPrice    decimal.Decimal `json:"current_price" db:"-"`
	Profit          decimal.Decimal `json:"profit" db:"-"`
	CurrentValue    decimal.Decimal `json:"current_value" db:"-"`
}

// TradeResult — итог успешной сделки.
type TradeResult struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}
