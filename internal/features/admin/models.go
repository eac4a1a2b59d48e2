// Package admin реализует консоль администратора: статистика платформы,
// очередь заявок на вывод, список пользователей, корректировки балансов,
// создание заданий. models.go описывает структуры ответов админки.
package admin

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats — сводные показатели платформы.
type Stats struct {
	TotalUsers         int64           `json:"total_users"`
	TotalBalance       decimal.Decimal `json:"total_balance"`
	TotalTransactions  int64           `json:"total_transactions"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
}

// WithdrawalRow — заявка на вывод вместе с данными пользователя.
type WithdrawalRow struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Status       string          `json:"status" db:"status"`
	AdminComment *string         `json:"admin_comment" db:"admin_comment"`
	ProcessedBy  *int64          `json:"processed_by" db:"processed_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt  *time.Time      `json:"processed_at" db:"processed_at"`
	Username     string          `json:"username" db:"-"`
	Balance      decimal.Decimal `json:"balance" db:"-"`
}

// UserRow — строка списка пользователей (без telegram_id, он не нужен админке).
type UserRow struct {
	ID               int64           `json:"id" db:"id"`
	Username         string          `json:"username" db:"username"`
	Email            *string         `json:"email" db:"email"`
	TelegramUsername *string         `json:"telegram_username" db:"telegram_username"`
	Balance          decimal.Decimal `json:"balance" db:"balance"`
	IsAdmin          bool            `json:"is_admin" db:"is_admin"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	LastLogin        *time.Time      `json:"last_login" db:"last_login"`
}
