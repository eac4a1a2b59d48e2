// Package users управляет учётными записями: регистрацией, входом, профилем.
// models.go описывает структуры для работы с таблицей users.
package users

import (
	"time"

	"github.com/shopspring/decimal"
)

// User представляет учётную запись на платформе.
type User struct {
	ID               int64           `json:"id" db:"id"`                             // Автоинкрементный ID
	Username         string          `json:"username" db:"username"`                 // Уникальное имя (обязательное)
	TelegramID       *int64          `json:"telegram_id,omitempty" db:"telegram_id"` // Telegram user ID (может быть nil, уникален)
	TelegramUsername *string         `json:"telegram_username,omitempty" db:"telegram_username"`
	Email            *string         `json:"email,omitempty" db:"email"`
	Balance          decimal.Decimal `json:"balance" db:"balance"` // Текущий баланс (не бывает отрицательным)
	Role             string          `json:"role" db:"role"`       // 'user' или 'admin'
	IsAdmin          bool            `json:"is_admin" db:"is_admin"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	LastLogin        *time.Time      `json:"last_login,omitempty" db:"last_login"`
}

// WithdrawalRequest — заявка пользователя на вывод средств.
// Обрабатывается администратором (см. features/admin).
type WithdrawalRequest struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	Status       string          `json:"status" db:"status"` // pending | approved | rejected
	AdminComment *string         `json:"admin_comment,omitempty" db:"admin_comment"`
	ProcessedBy  *int64          `json:"processed_by,omitempty" db:"processed_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}

// Статусы заявок на вывод
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)
