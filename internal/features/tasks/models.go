// Package tasks управляет заданиями и выдачей наград за их выполнение.
// models.go описывает структуры для таблиц tasks и user_tasks.
package tasks

import (
	"time"

	"github.com/shopspring/decimal"
)

// Task представляет задание из каталога.
type Task struct {
	ID                int64           `json:"id" db:"id"`
	Title             string          `json:"title" db:"title"`
	Description       string          `json:"description" db:"description"`
	TaskType          string          `json:"task_type" db:"task_type"` // 'manual' | 'telegram_subscribe'
	Reward            decimal.Decimal `json:"reward" db:"reward"`
	Icon              string          `json:"icon" db:"icon"`
	TelegramChannelID *string         `json:"telegram_channel_id,omitempty" db:"telegram_channel_id"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`

	// Completed заполняется только в списке для конкретного пользователя
	Completed bool `json:"completed" db:"-"`
}

// Типы заданий
const (
	TaskTypeManual            = "manual"             // Засчитывается без проверки
	TaskTypeTelegramSubscribe = "telegram_subscribe" // Требует подписки на канал
)

// VerifyResult — итог успешной верификации задания.
type VerifyResult struct {
	Reward     decimal.Decimal `json:"reward"`
	NewBalance decimal.Decimal `json:"new_balance"`
}
