// Package ledger управляет балансом пользователей и журналом транзакций.
// models.go описывает структуру записи журнала и допустимые типы операций.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction представляет одну запись журнала баланса.
// Журнал append-only: записи никогда не обновляются и не удаляются.
type Transaction struct {
	ID              int64           `json:"id" db:"id"`                             // ID записи
	UserID          int64           `json:"user_id" db:"user_id"`                   // Чей баланс изменился
	Amount          decimal.Decimal `json:"amount" db:"amount"`                     // Сумма со знаком: + начисление, - списание
	TransactionType string          `json:"transaction_type" db:"transaction_type"` // Тип: 'task_reward', 'gift_purchase', и т.д.
	Description     string          `json:"description" db:"description"`           // Описание для отображения
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`             // Время операции
}

// Допустимые типы транзакций
const (
	TxTypeTaskReward      = "task_reward"      // Награда за выполненное задание
	TxTypeStockBuy        = "stock_buy"        // Покупка акций
	TxTypeStockSell       = "stock_sell"       // Продажа акций
	TxTypeGiftPurchase    = "gift_purchase"    // Покупка подарка в магазине
	TxTypeGiftSale        = "gift_sale"        // Продажа подарка на P2P-рынке
	TxTypeGiftP2PBuy      = "gift_p2p_buy"     // Покупка подарка у другого пользователя
	TxTypeAdminAdjustment = "admin_adjustment" // Ручная корректировка администратором
)
