// Package marketplace реализует магазин подарков и P2P-рынок с историей
// владения. models.go описывает структуры для таблиц gifts, user_gifts
// и gift_transactions.
//
// Имена JSON-полей каталога исторические: emoji отдаётся как image,
// base_price как price, rarity как category — фронтенд завязан на них.
package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreGift — позиция каталога магазина.
type StoreGift struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Image       string          `json:"image" db:"emoji"`
	Price       decimal.Decimal `json:"price" db:"base_price"`
	Category    string          `json:"category" db:"rarity"`
}

// Listing — выставленный на продажу экземпляр подарка.
type Listing struct {
	UserGiftID  int64           `json:"user_gift_id" db:"user_gift_id"`
	SalePrice   decimal.Decimal `json:"sale_price" db:"sale_price"`
	PurchasedAt time.Time       `json:"purchased_at" db:"purchased_at"`
	GiftID      int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Rarity      string          `json:"rarity" db:"rarity"`
	BasePrice   decimal.Decimal `json:"base_price" db:"base_price"`
	Emoji       string          `json:"emoji" db:"emoji"`
	SellerName  string          `json:"seller_name" db:"seller_name"`
}

// OwnedGift — экземпляр подарка в коллекции пользователя.
type OwnedGift struct {
	ID            int64            `json:"id" db:"id"`
	OwnerID       int64            `json:"owner_id" db:"owner_id"`
	GiftID        int64            `json:"gift_id" db:"gift_id"`
	PurchasePrice decimal.Decimal  `json:"purchase_price" db:"purchase_price"`
	IsOnSale      bool             `json:"is_on_sale" db:"is_on_sale"`
	SalePrice     *decimal.Decimal `json:"sale_price" db:"sale_price"`
	PurchasedAt   time.Time        `json:"purchased_at" db:"purchased_at"`
	Name          string           `json:"name" db:"-"`
	ImageEmoji    string           `json:"image_emoji" db:"-"`
	Description   string           `json:"description" db:"-"`
}

// GiftTransaction — запись истории владения экземпляром подарка.
type GiftTransaction struct {
	ID              int64           `json:"id" db:"id"`
	GiftID          int64           `json:"gift_id" db:"gift_id"`
	UserGiftID      int64           `json:"user_gift_id" db:"user_gift_id"`
	SellerID        *int64          `json:"seller_id" db:"seller_id"` // NULL для покупки в магазине
	BuyerID         int64           `json:"buyer_id" db:"buyer_id"`
	Price           decimal.Decimal `json:"price" db:"price"`
	TransactionType string          `json:"transaction_type" db:"transaction_type"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	SellerName      *string         `json:"seller_name" db:"-"`
	BuyerName       *string         `json:"buyer_name" db:"-"`
	GiftName        string          `json:"gift_name" db:"-"`
}

// Типы сделок с подарками
const (
	GiftTxStorePurchase = "store_purchase" // Покупка нового экземпляра в магазине
	GiftTxP2PSale       = "p2p_sale"       // Перепродажа между пользователями
)

// PurchaseResult — итог успешной покупки.
type PurchaseResult struct {
	UserGiftID int64           `json:"user_gift_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
}
