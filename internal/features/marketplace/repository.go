// Package marketplace — repository.go выполняет операции рынка с БД.
//
// P2P-покупка — самая чувствительная операция проекта: в одной транзакции
// списание у покупателя, начисление продавцу, смена владельца и запись
// истории. Экземпляр блокируется FOR UPDATE, чтобы два покупателя не
// купили одну и ту же вещь.
package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/features/ledger"
)

type Repository struct {
	db     *pgxpool.Pool
	ledger *ledger.Repository
}

func NewRepository(db *pgxpool.Pool, ledgerRepo *ledger.Repository) *Repository {
	return &Repository{db: db, ledger: ledgerRepo}
}

// StoreGifts возвращает каталог магазина по возрастанию цены.
func (r *Repository) StoreGifts(ctx context.Context) ([]*StoreGift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, emoji, base_price, rarity
		FROM gifts
		ORDER BY base_price ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса каталога: %w", err)
	}
	defer rows.Close()

	var gifts []*StoreGift
	for rows.Next() {
		var g StoreGift
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Image, &g.Price, &g.Category); err != nil {
			return nil, fmt.Errorf("ошибка сканирования подарка: %w", err)
		}
		gifts = append(gifts, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return gifts, nil
}

// Listings возвращает выставленные на продажу экземпляры по возрастанию цены.
func (r *Repository) Listings(ctx context.Context) ([]*Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ug.id AS user_gift_id, COALESCE(ug.sale_price, 0) AS sale_price, ug.purchased_at,
		       g.id, g.name, g.description, g.rarity, g.base_price, g.emoji,
		       u.username AS seller_name
		FROM user_gifts ug
		JOIN gifts g ON ug.gift_id = g.id
		JOIN users u ON ug.owner_id = u.id
		WHERE ug.is_on_sale = TRUE
		ORDER BY ug.sale_price ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса лотов: %w", err)
	}
	defer rows.Close()

	var items []*Listing
	for rows.Next() {
		var l Listing
		if err := rows.Scan(
			&l.UserGiftID, &l.SalePrice, &l.PurchasedAt,
			&l.GiftID, &l.Name, &l.Description, &l.Rarity, &l.BasePrice, &l.Emoji,
			&l.SellerName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования лота: %w", err)
		}
		items = append(items, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return items, nil
}

// History возвращает историю сделок по типу подарка, свежие сверху.
// Имена сторон подтягиваются LEFT JOIN: продавца нет у покупок в магазине.
func (r *Repository) History(ctx context.Context, giftID int64) ([]*GiftTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT gt.id, gt.gift_id, gt.user_gift_id, gt.seller_id, gt.buyer_id,
		       gt.price, gt.transaction_type, gt.created_at,
		       us.username AS seller_name,
		       ub.username AS buyer_name,
		       g.name AS gift_name
		FROM gift_transactions gt
		LEFT JOIN users us ON gt.seller_id = us.id
		LEFT JOIN users ub ON gt.buyer_id = ub.id
		JOIN gifts g ON gt.gift_id = g.id
		WHERE gt.gift_id = $1
		ORDER BY gt.created_at DESC
	`, giftID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории: %w", err)
	}
	defer rows.Close()

	var history []*GiftTransaction
	for rows.Next() {
		var t GiftTransaction
		if err := rows.Scan(
			&t.ID, &t.GiftID, &t.UserGiftID, &t.SellerID, &t.BuyerID,
			&t.Price, &t.TransactionType, &t.CreatedAt,
			&t.SellerName, &t.BuyerName, &t.GiftName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		history = append(history, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return history, nil
}

// MyGifts возвращает коллекцию пользователя, свежие покупки сверху.
func (r *Repository) MyGifts(ctx context.Context, userID int64) ([]*OwnedGift, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ug.id, ug.owner_id, ug.gift_id, ug.purchase_price,
		       ug.is_on_sale, ug.sale_price, ug.purchased_at,
		       g.name, g.emoji, g.description
		FROM user_gifts ug
		JOIN gifts g ON ug.gift_id = g.id
		WHERE ug.owner_id = $1
		ORDER BY ug.purchased_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса коллекции: %w", err)
	}
	defer rows.Close()

	var gifts []*OwnedGift
	for rows.Next() {
		var g OwnedGift
		if err := rows.Scan(
			&g.ID, &g.OwnerID, &g.GiftID, &g.PurchasePrice,
			&g.IsOnSale, &g.SalePrice, &g.PurchasedAt,
			&g.Name, &g.ImageEmoji, &g.Description,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования коллекции: %w", err)
		}
		gifts = append(gifts, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return gifts, nil
}

// BuyFromStore покупает новый экземпляр в магазине: списание через журнал,
// создание экземпляра, запись в историю владения. Всё в одной транзакции.
func (r *Repository) BuyFromStore(ctx context.Context, userID, giftID int64) (*PurchaseResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var giftName string
	var basePrice decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT name, base_price FROM gifts WHERE id = $1
	`, giftID).Scan(&giftName, &basePrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrGiftNotFound
		}
		return nil, fmt.Errorf("ошибка чтения подарка: %w", err)
	}

	description := fmt.Sprintf("Покупка подарка: %s", giftName)
	newBalance, err := r.ledger.DebitTx(ctx, tx, userID, basePrice, ledger.TxTypeGiftPurchase, description)
	if err != nil {
		return nil, err
	}

	var userGiftID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO user_gifts (owner_id, gift_id, purchase_price)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, giftID, basePrice).Scan(&userGiftID)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания экземпляра: %w", err)
	}

	// Покупка в магазине тоже попадает в историю владения (seller NULL)
	_, err = tx.Exec(ctx, `
		INSERT INTO gift_transactions (gift_id, user_gift_id, seller_id, buyer_id, price, transaction_type)
		VALUES ($1, $2, NULL, $3, $4, $5)
	`, giftID, userGiftID, userID, basePrice, GiftTxStorePurchase)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи истории: %w", err)
	}

	result := &PurchaseResult{UserGiftID: userGiftID, NewBalance: newBalance}
	return result, tx.Commit(ctx)
}

// BuyFromUser покупает экземпляр у другого пользователя. Экземпляр
// блокируется FOR UPDATE: параллельная покупка того же лота дождётся
// коммита и не найдёт его в продаже.
func (r *Repository) BuyFromUser(ctx context.Context, buyerID, userGiftID int64) (*PurchaseResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var giftID, sellerID int64
	var giftName string
	var salePrice decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT ug.gift_id, ug.owner_id, ug.sale_price, g.name
		FROM user_gifts ug
		JOIN gifts g ON ug.gift_id = g.id
		WHERE ug.id = $1 AND ug.is_on_sale = TRUE
		FOR UPDATE OF ug
	`, userGiftID).Scan(&giftID, &sellerID, &salePrice, &giftName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrItemNotFound
		}
		return nil, fmt.Errorf("ошибка чтения лота: %w", err)
	}

	debitDesc := fmt.Sprintf("Покупка подарка у пользователя: %s", giftName)
	newBalance, err := r.ledger.DebitTx(ctx, tx, buyerID, salePrice, ledger.TxTypeGiftP2PBuy, debitDesc)
	if err != nil {
		return nil, err
	}

	creditDesc := fmt.Sprintf("Продажа подарка: %s за %s", giftName, common.FormatAmount(salePrice))
	if _, err := r.ledger.CreditTx(ctx, tx, sellerID, salePrice, ledger.TxTypeGiftSale, creditDesc); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_gifts SET owner_id = $1, is_on_sale = FALSE, sale_price = NULL
		WHERE id = $2
	`, buyerID, userGiftID)
	if err != nil {
		return nil, fmt.Errorf("ошибка смены владельца: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO gift_transactions (gift_id, user_gift_id, seller_id, buyer_id, price, transaction_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, giftID, userGiftID, sellerID, buyerID, salePrice, GiftTxP2PSale)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи истории: %w", err)
	}

	result := &PurchaseResult{UserGiftID: userGiftID, NewBalance: newBalance}
	return result, tx.Commit(ctx)
}

// SetOnSale выставляет экземпляр на продажу по указанной цене.
// Проверка владельца и установка флага идут в одной транзакции под
// FOR UPDATE: между проверкой и обновлением владелец смениться не может
// (например, параллельной покупкой этого же лота).
func (r *Repository) SetOnSale(ctx context.Context, ownerID, userGiftID int64, salePrice decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentOwner int64
	err = tx.QueryRow(ctx, `
		SELECT owner_id FROM user_gifts WHERE id = $1 FOR UPDATE
	`, userGiftID).Scan(&currentOwner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrItemNotFound
		}
		return fmt.Errorf("ошибка чтения владельца: %w", err)
	}
	if currentOwner != ownerID {
		return common.ErrNotOwner
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_gifts SET is_on_sale = TRUE, sale_price = $2
		WHERE id = $1
	`, userGiftID, salePrice)
	if err != nil {
		return fmt.Errorf("ошибка выставления на продажу: %w", err)
	}
	return tx.Commit(ctx)
}
