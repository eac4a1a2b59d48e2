// Package exchange — repository.go выполняет все операции биржи с БД.
//
// Сделки идут в одной транзакции: движение денег через журнал баланса
// (блокировка строки пользователя), изменение позиции под FOR UPDATE,
// запись в stock_transactions. Цена читается свежей внутри транзакции —
// межзапросной фиксации цены нет.
package exchange

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

// ListCompanies возвращает все компании с процентом изменения цены
// относительно базовой.
func (r *Repository) ListCompanies(ctx context.Context) ([]*Company, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.ticker, c.name, c.description, c.base_price, c.current_price,
		       c.icon, c.created_at,
		       ROUND(((c.current_price - c.base_price) / c.base_price) * 100, 2) AS change_percent
		FROM companies c
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса компаний: %w", err)
	}
	defer rows.Close()

	var companies []*Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(
			&c.ID, &c.Ticker, &c.Name, &c.Description, &c.BasePrice, &c.CurrentPrice,
			&c.Icon, &c.CreatedAt, &c.ChangePercent,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования компании: %w", err)
		}
		companies = append(companies, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return companies, nil
}

// PriceHistory возвращает последние точки истории цены компании.
func (r *Repository) PriceHistory(ctx context.Context, companyID int64, limit int) ([]*PricePoint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT price, recorded_at
		FROM stock_price_history
		WHERE company_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории цен: %w", err)
	}
	defer rows.Close()

	var history []*PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.Price, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования точки истории: %w", err)
		}
		history = append(history, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return history, nil
}

// Portfolio возвращает позиции пользователя с текущей стоимостью и прибылью.
func (r *Repository) Portfolio(ctx context.Context, userID int64) ([]*Position, error) {
	rows, err := r.db.Query(ctx, `
		SELECT us.id, us.user_id, us.company_id, us.shares, us.average_buy_price,
		       c.name, c.ticker, c.current_price,
		       (c.current_price - us.average_buy_price) * us.shares AS profit,
		       c.current_price * us.shares AS current_value
		FROM user_stocks us
		JOIN companies c ON us.company_id = c.id
		WHERE us.user_id = $1 AND us.shares > 0
		ORDER BY current_value DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса портфеля: %w", err)
	}
	defer rows.Close()

	var portfolio []*Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.CompanyID, &p.Shares, &p.AverageBuyPrice,
			&p.CompanyName, &p.Ticker, &p.CurrentPrice, &p.Profit, &p.CurrentValue,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования позиции: %w", err)
		}
		portfolio = append(portfolio, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return portfolio, nil
}

// Buy покупает акции по текущей цене. В одной транзакции: списание денег
// через журнал, обновление позиции со средневзвешенной ценой покупки,
// запись сделки.
func (r *Repository) Buy(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	company, err := companyForTrade(ctx, tx, companyID)
	if err != nil {
		return nil, err
	}

	totalCost := company.CurrentPrice.Mul(decimal.NewFromInt(shares))
	description := fmt.Sprintf("Покупка акций %s: %d %s", company.Ticker, shares, common.PluralizeShares(shares))

	newBalance, err := r.ledger.DebitTx(ctx, tx, userID, totalCost, ledger.TxTypeStockBuy, description)
	if err != nil {
		return nil, err
	}

	// Позиция блокируется FOR UPDATE, чтобы параллельные покупки не
	// потеряли обновление средней цены
	var heldShares int64
	var avgPrice decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT shares, average_buy_price FROM user_stocks
		WHERE user_id = $1 AND company_id = $2
		FOR UPDATE
	`, userID, companyID).Scan(&heldShares, &avgPrice)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx, `
			INSERT INTO user_stocks (user_id, company_id, shares, average_buy_price)
			VALUES ($1, $2, $3, $4)
		`, userID, companyID, shares, company.CurrentPrice)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания позиции: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения позиции: %w", err)
	default:
		newAvg := weightedAverage(avgPrice, heldShares, company.CurrentPrice, shares)
		_, err = tx.Exec(ctx, `
			UPDATE user_stocks
			SET shares = shares + $3, average_buy_price = $4
			WHERE user_id = $1 AND company_id = $2
		`, userID, companyID, shares, newAvg)
		if err != nil {
			return nil, fmt.Errorf("ошибка обновления позиции: %w", err)
		}
	}

	if err := insertTrade(ctx, tx, userID, companyID, "buy", shares, company.CurrentPrice, totalCost); err != nil {
		return nil, err
	}

	result := &TradeResult{TotalAmount: totalCost, NewBalance: newBalance}
	return result, tx.Commit(ctx)
}

// Sell продаёт акции по текущей цене. Средняя цена покупки при продаже
// не меняется.
func (r *Repository) Sell(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокировки берутся в том же порядке, что и при покупке: сначала
	// строка пользователя, затем позиция. Встречные buy/sell одного
	// пользователя иначе могут взаимно заблокироваться.
	var one int
	err = tx.QueryRow(ctx, `
		SELECT 1 FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка блокировки пользователя: %w", err)
	}

	var heldShares int64
	err = tx.QueryRow(ctx, `
		SELECT shares FROM user_stocks
		WHERE user_id = $1 AND company_id = $2
		FOR UPDATE
	`, userID, companyID).Scan(&heldShares)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrInsufficientShares
		}
		return nil, fmt.Errorf("ошибка чтения позиции: %w", err)
	}
	if heldShares < shares {
		return nil, common.ErrInsufficientShares
	}

	company, err := companyForTrade(ctx, tx, companyID)
	if err != nil {
		return nil, err
	}

	totalValue := company.CurrentPrice.Mul(decimal.NewFromInt(shares))
	description := fmt.Sprintf("Продажа акций %s: %d %s", company.Ticker, shares, common.PluralizeShares(shares))

	newBalance, err := r.ledger.CreditTx(ctx, tx, userID, totalValue, ledger.TxTypeStockSell, description)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_stocks SET shares = shares - $3
		WHERE user_id = $1 AND company_id = $2
	`, userID, companyID, shares)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления позиции: %w", err)
	}

	if err := insertTrade(ctx, tx, userID, companyID, "sell", shares, company.CurrentPrice, totalValue); err != nil {
		return nil, err
	}

	result := &TradeResult{TotalAmount: totalValue, NewBalance: newBalance}
	return result, tx.Commit(ctx)
}

// SnapshotPrices снимает текущие цены всех компаний в историю.
func (r *Repository) SnapshotPrices(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO stock_price_history (company_id, price)
		SELECT id, current_price FROM companies
	`)
	if err != nil {
		return 0, fmt.Errorf("ошибка снимка цен: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PruneHistory удаляет точки истории старше заданного числа дней.
func (r *Repository) PruneHistory(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM stock_price_history
		WHERE recorded_at < NOW() - ($1 * INTERVAL '1 day')
	`, days)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки истории цен: %w", err)
	}
	return tag.RowsAffected(), nil
}

// companyForTrade читает компанию внутри транзакции сделки.
func companyForTrade(ctx context.Context, tx pgx.Tx, companyID int64) (*Company, error) {
	var c Company
	err := tx.QueryRow(ctx, `
		SELECT id, ticker, current_price FROM companies WHERE id = $1
	`, companyID).Scan(&c.ID, &c.Ticker, &c.CurrentPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("ошибка чтения компании: %w", err)
	}
	return &c, nil
}

// insertTrade записывает сделку в stock_transactions.
func insertTrade(ctx context.Context, tx pgx.Tx, userID, companyID int64, tradeType string, shares int64, price, total decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_transactions (user_id, company_id, transaction_type, shares, price_per_share, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, companyID, tradeType, shares, price, total)
	if err != nil {
		return fmt.Errorf("ошибка записи сделки: %w", err)
	}
	return nil
}

// weightedAverage пересчитывает среднюю цену покупки после докупки:
// (старая_средняя * старое_кол-во + цена * кол-во) / (старое_кол-во + кол-во).
// Арифметика точная, без плавающей точки.
func weightedAverage(oldAvg decimal.Decimal, oldShares int64, price decimal.Decimal, newShares int64) decimal.Decimal {
	oldQty := decimal.NewFromInt(oldShares)
	newQty := decimal.NewFromInt(newShares)
	total := oldAvg.Mul(oldQty).Add(price.Mul(newQty))
	return total.DivRound(oldQty.Add(newQty), 2)
}
