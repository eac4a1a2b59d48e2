package marketplace_test

// Интеграционные тесты рынка: выполняются против настоящего PostgreSQL
// и пропускаются, если TEST_DATABASE_URL не задан.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/app"
	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/features/ledger"
	"stargift.ru/economy-api/internal/features/marketplace"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("парсинг DSN: %v", err)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		t.Fatalf("подключение к БД: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := app.Migrate(ctx, pool); err != nil {
		t.Fatalf("миграции: %v", err)
	}
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool, balance string) int64 {
	t.Helper()
	username := fmt.Sprintf("mkt_%d", time.Now().UnixNano())
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, balance) VALUES ($1, $2) RETURNING id
	`, username, decimal.RequireFromString(balance)).Scan(&id)
	if err != nil {
		t.Fatalf("создание пользователя: %v", err)
	}
	return id
}

func userBalance(t *testing.T, pool *pgxpool.Pool, userID int64) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := pool.QueryRow(context.Background(), `
		SELECT balance FROM users WHERE id = $1
	`, userID).Scan(&balance)
	if err != nil {
		t.Fatalf("чтение баланса: %v", err)
	}
	return balance
}

// createListedUnit создаёт подарок и экземпляр, выставленный на продажу.
func createListedUnit(t *testing.T, pool *pgxpool.Pool, ownerID int64, salePrice string) (giftID, unitID int64) {
	t.Helper()
	ctx := context.Background()
	err := pool.QueryRow(ctx, `
		INSERT INTO gifts (name, base_price) VALUES ($1, $2) RETURNING id
	`, fmt.Sprintf("Тестовый подарок %d", time.Now().UnixNano()), decimal.RequireFromString("10")).Scan(&giftID)
	if err != nil {
		t.Fatalf("создание подарка: %v", err)
	}
	err = pool.QueryRow(ctx, `
		INSERT INTO user_gifts (owner_id, gift_id, purchase_price, is_on_sale, sale_price)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id
	`, ownerID, giftID, decimal.RequireFromString("10"), decimal.RequireFromString(salePrice)).Scan(&unitID)
	if err != nil {
		t.Fatalf("создание экземпляра: %v", err)
	}
	return giftID, unitID
}

func TestBuyFromUserMovesMoneyAndOwnershipTogether(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := marketplace.NewRepository(pool, ledger.NewRepository(pool))

	seller := createUser(t, pool, "0")
	buyer := createUser(t, pool, "100")
	_, unitID := createListedUnit(t, pool, seller, "40")

	result, err := repo.BuyFromUser(ctx, buyer, unitID)
	if err != nil {
		t.Fatalf("BuyFromUser: %v", err)
	}
	if want := decimal.RequireFromString("60"); !result.NewBalance.Equal(want) {
		t.Errorf("баланс покупателя = %s, ожидалось %s", result.NewBalance, want)
	}
	if got, want := userBalance(t, pool, seller), decimal.RequireFromString("40"); !got.Equal(want) {
		t.Errorf("баланс продавца = %s, ожидалось %s", got, want)
	}

	var ownerID int64
	var onSale bool
	err = pool.QueryRow(ctx, `
		SELECT owner_id, is_on_sale FROM user_gifts WHERE id = $1
	`, unitID).Scan(&ownerID, &onSale)
	if err != nil {
		t.Fatalf("чтение экземпляра: %v", err)
	}
	if ownerID != buyer {
		t.Errorf("владелец = %d, ожидался покупатель %d", ownerID, buyer)
	}
	if onSale {
		t.Error("экземпляр остался в продаже после покупки")
	}

	// Обе ноги сделки попали в журнал баланса
	var legs int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM balance_transactions WHERE user_id = $1 OR user_id = $2
	`, buyer, seller).Scan(&legs)
	if err != nil {
		t.Fatalf("чтение журнала: %v", err)
	}
	if legs != 2 {
		t.Errorf("записей в журнале = %d, ожидалось 2", legs)
	}
}

func TestBuyFromUserInsufficientBalanceRollsBack(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := marketplace.NewRepository(pool, ledger.NewRepository(pool))

	seller := createUser(t, pool, "0")
	buyer := createUser(t, pool, "10")
	_, unitID := createListedUnit(t, pool, seller, "40")

	_, err := repo.BuyFromUser(ctx, buyer, unitID)
	if !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("ожидался ErrInsufficientBalance, получено %v", err)
	}

	// Откат полный: владелец, флаг продажи, балансы и журнал нетронуты
	var ownerID int64
	var onSale bool
	if err := pool.QueryRow(ctx, `
		SELECT owner_id, is_on_sale FROM user_gifts WHERE id = $1
	`, unitID).Scan(&ownerID, &onSale); err != nil {
		t.Fatalf("чтение экземпляра: %v", err)
	}
	if ownerID != seller || !onSale {
		t.Errorf("экземпляр изменился: владелец %d, в продаже %v", ownerID, onSale)
	}
	if got, want := userBalance(t, pool, buyer), decimal.RequireFromString("10"); !got.Equal(want) {
		t.Errorf("баланс покупателя = %s, ожидалось %s", got, want)
	}
	var legs int
	if err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM balance_transactions WHERE user_id = $1 OR user_id = $2
	`, buyer, seller).Scan(&legs); err != nil {
		t.Fatalf("чтение журнала: %v", err)
	}
	if legs != 0 {
		t.Errorf("записей в журнале = %d, ожидалось 0", legs)
	}
}

func TestSetOnSaleAfterOwnershipChange(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := marketplace.NewRepository(pool, ledger.NewRepository(pool))

	seller := createUser(t, pool, "0")
	buyer := createUser(t, pool, "100")
	_, unitID := createListedUnit(t, pool, seller, "40")

	if _, err := repo.BuyFromUser(ctx, buyer, unitID); err != nil {
		t.Fatalf("BuyFromUser: %v", err)
	}

	// Бывший владелец пытается перевыставить уже проданный экземпляр
	err := repo.SetOnSale(ctx, seller, unitID, decimal.RequireFromString("999"))
	if !errors.Is(err, common.ErrNotOwner) {
		t.Fatalf("ожидался ErrNotOwner, получено %v", err)
	}

	var onSale bool
	if err := pool.QueryRow(ctx, `
		SELECT is_on_sale FROM user_gifts WHERE id = $1
	`, unitID).Scan(&onSale); err != nil {
		t.Fatalf("чтение экземпляра: %v", err)
	}
	if onSale {
		t.Error("чужой экземпляр оказался выставлен на продажу")
	}
}

func TestSetOnSaleUnknownItem(t *testing.T) {
	pool := testPool(t)
	repo := marketplace.NewRepository(pool, ledger.NewRepository(pool))

	userID := createUser(t, pool, "0")
	err := repo.SetOnSale(context.Background(), userID, 999999999, decimal.RequireFromString("10"))
	if !errors.Is(err, common.ErrItemNotFound) {
		t.Fatalf("ожидался ErrItemNotFound, получено %v", err)
	}
}
