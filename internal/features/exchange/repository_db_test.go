package exchange_test

// Интеграционные тесты биржи: выполняются против настоящего PostgreSQL
// и пропускаются, если TEST_DATABASE_URL не задан.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/app"
	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/features/exchange"
	"stargift.ru/economy-api/internal/features/ledger"
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
	username := fmt.Sprintf("exch_%d", time.Now().UnixNano())
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (username, balance) VALUES ($1, $2) RETURNING id
	`, username, decimal.RequireFromString(balance)).Scan(&id)
	if err != nil {
		t.Fatalf("создание пользователя: %v", err)
	}
	return id
}

func createCompany(t *testing.T, pool *pgxpool.Pool, price string) int64 {
	t.Helper()
	ticker := fmt.Sprintf("TST%011d", time.Now().UnixNano()%100000000000)
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO companies (ticker, name, base_price, current_price)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`, ticker, "Тестовая компания "+ticker, decimal.RequireFromString(price)).Scan(&id)
	if err != nil {
		t.Fatalf("создание компании: %v", err)
	}
	return id
}

func createHolding(t *testing.T, pool *pgxpool.Pool, userID, companyID, shares int64, avgPrice string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO user_stocks (user_id, company_id, shares, average_buy_price)
		VALUES ($1, $2, $3, $4)
	`, userID, companyID, shares, decimal.RequireFromString(avgPrice))
	if err != nil {
		t.Fatalf("создание позиции: %v", err)
	}
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

func TestBuyInsufficientBalanceLeavesNoTrace(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := exchange.NewRepository(pool, ledger.NewRepository(pool))

	userID := createUser(t, pool, "40")
	companyID := createCompany(t, pool, "5")

	// 10 акций по 5 стоят 50 — на балансе 40
	_, err := repo.Buy(ctx, userID, companyID, 10)
	if !errors.Is(err, common.ErrInsufficientBalance) {
		t.Fatalf("ожидался ErrInsufficientBalance, получено %v", err)
	}

	if got, want := userBalance(t, pool, userID), decimal.RequireFromString("40"); !got.Equal(want) {
		t.Errorf("баланс = %s, ожидалось %s", got, want)
	}

	var positions, trades, legs int
	if err := pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM user_stocks WHERE user_id = $1),
			(SELECT COUNT(*) FROM stock_transactions WHERE user_id = $1),
			(SELECT COUNT(*) FROM balance_transactions WHERE user_id = $1)
	`, userID).Scan(&positions, &trades, &legs); err != nil {
		t.Fatalf("чтение следов сделки: %v", err)
	}
	if positions != 0 || trades != 0 || legs != 0 {
		t.Errorf("после отказа остались следы: позиций %d, сделок %d, записей журнала %d",
			positions, trades, legs)
	}
}

func TestConcurrentSellsOnlyOneSucceeds(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := exchange.NewRepository(pool, ledger.NewRepository(pool))

	userID := createUser(t, pool, "0")
	companyID := createCompany(t, pool, "10")
	createHolding(t, pool, userID, companyID, 5, "10")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Sell(ctx, userID, companyID, 5)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrInsufficientShares):
			insufficient++
		default:
			t.Fatalf("неожиданная ошибка продажи: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("успехов %d, отказов %d — ожидалось ровно по одному", ok, insufficient)
	}

	var shares int64
	if err := pool.QueryRow(ctx, `
		SELECT shares FROM user_stocks WHERE user_id = $1 AND company_id = $2
	`, userID, companyID).Scan(&shares); err != nil {
		t.Fatalf("чтение позиции: %v", err)
	}
	if shares != 0 {
		t.Errorf("акций осталось %d, ожидалось 0", shares)
	}
	if got, want := userBalance(t, pool, userID), decimal.RequireFromString("50"); !got.Equal(want) {
		t.Errorf("баланс = %s, ожидалось %s (выручка одной продажи)", got, want)
	}
}

func TestConcurrentBuyAndSellDoNotDeadlock(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := exchange.NewRepository(pool, ledger.NewRepository(pool))

	userID := createUser(t, pool, "10000")
	companyID := createCompany(t, pool, "10")
	createHolding(t, pool, userID, companyID, 100, "10")

	for i := 0; i < 20; i++ {
		var wg sync.WaitGroup
		var buyErr, sellErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, buyErr = repo.Buy(ctx, userID, companyID, 1)
		}()
		go func() {
			defer wg.Done()
			_, sellErr = repo.Sell(ctx, userID, companyID, 1)
		}()
		wg.Wait()
		if buyErr != nil {
			t.Fatalf("итерация %d: покупка: %v", i, buyErr)
		}
		if sellErr != nil {
			t.Fatalf("итерация %d: продажа: %v", i, sellErr)
		}
	}

	var shares int64
	if err := pool.QueryRow(ctx, `
		SELECT shares FROM user_stocks WHERE user_id = $1 AND company_id = $2
	`, userID, companyID).Scan(&shares); err != nil {
		t.Fatalf("чтение позиции: %v", err)
	}
	if shares != 100 {
		t.Errorf("акций осталось %d, ожидалось 100", shares)
	}
	if got, want := userBalance(t, pool, userID), decimal.RequireFromString("10000"); !got.Equal(want) {
		t.Errorf("баланс = %s, ожидалось %s", got, want)
	}
}
