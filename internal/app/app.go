// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"stargift.ru/economy-api/internal/config"
	"stargift.ru/economy-api/internal/db/postgres"
	"stargift.ru/economy-api/internal/features/admin"
	"stargift.ru/economy-api/internal/features/exchange"
	"stargift.ru/economy-api/internal/features/ledger"
	"stargift.ru/economy-api/internal/features/marketplace"
	"stargift.ru/economy-api/internal/features/tasks"
	"stargift.ru/economy-api/internal/features/users"
	"stargift.ru/economy-api/internal/httpapi"
	"stargift.ru/economy-api/internal/httpapi/middleware"
	"stargift.ru/economy-api/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Router      http.Handler
	Scheduler   *jobs.Scheduler
	DB          *pgxpool.Pool
	RateLimiter *middleware.RateLimiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := Migrate(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	// Бот нужен только для getChatMember при проверке заданий на подписку.
	bot, err := telego.NewBot(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	verifier := tasks.NewTelegramVerifier(bot)

	// === 3. Репозитории ===
	ledgerRepo := ledger.NewRepository(pool)
	userRepo := users.NewRepository(pool)
	taskRepo := tasks.NewRepository(pool, ledgerRepo)
	exchangeRepo := exchange.NewRepository(pool, ledgerRepo)
	marketRepo := marketplace.NewRepository(pool, ledgerRepo)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	ledgerService := ledger.NewService(ledgerRepo)
	userService := users.NewService(userRepo, ledgerService, cfg)
	taskService := tasks.NewService(taskRepo, verifier)
	exchangeService := exchange.NewService(exchangeRepo)
	marketService := marketplace.NewService(marketRepo)
	adminService := admin.NewService(adminRepo, ledgerService)

	// === 5. Обработчики ===
	userHandler := users.NewHandler(userService)
	taskHandler := tasks.NewHandler(taskService)
	exchangeHandler := exchange.NewHandler(exchangeService)
	marketHandler := marketplace.NewHandler(marketService)
	adminHandler := admin.NewHandler(adminService)

	// === 6. Маршрутизация и фильтры ===
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:        userHandler.Handle,
		Tasks:       taskHandler.Handle,
		Exchange:    exchangeHandler.Handle,
		Marketplace: marketHandler.Handle,
		Admin:       adminHandler.Handle,
	}, limiter)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(exchangeService, cfg)

	return &App{
		Router:      router,
		Scheduler:   scheduler,
		DB:          pool,
		RateLimiter: limiter,
	}, nil
}

// Migrate выполняет все SQL-миграции по порядку.
// Вызывается при старте приложения и из интеграционных тестов.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Ledger},
		{3, migration003Tasks},
		{4, migration004Exchange},
		{5, migration005Marketplace},
		{6, migration006Withdrawals},
		{7, migration007Seed},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(255) UNIQUE NOT NULL,
    telegram_id BIGINT UNIQUE,
    telegram_username VARCHAR(255),
    email VARCHAR(255),
    balance NUMERIC(14,2) NOT NULL DEFAULT 0,
    role VARCHAR(32) DEFAULT 'user',
    is_admin BOOLEAN DEFAULT FALSE,
    created_at TIMESTAMP DEFAULT NOW(),
    last_login TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id);
`

var migration002Ledger = `
CREATE TABLE IF NOT EXISTS balance_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    amount NUMERIC(14,2) NOT NULL,
    transaction_type VARCHAR(50) NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_balance_transactions_user ON balance_transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_balance_transactions_created_at ON balance_transactions(created_at DESC);
`

var migration003Tasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT DEFAULT '',
    task_type VARCHAR(50) NOT NULL DEFAULT 'manual',
    reward NUMERIC(14,2) NOT NULL,
    icon VARCHAR(64) DEFAULT 'Star',
    telegram_channel_id VARCHAR(255),
    is_active BOOLEAN DEFAULT TRUE,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_tasks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    task_id BIGINT NOT NULL REFERENCES tasks(id),
    verified BOOLEAN DEFAULT FALSE,
    completed_at TIMESTAMP DEFAULT NOW(),
    UNIQUE(user_id, task_id)
);
CREATE INDEX IF NOT EXISTS idx_user_tasks_user ON user_tasks(user_id);
`

var migration004Exchange = `
CREATE TABLE IF NOT EXISTS companies (
    id BIGSERIAL PRIMARY KEY,
    ticker VARCHAR(16) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL,
    description TEXT DEFAULT '',
    base_price NUMERIC(14,2) NOT NULL,
    current_price NUMERIC(14,2) NOT NULL,
    icon VARCHAR(64) DEFAULT 'TrendingUp',
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS stock_price_history (
    id BIGSERIAL PRIMARY KEY,
    company_id BIGINT NOT NULL REFERENCES companies(id),
    price NUMERIC(14,2) NOT NULL,
    recorded_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_price_history_company ON stock_price_history(company_id, recorded_at DESC);
CREATE TABLE IF NOT EXISTS user_stocks (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    company_id BIGINT NOT NULL REFERENCES companies(id),
    shares BIGINT NOT NULL DEFAULT 0,
    average_buy_price NUMERIC(14,2) NOT NULL DEFAULT 0,
    UNIQUE(user_id, company_id)
);
CREATE TABLE IF NOT EXISTS stock_transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    company_id BIGINT NOT NULL REFERENCES companies(id),
    transaction_type VARCHAR(10) NOT NULL,
    shares BIGINT NOT NULL,
    price_per_share NUMERIC(14,2) NOT NULL,
    total_amount NUMERIC(14,2) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_stock_transactions_user ON stock_transactions(user_id);
`

var migration005Marketplace = `
CREATE TABLE IF NOT EXISTS gifts (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT DEFAULT '',
    rarity VARCHAR(32) DEFAULT 'common',
    base_price NUMERIC(14,2) NOT NULL,
    emoji VARCHAR(16) DEFAULT '🎁'
);
CREATE TABLE IF NOT EXISTS user_gifts (
    id BIGSERIAL PRIMARY KEY,
    owner_id BIGINT NOT NULL REFERENCES users(id),
    gift_id BIGINT NOT NULL REFERENCES gifts(id),
    purchase_price NUMERIC(14,2) NOT NULL,
    is_on_sale BOOLEAN DEFAULT FALSE,
    sale_price NUMERIC(14,2),
    purchased_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_user_gifts_owner ON user_gifts(owner_id);
CREATE INDEX IF NOT EXISTS idx_user_gifts_on_sale ON user_gifts(is_on_sale) WHERE is_on_sale = TRUE;
CREATE TABLE IF NOT EXISTS gift_transactions (
    id BIGSERIAL PRIMARY KEY,
    gift_id BIGINT NOT NULL REFERENCES gifts(id),
    user_gift_id BIGINT NOT NULL REFERENCES user_gifts(id),
    seller_id BIGINT REFERENCES users(id),
    buyer_id BIGINT NOT NULL REFERENCES users(id),
    price NUMERIC(14,2) NOT NULL,
    transaction_type VARCHAR(32) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_gift_transactions_gift ON gift_transactions(gift_id, created_at DESC);
`

var migration006Withdrawals = `
CREATE TABLE IF NOT EXISTS withdrawal_requests (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    amount NUMERIC(14,2) NOT NULL,
    status VARCHAR(32) NOT NULL DEFAULT 'pending',
    admin_comment TEXT,
    processed_by BIGINT REFERENCES users(id),
    created_at TIMESTAMP DEFAULT NOW(),
    processed_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_withdrawal_requests_status ON withdrawal_requests(status);
`

// Стартовый каталог: компании биржи и подарки магазина.
var migration007Seed = `
INSERT INTO companies (ticker, name, description, base_price, current_price, icon) VALUES
    ('STAR', 'StarGift Labs', 'Платформа виртуальных подарков', 100.00, 100.00, 'Sparkles'),
    ('COIN', 'CoinWorks', 'Процессинг внутренней валюты', 50.00, 50.00, 'Coins'),
    ('ROCKT', 'Rocket Media', 'Рекламная сеть в Telegram', 75.00, 75.00, 'Rocket'),
    ('GLXY', 'Galaxy Games', 'Студия мини-игр', 120.00, 120.00, 'Gamepad2'),
    ('NOVA', 'Nova Finance', 'Виртуальный банк платформы', 200.00, 200.00, 'Landmark')
ON CONFLICT (ticker) DO NOTHING;

INSERT INTO gifts (name, description, rarity, base_price, emoji)
SELECT v.name, v.description, v.rarity, v.base_price, v.emoji
FROM (VALUES
    ('Плюшевый мишка', 'Классический подарок', 'common', 25.00, '🧸'),
    ('Букет роз', 'Для особого случая', 'common', 40.00, '🌹'),
    ('Торт', 'Сладкий сюрприз', 'common', 60.00, '🎂'),
    ('Золотая звезда', 'Блестит и переливается', 'rare', 150.00, '⭐'),
    ('Бриллиант', 'Редкая драгоценность', 'epic', 500.00, '💎'),
    ('Корона', 'Для настоящих королей', 'legendary', 1500.00, '👑')
) AS v(name, description, rarity, base_price, emoji)
WHERE NOT EXISTS (SELECT 1 FROM gifts);
`
