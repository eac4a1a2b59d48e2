// Package users — repository.go отвечает за все операции с таблицей users.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, telegram_id, telegram_username, email, balance, role, is_admin, created_at, last_login`

// Create добавляет нового пользователя со стартовым балансом.
func (r *Repository) Create(ctx context.Context, username string, telegramID *int64, telegramUsername, email *string, startingBalance decimal.Decimal) (*User, error) {
	query := `
		INSERT INTO users (username, telegram_id, telegram_username, email, balance, role, last_login)
		VALUES ($1, $2, $3, $4, $5, 'user', NOW())
		RETURNING ` + userColumns
	var u User
	err := r.db.QueryRow(ctx, query, username, telegramID, telegramUsername, email, startingBalance).Scan(
		&u.ID, &u.Username, &u.TelegramID, &u.TelegramUsername, &u.Email,
		&u.Balance, &u.Role, &u.IsAdmin, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return &u, nil
}

// Exists проверяет, заняты ли имя пользователя или telegram_id.
func (r *Repository) Exists(ctx context.Context, username string, telegramID *int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR ($2::BIGINT IS NOT NULL AND telegram_id = $2))`
	var exists bool
	if err := r.db.QueryRow(ctx, query, username, telegramID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки существования: %w", err)
	}
	return exists, nil
}

// GetByID: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryUser(ctx, query, userID)
}

// GetByUsername: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.queryUser(ctx, query, username)
}

// TouchLastLogin обновляет время последнего входа.
func (r *Repository) TouchLastLogin(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_login = NOW() WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("ошибка обновления last_login: %w", err)
	}
	return nil
}

// CreateWithdrawal создаёт заявку на вывод средств со статусом pending.
func (r *Repository) CreateWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	query := `
		INSERT INTO withdrawal_requests (user_id, amount, status)
		VALUES ($1, $2, 'pending')
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, userID, amount).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания заявки на вывод: %w", err)
	}
	return id, nil
}

func (r *Repository) queryUser(ctx context.Context, query string, args ...interface{}) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Username, &u.TelegramID, &u.TelegramUsername, &u.Email,
		&u.Balance, &u.Role, &u.IsAdmin, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &u, nil
}
