// Package admin — repository.go выполняет запросы админки к БД.
package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Лимит списка пользователей в админке
const usersListLimit = 100

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// IsAdmin проверяет флаг is_admin. Несуществующий пользователь — не админ.
func (r *Repository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRow(ctx, `SELECT is_admin FROM users WHERE id = $1`, userID).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка проверки прав: %w", err)
	}
	return isAdmin, nil
}

// Stats собирает сводные показатели платформы.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM(balance), 0) FROM users),
			(SELECT COUNT(*) FROM balance_transactions),
			(SELECT COUNT(*) FROM withdrawal_requests WHERE status = 'pending')
	`).Scan(&s.TotalUsers, &s.TotalBalance, &s.TotalTransactions, &s.PendingWithdrawals)
	if err != nil {
		return nil, fmt.Errorf("ошибка сбора статистики: %w", err)
	}
	return &s, nil
}

// Withdrawals возвращает все заявки на вывод с данными пользователей,
// свежие сверху.
func (r *Repository) Withdrawals(ctx context.Context) ([]*WithdrawalRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT wr.id, wr.user_id, wr.amount, wr.status, wr.admin_comment,
		       wr.processed_by, wr.created_at, wr.processed_at,
		       u.username, u.balance
		FROM withdrawal_requests wr
		JOIN users u ON wr.user_id = u.id
		ORDER BY wr.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса заявок: %w", err)
	}
	defer rows.Close()

	var withdrawals []*WithdrawalRow
	for rows.Next() {
		var w WithdrawalRow
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Amount, &w.Status, &w.AdminComment,
			&w.ProcessedBy, &w.CreatedAt, &w.ProcessedAt,
			&w.Username, &w.Balance,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return withdrawals, nil
}

// TopUsers возвращает пользователей по убыванию баланса.
func (r *Repository) TopUsers(ctx context.Context) ([]*UserRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, email, telegram_username, balance, is_admin, created_at, last_login
		FROM users
		ORDER BY balance DESC
		LIMIT $1
	`, usersListLimit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса пользователей: %w", err)
	}
	defer rows.Close()

	var users []*UserRow
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.TelegramUsername,
			&u.Balance, &u.IsAdmin, &u.CreatedAt, &u.LastLogin,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return users, nil
}

// CreateTask добавляет задание в каталог.
func (r *Repository) CreateTask(ctx context.Context, title, description, taskType string, reward decimal.Decimal, channelID *string) (int64, error) {
	var taskID int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, description, task_type, reward, icon, telegram_channel_id)
		VALUES ($1, $2, $3, $4, 'Star', $5)
		RETURNING id
	`, title, description, taskType, reward, channelID).Scan(&taskID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания задания: %w", err)
	}
	return taskID, nil
}

// ProcessWithdrawal переводит заявку из pending в конечный статус.
// Заявка блокируется FOR UPDATE: повторная обработка видит уже
// изменённый статус и отклоняется. Движения денег здесь нет.
func (r *Repository) ProcessWithdrawal(ctx context.Context, withdrawalID int64, status, comment string, adminID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `
		SELECT status FROM withdrawal_requests WHERE id = $1 FOR UPDATE
	`, withdrawalID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrItemNotFound
		}
		return fmt.Errorf("ошибка чтения заявки: %w", err)
	}
	if current != "pending" {
		return common.ErrWithdrawalProcessed
	}

	_, err = tx.Exec(ctx, `
		UPDATE withdrawal_requests
		SET status = $2, admin_comment = $3, processed_by = $4, processed_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, withdrawalID, status, comment, adminID)
	if err != nil {
		return fmt.Errorf("ошибка обработки заявки: %w", err)
	}

	return tx.Commit(ctx)
}
