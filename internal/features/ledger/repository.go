// Package ledger — repository.go выполняет все операции с балансом
// и журналом balance_transactions.
//
// Это единственное место в проекте, где изменяется колонка users.balance:
// биржа, маркетплейс, задания и админка вызывают CreditTx/DebitTx внутри
// своих транзакций. Каждое изменение баланса сопровождается ровно одной
// записью в журнале — либо происходят оба, либо ни одного.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

// Repository предоставляет методы кредитования и списания.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий журнала баланса.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreditTx начисляет монеты пользователю внутри ЧУЖОЙ транзакции.
// Возвращает новый баланс. Вызывающий отвечает за Commit/Rollback.
func (r *Repository) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`, userID, amount).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, common.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("ошибка начисления: %w", err)
	}

	if err := r.insertTx(ctx, tx, userID, amount, txType, description); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// DebitTx списывает монеты внутри ЧУЖОЙ транзакции.
// Строка пользователя блокируется FOR UPDATE на время проверки и списания,
// чтобы два параллельных запроса не прошли проверку по одному и тому же
// устаревшему балансу. При нехватке средств ничего не изменяется.
func (r *Repository) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	var currentBalance decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT balance FROM users WHERE id = $1 FOR UPDATE
	`, userID).Scan(&currentBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, common.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("ошибка получения баланса: %w", err)
	}

	if currentBalance.LessThan(amount) {
		return decimal.Zero, common.ErrInsufficientBalance
	}

	var newBalance decimal.Decimal
	err = tx.QueryRow(ctx, `
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1
		RETURNING balance
	`, userID, amount).Scan(&newBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка списания: %w", err)
	}

	// В журнале списание хранится со знаком минус
	if err := r.insertTx(ctx, tx, userID, amount.Neg(), txType, description); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Credit начисляет монеты в собственной транзакции.
func (r *Repository) Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	newBalance, err := r.CreditTx(ctx, tx, userID, amount, txType, description)
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, tx.Commit(ctx)
}

// Debit списывает монеты в собственной транзакции.
func (r *Repository) Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType, description string) (decimal.Decimal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	newBalance, err := r.DebitTx(ctx, tx, userID, amount, txType, description)
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, tx.Commit(ctx)
}

// GetBalance возвращает текущий баланс пользователя.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, common.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// GetTransactions возвращает последние N записей журнала пользователя.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, transaction_type, description, created_at
		FROM balance_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.TransactionType, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return transactions, nil
}

// insertTx добавляет запись в журнал. Сумма уже со знаком.
func (r *Repository) insertTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO balance_transactions (user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}
