// Package tasks — repository.go выполняет операции с таблицами tasks и user_tasks.
//
// Ключевой запрос — CompleteAndReward: вставка отметки о выполнении и
// начисление награды идут в одной транзакции, а защита от повторной
// награды построена на уникальном индексе (user_id, task_id):
// сначала пытаемся вставить отметку, и только если строка реально
// добавилась — начисляем.
package tasks

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

// ListForUser возвращает активные задания с отметкой о выполнении
// данным пользователем. Сортировка по награде, как в витрине.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]*Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.title, t.description, t.task_type, t.reward, t.icon,
		       t.telegram_channel_id, t.is_active, t.created_at,
		       ut.id IS NOT NULL AS completed
		FROM tasks t
		LEFT JOIN user_tasks ut ON t.id = ut.task_id AND ut.user_id = $1
		WHERE t.is_active = TRUE
		ORDER BY t.reward DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса заданий: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.TaskType, &t.Reward, &t.Icon,
			&t.TelegramChannelID, &t.IsActive, &t.CreatedAt, &t.Completed,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования задания: %w", err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return tasks, nil
}

// GetByID: если задание не найдено — common.ErrTaskNotFound.
func (r *Repository) GetByID(ctx context.Context, taskID int64) (*Task, error) {
	var t Task
	err := r.db.QueryRow(ctx, `
		SELECT id, title, description, task_type, reward, icon,
		       telegram_channel_id, is_active, created_at
		FROM tasks
		WHERE id = $1
	`, taskID).Scan(
		&t.ID, &t.Title, &t.Description, &t.TaskType, &t.Reward, &t.Icon,
		&t.TelegramChannelID, &t.IsActive, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrTaskNotFound
		}
		return nil, fmt.Errorf("ошибка чтения задания: %w", err)
	}
	return &t, nil
}

// CompleteAndReward атомарно отмечает задание выполненным и начисляет награду.
// Повторный вызов для той же пары (user, task) возвращает common.ErrTaskCompleted
// и не меняет ничего: вставка с ON CONFLICT DO NOTHING не вернёт строку,
// и начисление не выполнится.
func (r *Repository) CompleteAndReward(ctx context.Context, userID int64, task *Task) (decimal.Decimal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var completionID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO user_tasks (user_id, task_id, verified)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (user_id, task_id) DO NOTHING
		RETURNING id
	`, userID, task.ID).Scan(&completionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Строка не вставилась — награда уже была выдана
			return decimal.Zero, common.ErrTaskCompleted
		}
		return decimal.Zero, fmt.Errorf("ошибка отметки выполнения: %w", err)
	}

	description := fmt.Sprintf("Награда за задание: %s", task.Title)
	newBalance, err := r.ledger.CreditTx(ctx, tx, userID, task.Reward, ledger.TxTypeTaskReward, description)
	if err != nil {
		return decimal.Zero, err
	}

	return newBalance, tx.Commit(ctx)
}
