// Package admin — handlers.go: HTTP-обработчик /admin.
//
// Каждый запрос начинается с проверки прав: admin_id берётся из строки
// запроса (GET) или тела (POST/PUT) и должен принадлежать пользователю
// с is_admin = TRUE, иначе 403.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/httpapi/respond"
)

// adminService — контракт сервиса, нужный обработчику.
type adminService interface {
	RequireAdmin(ctx context.Context, adminID int64) error
	Stats(ctx context.Context) (*Stats, error)
	Withdrawals(ctx context.Context) ([]*WithdrawalRow, error)
	Users(ctx context.Context) ([]*UserRow, error)
	AdjustBalance(ctx context.Context, adminID, userID int64, amount decimal.Decimal, reason string) (decimal.Decimal, error)
	CreateTask(ctx context.Context, title, description, taskType string, reward decimal.Decimal, channelID *string) (int64, error)
	ProcessWithdrawal(ctx context.Context, adminID, withdrawalID int64, status, comment string) error
}

// Handler обслуживает маршрут /admin.
type Handler struct {
	service adminService
}

// NewHandler создаёт обработчик админки.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getAction — закрытый набор действий для GET-запросов.
type getAction string

const (
	actionStats       getAction = "stats"
	actionWithdrawals getAction = "withdrawals"
	actionUsers       getAction = "users"
)

// parseGetAction: пустая строка трактуется как stats (исторический дефолт).
func parseGetAction(raw string) (getAction, error) {
	switch getAction(raw) {
	case actionStats, "":
		return actionStats, nil
	case actionWithdrawals:
		return actionWithdrawals, nil
	case actionUsers:
		return actionUsers, nil
	default:
		return "", common.ErrUnknownAction
	}
}

// postAction — закрытый набор действий для POST-запросов.
type postAction string

const (
	actionAddBalance postAction = "add_balance"
	actionAddTask    postAction = "add_task"
)

func parsePostAction(raw string) (postAction, error) {
	switch postAction(raw) {
	case actionAddBalance:
		return actionAddBalance, nil
	case actionAddTask:
		return actionAddTask, nil
	default:
		return "", common.ErrUnknownAction
	}
}

// putAction — закрытый набор действий для PUT-запросов.
type putAction string

const actionProcessWithdrawal putAction = "process_withdrawal"

func parsePutAction(raw string) (putAction, error) {
	switch putAction(raw) {
	case actionProcessWithdrawal:
		return actionProcessWithdrawal, nil
	default:
		return "", common.ErrUnknownAction
	}
}

type adminRequest struct {
	Action            string          `json:"action"`
	AdminID           int64           `json:"admin_id"`
	UserID            int64           `json:"user_id"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Reward            decimal.Decimal `json:"reward"`
	TaskType          string          `json:"task_type"`
	TelegramChannelID *string         `json:"telegram_channel_id"`
	WithdrawalID      int64           `json:"withdrawal_id"`
	Status            string          `json:"status"`
	Comment           string          `json:"comment"`
}

// Handle обрабатывает все запросы к /admin.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodPut:
		h.handlePut(w, r)
	default:
		respond.Fail(w, common.ErrBadRequest)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	adminID, err := strconv.ParseInt(r.URL.Query().Get("admin_id"), 10, 64)
	if err != nil {
		respond.Fail(w, common.ErrNotAdmin)
		return
	}
	if err := h.service.RequireAdmin(r.Context(), adminID); err != nil {
		respond.Fail(w, err)
		return
	}

	action, err := parseGetAction(r.URL.Query().Get("action"))
	if err != nil {
		respond.Fail(w, err)
		return
	}

	switch action {
	case actionStats:
		stats, err := h.service.Stats(r.Context())
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{"stats": stats})

	case actionWithdrawals:
		withdrawals, err := h.service.Withdrawals(r.Context())
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if withdrawals == nil {
			withdrawals = []*WithdrawalRow{}
		}
		respond.Success(w, map[string]interface{}{"withdrawals": withdrawals})

	case actionUsers:
		users, err := h.service.Users(r.Context())
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if users == nil {
			users = []*UserRow{}
		}
		respond.Success(w, map[string]interface{}{"users": users})
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, common.ErrBadRequest)
		return
	}
	if err := h.service.RequireAdmin(r.Context(), req.AdminID); err != nil {
		respond.Fail(w, err)
		return
	}

	action, err := parsePostAction(req.Action)
	if err != nil {
		respond.Fail(w, err)
		return
	}

	switch action {
	case actionAddBalance:
		newBalance, err := h.service.AdjustBalance(r.Context(), req.AdminID, req.UserID, req.Amount, req.Reason)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{
			"message":     "Balance updated",
			"new_balance": newBalance,
		})

	case actionAddTask:
		taskID, err := h.service.CreateTask(r.Context(), req.Title, req.Description, req.TaskType, req.Reward, req.TelegramChannelID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{"task_id": taskID})
	}
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, common.ErrBadRequest)
		return
	}
	if err := h.service.RequireAdmin(r.Context(), req.AdminID); err != nil {
		respond.Fail(w, err)
		return
	}

	if _, err := parsePutAction(req.Action); err != nil {
		respond.Fail(w, err)
		return
	}

	if err := h.service.ProcessWithdrawal(r.Context(), req.AdminID, req.WithdrawalID, req.Status, req.Comment); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.Success(w, map[string]interface{}{"message": "Withdrawal processed"})
}
