// Package users — handlers.go: HTTP-обработчик /auth.
//
// Исторический формат ответа: register/login/get возвращают объект
// пользователя НАПРЯМУЮ (без конверта {success}), ошибки — голый {error}.
// Дополнительные действия (заявка на вывод, история операций) используют
// общий конверт.
package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/features/ledger"
	"stargift.ru/economy-api/internal/httpapi/respond"
)

// usersService — контракт сервиса, нужный обработчику.
type usersService interface {
	Register(ctx context.Context, username string, telegramID *int64, telegramUsername, email *string) (*User, error)
	Login(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
	RequestWithdrawal(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	Transactions(ctx context.Context, userID int64, limit int) ([]*ledger.Transaction, error)
}

// Handler обслуживает маршрут /auth.
type Handler struct {
	service usersService
}

// NewHandler создаёт обработчик учётных записей.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// postAction — закрытый набор действий для POST-запросов.
type postAction string

const (
	actionRegister          postAction = "register"
	actionLogin             postAction = "login"
	actionRequestWithdrawal postAction = "request_withdrawal"
)

// parsePostAction сопоставляет строку с действием.
// Пустая строка трактуется как register (исторический дефолт).
func parsePostAction(raw string) (postAction, error) {
	switch postAction(raw) {
	case actionRegister, "":
		return actionRegister, nil
	case actionLogin:
		return actionLogin, nil
	case actionRequestWithdrawal:
		return actionRequestWithdrawal, nil
	default:
		return "", common.ErrUnknownAction
	}
}

// getAction — закрытый набор действий для GET-запросов.
type getAction string

const (
	actionProfile      getAction = "profile"
	actionTransactions getAction = "transactions"
)

func parseGetAction(raw string) (getAction, error) {
	switch getAction(raw) {
	case actionProfile, "":
		return actionProfile, nil
	case actionTransactions:
		return actionTransactions, nil
	default:
		return "", common.ErrUnknownAction
	}
}

type postRequest struct {
	Action           string          `json:"action"`
	Username         string          `json:"username"`
	TelegramID       *int64          `json:"telegram_id"`
	TelegramUsername *string         `json:"telegram_username"`
	Email            *string         `json:"email"`
	UserID           int64           `json:"user_id"`
	Amount           decimal.Decimal `json:"amount"`
}

// Handle обрабатывает все запросы к /auth.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		respond.AuthError(w, common.ErrBadRequest)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	action, err := parseGetAction(r.URL.Query().Get("action"))
	if err != nil {
		respond.AuthError(w, err)
		return
	}

	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		respond.AuthError(w, common.ErrBadRequest)
		return
	}

	switch action {
	case actionProfile:
		u, err := h.service.GetByID(r.Context(), userID)
		if err != nil {
			respond.AuthError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, u)

	case actionTransactions:
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		txs, err := h.service.Transactions(r.Context(), userID, limit)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{"transactions": txs})
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.AuthError(w, common.ErrBadRequest)
		return
	}

	action, err := parsePostAction(req.Action)
	if err != nil {
		respond.AuthError(w, err)
		return
	}

	switch action {
	case actionRegister:
		u, err := h.service.Register(r.Context(), req.Username, req.TelegramID, req.TelegramUsername, req.Email)
		if err != nil {
			respond.AuthError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, u)

	case actionLogin:
		u, err := h.service.Login(r.Context(), req.Username)
		if err != nil {
			respond.AuthError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, u)

	case actionRequestWithdrawal:
		id, err := h.service.RequestWithdrawal(r.Context(), req.UserID, req.Amount)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{"request_id": id})
	}
}
