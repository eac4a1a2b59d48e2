// Package tasks — handlers.go: HTTP-обработчик /tasks.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/httpapi/respond"
)

// tasksService — контракт сервиса, нужный обработчику.
type tasksService interface {
	ListForUser(ctx context.Context, userID int64) ([]*Task, error)
	Verify(ctx context.Context, userID, taskID, telegramUserID int64) (*VerifyResult, error)
}

// Handler обслуживает маршрут /tasks.
type Handler struct {
	service tasksService
}

// NewHandler создаёт обработчик заданий.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// postAction — закрытый набор действий для POST-запросов.
type postAction string

const actionVerify postAction = "verify"

func parsePostAction(raw string) (postAction, error) {
	switch postAction(raw) {
	case actionVerify:
		return actionVerify, nil
	default:
		return "", common.ErrUnknownAction
	}
}

type verifyRequest struct {
	Action         string `json:"action"`
	UserID         int64  `json:"user_id"`
	TaskID         int64  `json:"task_id"`
	TelegramUserID int64  `json:"telegram_user_id"`
}

// Handle обрабатывает все запросы к /tasks.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleVerify(w, r)
	default:
		respond.Fail(w, common.ErrBadRequest)
	}
}

// handleList возвращает каталог активных заданий с отметками выполнения.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		respond.Fail(w, common.ErrBadRequest)
		return
	}

	tasks, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if tasks == nil {
		tasks = []*Task{}
	}
	respond.Success(w, map[string]interface{}{"tasks": tasks})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, common.ErrBadRequest)
		return
	}

	if _, err := parsePostAction(req.Action); err != nil {
		respond.Fail(w, err)
		return
	}

	result, err := h.service.Verify(r.Context(), req.UserID, req.TaskID, req.TelegramUserID)
	if err != nil {
		// Провал проверки — часть нормального потока: фронтенд показывает
		// «подпишитесь и попробуйте снова», поэтому в ответе есть verified
		if errors.Is(err, common.ErrVerificationFailed) {
			respond.JSON(w, http.StatusBadRequest, map[string]interface{}{
				"success":  false,
				"verified": false,
				"error":    "Verification failed",
			})
			return
		}
		respond.Fail(w, err)
		return
	}

	respond.Success(w, map[string]interface{}{
		"verified":    true,
		"reward":      result.Reward,
		"new_balance": result.NewBalance,
	})
}
