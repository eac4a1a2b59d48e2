// Package respond формирует JSON-ответы API в едином формате.
// Большинство обработчиков отвечают конвертом {success, error?, ...};
// обработчик аутентификации исторически возвращает объект пользователя
// напрямую (или голый {error}) — для него есть отдельные функции.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"stargift.ru/economy-api/internal/common"
)

// JSON сериализует v и пишет его с указанным статусом.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка сериализации ответа")
	}
}

// Success отвечает 200 с конвертом {success: true, ...payload}.
func Success(w http.ResponseWriter, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Fail отвечает конвертом {success: false, error} со статусом,
// соответствующим типу ошибки.
func Fail(w http.ResponseWriter, err error) {
	status, message := httpError(err)
	JSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// AuthError отвечает голым {error} — формат обработчика аутентификации.
func AuthError(w http.ResponseWriter, err error) {
	status, message := httpError(err)
	JSON(w, status, map[string]interface{}{"error": message})
}

// httpError отображает доменную ошибку на HTTP-статус и сообщение клиенту.
// Неизвестные ошибки (обычно сбои БД) не раскрываются — только 500.
func httpError(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUsernameRequired):
		return http.StatusBadRequest, "Username is required"
	case errors.Is(err, common.ErrUserExists):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, common.ErrInvalidAmount):
		return http.StatusBadRequest, "Invalid amount"
	case errors.Is(err, common.ErrInsufficientBalance):
		return http.StatusBadRequest, "Insufficient balance"
	case errors.Is(err, common.ErrInsufficientShares):
		return http.StatusBadRequest, "Insufficient shares"
	case errors.Is(err, common.ErrTaskCompleted):
		return http.StatusBadRequest, "Task already completed"
	case errors.Is(err, common.ErrVerificationFailed):
		return http.StatusBadRequest, "Verification failed"
	case errors.Is(err, common.ErrWithdrawalProcessed):
		return http.StatusBadRequest, "Withdrawal already processed"
	case errors.Is(err, common.ErrInvalidStatus):
		return http.StatusBadRequest, "Invalid status"
	case errors.Is(err, common.ErrUnknownAction), errors.Is(err, common.ErrBadRequest):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrTaskNotFound):
		return http.StatusNotFound, "Task not found"
	case errors.Is(err, common.ErrCompanyNotFound):
		return http.StatusNotFound, "Company not found"
	case errors.Is(err, common.ErrGiftNotFound):
		return http.StatusNotFound, "Gift not found"
	case errors.Is(err, common.ErrItemNotFound):
		return http.StatusNotFound, "Item not found"
	case errors.Is(err, common.ErrNotAdmin):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, common.ErrNotOwner):
		return http.StatusForbidden, "Not the owner"
	default:
		log.WithError(err).Error("Внутренняя ошибка обработчика")
		return http.StatusInternalServerError, "Internal server error"
	}
}
