// Package exchange — handlers.go: HTTP-обработчик /exchange.
package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/httpapi/respond"
)

// exchangeService — контракт сервиса, нужный обработчику.
type exchangeService interface {
	Companies(ctx context.Context) ([]*Company, error)
	PriceHistory(ctx context.Context, companyID int64) ([]*PricePoint, error)
	Portfolio(ctx context.Context, userID int64) ([]*Position, error)
	Buy(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error)
	Sell(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error)
}

// Handler обслуживает маршрут /exchange.
type Handler struct {
	service exchangeService
}

// NewHandler создаёт обработчик биржи.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getAction — закрытый набор действий для GET-запросов.
type getAction string

const (
	actionCompanies    getAction = "companies"
	actionPriceHistory getAction = "price_history"
	actionPortfolio    getAction = "portfolio"
)

// parseGetAction: пустая строка трактуется как companies (исторический дефолт).
func parseGetAction(raw string) (getAction, error) {
	switch getAction(raw) {
	case actionCompanies, "":
		return actionCompanies, nil
	case actionPriceHistory:
		return actionPriceHistory, nil
	case actionPortfolio:
		return actionPortfolio, nil
	default:
		return "", common.ErrUnknownAction
	}
}

// postAction — закрытый набор действий для POST-запросов.
type postAction string

const (
	actionBuy  postAction = "buy"
	actionSell postAction = "sell"
)

func parsePostAction(raw string) (postAction, error) {
	switch postAction(raw) {
	case actionBuy:
		return actionBuy, nil
	case actionSell:
		return actionSell, nil
	default:
		return "", common.ErrUnknownAction
	}
}

type tradeRequest struct {
	Action    string `json:"action"`
	UserID    int64  `json:"user_id"`
	CompanyID int64  `json:"company_id"`
	Shares    int64  `json:"shares"`
}

// Handle обрабатывает все запросы к /exchange.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		respond.Fail(w, common.ErrBadRequest)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	action, err := parseGetAction(r.URL.Query().Get("action"))
	if err != nil {
		respond.Fail(w, err)
		return
	}

	switch action {
	case actionCompanies:
		companies, err := h.service.Companies(r.Context())
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if companies == nil {
			companies = []*Company{}
		}
		respond.Success(w, map[string]interface{}{"companies": companies})

	case actionPriceHistory:
		companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
		if err != nil {
			respond.Fail(w, common.ErrBadRequest)
			return
		}
		history, err := h.service.PriceHistory(r.Context(), companyID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if history == nil {
			history = []*PricePoint{}
		}
		respond.Success(w, map[string]interface{}{"history": history})

	case actionPortfolio:
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			respond.Fail(w, common.ErrBadRequest)
			return
		}
		portfolio, err := h.service.Portfolio(r.Context(), userID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if portfolio == nil {
			portfolio = []*Position{}
		}
		respond.Success(w, map[string]interface{}{"portfolio": portfolio})
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, common.ErrBadRequest)
		return
	}

	action, err := parsePostAction(req.Action)
	if err != nil {
		respond.Fail(w, err)
		return
	}

	switch action {
	case actionBuy:
		result, err := h.service.Buy(r.Context(), req.UserID, req.CompanyID, req.Shares)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{
			"message":     "Shares purchased successfully",
			"new_balance": result.NewBalance,
		})

	case actionSell:
		result, err := h.service.Sell(r.Context(), req.UserID, req.CompanyID, req.Shares)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{
			"message":     "Shares sold successfully",
			"total_value": result.TotalAmount,
			"new_balance": result.NewBalance,
		})
	}
}
