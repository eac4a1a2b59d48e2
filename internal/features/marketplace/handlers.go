// Package marketplace — handlers.go: HTTP-обработчик /marketplace.
package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
	"stargift.ru/economy-api/internal/httpapi/respond"
)

// marketplaceService — контракт сервиса, нужный обработчику.
type marketplaceService interface {
	StoreGifts(ctx context.Context) ([]*StoreGift, error)
	Listings(ctx context.Context) ([]*Listing, error)
	History(ctx context.Context, giftID int64) ([]*GiftTransaction, error)
	MyGifts(ctx context.Context, userID int64) ([]*OwnedGift, error)
	BuyFromStore(ctx context.Context, userID, giftID int64) (*PurchaseResult, error)
	BuyFromUser(ctx context.Context, buyerID, userGiftID int64) (*PurchaseResult, error)
	ListForSale(ctx context.Context, userID, userGiftID int64, salePrice decimal.Decimal) error
}

// Handler обслуживает маршрут /marketplace.
type Handler struct {
	service marketplaceService
}

// NewHandler создаёт обработчик рынка.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getAction — закрытый набор действий для GET-запросов.
type getAction string

const (
	actionStoreGifts getAction = "store_gifts"
	actionList       getAction = "list"
	actionHistory    getAction = "history"
	actionMyGifts    getAction = "my_gifts"
)

// parseGetAction: пустая строка трактуется как list (исторический дефолт).
func parseGetAction(raw string) (getAction, error) {
	switch getAction(raw) {
	case actionList, "":
		return actionList, nil
	case actionStoreGifts:
		return actionStoreGifts, nil
	case actionHistory:
		return actionHistory, nil
	case actionMyGifts:
		return actionMyGifts, nil
	default:
		return "", common.ErrUnknownAction
	}
}

// postAction — закрытый набор действий для POST-запросов.
type postAction string

const (
	actionBuyFromStore postAction = "buy_from_store"
	actionBuyFromUser  postAction = "buy_from_user"
)

func parsePostAction(raw string) (postAction, error) {
	switch postAction(raw) {
	case actionBuyFromStore:
		return actionBuyFromStore, nil
	case actionBuyFromUser:
		return actionBuyFromUser, nil
	default:
		return "", common.ErrUnknownAction
	}
}

// putAction — закрытый набор действий для PUT-запросов.
type putAction string

const actionListForSale putAction = "list_for_sale"

func parsePutAction(raw string) (putAction, error) {
	switch putAction(raw) {
	case actionListForSale:
		return actionListForSale, nil
	default:
		return "", common.ErrUnknownAction
	}
}

type marketRequest struct {
	Action     string          `json:"action"`
	UserID     int64           `json:"user_id"`
	BuyerID    int64           `json:"buyer_id"`
	GiftID     int64           `json:"gift_id"`
	UserGiftID int64           `json:"user_gift_id"`
	SalePrice  decimal.Decimal `json:"sale_price"`
}

// Handle обрабатывает все запросы к /marketplace.
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
	action, err := parseGetAction(r.URL.Query().Get("action"))
	if err != nil {
		respond.Fail(w, err)
		return
	}

	switch action {
	case actionStoreGifts:
		gifts, err := h.service.StoreGifts(r.Context())
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if gifts == nil {
			gifts = []*StoreGift{}
		}
		respond.Success(w, map[string]interface{}{"gifts": gifts})

	case actionList:
		items, err := h.service.Listings(r.Context())
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if items == nil {
			items = []*Listing{}
		}
		respond.Success(w, map[string]interface{}{"items": items})

	case actionHistory:
		giftID, err := strconv.ParseInt(r.URL.Query().Get("gift_id"), 10, 64)
		if err != nil {
			respond.Fail(w, common.ErrBadRequest)
			return
		}
		history, err := h.service.History(r.Context(), giftID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if history == nil {
			history = []*GiftTransaction{}
		}
		respond.Success(w, map[string]interface{}{"history": history})

	case actionMyGifts:
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		if err != nil {
			respond.Fail(w, common.ErrBadRequest)
			return
		}
		gifts, err := h.service.MyGifts(r.Context(), userID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		if gifts == nil {
			gifts = []*OwnedGift{}
		}
		respond.Success(w, map[string]interface{}{"gifts": gifts})
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req marketRequest
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
	case actionBuyFromStore:
		result, err := h.service.BuyFromStore(r.Context(), req.UserID, req.GiftID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{
			"message":      "Gift purchased successfully",
			"user_gift_id": result.UserGiftID,
			"new_balance":  result.NewBalance,
		})

	case actionBuyFromUser:
		result, err := h.service.BuyFromUser(r.Context(), req.BuyerID, req.UserGiftID)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		respond.Success(w, map[string]interface{}{
			"message":      "Gift purchased successfully",
			"user_gift_id": result.UserGiftID,
			"new_balance":  result.NewBalance,
		})
	}
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req marketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, common.ErrBadRequest)
		return
	}

	if _, err := parsePutAction(req.Action); err != nil {
		respond.Fail(w, err)
		return
	}

	if err := h.service.ListForSale(r.Context(), req.UserID, req.UserGiftID, req.SalePrice); err != nil {
		respond.Fail(w, err)
		return
	}
	respond.Success(w, map[string]interface{}{"message": "Gift listed for sale"})
}
