package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"stargift.ru/economy-api/internal/common"
)

type fakeExchangeService struct {
	companies []*Company
	buyErr    error
	sellErr   error
	result    *TradeResult
	buyCalls  int
}

func (f *fakeExchangeService) Companies(ctx context.Context) ([]*Company, error) {
	return f.companies, nil
}

func (f *fakeExchangeService) PriceHistory(ctx context.Context, companyID int64) ([]*PricePoint, error) {
	return nil, nil
}

func (f *fakeExchangeService) Portfolio(ctx context.Context, userID int64) ([]*Position, error) {
	return nil, nil
}

func (f *fakeExchangeService) Buy(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error) {
	f.buyCalls++
	if f.buyErr != nil {
		return nil, f.buyErr
	}
	return f.result, nil
}

func (f *fakeExchangeService) Sell(ctx context.Context, userID, companyID, shares int64) (*TradeResult, error) {
	if f.sellErr != nil {
		return nil, f.sellErr
	}
	return f.result, nil
}

func TestParseGetAction(t *testing.T) {
	tests := []struct {
		raw     string
		want    getAction
		wantErr bool
	}{
		{"", actionCompanies, false},
		{"companies", actionCompanies, false},
		{"price_history", actionPriceHistory, false},
		{"portfolio", actionPortfolio, false},
		{"delete_all", "", true},
		{"COMPANIES", "", true},
	}
	for _, tt := range tests {
		got, err := parseGetAction(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseGetAction(%q): ожидалась ошибка", tt.raw)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseGetAction(%q) = %v, %v; want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestParsePostAction(t *testing.T) {
	if _, err := parsePostAction("buy"); err != nil {
		t.Errorf("buy должен распознаваться: %v", err)
	}
	if _, err := parsePostAction("sell"); err != nil {
		t.Errorf("sell должен распознаваться: %v", err)
	}
	if _, err := parsePostAction(""); err == nil {
		t.Error("пустое действие POST должно отклоняться")
	}
	if _, err := parsePostAction("short"); err == nil {
		t.Error("неизвестное действие должно отклоняться")
	}
}

func TestHandleBuyInsufficientBalance(t *testing.T) {
	fake := &fakeExchangeService{buyErr: common.ErrInsufficientBalance}
	h := &Handler{service: fake}

	body := `{"action":"buy","user_id":1,"company_id":2,"shares":10}`
	req := httptest.NewRequest(http.MethodPost, "/exchange", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, want 400", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["success"] != false {
		t.Error("success должен быть false")
	}
	if resp["error"] != "Insufficient balance" {
		t.Errorf("error = %v, want Insufficient balance", resp["error"])
	}
}

func TestHandleSellInsufficientShares(t *testing.T) {
	fake := &fakeExchangeService{sellErr: common.ErrInsufficientShares}
	h := &Handler{service: fake}

	body := `{"action":"sell","user_id":1,"company_id":2,"shares":999}`
	req := httptest.NewRequest(http.MethodPost, "/exchange", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Insufficient shares") {
		t.Errorf("в ответе нет Insufficient shares: %s", rec.Body.String())
	}
}

func TestHandleBuySuccess(t *testing.T) {
	fake := &fakeExchangeService{
		result: &TradeResult{
			TotalAmount: decimal.RequireFromString("500"),
			NewBalance:  decimal.RequireFromString("250.50"),
		},
	}
	h := &Handler{service: fake}

	body := `{"action":"buy","user_id":1,"company_id":2,"shares":5}`
	req := httptest.NewRequest(http.MethodPost, "/exchange", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, want 200", rec.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["success"] != true {
		t.Error("success должен быть true")
	}
	if resp["message"] != "Shares purchased successfully" {
		t.Errorf("message = %v", resp["message"])
	}
	// decimal сериализуется строкой
	if resp["new_balance"] != "250.5" {
		t.Errorf("new_balance = %v", resp["new_balance"])
	}
}

func TestHandleUnknownPostAction(t *testing.T) {
	fake := &fakeExchangeService{}
	h := &Handler{service: fake}

	body := `{"action":"transfer_everything","user_id":1}`
	req := httptest.NewRequest(http.MethodPost, "/exchange", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, want 400", rec.Code)
	}
	if fake.buyCalls != 0 {
		t.Error("сервис не должен вызываться при неизвестном действии")
	}
}

func TestHandleCompaniesEmpty(t *testing.T) {
	h := &Handler{service: &fakeExchangeService{}}

	req := httptest.NewRequest(http.MethodGet, "/exchange", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, want 200", rec.Code)
	}
	// Пустой каталог — массив, а не null
	if !strings.Contains(rec.Body.String(), `"companies":[]`) {
		t.Errorf("ожидался пустой массив companies: %s", rec.Body.String())
	}
}
