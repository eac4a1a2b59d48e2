// Package httpapi собирает HTTP-маршруты и цепочку фильтров.
package httpapi

import (
	"net/http"

	"stargift.ru/economy-api/internal/httpapi/middleware"
)

// Handlers — обработчики всех маршрутов API.
type Handlers struct {
	Auth        http.HandlerFunc
	Tasks       http.HandlerFunc
	Exchange    http.HandlerFunc
	Marketplace http.HandlerFunc
	Admin       http.HandlerFunc
}

// NewRouter собирает мультиплексор и оборачивает его фильтрами.
// Порядок: recovery (внешний) → лог запросов → CORS → лимит запросов.
// CORS стоит до лимитера, чтобы preflight-запросы OPTIONS не тратили квоту.
func NewRouter(h Handlers, limiter *middleware.RateLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth", h.Auth)
	mux.HandleFunc("/tasks", h.Tasks)
	mux.HandleFunc("/exchange", h.Exchange)
	mux.HandleFunc("/marketplace", h.Marketplace)
	mux.HandleFunc("/admin", h.Admin)
	mux.HandleFunc("/health", handleHealth)

	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logger(handler)
	handler = middleware.Recovery(handler)
	return handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
