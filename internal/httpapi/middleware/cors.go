// Package middleware — обёртки над HTTP-обработчиками:
// CORS, логирование запросов, восстановление после паник, rate limiting.
package middleware

import "net/http"

// CORS добавляет разрешающие CORS-заголовки к каждому ответу.
// Pre-flight OPTIONS всегда получает 200 с пустым телом,
// независимо от маршрута.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id, X-Admin-Token")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
