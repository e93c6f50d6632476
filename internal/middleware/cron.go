package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CronAuth пускает запрос планировщика по секрету в заголовке X-Cron-Secret.
// Пустой секрет в конфиге закрывает endpoint полностью.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-Cron-Secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, "Доступ запрещён", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
