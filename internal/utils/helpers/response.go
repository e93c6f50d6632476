package helpers

import (
	"encoding/json"
	"net/http"
)

// Success пишет {"success":true, ...extra}. Форма ответа согласована
// с фронтендом: ошибки состояния токена приходят телом, а не HTTP-статусом.
func Success(w http.ResponseWriter, status int, extra map[string]any) {
	payload := map[string]any{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	write(w, status, payload)
}

// Fail пишет {"success":false,"error":msg}.
func Fail(w http.ResponseWriter, status int, errMsg string) {
	write(w, status, map[string]any{"success": false, "error": errMsg})
}

func write(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return
	}
}
