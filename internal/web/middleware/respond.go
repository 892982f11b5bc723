package middleware

import (
	"encoding/json"
	"net/http"
)

// reject writes a JSON error shaped like the handlers' ErrorResponse.
func reject(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": message,
		"code":    code,
	})
}
