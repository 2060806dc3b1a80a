package common

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorBody is the canonical error payload returned by every endpoint.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v to the response writer as JSON with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONList writes a collection envelope and mirrors the total in the
// X-Total-Count header so the storefront's pagination stays header-driven.
func JSONList(w http.ResponseWriter, status int, data any, total int, extra map[string]any) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	body := map[string]any{"data": data, "total": total}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, status, body)
}

// JSONError renders an error response using the canonical error envelope.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
