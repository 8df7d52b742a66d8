package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/status"
)

func jsonResponse(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, code int, err error) {
	jsonResponse(w, code, map[string]any{
		"error": err.Error(),
		"code":  code,
	})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, status.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, status.ErrInvalidTransition), errors.Is(err, apperr.ErrStatusConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDBConn):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
