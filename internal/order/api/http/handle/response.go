package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"table-order/internal/order/app/core"
	"table-order/internal/order/domain/dto"
	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/status"
)

var kindStatus = map[string]int{
	"invalid_request":    http.StatusBadRequest,
	"invalid_cart":       http.StatusConflict,
	"stale_catalog":      http.StatusConflict,
	"checkout_sync":      http.StatusServiceUnavailable,
	"not_found":          http.StatusNotFound,
	"status_conflict":    http.StatusConflict,
	"insufficient_stock": http.StatusConflict,
	"db_unavailable":     http.StatusServiceUnavailable,
	"broker_unavailable": http.StatusServiceUnavailable,
	"timeout":            http.StatusGatewayTimeout,
}

func jsonResponse(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// jsonError writes err with the status code its kind maps to.
func jsonError(w http.ResponseWriter, err error) {
	kind := apperr.Kind(err)
	if errors.Is(err, status.ErrInvalidTransition) {
		kind = "status_conflict"
	}
	code, ok := kindStatus[kind]
	if !ok {
		code = http.StatusInternalServerError
	}

	resp := dto.ErrorResponse{Error: err.Error(), Kind: kind}
	var invalid *core.InvalidCartError
	if errors.As(err, &invalid) {
		resp.Dropped = invalid.Dropped
	}
	jsonResponse(w, code, resp)
}

func badJSON(w http.ResponseWriter) {
	jsonResponse(w, http.StatusBadRequest, dto.ErrorResponse{Error: "failed to parse JSON", Kind: "invalid_request"})
}
