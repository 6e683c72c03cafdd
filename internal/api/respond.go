package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/vladimiradmaev/glucose-insights/internal/errors"
)

type errorBody struct {
	Type    apperrors.ErrorType `json:"type"`
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details interface{}         `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	case apperrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err onto a status and a JSON error body. Internal causes
// are logged, never returned.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	body := errorBody{
		Type:    apperrors.ErrorTypeInternal,
		Code:    apperrors.ErrInternalServer.Code,
		Message: apperrors.ErrInternalServer.Message,
		Details: details,
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Type = appErr.Type
		body.Code = appErr.Code
		body.Message = appErr.Message
	}

	rt.errors.Handle(r.Context(), err)
	writeJSON(w, statusFor(body.Type), map[string]errorBody{"error": body})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewValidationError("malformed JSON body: " + err.Error())
	}
	return nil
}
