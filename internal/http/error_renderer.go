package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/target/order-notify/internal/errors"
)

// statusByCode maps application error codes onto HTTP statuses.
var statusByCode = map[apperrors.ErrorCode]int{
	apperrors.ErrCodeValidation:  http.StatusBadRequest,
	apperrors.ErrCodeNotFound:    http.StatusNotFound,
	apperrors.ErrCodeConflict:    http.StatusConflict,
	apperrors.ErrCodeUnavailable: http.StatusServiceUnavailable,
	apperrors.ErrCodeTimeout:     http.StatusGatewayTimeout,
	apperrors.ErrCodeCanceled:    499,
	apperrors.ErrCodeInternal:    http.StatusInternalServerError,
}

// DetermineErrorStatus returns the HTTP status for err. Errors without an
// application code are treated as internal.
func DetermineErrorStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[appErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RenderError writes err as a JSON error body. Internal errors are logged and
// their details are not returned to the caller.
func RenderError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := DetermineErrorStatus(err)
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = string(apperrors.ErrCodeInternal)
	}

	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(r.Context(), "request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"error", err,
			)
		}
		WriteError(w, ErrorParams{Code: status, ErrCode: code})
		return
	}

	msg := apperrors.GetMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	WriteError(w, ErrorParams{
		Code:    status,
		ErrCode: code,
		Err:     errors.New(msg),
		Field:   apperrors.GetField(err),
	})
}
