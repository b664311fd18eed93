package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dagbjork/verimod/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

// writeDomainErr renders a taxonomy error with its HTTP status. Internal
// errors hide their message from the client.
func writeDomainErr(w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	message := errors.MessageOf(err)
	if kind == errors.KindInternal {
		message = "internal error"
	}
	writeErr(w, statusOf(kind), errCodeOf(kind), message)
}

func statusOf(kind errors.Kind) int {
	switch kind {
	case errors.KindUnauthenticated:
		return http.StatusUnauthorized
	case errors.KindPermissionDenied:
		return http.StatusForbidden
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindAlreadyExists:
		return http.StatusConflict
	case errors.KindInvalidArgument:
		return http.StatusBadRequest
	case errors.KindFailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

func errCodeOf(kind errors.Kind) string {
	switch kind {
	case errors.KindUnauthenticated:
		return ErrCodeUnauthorized
	case errors.KindPermissionDenied:
		return ErrCodeForbidden
	case errors.KindNotFound:
		return ErrCodeNotFound
	case errors.KindAlreadyExists:
		return ErrCodeConflict
	case errors.KindInvalidArgument:
		return ErrCodeInvalidRequest
	case errors.KindFailedPrecondition:
		return ErrCodePreconditionFailed
	default:
		return ErrCodeInternal
	}
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusPreconditionFailed:
		return ErrCodePreconditionFailed
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
