package errprocess

import "net/http"

var statusByCode = map[Code]int{
	CodeInvalidIdentifier: http.StatusBadRequest,
	CodeInvalidOperation:  http.StatusBadRequest,
	CodeInvalidArgument:   http.StatusBadRequest,
	CodeUnauthenticated:   http.StatusUnauthorized,
	CodeDenied:            http.StatusForbidden,
	CodeNotFound:          http.StatusNotFound,
	CodeAlreadyExists:     http.StatusConflict,
	CodeCreationFailed:    http.StatusInternalServerError,
	CodeUnavailable:       http.StatusServiceUnavailable,
	CodeInternal:          http.StatusInternalServerError,
}

// HTTPStatus maps err to a response status
func HTTPStatus(err error) int {
	if status, ok := statusByCode[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage message safe to return to clients, internal causes are hidden
func PublicMessage(err error) string {
	var appErr *AppError
	if !asAppError(err, &appErr) {
		return "internal error"
	}
	return appErr.Message
}
