package errors

import "net/http"

var statusMapping = map[string]int{
	ErrNotFound:                http.StatusNotFound,
	ErrInvalidInput:            http.StatusBadRequest,
	ErrConflict:                http.StatusConflict,
	ErrDownstreamTimeout:       http.StatusGatewayTimeout,
	ErrDownstreamUnreachable:   http.StatusBadGateway,
	ErrDownstreamRejected:      http.StatusBadGateway,
	ErrRefundPersistenceFailed: http.StatusBadGateway,
	ErrInternal:                http.StatusInternalServerError,
}

// ToHTTPStatus maps an error code to its HTTP status, defaulting to 500.
func ToHTTPStatus(code string) int {
	if status, ok := statusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
