package http

import (
	"github.com/labstack/echo/v4"

	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
)

// errorResponse is the JSON error body: a machine-checkable code plus a
// human-readable detail string, nothing else.
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	code := apperr.CodeOf(err)
	return c.JSON(apperr.ToHTTPStatus(code), errorResponse{
		Code:  code,
		Error: err.Error(),
	})
}
