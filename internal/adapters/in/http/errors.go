package http

import (
	"errors"
	"net/http"

	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

var kindStatus = map[errs.Kind]int{
	errs.KindInvalidInput:      http.StatusBadRequest,
	errs.KindNotFound:          http.StatusNotFound,
	errs.KindUnauthorized:      http.StatusForbidden,
	errs.KindConflict:          http.StatusConflict,
	errs.KindInvalidTransition: http.StatusConflict,
	errs.KindCurrencyMismatch:  http.StatusUnprocessableEntity,
	errs.KindStockViolation:    http.StatusUnprocessableEntity,
	errs.KindInternal:          http.StatusInternalServerError,
}

// NewErrorHandler renders domain errors as {code, kind, message, details}.
// Internal errors are logged and their message is not exposed.
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := toErrorResponse(err)
		if resp.Code >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(resp.Code)
		} else {
			writeErr = c.JSON(resp.Code, resp)
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}

func toErrorResponse(err error) errorResponse {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind := errs.KindInternal
		switch he.Code {
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			kind = errs.KindInvalidInput
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			kind = errs.KindNotFound
		}
		return errorResponse{Code: he.Code, Kind: string(kind), Message: http.StatusText(he.Code)}
	}

	kind := errs.KindOf(err)
	resp := errorResponse{Code: kindStatus[kind], Kind: string(kind), Message: err.Error()}
	if kind == errs.KindInternal {
		resp.Message = http.StatusText(http.StatusInternalServerError)
	}

	var sv *errs.StockViolationError
	if errors.As(err, &sv) {
		resp.Details = sv.Violations
	}
	return resp
}
