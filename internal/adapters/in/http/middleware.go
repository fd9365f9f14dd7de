package http

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	HeaderAccountID   = "X-Account-ID"
	HeaderAccountRole = "X-Account-Role"

	actorKey      = "actor"
	storefrontKey = "storefront"
)

// requestLogger writes one line per request.
func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.Info("request",
				zap.String("method", req.Method),
				zap.String("route", c.Path()),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Int64("bytes", c.Response().Size),
				zap.Duration("latency", time.Since(start)),
				zap.String("remote_ip", c.RealIP()),
			)
			return nil
		}
	}
}

// tracing wraps every request in an otelhttp server span.
func tracing(service string) echo.MiddlewareFunc {
	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service)
	})
}

// identify resolves the actor from the gateway headers. Only guests may omit
// the account id; every other role must name the account acting.
func identify() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromHeaders(c.Request().Header)
			if err != nil {
				return err
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

func actorFromHeaders(h http.Header) (kernel.Actor, error) {
	rawID := strings.TrimSpace(h.Get(HeaderAccountID))
	rawRole := h.Get(HeaderAccountRole)

	if rawID == "" {
		role, err := kernel.ParseRole(rawRole)
		if err != nil {
			return kernel.Actor{}, err
		}
		if role != kernel.RoleGuest {
			return kernel.Actor{}, errs.NewValueIsRequiredError(HeaderAccountID)
		}
		return kernel.GuestActor(), nil
	}

	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return kernel.Actor{}, errs.NewValueIsInvalidErrorWithCause(HeaderAccountID, err)
	}
	role := kernel.RoleCustomer
	if strings.TrimSpace(rawRole) != "" {
		if role, err = kernel.ParseRole(rawRole); err != nil {
			return kernel.Actor{}, err
		}
	}
	return kernel.NewActor(id, role), nil
}

// storefront resolves the storefront of the request host. Unknown hosts have
// no storefront.
func storefront(storefronts ports.StorefrontRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if storefronts == nil {
				return next(c)
			}
			host := c.Request().Host
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			if host == "" {
				return next(c)
			}

			id, err := storefronts.ResolveByDomain(c.Request().Context(), strings.ToLower(host))
			switch {
			case err == nil:
				c.Set(storefrontKey, &id)
			case errors.Is(err, errs.ErrObjectNotFound):
			default:
				return err
			}
			return next(c)
		}
	}
}

func actorOf(c echo.Context) kernel.Actor {
	if a, ok := c.Get(actorKey).(kernel.Actor); ok {
		return a
	}
	return kernel.GuestActor()
}

func storefrontOf(c echo.Context) *kernel.UUID {
	id, _ := c.Get(storefrontKey).(*kernel.UUID)
	return id
}
