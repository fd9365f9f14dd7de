// Package http exposes the order use cases over echo under /api/v1.
package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	}
	ReviewOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.OrderPreview, error)
	}
	UpdateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.UpdateOrderCommand) (*order.Order, error)
	}
	AddOrderItemsHandler interface {
		Handle(ctx context.Context, cmd commands.AddOrderItemsCommand) (*order.Order, error)
	}
	RemoveOrderItemsHandler interface {
		Handle(ctx context.Context, cmd commands.RemoveOrderItemsCommand) (*order.Order, error)
	}
	ChangeOrderStatusHandler interface {
		Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (*order.Order, error)
	}
	ChangePaymentStatusHandler interface {
		Handle(ctx context.Context, cmd commands.ChangePaymentStatusCommand) (*order.Order, error)
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error)
	}
	ListOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListOrdersQuery) (queries.ListOrdersQueryResponse, error)
	}
	GetAnalyticsHandler interface {
		Handle(ctx context.Context, query queries.GetAnalyticsQuery) (services.Report, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder         CreateOrderHandler
	ReviewOrder         ReviewOrderHandler
	UpdateOrder         UpdateOrderHandler
	AddOrderItems       AddOrderItemsHandler
	RemoveOrderItems    RemoveOrderItemsHandler
	ChangeOrderStatus   ChangeOrderStatusHandler
	ChangePaymentStatus ChangePaymentStatusHandler
	GetOrder            GetOrderHandler
	ListOrders          ListOrdersHandler
	GetAnalytics        GetAnalyticsHandler
}

// Server maps requests to commands and queries. Errors are returned to echo
// and rendered by the handler from NewErrorHandler.
type Server struct {
	handlers    Handlers
	storefronts ports.StorefrontRepository
}

// NewServer creates the server. storefronts may be nil, in which case no
// order is attributed to a storefront.
func NewServer(handlers Handlers, storefronts ports.StorefrontRepository) *Server {
	return &Server{
		handlers:    handlers,
		storefronts: storefronts,
	}
}

// NewEcho builds the echo instance with error handling, tracing, request
// logging and the health check.
func NewEcho(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(tracing("orders-http"))
	e.Use(requestLogger(logger))

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Healthy")
	})
	return e
}

// Register mounts the order routes under /api/v1.
func (s *Server) Register(e *echo.Echo) {
	api := e.Group("/api/v1", identify(), storefront(s.storefronts))

	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/review", s.ReviewOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/number/:number", s.GetOrderByNumber)
	api.GET("/orders/:id", s.GetOrder)
	api.PATCH("/orders/:id", s.UpdateOrder)
	api.POST("/orders/:id/items", s.AddOrderItems)
	api.DELETE("/orders/:id/items", s.RemoveOrderItems)
	api.PUT("/orders/:id/status", s.ChangeOrderStatus)
	api.PUT("/orders/:id/payment-status", s.ChangePaymentStatus)
	api.GET("/analytics", s.GetAnalytics)
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	cmd, err := s.checkoutCommand(ctx)
	if err != nil {
		return err
	}

	o, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, toOrderResponse(o))
}

// ReviewOrder handles POST /api/v1/orders/review. Nothing is persisted.
func (s *Server) ReviewOrder(ctx echo.Context) error {
	cmd, err := s.checkoutCommand(ctx)
	if err != nil {
		return err
	}

	preview, err := s.handlers.ReviewOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toPreviewResponse(preview))
}

func (s *Server) checkoutCommand(ctx echo.Context) (commands.CreateOrderCommand, error) {
	var req createOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return commands.CreateOrderCommand{}, err
	}

	shipping, err := req.ShippingAddress.toInput("shippingAddress")
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}
	billing, err := req.BillingAddress.toInput("billingAddress")
	if err != nil {
		return commands.CreateOrderCommand{}, err
	}

	return commands.NewCreateOrderCommand(commands.CreateOrderParams{
		Actor:           actorOf(ctx),
		Email:           req.Email,
		StorefrontID:    storefrontOf(ctx),
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Currency:        req.Currency,
		Items:           toLines(req.Items),
		PaymentMethod:   req.PaymentMethod,
		Metadata:        req.Metadata,
		Notes:           req.Notes,
		CouponCode:      req.CouponCode,
	})
}

// UpdateOrder handles PATCH /api/v1/orders/:id.
func (s *Server) UpdateOrder(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return err
	}
	var req updateOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return err
	}

	shipping, err := req.ShippingAddress.toInput("shippingAddress")
	if err != nil {
		return err
	}
	billing, err := req.BillingAddress.toInput("billingAddress")
	if err != nil {
		return err
	}
	var lines []services.OrderLine
	if req.Items != nil {
		lines = toLines(*req.Items)
	}

	cmd, err := commands.NewUpdateOrderCommand(commands.UpdateOrderParams{
		Actor:           actorOf(ctx),
		OrderID:         id,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Items:           lines,
		Notes:           req.Notes,
		Metadata:        req.Metadata,
		Status:          req.Status,
		Note:            req.Note,
	})
	if err != nil {
		return err
	}

	o, err := s.handlers.UpdateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(o))
}

// AddOrderItems handles POST /api/v1/orders/:id/items.
func (s *Server) AddOrderItems(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return err
	}
	var req addItemsRequest
	if err = ctx.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewAddOrderItemsCommand(actorOf(ctx), id, toLines(req.Items))
	if err != nil {
		return err
	}
	o, err := s.handlers.AddOrderItems.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(o))
}

// RemoveOrderItems handles DELETE /api/v1/orders/:id/items.
func (s *Server) RemoveOrderItems(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return err
	}
	var req removeItemsRequest
	if err = ctx.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewRemoveOrderItemsCommand(actorOf(ctx), id, req.ItemIDs)
	if err != nil {
		return err
	}
	o, err := s.handlers.RemoveOrderItems.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(o))
}

// ChangeOrderStatus handles PUT /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return err
	}
	var req statusRequest
	if err = ctx.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewChangeOrderStatusCommand(actorOf(ctx), id, req.Status, req.Note)
	if err != nil {
		return err
	}
	o, err := s.handlers.ChangeOrderStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(o))
}

// ChangePaymentStatus handles PUT /api/v1/orders/:id/payment-status.
func (s *Server) ChangePaymentStatus(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return err
	}
	var req paymentStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return err
	}

	cmd, err := commands.NewChangePaymentStatusCommand(actorOf(ctx), id, req.Status, req.TransactionID, req.Note)
	if err != nil {
		return err
	}
	o, err := s.handlers.ChangePaymentStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(o))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(actorOf(ctx), id)
	if err != nil {
		return err
	}
	return s.getOrder(ctx, query)
}

// GetOrderByNumber handles GET /api/v1/orders/number/:number.
func (s *Server) GetOrderByNumber(ctx echo.Context) error {
	query, err := queries.NewGetOrderByNumberQuery(actorOf(ctx), ctx.Param("number"))
	if err != nil {
		return err
	}
	return s.getOrder(ctx, query)
}

func (s *Server) getOrder(ctx echo.Context, query queries.GetOrderQuery) error {
	o, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderResponse(o))
}

// ListOrders handles GET /api/v1/orders?page=&pageSize=.
func (s *Server) ListOrders(ctx echo.Context) error {
	page, err := intParam(ctx, "page")
	if err != nil {
		return err
	}
	pageSize, err := intParam(ctx, "pageSize")
	if err != nil {
		return err
	}

	query, err := queries.NewListOrdersQuery(actorOf(ctx), page, pageSize)
	if err != nil {
		return err
	}
	resp, err := s.handlers.ListOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toOrderListResponse(resp))
}

// GetAnalytics handles GET /api/v1/analytics?from=&to=&storefrontId=.
// Dates may be RFC 3339 timestamps or plain days; a plain to covers the
// whole day.
func (s *Server) GetAnalytics(ctx echo.Context) error {
	from, err := timeParam(ctx, "from", false)
	if err != nil {
		return err
	}
	to, err := timeParam(ctx, "to", true)
	if err != nil {
		return err
	}

	var storefrontID *kernel.UUID
	if raw := strings.TrimSpace(ctx.QueryParam("storefrontId")); raw != "" {
		id, parseErr := kernel.UUIDFromString(raw)
		if parseErr != nil {
			return errs.NewValueIsInvalidErrorWithCause("storefrontId", parseErr)
		}
		storefrontID = &id
	}

	query, err := queries.NewGetAnalyticsQuery(actorOf(ctx), from, to, storefrontID)
	if err != nil {
		return err
	}
	report, err := s.handlers.GetAnalytics.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func orderID(ctx echo.Context) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}
	return id, nil
}

func intParam(ctx echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return v, nil
}

func timeParam(ctx echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(ctx.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}
