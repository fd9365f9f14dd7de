package cmd

import (
	httpin "orders/internal/adapters/in/http"
	"orders/internal/adapters/out/postgres"
	"orders/internal/adapters/out/postgres/storerepo"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/jobs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	publisher  ports.OrderEventPublisher
	cache      ports.ReportCache
	logger     *zap.Logger
}

// NewCompositionRoot wires the application. cache may be nil, in which case
// analytics are computed on every request.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	publisher ports.OrderEventPublisher,
	cache ports.ReportCache,
	logger *zap.Logger,
) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:  publisher,
		cache:      cache,
		logger:     logger,
	}
}

func (c *CompositionRoot) checkoutConfig() commands.CheckoutConfig {
	return commands.CheckoutConfig{
		NumberPrefix: c.cfg.OrderNumberPrefix,
		TaxRate:      c.cfg.TaxRate,
		Currencies:   c.currencyResolver(),
		BcryptCost:   c.cfg.BcryptCost,
	}
}

func (c *CompositionRoot) currencyResolver() services.CurrencyResolver {
	return services.NewCurrencyResolver(c.cfg.BaseCurrency, nil)
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) stockUoW() commands.StockUoWFactory {
	return FuncStockUoWFactory(func() commands.StockUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uow(), c.checkoutConfig(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateReviewOrderCommandHandler() commands.ReviewOrderCommandHandler {
	return commands.NewReviewOrderCommandHandler(c.uow(), c.checkoutConfig())
}

func (c *CompositionRoot) CreateUpdateOrderCommandHandler() commands.UpdateOrderCommandHandler {
	return commands.NewUpdateOrderCommandHandler(c.uow(), c.currencyResolver(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateAddOrderItemsCommandHandler() commands.AddOrderItemsCommandHandler {
	return commands.NewAddOrderItemsCommandHandler(c.stockUoW(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateRemoveOrderItemsCommandHandler() commands.RemoveOrderItemsCommandHandler {
	return commands.NewRemoveOrderItemsCommandHandler(c.stockUoW(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.stockUoW(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateChangePaymentStatusCommandHandler() commands.ChangePaymentStatusCommandHandler {
	return commands.NewChangePaymentStatusCommandHandler(c.orderUoW(), c.publisher, c.logger)
}

// CreateGetOrderQueryHandler reads through a unit of work that is never
// begun, so lookups run on the pool.
func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory.Create().OrderRepository())
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAnalyticsQueryHandler() queries.GetAnalyticsQueryHandler {
	return queries.NewGetAnalyticsQueryHandler(c.gormDB, c.cache, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	reviewOrder := c.CreateReviewOrderCommandHandler()
	updateOrder := c.CreateUpdateOrderCommandHandler()
	addItems := c.CreateAddOrderItemsCommandHandler()
	removeItems := c.CreateRemoveOrderItemsCommandHandler()
	changeStatus := c.CreateChangeOrderStatusCommandHandler()
	changePayment := c.CreateChangePaymentStatusCommandHandler()

	return httpin.NewServer(httpin.Handlers{
		CreateOrder:         &createOrder,
		ReviewOrder:         &reviewOrder,
		UpdateOrder:         &updateOrder,
		AddOrderItems:       &addItems,
		RemoveOrderItems:    &removeItems,
		ChangeOrderStatus:   &changeStatus,
		ChangePaymentStatus: &changePayment,
		GetOrder:            c.CreateGetOrderQueryHandler(),
		ListOrders:          c.CreateListOrdersQueryHandler(),
		GetAnalytics:        c.CreateGetAnalyticsQueryHandler(),
	}, storerepo.NewGormStorefrontRepository(c.gormDB))
}

// CreateJobManager schedules the analytics refresh only when a cache is configured.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	if c.cache == nil {
		return jobs.NewJobManager(c.logger)
	}
	refresh := jobs.NewAnalyticsRefreshJob(c.CreateGetAnalyticsQueryHandler(), c.cfg.AnalyticsRefreshSpec, c.logger)
	return jobs.NewJobManager(c.logger, refresh)
}

type FuncStockUoWFactory func() commands.StockUoW

func (f FuncStockUoWFactory) Create() commands.StockUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
