package postgres_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	postgres_adapter "orders/internal/adapters/out/postgres"
	"orders/internal/adapters/out/postgres/accountrepo"
	"orders/internal/adapters/out/postgres/productrepo"
	"orders/internal/adapters/out/postgres/storerepo"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/services"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(`TRUNCATE TABLE order_history, order_payments, order_items, orders,
		product_prices, products, addresses, accounts, sequences, storefronts, shipping_charges`).Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsAcrossRepositories() {
	ctx := context.Background()
	productID := suite.seedProduct("Mug", 5, "10.00")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.ProductRepository().Reserve(ctx, productID, 2))
	o := suite.newOrder(uow, productID)
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal([]kernel.UUID{o.ID()}, uow.(*postgres_adapter.GormUnitOfWork).TrackedIDs())
	suite.assertStock(productID, 3, 2)
	suite.assertCount("orders", 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsEverything() {
	ctx := context.Background()
	productID := suite.seedProduct("Mug", 5, "10.00")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.ProductRepository().Reserve(ctx, productID, 2))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, suite.newOrder(uow, productID)))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.assertStock(productID, 5, 0)
	suite.assertCount("orders", 0)
	suite.Empty(uow.(*postgres_adapter.GormUnitOfWork).TrackedIDs())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackAfterCommit_IsHarmless() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestReserve_InsufficientStock() {
	ctx := context.Background()
	productID := suite.seedProduct("Mug", 1, "10.00")
	emptyID := suite.seedProduct("Cap", 0, "4.00")
	repo := suite.factory.Create().ProductRepository()

	err := repo.Reserve(ctx, productID, 2)
	var violation *errs.StockViolationError
	suite.Require().ErrorAs(err, &violation)
	suite.Equal(errs.InsufficientStock, violation.Violations[0].Kind)
	suite.Equal(1, violation.Violations[0].Available)

	err = repo.Reserve(ctx, emptyID, 1)
	suite.Require().ErrorAs(err, &violation)
	suite.Equal(errs.OutOfStock, violation.Violations[0].Kind)

	suite.Require().ErrorIs(repo.Reserve(ctx, kernel.NewUUID(), 1), errs.ErrObjectNotFound)
	suite.assertStock(productID, 1, 0)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRelease_ReturnsStock() {
	ctx := context.Background()
	productID := suite.seedProduct("Mug", 4, "10.00")
	repo := suite.factory.Create().ProductRepository()

	suite.Require().NoError(repo.Reserve(ctx, productID, 3))
	suite.Require().NoError(repo.Release(ctx, productID, 2))

	suite.assertStock(productID, 3, 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestGetForOrder_PricingPerCurrency() {
	ctx := context.Background()
	productID := suite.seedProduct("Mug", 4, "10.00")
	suite.Require().NoError(suite.db.Create(&productrepo.PriceDTO{
		ProductID: productID.Bytes(), Currency: "GBP", BasePrice: decimal.RequireFromString("8.00"),
		DiscountType: "percentage", DiscountValue: decimal.RequireFromString("25"),
	}).Error)
	repo := suite.factory.Create().ProductRepository()

	gbp, err := repo.GetForOrder(ctx, []kernel.UUID{productID, kernel.NewUUID()}, "GBP", false)
	suite.Require().NoError(err)
	suite.Require().Len(gbp, 1)
	suite.True(gbp[0].Pricing().BasePrice.Equal(decimal.RequireFromString("8")))

	eur, err := repo.GetForOrder(ctx, []kernel.UUID{productID}, "EUR", false)
	suite.Require().NoError(err)
	suite.Require().Len(eur, 1)
	suite.Nil(eur[0].Pricing())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestSequence_Increments() {
	ctx := context.Background()
	repo := suite.factory.Create().SequenceRepository()

	first, err := repo.Next(ctx, "order_number")
	suite.Require().NoError(err)
	second, err := repo.Next(ctx, "order_number")
	suite.Require().NoError(err)
	other, err := repo.Next(ctx, "invoice")
	suite.Require().NoError(err)

	suite.Equal(int64(1), first)
	suite.Equal(int64(2), second)
	suite.Equal(int64(1), other)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestAccounts_AndAddresses() {
	ctx := context.Background()
	uow := suite.factory.Create()

	contact, err := kernel.NewAddress(kernel.AddressFields{
		FirstName: "Jane", Street: "1 Main St", City: "Boston", Country: "US",
	})
	suite.Require().NoError(err)
	guest, err := account.NewGuestAccount(kernel.NewUUID(), "Jane@Example.com", contact, "hash")
	suite.Require().NoError(err)
	suite.Require().NoError(uow.AccountRepository().Add(ctx, guest))

	found, err := uow.AccountRepository().FindByEmail(ctx, " jane@example.COM ")
	suite.Require().NoError(err)
	suite.Equal(guest.ID(), found.ID())
	suite.True(found.IsGuest())

	err = uow.AccountRepository().Add(ctx, guest)
	suite.Require().ErrorIs(err, errs.ErrConflict)

	addressID := uuid.New()
	suite.Require().NoError(suite.db.Create(&accountrepo.AddressDTO{
		ID: addressID, OwnerID: guest.ID().Bytes(), Type: "shipping",
		FirstName: "Jane", Street: "1 Main St", City: "Boston", Country: "US",
	}).Error)

	id, err := kernel.UUIDFromBytes(addressID[:])
	suite.Require().NoError(err)
	address, err := uow.AddressRepository().FindByIDAndOwner(ctx, id, guest.ID())
	suite.Require().NoError(err)
	suite.True(address.Supports(account.AddressShipping))
	suite.False(address.Supports(account.AddressBilling))

	_, err = uow.AddressRepository().FindByIDAndOwner(ctx, id, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestStorefrontsAndShippingCharges() {
	ctx := context.Background()
	storefrontID := uuid.New()
	suite.Require().NoError(suite.db.Create(&storerepo.StorefrontDTO{
		ID: storefrontID, Name: "Main", Domain: "shop.example.com",
	}).Error)
	suite.Require().NoError(suite.db.Create(&storerepo.ShippingChargeDTO{
		Country: "GB", Currency: "GBP", Amount: decimal.RequireFromString("4.95"),
	}).Error)

	storefronts := storerepo.NewGormStorefrontRepository(suite.db)
	resolved, err := storefronts.ResolveByDomain(ctx, "Shop.Example.com:8080")
	suite.Require().NoError(err)
	suite.Equal(storefrontID.String(), resolved.String())

	_, err = storefronts.ResolveByDomain(ctx, "unknown.example.com")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	charges := suite.factory.Create().ShippingChargeRepository()
	gb, err := charges.Find(ctx, "gb", "GBP")
	suite.Require().NoError(err)
	suite.True(gb.Equal(decimal.RequireFromString("4.95")))

	us, err := charges.Find(ctx, "US", "USD")
	suite.Require().NoError(err)
	suite.True(us.IsZero())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentCheckouts_DoNotOversell() {
	const buyers = 10
	productID := suite.seedProduct("Mug", 3, "10.00")
	handler := suite.createOrderHandler()

	orders, failures := suite.checkoutConcurrently(handler, productID, buyers)

	suite.Len(orders, 3)
	suite.Len(failures, buyers-3)
	for _, err := range failures {
		suite.Require().ErrorIs(err, errs.ErrStockViolation)
	}
	suite.assertStock(productID, 0, 3)
	suite.assertCount("orders", 3)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentCheckouts_NumbersAreUniqueAndIncreasing() {
	const buyers = 12
	productID := suite.seedProduct("Mug", 100, "10.00")
	handler := suite.createOrderHandler()

	orders, failures := suite.checkoutConcurrently(handler, productID, buyers)
	suite.Require().Empty(failures)
	suite.Require().Len(orders, buyers)

	seen := make(map[int64]bool, buyers)
	for _, o := range orders {
		seq := orderSeq(suite, o.Number().String())
		suite.False(seen[seq], "duplicate order number %s", o.Number())
		seen[seq] = true
	}
	for seq := int64(1); seq <= buyers; seq++ {
		suite.True(seen[seq], "missing order number %d", seq)
	}

	var numbers []string
	suite.Require().NoError(suite.db.Table("orders").Order("created_at").Pluck("order_number", &numbers).Error)
	suite.Require().Len(numbers, buyers)
	for i := 1; i < len(numbers); i++ {
		suite.Less(orderSeq(suite, numbers[i-1]), orderSeq(suite, numbers[i]))
	}
	suite.assertStock(productID, 100-buyers, buyers)
}

func (suite *UnitOfWorkIntegrationTestSuite) createOrderHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(checkoutUoWFactory{suite.factory}, commands.CheckoutConfig{
		NumberPrefix: "LTS",
		TaxRate:      decimal.RequireFromString("0.1"),
		Currencies:   services.NewCurrencyResolver("USD", nil),
		BcryptCost:   bcrypt.MinCost,
	}, nil, nil)
}

// checkoutConcurrently places one single-unit guest order per buyer, all at once.
func (suite *UnitOfWorkIntegrationTestSuite) checkoutConcurrently(
	handler commands.CreateOrderCommandHandler,
	productID kernel.UUID,
	buyers int,
) ([]*order.Order, []error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cmds := make([]commands.CreateOrderCommand, buyers)
	for i := range cmds {
		cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
			Actor: kernel.GuestActor(),
			Email: fmt.Sprintf("buyer%d@example.com", i),
			ShippingAddress: commands.InlineAddress{Fields: kernel.AddressFields{
				FirstName: "Jane", Street: "1 Main St", City: "Boston", Country: "US",
			}},
			Items: []services.OrderLine{{ProductID: productID, Quantity: 1}},
		})
		suite.Require().NoError(err)
		cmds[i] = cmd
	}

	results := make([]*order.Order, buyers)
	failures := make([]error, buyers)
	var wg sync.WaitGroup
	wg.Add(buyers)
	for i := range buyers {
		go func(idx int) {
			defer wg.Done()
			results[idx], failures[idx] = handler.Handle(ctx, cmds[idx])
		}(i)
	}
	wg.Wait()

	var placed []*order.Order
	var failed []error
	for i := range buyers {
		if failures[i] != nil {
			failed = append(failed, failures[i])
			continue
		}
		placed = append(placed, results[i])
	}
	return placed, failed
}

func orderSeq(suite *UnitOfWorkIntegrationTestSuite, number string) int64 {
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, "LTS-O-"), 10, 64)
	suite.Require().NoError(err)
	return seq
}

type checkoutUoWFactory struct {
	factory ports.UnitOfWorkFactory
}

func (f checkoutUoWFactory) Create() commands.UoW {
	return f.factory.Create()
}

func (suite *UnitOfWorkIntegrationTestSuite) seedProduct(name string, inStock int, usd string) kernel.UUID {
	id := uuid.New()
	suite.Require().NoError(suite.db.Create(&productrepo.ProductDTO{
		ID: id, Name: name, Sku: name + "-SKU", InStock: inStock,
		Prices: []productrepo.PriceDTO{{
			Currency: "USD", BasePrice: decimal.RequireFromString(usd), DiscountType: "none",
		}},
	}).Error)

	productID, err := kernel.UUIDFromBytes(id[:])
	suite.Require().NoError(err)
	return productID
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder(uow ports.UnitOfWork, productID kernel.UUID) *order.Order {
	ctx := context.Background()
	seq, err := uow.SequenceRepository().Next(ctx, "order_number")
	suite.Require().NoError(err)

	products, err := uow.ProductRepository().GetForOrder(ctx, []kernel.UUID{productID}, "USD", true)
	suite.Require().NoError(err)
	suite.Require().Len(products, 1)

	item, err := order.NewItem(kernel.NewUUID(), order.ItemSnapshot{
		ProductID: productID,
		Name:      products[0].Name(),
		BasePrice: products[0].Pricing().BasePrice,
		UnitPrice: products[0].Pricing().BasePrice,
		Quantity:  2,
	})
	suite.Require().NoError(err)

	address, err := kernel.NewAddress(kernel.AddressFields{
		FirstName: "Jane", Street: "1 Main St", City: "Boston", Country: "US",
	})
	suite.Require().NoError(err)

	o, err := order.NewOrder(order.Params{
		ID:              kernel.NewUUID(),
		Number:          order.FormatNumber("LTS", seq),
		AccountID:       kernel.NewUUID(),
		ShippingAddress: address,
		Currency:        "USD",
		Items:           []*order.Item{item},
		TaxRate:         decimal.RequireFromString("0.1"),
		PaymentMethod:   order.MethodCard,
		Actor:           kernel.GuestActor(),
		Now:             time.Now().UTC(),
	})
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) assertStock(id kernel.UUID, inStock, reserved int) {
	var dto productrepo.ProductDTO
	suite.Require().NoError(suite.db.First(&dto, "id = ?", id.Bytes()).Error)
	suite.Equal(inStock, dto.InStock)
	suite.Equal(reserved, dto.Reserved)
}

func (suite *UnitOfWorkIntegrationTestSuite) assertCount(table string, expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Table(table).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
