package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(_ context.Context, _ order.Number) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

func newPendingOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), order.ItemSnapshot{
		ProductID: kernel.NewUUID(),
		Name:      "widget",
		BasePrice: dec("10.00"),
		UnitPrice: dec("10.00"),
		Quantity:  1,
	})
	require.NoError(t, err)

	address, err := kernel.NewAddress(usFields())
	require.NoError(t, err)

	o, err := order.NewOrder(order.Params{
		ID:              kernel.NewUUID(),
		Number:          order.FormatNumber("LTS", 1),
		AccountID:       kernel.NewUUID(),
		ShippingAddress: address,
		Currency:        "USD",
		Items:           []*order.Item{item},
		TaxRate:         dec("0.1"),
		PaymentMethod:   method,
		Actor:           kernel.SystemActor(),
		Now:             time.Now().UTC(),
	})
	require.NoError(t, err)
	return o
}

func TestChangePaymentStatusCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t, order.MethodCard)
	cmd, err := commands.NewChangePaymentStatusCommand(staff, o.ID(), "paid", "txn-1", "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := &recordingPublisher{}
	h := commands.NewChangePaymentStatusCommandHandler(factory, publisher, nil)
	updated, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, order.Paid, updated.PaymentStatus())
	require.Len(t, updated.Payments(), 1)
	assert.Equal(t, "txn-1", updated.Payments()[0].TransactionID())
	assert.Len(t, updated.History(), 2)
	assert.Equal(t, []ports.OrderEventType{ports.OrderPaymentStatusChanged}, publisher.types())

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestChangePaymentStatusCommandHandler_Handle_CapturesPayOnDelivery(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t, order.MethodPayOnDelivery)
	require.Empty(t, o.Payments())
	cmd, err := commands.NewChangePaymentStatusCommand(staff, o.ID(), "paid", "", "cash collected")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
	repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil)
	repo.On("Update", ctx, o).Return(nil)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewChangePaymentStatusCommandHandler(factory, nil, nil)
	updated, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	require.Len(t, updated.Payments(), 1)
	assert.Equal(t, order.MethodPayOnDelivery, updated.Payments()[0].Method())
	assert.Equal(t, "cash collected", updated.History()[1].Note())
}

func TestChangePaymentStatusCommandHandler_Handle_IllegalTransition(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t, order.MethodCard)
	cmd, err := commands.NewChangePaymentStatusCommand(staff, o.ID(), "refunded", "", "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewChangePaymentStatusCommandHandler(factory, nil, nil)
	_, err = h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestChangePaymentStatusCommandHandler_Handle_CustomerIsRejected(t *testing.T) {
	cmd, err := commands.NewChangePaymentStatusCommand(
		kernel.NewActor(kernel.NewUUID(), kernel.RoleCustomer), kernel.NewUUID(), "paid", "", "",
	)
	require.NoError(t, err)

	factory := new(MockOrderUoWFactory)
	h := commands.NewChangePaymentStatusCommandHandler(factory, nil, nil)
	_, err = h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	factory.AssertNotCalled(t, "Create")
}

func TestChangePaymentStatusCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	o := newPendingOrder(t, order.MethodCard)
	cmd, err := commands.NewChangePaymentStatusCommand(staff, o.ID(), "failed", "", "")
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := &recordingPublisher{}
	h := commands.NewChangePaymentStatusCommandHandler(factory, publisher, nil)
	_, err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.Empty(t, publisher.events)
}

func TestNewChangePaymentStatusCommand_Validation(t *testing.T) {
	_, err := commands.NewChangePaymentStatusCommand(staff, kernel.UUID{}, "", "", "")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewChangePaymentStatusCommand(staff, kernel.NewUUID(), "settled", "", "")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
