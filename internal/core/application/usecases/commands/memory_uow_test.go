package commands_test

import (
	"context"
	"errors"
	"maps"
	"sort"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/account"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/product"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var errNoTransaction = errors.New("no transaction in progress")

type memProduct struct {
	name     string
	sku      string
	inStock  int
	reserved int
	prices   map[kernel.Currency]product.Pricing
}

type memState struct {
	orders    map[kernel.UUID]*order.Order
	products  map[kernel.UUID]memProduct
	accounts  map[kernel.UUID]*account.Account
	addresses map[kernel.UUID]*account.Address
	sequences map[string]int64
	shipping  map[string]decimal.Decimal
}

func newMemState() memState {
	return memState{
		orders:    map[kernel.UUID]*order.Order{},
		products:  map[kernel.UUID]memProduct{},
		accounts:  map[kernel.UUID]*account.Account{},
		addresses: map[kernel.UUID]*account.Address{},
		sequences: map[string]int64{},
		shipping:  map[string]decimal.Decimal{},
	}
}

func (s memState) clone() memState {
	return memState{
		orders:    maps.Clone(s.orders),
		products:  maps.Clone(s.products),
		accounts:  maps.Clone(s.accounts),
		addresses: maps.Clone(s.addresses),
		sequences: maps.Clone(s.sequences),
		shipping:  maps.Clone(s.shipping),
	}
}

// memStore is a transactional in-memory backend. Begin snapshots the
// committed state, Commit publishes the working copy and Rollback drops it.
// Order aggregates are shared pointers, so tests assert order rollback by
// presence only.
type memStore struct {
	committed memState
	commits   int
	rollbacks int

	// addHook runs before an order is stored and may fail the insert.
	addHook func(o *order.Order) error
}

func newMemStore() *memStore {
	return &memStore{committed: newMemState()}
}

func (s *memStore) seedProduct(name string, inStock int, prices ...product.Pricing) kernel.UUID {
	id := kernel.NewUUID()
	p := memProduct{name: name, sku: "SKU-" + name, inStock: inStock, prices: map[kernel.Currency]product.Pricing{}}
	for _, price := range prices {
		p.prices[price.Currency] = price
	}
	s.committed.products[id] = p
	return id
}

func (s *memStore) seedAddress(owner kernel.UUID, kind account.AddressType, fields kernel.AddressFields) kernel.UUID {
	id := kernel.NewUUID()
	s.committed.addresses[id] = account.RestoreAddress(id, owner, kind, fields)
	return id
}

func (s *memStore) seedShipping(country string, currency kernel.Currency, amount string) {
	s.committed.shipping[country+"/"+currency.String()] = decimal.RequireFromString(amount)
}

func (s *memStore) stock(id kernel.UUID) (int, int) {
	p := s.committed.products[id]
	return p.inStock, p.reserved
}

func (s *memStore) orderCount() int {
	return len(s.committed.orders)
}

func (s *memStore) accountCount() int {
	return len(s.committed.accounts)
}

func (s *memStore) onlyOrder() *order.Order {
	for _, o := range s.committed.orders {
		return o
	}
	return nil
}

type memUoW struct {
	store *memStore
	work  *memState
}

func (u *memUoW) Begin(_ context.Context) error {
	if u.work != nil {
		return nil
	}
	w := u.store.committed.clone()
	u.work = &w
	return nil
}

func (u *memUoW) Commit(_ context.Context) error {
	if u.work == nil {
		return errNoTransaction
	}
	u.store.committed = *u.work
	u.store.commits++
	u.work = nil
	return nil
}

func (u *memUoW) Rollback(_ context.Context) error {
	if u.work == nil {
		return errNoTransaction
	}
	u.store.rollbacks++
	u.work = nil
	return nil
}

func (u *memUoW) OrderRepository() ports.OrderRepository       { return memOrders{u} }
func (u *memUoW) ProductRepository() ports.ProductRepository   { return memProducts{u} }
func (u *memUoW) AccountRepository() ports.AccountRepository   { return memAccounts{u} }
func (u *memUoW) AddressRepository() ports.AddressRepository   { return memAddresses{u} }
func (u *memUoW) SequenceRepository() ports.SequenceRepository { return memSequences{u} }
func (u *memUoW) ShippingChargeRepository() ports.ShippingChargeRepository {
	return memShipping{u}
}

type memUoWFactory struct{ store *memStore }

func (f memUoWFactory) Create() commands.UoW { return &memUoW{store: f.store} }

type memStockUoWFactory struct{ store *memStore }

func (f memStockUoWFactory) Create() commands.StockUoW { return &memUoW{store: f.store} }

type memOrders struct{ u *memUoW }

func (r memOrders) Add(_ context.Context, o *order.Order) error {
	if hook := r.u.store.addHook; hook != nil {
		if err := hook(o); err != nil {
			return err
		}
	}
	for _, existing := range r.u.work.orders {
		if existing.Number() == o.Number() {
			return errs.NewConflictErrorWithCause("order number", o.Number(), order.ErrOrderNumberTaken)
		}
	}
	r.u.work.orders[o.ID()] = o
	return nil
}

func (r memOrders) Update(_ context.Context, o *order.Order) error {
	if _, ok := r.u.work.orders[o.ID()]; !ok {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	r.u.work.orders[o.ID()] = o
	return nil
}

func (r memOrders) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if o, ok := r.u.work.orders[id]; ok {
		return o, nil
	}
	return nil, errs.NewObjectNotFoundError("order", id.String())
}

func (r memOrders) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r memOrders) GetByNumber(_ context.Context, number order.Number) (*order.Order, error) {
	for _, o := range r.u.work.orders {
		if o.Number() == number {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", number.String())
}

type memProducts struct{ u *memUoW }

func (r memProducts) GetForOrder(
	_ context.Context,
	ids []kernel.UUID,
	currency kernel.Currency,
	_ bool,
) ([]*product.Product, error) {
	var out []*product.Product
	for _, id := range ids {
		p, ok := r.u.work.products[id]
		if !ok {
			continue
		}
		var pricing *product.Pricing
		if price, ok := p.prices[currency]; ok {
			pricing = &price
		}
		loaded, err := product.NewProduct(id, p.name, p.sku, p.inStock, p.reserved, pricing)
		if err != nil {
			return nil, err
		}
		out = append(out, loaded)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func (r memProducts) Reserve(_ context.Context, id kernel.UUID, quantity int) error {
	p, ok := r.u.work.products[id]
	if !ok {
		return errs.NewObjectNotFoundError("product", id.String())
	}
	if p.inStock < quantity {
		kind := errs.InsufficientStock
		if p.inStock == 0 {
			kind = errs.OutOfStock
		}
		return errs.NewStockViolationError(errs.StockViolation{
			ProductID: id.String(), Name: p.name, Requested: quantity, Available: p.inStock, Kind: kind,
		})
	}
	p.inStock -= quantity
	p.reserved += quantity
	r.u.work.products[id] = p
	return nil
}

func (r memProducts) Release(_ context.Context, id kernel.UUID, quantity int) error {
	p, ok := r.u.work.products[id]
	if !ok {
		return errs.NewObjectNotFoundError("product", id.String())
	}
	p.inStock += quantity
	p.reserved = max(p.reserved-quantity, 0)
	r.u.work.products[id] = p
	return nil
}

type memAccounts struct{ u *memUoW }

func (r memAccounts) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	for _, a := range r.u.work.accounts {
		if a.Email() == email {
			return a, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("account", email)
}

func (r memAccounts) Get(_ context.Context, id kernel.UUID) (*account.Account, error) {
	if a, ok := r.u.work.accounts[id]; ok {
		return a, nil
	}
	return nil, errs.NewObjectNotFoundError("account", id.String())
}

func (r memAccounts) Add(_ context.Context, a *account.Account) error {
	r.u.work.accounts[a.ID()] = a
	return nil
}

type memAddresses struct{ u *memUoW }

func (r memAddresses) FindByIDAndOwner(_ context.Context, id, ownerID kernel.UUID) (*account.Address, error) {
	a, ok := r.u.work.addresses[id]
	if !ok || !a.OwnerID().IsEqual(ownerID) {
		return nil, errs.NewObjectNotFoundError("address", id.String())
	}
	return a, nil
}

type memSequences struct{ u *memUoW }

func (r memSequences) Next(_ context.Context, name string) (int64, error) {
	r.u.work.sequences[name]++
	return r.u.work.sequences[name], nil
}

type memShipping struct{ u *memUoW }

func (r memShipping) Find(_ context.Context, country string, currency kernel.Currency) (decimal.Decimal, error) {
	if amount, ok := r.u.work.shipping[country+"/"+currency.String()]; ok {
		return amount, nil
	}
	return decimal.Zero, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []ports.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.OrderEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []ports.OrderEventType {
	out := make([]ports.OrderEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
