package cart

import (
	"context"
	"sync"

	"eggcelent-store/internal/logger"
	"eggcelent-store/internal/metrics"
	"eggcelent-store/internal/order"
	"eggcelent-store/internal/product"
	"eggcelent-store/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service owns the active cart and the order history. Mutations apply to
// memory right away and are mirrored to storage in the background; a failed
// durable write is logged and never reaches the caller.
type Service interface {
	Init(ctx context.Context) error
	Close(ctx context.Context) error
	Flush(ctx context.Context) error

	AddToCart(ctx context.Context, p product.Product, quantity int)
	RemoveFromCart(ctx context.Context, productID string)
	UpdateQuantity(ctx context.Context, productID string, quantity int)
	ClearCart(ctx context.Context)
	PlaceOrder(ctx context.Context, info order.DeliveryInfo) (order.Order, error)

	Snapshot() Cart
	Items() []Line
	Total() decimal.Decimal
	Count() int
	IsInCart(productID string) bool
	ItemQuantity(productID string) int

	Orders() []order.Order
	Order(id string) (order.Order, error)
	OrderStats() Stats

	UseHistory(ctx context.Context, owner string) error
	DeliveryFee() decimal.Decimal
}

type Stats struct {
	order.Stats
	InCart int
}

type Options struct {
	DeliveryFee decimal.Decimal
	Clock       order.Clock
	IDs         order.IDGenerator
	Mirror      storage.MirrorOptions
	Metrics     *metrics.StoreMetrics
}

type service struct {
	repo    *repository
	mirror  *storage.Mirror
	fee     decimal.Decimal
	clock   order.Clock
	ids     order.IDGenerator
	metrics *metrics.StoreMetrics

	mu    sync.RWMutex
	state state
	owner string
}

// NewService creates the engine over store. Call Init before use.
func NewService(store storage.Store, opts Options) Service {
	if opts.Clock == nil {
		opts.Clock = order.SystemClock{}
	}
	if opts.IDs == nil {
		opts.IDs = order.NewSequence()
	}
	if opts.Mirror.Metrics == nil {
		opts.Mirror.Metrics = opts.Metrics
	}

	return &service{
		repo:    &repository{store: store},
		mirror:  storage.NewMirror("cart", store, opts.Mirror),
		fee:     opts.DeliveryFee,
		clock:   opts.Clock,
		ids:     opts.IDs,
		metrics: opts.Metrics,
	}
}

// Init restores the cart and the guest order history. Unreadable data is
// logged and treated as absent.
func (s *service) Init(ctx context.Context) error {
	log := s.log(ctx, "Init")

	c, err := s.repo.loadCart(ctx)
	if err != nil {
		log.Warn("cart not restored", zap.Error(err))
		c = Cart{}
	}

	orders := s.loadOrders(ctx, "")

	s.mu.Lock()
	s.state = state{cart: c, orders: orders}
	s.owner = ""
	s.mu.Unlock()

	log.Info("cart restored",
		zap.Int("lines", len(c.Lines)),
		zap.Int("orders", len(orders)),
	)
	return nil
}

func (s *service) Close(ctx context.Context) error {
	return s.mirror.Close(ctx)
}

func (s *service) Flush(ctx context.Context) error {
	return s.mirror.Flush(ctx)
}

func (s *service) AddToCart(ctx context.Context, p product.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.cart = s.state.cart.add(p, quantity)
	s.persistCart(ctx)
}

func (s *service) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.state.cart.remove(productID)
	if !changed {
		return
	}
	s.state.cart = next
	s.persistCart(ctx)
}

// UpdateQuantity sets an absolute quantity; zero or less removes the line.
// A product that is not in the cart is left alone.
func (s *service) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.state.cart.setQuantity(productID, quantity)
	if !changed {
		return
	}
	s.state.cart = next
	s.persistCart(ctx)
}

func (s *service) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.cart = Cart{}
	s.persistCart(ctx)
}

// PlaceOrder records the cart as a confirmed order and empties the cart.
// Delivery info is stored as given; validating it is the caller's job.
func (s *service) PlaceOrder(ctx context.Context, info order.DeliveryInfo) (order.Order, error) {
	log := s.log(ctx, "PlaceOrder")

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	next, o, err := checkout(s.state, info, s.fee, s.ids.NextID(now), now)
	if err != nil {
		return order.Order{}, err
	}

	batch, err := checkoutBatch(s.owner, next.orders)
	if err != nil {
		// memory stays authoritative; storage keeps the previous cart and history together
		log.Error("checkout not persisted", zap.String("order_id", o.ID), zap.Error(err))
	} else {
		s.mirror.Schedule(ctx, batch)
	}

	s.state = next
	s.metrics.OrderPlaced()

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.String()),
		zap.Int("items", len(o.Items)),
	)
	return o.Clone(), nil
}

func (s *service) Snapshot() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cart.clone()
}

func (s *service) Items() []Line {
	return s.Snapshot().Lines
}

func (s *service) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cart.Total()
}

func (s *service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cart.Count()
}

func (s *service) IsInCart(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.cart.index(productID) >= 0
}

func (s *service) ItemQuantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.state.cart.index(productID); i >= 0 {
		return s.state.cart.Lines[i].Quantity
	}
	return 0
}

// Orders returns copies of the history, newest first.
func (s *service) Orders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, len(s.state.orders))
	for i, o := range s.state.orders {
		out[i] = o.Clone()
	}
	return out
}

func (s *service) Order(id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.state.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return order.Order{}, order.ErrOrderNotFound
}

func (s *service) OrderStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Stats:  order.Summarize(s.state.orders),
		InCart: s.state.cart.Count(),
	}
}

// UseHistory switches the order history to owner's, loading it from storage.
func (s *service) UseHistory(ctx context.Context, owner string) error {
	// pending history writes must land before the key is read back
	if err := s.mirror.Flush(ctx); err != nil {
		return err
	}

	orders := s.loadOrders(ctx, owner)

	s.mu.Lock()
	s.owner = owner
	s.state.orders = orders
	s.mu.Unlock()

	s.log(ctx, "UseHistory").Debug("order history switched",
		zap.Bool("guest", owner == ""),
		zap.Int("orders", len(orders)),
	)
	return nil
}

func (s *service) DeliveryFee() decimal.Decimal {
	return s.fee
}

func (s *service) loadOrders(ctx context.Context, owner string) []order.Order {
	orders, err := s.repo.loadOrders(ctx, owner)
	if err != nil {
		s.log(ctx, "loadOrders").Warn("order history not restored", zap.Error(err))
		return nil
	}
	for _, o := range orders {
		s.ids.Observe(o.ID)
	}
	return orders
}

// persistCart schedules the current cart; callers hold s.mu so writes are
// scheduled in mutation order.
func (s *service) persistCart(ctx context.Context) {
	batch, err := cartBatch(s.state.cart)
	if err != nil {
		s.log(ctx, "persistCart").Error("cart not persisted", zap.Error(err))
		return
	}
	s.mirror.Schedule(ctx, batch)
}

func (s *service) log(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
	)
}
