package app

import (
	"context"
	"errors"
	"fmt"

	"eggcelent-store/internal/cart"
	"eggcelent-store/internal/config"
	"eggcelent-store/internal/db"
	"eggcelent-store/internal/logger"
	"eggcelent-store/internal/metrics"
	"eggcelent-store/internal/order"
	"eggcelent-store/internal/product"
	"eggcelent-store/internal/storage"
	"eggcelent-store/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App wires the catalog, the cart engine and the session store over one
// durable store.
type App struct {
	Config  *config.Config
	Catalog product.Catalog
	Cart    cart.Service
	Session user.Service
	Metrics *metrics.StoreMetrics

	closeStore func() error
}

// New opens the store selected by cfg and builds the services. Call Start
// before use and Close when done.
func New(cfg *config.Config, registerer prometheus.Registerer) (*App, error) {
	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	a, err := NewWithStore(cfg, store, registerer)
	if err != nil {
		_ = closeStore()
		return nil, err
	}
	a.closeStore = closeStore
	return a, nil
}

func NewWithStore(cfg *config.Config, store storage.Store, registerer prometheus.Registerer) (*App, error) {
	catalog, err := product.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	m := metrics.NewStoreMetrics(registerer)
	mirror := storage.MirrorOptions{
		Rate:    cfg.MirrorRate,
		Burst:   cfg.MirrorBurst,
		Metrics: m,
	}

	return &App{
		Config:  cfg,
		Catalog: catalog,
		Metrics: m,
		Cart: cart.NewService(store, cart.Options{
			DeliveryFee: cfg.DeliveryFee,
			Clock:       order.SystemClock{},
			IDs:         order.NewSequence(),
			Mirror:      mirror,
			Metrics:     m,
		}),
		Session: user.NewService(store, user.Options{
			Tokens:  user.NewTokens(cfg.JWTSecret, cfg.SessionTTL, nil),
			Mirror:  mirror,
			Metrics: m,
			LogoutKeys: func(sessionID string) []string {
				return []string{cart.OrdersKey(sessionID)}
			},
		}),
	}, nil
}

// OpenStore returns the store named by cfg.StoreDriver and a func releasing it.
func OpenStore(cfg *config.Config) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return storage.NewMemoryStore(), noop, nil
	case config.DriverFile:
		s, err := storage.OpenFileStore(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.DriverPostgres:
		database, err := db.NewDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresStore(database), database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Start restores the session and the cart, then points the order history at
// the restored session.
func (a *App) Start(ctx context.Context) error {
	if err := a.Cart.Init(ctx); err != nil {
		return err
	}
	a.Session.Restore(ctx)
	return a.Cart.UseHistory(ctx, a.owner())
}

// Login signs in, ending any current session first so its history does not
// outlive it.
func (a *App) Login(ctx context.Context, email, password string) (user.Session, error) {
	if err := user.ValidateLogin(email, password); err != nil {
		return user.Session{}, err
	}
	if err := a.endSession(ctx); err != nil {
		return user.Session{}, err
	}

	sess, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return user.Session{}, err
	}
	return sess, a.Cart.UseHistory(ctx, sess.ID)
}

func (a *App) Register(ctx context.Context, p user.RegisterParams) (user.Session, error) {
	if err := user.ValidateRegister(p); err != nil {
		return user.Session{}, err
	}
	if err := a.endSession(ctx); err != nil {
		return user.Session{}, err
	}

	sess, err := a.Session.Register(ctx, p)
	if err != nil {
		return user.Session{}, err
	}
	return sess, a.Cart.UseHistory(ctx, sess.ID)
}

// Logout ends the session, which also drops its order history, and returns
// the engine to the guest history.
func (a *App) Logout(ctx context.Context) error {
	if err := a.endSession(ctx); err != nil {
		return err
	}
	return a.Cart.UseHistory(ctx, "")
}

// endSession logs out the current session, if any, together with its history.
func (a *App) endSession(ctx context.Context) error {
	if !a.Session.IsAuthenticated() {
		return nil
	}
	// history writes of the ending session must land before their key is removed
	if err := a.Cart.Flush(ctx); err != nil {
		return err
	}
	a.Session.Logout(ctx)
	return nil
}

// Close drains both mirrors and releases the store.
func (a *App) Close(ctx context.Context) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "app"))

	err := errors.Join(
		a.Cart.Close(ctx),
		a.Session.Close(ctx),
	)
	// a mirror that did not drain may still be writing
	if err == nil && a.closeStore != nil {
		err = a.closeStore()
	}
	if err != nil {
		log.Error("shutdown incomplete", zap.Error(err))
		return err
	}

	log.Info("storefront closed")
	return nil
}

func (a *App) owner() string {
	if sess, ok := a.Session.Current(); ok {
		return sess.ID
	}
	return ""
}
