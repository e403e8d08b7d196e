package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"eggcelent-store/internal/logger"
	"eggcelent-store/internal/metrics"
	"eggcelent-store/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the session store. Like the cart engine it answers from memory
// and mirrors every change to storage in the background.
type Service interface {
	Restore(ctx context.Context) State
	Close(ctx context.Context) error
	Flush(ctx context.Context) error

	Login(ctx context.Context, email, password string) (Session, error)
	Register(ctx context.Context, p RegisterParams) (Session, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, u ProfileUpdate) (Session, error)

	Current() (Session, bool)
	State() State
	IsAuthenticated() bool
}

type Options struct {
	Tokens  *Tokens
	Now     func() time.Time
	Mirror  storage.MirrorOptions
	Metrics *metrics.StoreMetrics
	// LogoutKeys lists further keys removed together with the session on
	// logout.
	LogoutKeys func(sessionID string) []string
}

type service struct {
	store      storage.Store
	mirror     *storage.Mirror
	tokens     *Tokens
	now        func() time.Time
	metrics    *metrics.StoreMetrics
	logoutKeys func(string) []string

	mu      sync.RWMutex
	state   State
	session *Session
}

func NewService(store storage.Store, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mirror.Metrics == nil {
		opts.Mirror.Metrics = opts.Metrics
	}

	return &service{
		store:      store,
		mirror:     storage.NewMirror("session", store, opts.Mirror),
		tokens:     opts.Tokens,
		now:        opts.Now,
		metrics:    opts.Metrics,
		logoutKeys: opts.LogoutKeys,
		state:      StateLoading,
	}
}

// Restore reads the stored session. Anything unreadable or carrying a bad
// token leaves the store signed out.
func (s *service) Restore(ctx context.Context) State {
	log := s.log(ctx, "Restore")

	var stored Session
	found, err := storage.LoadJSON(ctx, s.store, SessionKey, &stored)
	switch {
	case err != nil:
		log.Warn("session not restored", zap.Error(err))
		found = false
	case found && s.tokens != nil:
		if err := s.tokens.Verify(stored); err != nil {
			log.Warn("stored session rejected", zap.Error(err))
			found = false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if found {
		s.session = &stored
		s.state = StateAuthenticated
	} else {
		s.session = nil
		s.state = StateUnauthenticated
	}

	log.Info("session restored", zap.String("state", s.state.String()))
	return s.state
}

func (s *service) Close(ctx context.Context) error {
	return s.mirror.Close(ctx)
}

func (s *service) Flush(ctx context.Context) error {
	return s.mirror.Flush(ctx)
}

// Login starts a session for email. The password is checked for length only.
func (s *service) Login(ctx context.Context, email, password string) (Session, error) {
	if err := ValidateLogin(email, password); err != nil {
		return Session{}, err
	}

	return s.start(ctx, "Login", Session{
		Email: NormalizeEmail(email),
		Name:  NameFromEmail(strings.TrimSpace(email)),
	})
}

func (s *service) Register(ctx context.Context, p RegisterParams) (Session, error) {
	if err := ValidateRegister(p); err != nil {
		return Session{}, err
	}

	return s.start(ctx, "Register", Session{
		Email: NormalizeEmail(p.Email),
		Name:  strings.TrimSpace(p.Name),
		Phone: p.Phone,
	})
}

func (s *service) start(ctx context.Context, method string, sess Session) (Session, error) {
	log := s.log(ctx, method)

	sess.ID = uuid.NewString()
	sess.Avatar = DefaultAvatar
	sess.JoinedAt = s.now().UTC()

	if s.tokens != nil {
		token, err := s.tokens.GenerateJWT(sess.ID)
		if err != nil {
			log.Error("failed to generate jwt", zap.Error(err))
			return Session{}, err
		}
		sess.Token = token
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = &sess
	s.state = StateAuthenticated
	s.persist(ctx, sess)
	s.metrics.SessionStarted()

	log.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("email", sess.Email),
	)
	return sess, nil
}

// Logout signs out and removes the stored session along with the keys
// LogoutKeys names for it.
func (s *service) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := storage.NewBatch().Delete(SessionKey)
	if s.session != nil && s.logoutKeys != nil {
		for _, key := range s.logoutKeys(s.session.ID) {
			batch.Delete(key)
		}
	}
	s.mirror.Schedule(ctx, batch)

	var id string
	if s.session != nil {
		id = s.session.ID
	}
	s.session = nil
	s.state = StateUnauthenticated

	s.log(ctx, "Logout").Info("session ended", zap.String("session_id", id))
}

// UpdateProfile merges u into the current session as given.
func (s *service) UpdateProfile(ctx context.Context, u ProfileUpdate) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return Session{}, ErrNotAuthenticated
	}

	updated := u.apply(*s.session)
	s.session = &updated
	s.persist(ctx, updated)

	return updated, nil
}

func (s *service) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

func (s *service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *service) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// persist is called with s.mu held.
func (s *service) persist(ctx context.Context, sess Session) {
	raw, err := storage.EncodeJSON(sess)
	if err != nil {
		s.log(ctx, "persist").Error("session not persisted", zap.Error(err))
		return
	}
	s.mirror.Schedule(ctx, storage.NewBatch().Set(SessionKey, raw))
}

func (s *service) log(ctx context.Context, method string) *zap.Logger {
	return logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
	)
}
