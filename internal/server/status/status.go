package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

const RoutingKeyStatusCreated = "status.created"

// DefaultQueryTimeout bounds a shared ListRecent store query
const DefaultQueryTimeout = 10 * time.Second

// Publisher emits domain events. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type StatusService struct {
	store     Store
	cache     Cache
	publisher Publisher
	now       Clock
	newID     IDSource
	timeout   time.Duration
	group     singleflight.Group
}

type Option func(*StatusService)

func WithClock(c Clock) Option {
	return func(s *StatusService) {
		s.now = c
	}
}

func WithIDSource(src IDSource) Option {
	return func(s *StatusService) {
		s.newID = src
	}
}

func WithCache(c Cache) Option {
	return func(s *StatusService) {
		s.cache = c
	}
}

func WithQueryTimeout(d time.Duration) Option {
	return func(s *StatusService) {
		s.timeout = d
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *StatusService) {
		s.publisher = p
	}
}

func NewStatusService(store Store, opts ...Option) *StatusService {
	svc := &StatusService{
		store:   store,
		cache:   NoopCache(),
		now:     SystemClock,
		newID:   UUIDSource,
		timeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *StatusService) Start(ctx context.Context) error {
	slog.Debug("status service start")
	return s.store.Init(ctx)
}

// Shutdown releases the cache and the store connection, in that order
func (s *StatusService) Shutdown(ctx context.Context) error {
	slog.Debug("status service shutdown")
	if err := s.cache.Close(); err != nil {
		slog.Warn("status cache close", "error", err)
	}
	return s.store.Close(ctx)
}

// Create stamps and persists a new record. Store failures are returned as is;
// there is no retry here.
func (s *StatusService) Create(ctx context.Context, clientName string) (*StatusCheck, error) {
	sc := NewStatusCheck(clientName, s.now, s.newID)

	if err := s.store.Insert(ctx, sc); err != nil {
		return nil, fmt.Errorf("create status check: %w", err)
	}

	// the record is stored; a caller hanging up must not leave a stale cache
	s.cache.Invalidate(context.WithoutCancel(ctx))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, RoutingKeyStatusCreated, newStatusCreatedEvent(sc)); err != nil {
			slog.Warn("publish status event", "id", sc.ID, "error", err)
		}
	}

	return sc, nil
}

// ListRecent returns up to limit records. A non-positive or oversized limit
// falls back to DefaultListLimit.
//
// Concurrent misses within one cache generation share a single store query.
// The shared query is detached from any one caller's cancellation and bounded
// by the query timeout instead; each caller still stops waiting when its own
// ctx is done.
func (s *StatusService) ListRecent(ctx context.Context, limit int) ([]*StatusCheck, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	if checks, ok := s.cache.Get(ctx, limit); ok {
		return checks, nil
	}

	gen, cacheable := s.cache.Generation(ctx)
	key := fmt.Sprintf("%d:%d", gen, limit)

	result := s.group.DoChan(key, func() (any, error) {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		checks, err := s.store.FindRecent(queryCtx, limit)
		if err != nil {
			return nil, err
		}
		if cacheable {
			s.cache.Set(queryCtx, gen, limit, checks)
		}
		return checks, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list status checks: %w", ctx.Err())
	case res := <-result:
		if res.Err != nil {
			return nil, fmt.Errorf("list status checks: %w", res.Err)
		}
		return res.Val.([]*StatusCheck), nil
	}
}
