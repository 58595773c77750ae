package status

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStore) Insert(ctx context.Context, sc *StatusCheck) error {
	return m.Called(ctx, sc).Error(0)
}

func (m *MockStore) FindRecent(ctx context.Context, limit int) ([]*StatusCheck, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*StatusCheck), args.Error(1)
}

func (m *MockStore) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

// gatedStore reads from SQLite, then holds the first FindRecent result
// until release is closed.
type gatedStore struct {
	*SQLiteStore
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedStore(t *testing.T) *gatedStore {
	t.Helper()
	return &gatedStore{
		SQLiteStore: newTestSQLiteStore(t),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gatedStore) FindRecent(ctx context.Context, limit int) ([]*StatusCheck, error) {
	checks, err := s.SQLiteStore.FindRecent(ctx, limit)
	if s.calls.Add(1) == 1 {
		close(s.entered)
		<-s.release
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return checks, err
}

func TestStatusService_CreateThenList_RoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	svc := NewStatusService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.ClientName)
	assert.NotEmpty(t, created.ID)

	checks, err := svc.ListRecent(ctx, DefaultListLimit)
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.Equal(t, created, checks[0])
}

func TestStatusService_CreateSameNameDistinctIDs(t *testing.T) {
	svc := NewStatusService(newTestSQLiteStore(t))
	ctx := context.Background()

	a, err := svc.Create(ctx, "twin")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "twin")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)

	checks, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, checks, 2)
}

func TestStatusService_CreateUsesInjectedSources(t *testing.T) {
	now := time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)
	svc := NewStatusService(newTestSQLiteStore(t),
		WithClock(fixedClock(now)),
		WithIDSource(sequenceIDs("fixed-id")),
	)

	sc, err := svc.Create(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, &StatusCheck{ID: "fixed-id", ClientName: "bob", Timestamp: now}, sc)
}

func TestStatusService_CreateStoreFailure(t *testing.T) {
	store := &MockStore{}
	publisher := &MockPublisher{}
	storeErr := errors.New("connection refused")
	store.On("Insert", mock.Anything, mock.Anything).Return(storeErr)

	svc := NewStatusService(store, WithPublisher(publisher))

	sc, err := svc.Create(context.Background(), "alice")
	assert.Nil(t, sc)
	assert.ErrorIs(t, err, storeErr)
	store.AssertNumberOfCalls(t, "Insert", 1)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestStatusService_CreatePublishesEvent(t *testing.T) {
	now := time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, RoutingKeyStatusCreated, &StatusCreatedEvent{
		ID:         "evt-id",
		ClientName: "alice",
		Timestamp:  "2025-05-05T05:05:05Z",
	}).Return(nil)

	svc := NewStatusService(newTestSQLiteStore(t),
		WithClock(fixedClock(now)),
		WithIDSource(sequenceIDs("evt-id")),
		WithPublisher(publisher),
	)

	_, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestStatusService_PublishFailureDoesNotFailCreate(t *testing.T) {
	publisher := &MockPublisher{}
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewStatusService(newTestSQLiteStore(t), WithPublisher(publisher))

	sc, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, sc)
}

func TestStatusService_ListEmpty(t *testing.T) {
	svc := NewStatusService(newTestSQLiteStore(t))

	checks, err := svc.ListRecent(context.Background(), DefaultListLimit)
	require.NoError(t, err)
	assert.NotNil(t, checks)
	assert.Empty(t, checks)
}

func TestStatusService_ListClampsLimit(t *testing.T) {
	store := &MockStore{}
	store.On("FindRecent", mock.Anything, DefaultListLimit).Return([]*StatusCheck{}, nil)

	svc := NewStatusService(store)
	for _, limit := range []int{-1, 0, DefaultListLimit + 1} {
		_, err := svc.ListRecent(context.Background(), limit)
		require.NoError(t, err)
	}
	store.AssertExpectations(t)
}

func TestStatusService_ListStoreFailure(t *testing.T) {
	store := &MockStore{}
	store.On("FindRecent", mock.Anything, DefaultListLimit).Return(nil, errors.New("timeout"))

	svc := NewStatusService(store)
	checks, err := svc.ListRecent(context.Background(), DefaultListLimit)
	assert.Nil(t, checks)
	assert.ErrorContains(t, err, "timeout")
}

func TestStatusService_CacheHitAndInvalidation(t *testing.T) {
	store := &MockStore{}
	first := []*StatusCheck{{ID: "1", ClientName: "a"}}
	store.On("FindRecent", mock.Anything, DefaultListLimit).Return(first, nil).Once()
	store.On("Insert", mock.Anything, mock.Anything).Return(nil)

	svc := NewStatusService(store, WithCache(NewMemoryCache(8, time.Minute)))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		checks, err := svc.ListRecent(ctx, DefaultListLimit)
		require.NoError(t, err)
		assert.Equal(t, first, checks)
	}
	store.AssertNumberOfCalls(t, "FindRecent", 1)

	_, err := svc.Create(ctx, "b")
	require.NoError(t, err)

	second := []*StatusCheck{{ID: "1", ClientName: "a"}, {ID: "2", ClientName: "b"}}
	store.On("FindRecent", mock.Anything, DefaultListLimit).Return(second, nil).Once()

	checks, err := svc.ListRecent(ctx, DefaultListLimit)
	require.NoError(t, err)
	assert.Equal(t, second, checks)
	store.AssertNumberOfCalls(t, "FindRecent", 2)
}

func TestStatusService_ConcurrentCreates(t *testing.T) {
	svc := NewStatusService(newTestSQLiteStore(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, "concurrent")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	checks, err := svc.ListRecent(ctx, DefaultListLimit)
	require.NoError(t, err)
	assert.Len(t, checks, 20)

	seen := make(map[string]bool)
	for _, sc := range checks {
		assert.False(t, seen[sc.ID], "duplicate id %s", sc.ID)
		seen[sc.ID] = true
	}
}

func TestStatusService_Lifecycle(t *testing.T) {
	store := &MockStore{}
	store.On("Init", mock.Anything).Return(nil)
	store.On("Close", mock.Anything).Return(nil)

	svc := NewStatusService(store)
	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Shutdown(context.Background()))
	store.AssertExpectations(t)
}

func TestStatusService_SlowReadDoesNotCacheOverCreate(t *testing.T) {
	store := newGatedStore(t)
	svc := NewStatusService(store, WithCache(NewMemoryCache(8, time.Minute)))
	ctx := context.Background()

	stale := make(chan []*StatusCheck, 1)
	go func() {
		checks, err := svc.ListRecent(ctx, DefaultListLimit)
		assert.NoError(t, err)
		stale <- checks
	}()
	<-store.entered

	created, err := svc.Create(ctx, "alice")
	require.NoError(t, err)
	close(store.release)

	// the read began before the insert, so it may miss it
	assert.Empty(t, <-stale)

	// but its snapshot must not be served to reads issued after Create
	for i := 0; i < 2; i++ {
		checks, err := svc.ListRecent(ctx, DefaultListLimit)
		require.NoError(t, err)
		require.Len(t, checks, 1)
		assert.Equal(t, created, checks[0])
	}
}

func TestStatusService_ListAfterCreateDoesNotJoinOlderRead(t *testing.T) {
	store := newGatedStore(t)
	svc := NewStatusService(store)
	ctx := context.Background()

	go func() {
		_, _ = svc.ListRecent(ctx, DefaultListLimit)
	}()
	<-store.entered
	t.Cleanup(func() { close(store.release) })

	_, err := svc.Create(ctx, "alice")
	require.NoError(t, err)

	// the first read is still held; this one must run its own query
	checks, err := svc.ListRecent(ctx, DefaultListLimit)
	require.NoError(t, err)
	assert.Len(t, checks, 1)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestStatusService_CanceledCallerDoesNotFailSharedRead(t *testing.T) {
	store := newGatedStore(t)
	svc := NewStatusService(store)
	_, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.ListRecent(ctxA, DefaultListLimit)
		errA <- err
	}()
	<-store.entered

	type result struct {
		checks []*StatusCheck
		err    error
	}
	resB := make(chan result, 1)
	go func() {
		checks, err := svc.ListRecent(context.Background(), DefaultListLimit)
		resB <- result{checks, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting on the shared query")
	}

	close(store.release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		assert.Len(t, res.checks, 1)
	case <-time.After(time.Second):
		t.Fatal("shared query did not finish")
	}
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestStatusService_SharedReadHasOwnTimeout(t *testing.T) {
	store := &MockStore{}
	store.On("FindRecent", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= time.Second
	}), DefaultListLimit).Return([]*StatusCheck{}, nil)

	svc := NewStatusService(store, WithQueryTimeout(time.Second))
	_, err := svc.ListRecent(context.Background(), DefaultListLimit)
	require.NoError(t, err)
	store.AssertExpectations(t)
}
