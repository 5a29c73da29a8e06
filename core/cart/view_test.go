package cart

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/irsalhamdi/e-commerce-api/cache"
	"github.com/irsalhamdi/e-commerce-api/core/product"
	"github.com/irsalhamdi/e-commerce-api/metrics"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestViewerCachesUntilInvalidated(t *testing.T) {
	db := newStore(t)
	userID, ps := seed(t, db, "8.00")
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	log, hook := test.NewNullLogger()
	m := metrics.New()
	v := NewViewer(db.DB, cache.NewRedis(rdb, time.Minute), log, m)

	if _, err := AddOrIncrement(ctx, db.DB, product.Catalog{DB: db.DB}, ItemNew{UserID: userID, ProductID: ps[0], Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	vs, err := v.Views(ctx, userID)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(vs) != 1 || vs[0].Quantity != 1 {
		t.Fatalf("unexpected views: %+v", vs)
	}
	if !mr.Exists(cacheKey(userID)) {
		t.Fatal("expected the projection to be cached")
	}

	// A write without invalidation is not visible through the cache.
	if _, err := ApplyAction(ctx, db.DB, userID, ps[0], Increase); err != nil {
		t.Fatal(err)
	}
	vs, err = v.Views(ctx, userID)
	if err != nil {
		t.Fatalf("cached read: %v", err)
	}
	if vs[0].Quantity != 1 {
		t.Fatalf("expected the cached quantity 1, got %d", vs[0].Quantity)
	}

	v.Invalidate(userID)
	if mr.Exists(cacheKey(userID)) {
		t.Fatal("expected the entry to be dropped")
	}

	vs, err = v.Views(ctx, userID)
	if err != nil {
		t.Fatalf("read after invalidation: %v", err)
	}
	if vs[0].Quantity != 2 || !vs[0].Total.Equal(money("16.00")) {
		t.Fatalf("expected quantity 2 for 16.00, got %d for %s", vs[0].Quantity, vs[0].Total)
	}

	if got := testutil.ToFloat64(m.CartCache.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 cache hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.CartCache.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 cache misses, got %v", got)
	}
	if len(hook.Entries) != 0 {
		t.Fatalf("expected no warnings, got %d", len(hook.Entries))
	}
}

// A broken cache degrades to reading the store.
func TestViewerFallsBackOnCacheErrors(t *testing.T) {
	db := newStore(t)
	userID, ps := seed(t, db, "2.00")
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	log, hook := test.NewNullLogger()
	m := metrics.New()
	v := NewViewer(db.DB, cache.NewRedis(rdb, time.Minute), log, m)

	if _, err := AddOrIncrement(ctx, db.DB, product.Catalog{DB: db.DB}, ItemNew{UserID: userID, ProductID: ps[0], Quantity: 3}); err != nil {
		t.Fatal(err)
	}

	mr.SetError("ERR cache unavailable")

	vs, err := v.Views(ctx, userID)
	if err != nil {
		t.Fatalf("read with broken cache: %v", err)
	}
	if len(vs) != 1 || vs[0].Quantity != 3 {
		t.Fatalf("unexpected views: %+v", vs)
	}

	if got := testutil.ToFloat64(m.CartCache.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 cache error, got %v", got)
	}
	if len(hook.Entries) != 2 {
		t.Fatalf("expected read and write warnings, got %d entries", len(hook.Entries))
	}
}

func TestViewerEmptyCart(t *testing.T) {
	db := newStore(t)
	userID, _ := seed(t, db)

	log, _ := test.NewNullLogger()
	v := NewViewer(db.DB, nil, log, nil)

	vs, err := v.Views(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	if vs == nil || len(vs) != 0 {
		t.Fatalf("expected an empty non-nil list, got %#v", vs)
	}
}

var errReleased = errors.New("released")

// blockingQueryer holds every query until release is closed and then fails
// it with the query context's error, or errReleased when that is still live.
type blockingQueryer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (q *blockingQueryer) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	q.once.Do(func() { close(q.started) })
	<-q.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, errReleased
}

func (q *blockingQueryer) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (q *blockingQueryer) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}

// A caller leaving does not cancel the lookup other callers share.
func TestViewerSharedLookupOutlivesCaller(t *testing.T) {
	q := &blockingQueryer{started: make(chan struct{}), release: make(chan struct{})}

	log, _ := test.NewNullLogger()
	v := NewViewer(q, nil, log, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := v.Views(ctxA, "u1")
		errA <- err
	}()
	<-q.started

	ctxB, cancelB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelB()
	errB := make(chan error, 1)
	go func() {
		_, err := v.Views(ctxB, "u1")
		errB <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the cancelled caller to stop with context.Canceled, got %v", err)
	}

	close(q.release)

	err := <-errB
	if errors.Is(err, context.Canceled) {
		t.Fatalf("live caller failed with the other caller's cancellation: %v", err)
	}
	if !errors.Is(err, errReleased) {
		t.Fatalf("expected the shared lookup result, got %v", err)
	}
}
