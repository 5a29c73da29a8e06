package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/irsalhamdi/e-commerce-api/cache"
	"github.com/irsalhamdi/e-commerce-api/metrics"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 5 * time.Second

// Viewer serves cart projections through a cache. Every write to a cart must
// be followed by Invalidate for that user.
type Viewer struct {
	db      sqlx.QueryerContext
	cache   cache.Cache
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	sfg     singleflight.Group
}

func NewViewer(db sqlx.QueryerContext, c cache.Cache, log logrus.FieldLogger, m *metrics.Metrics) *Viewer {
	if c == nil {
		c = cache.Noop{}
	}
	return &Viewer{db: db, cache: c, log: log, metrics: m}
}

// Views returns the cart projection of the user. Concurrent calls for one
// user share a single lookup, which runs on its own context bounded by
// loadTimeout so a caller that goes away does not fail the others.
func (v *Viewer) Views(ctx context.Context, userID string) ([]View, error) {
	ch := v.sfg.DoChan(userID, func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return v.load(lctx, userID)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for cart views: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("querying cart views: %w", res.Err)
		}
		return res.Val.([]View), nil
	}
}

func (v *Viewer) load(ctx context.Context, userID string) ([]View, error) {
	var vs []View
	err := v.cache.Get(ctx, cacheKey(userID), &vs)
	if err == nil {
		v.count("hit")
		return vs, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		v.count("error")
		v.log.WithError(err).WithField("user_id", userID).Warn("cart cache read failed")
	} else {
		v.count("miss")
	}

	vs, err = QueryViews(ctx, v.db, userID)
	if err != nil {
		return nil, err
	}

	if err := v.cache.Set(ctx, cacheKey(userID), vs); err != nil {
		v.log.WithError(err).WithField("user_id", userID).Warn("cart cache write failed")
	}
	return vs, nil
}

// Invalidate drops the cached projection of the user's cart. It runs on a
// fresh context so a cancelled request still clears the entry.
func (v *Viewer) Invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := v.cache.Delete(ctx, cacheKey(userID)); err != nil {
		v.log.WithError(err).WithField("user_id", userID).Warn("cart cache invalidation failed")
	}
}

func (v *Viewer) count(result string) {
	if v.metrics != nil {
		v.metrics.CartCache.WithLabelValues(result).Inc()
	}
}

func cacheKey(userID string) string {
	return "cart:" + userID
}
