package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rewired-gh/luckylogic/internal/draws"
	"github.com/rewired-gh/luckylogic/internal/logger"
	"github.com/rewired-gh/luckylogic/internal/models"
)

// Fetch outcomes reported to the Recorder.
const (
	FetchCache   = "cache"
	FetchFetched = "fetched"
	FetchStale   = "stale"
	FetchError   = "error"
)

// DrawSource fetches the full draw history from upstream.
type DrawSource interface {
	FetchDraws(ctx context.Context) ([]models.Draw, error)
	Source() string
}

// DrawCache persists the last fetched draw history.
type DrawCache interface {
	SaveDraws(ctx context.Context, ds []models.Draw, source string) error
	LoadDraws(ctx context.Context, limit int) ([]models.Draw, error)
	LastFetch(ctx context.Context) (time.Time, bool, error)
}

// DrawRepository serves draws from the cache while it is fresh and refetches
// otherwise. When a fetch fails, any cached draws are served instead.
type DrawRepository struct {
	source DrawSource
	cache  DrawCache
	ttl    time.Duration
	rec    Recorder
	now    func() time.Time

	mu sync.Mutex
}

// NewDrawRepository creates a repository. ttl <= 0 refetches on every call.
func NewDrawRepository(source DrawSource, cache DrawCache, ttl time.Duration) *DrawRepository {
	return &DrawRepository{
		source: source,
		cache:  cache,
		ttl:    ttl,
		rec:    nopRecorder{},
		now:    time.Now,
	}
}

// SetRecorder installs a recorder for fetch outcomes.
func (r *DrawRepository) SetRecorder(rec Recorder) {
	if rec == nil {
		rec = nopRecorder{}
	}
	r.rec = rec
}

// Draws returns the draw history, newest first.
func (r *DrawRepository) Draws(ctx context.Context) ([]models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok, err := r.cache.LastFetch(ctx)
	if err != nil {
		logger.Warn("Failed to read last draw fetch time: %v", err)
	}
	if ok && r.ttl > 0 && r.now().Sub(at) < r.ttl {
		cached, err := r.cache.LoadDraws(ctx, 0)
		if err == nil {
			r.rec.DrawFetch(FetchCache)
			return cached, nil
		}
		logger.Warn("Failed to load cached draws: %v", err)
	}
	return r.refresh(ctx)
}

// Refresh fetches upstream regardless of cache age.
func (r *DrawRepository) Refresh(ctx context.Context) ([]models.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refresh(ctx)
}

func (r *DrawRepository) refresh(ctx context.Context) ([]models.Draw, error) {
	fetched, err := r.source.FetchDraws(ctx)
	if err != nil {
		stale, cacheErr := r.cache.LoadDraws(ctx, 0)
		if cacheErr == nil && len(stale) > 0 {
			logger.Warn("Draw fetch failed, serving %d cached draws: %v", len(stale), err)
			r.rec.DrawFetch(FetchStale)
			return stale, nil
		}
		r.rec.DrawFetch(FetchError)
		return nil, fmt.Errorf("failed to fetch draws: %w", err)
	}

	sorted := draws.Prepare(fetched, 0)
	if err := r.cache.SaveDraws(ctx, sorted, r.source.Source()); err != nil {
		logger.Warn("Failed to cache %d draws: %v", len(sorted), err)
	}
	logger.Info("Fetched %d draws from %s", len(sorted), r.source.Source())
	r.rec.DrawFetch(FetchFetched)
	return sorted, nil
}
