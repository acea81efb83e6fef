package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"tourism_dashboard/internal/adapters/observability"
	"tourism_dashboard/internal/domain"
)

type LoaderConfig struct {
	URL      string
	MemoTTL  time.Duration // in-process; 0 keeps the dataset until Invalidate
	CacheTTL time.Duration // shared tier; 0 keeps the key until Invalidate
}

// DatasetService memoizes the parsed dataset per source URL.
// Lookup order is memory, then the shared cache (if any), then the source.
type DatasetService struct {
	src   domain.DatasetSource
	cache domain.Cache
	cfg   LoaderConfig
	key   string
	now   func() time.Time

	sf singleflight.Group

	mu      sync.RWMutex
	memo    *memoEntry
	version uint64 // bumped on Invalidate; a fill started under an older version is not stored
}

type memoEntry struct {
	ds      domain.Dataset
	expires time.Time // zero: never
}

func NewDatasetService(src domain.DatasetSource, cache domain.Cache, cfg LoaderConfig) *DatasetService {
	return &DatasetService{src: src, cache: cache, cfg: cfg, key: CacheKey(cfg.URL), now: time.Now}
}

// CacheKey derives the cache key from the resource URL only.
func CacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "dataset:" + hex.EncodeToString(sum[:])
}

func (s *DatasetService) Key() string { return s.key }

func (s *DatasetService) Load(ctx context.Context) (domain.Dataset, error) {
	if ds, ok := s.memoized(); ok {
		observability.ObserveCache("memory", "hit")
		return ds, nil
	}
	observability.ObserveCache("memory", "miss")

	// The flight outlives any single caller; the source client has its own timeout.
	fctx := context.WithoutCancel(ctx)
	v, err, shared := s.sf.Do(s.key, func() (any, error) {
		if ds, ok := s.memoized(); ok {
			return ds, nil
		}
		s.mu.RLock()
		version := s.version
		s.mu.RUnlock()

		ds, err := s.fill(fctx, version)
		if err != nil {
			return domain.Dataset{}, err
		}
		s.store(ds, version)
		return ds, nil
	})
	if err != nil {
		return domain.Dataset{}, err
	}
	if shared {
		log.Debug().Str("key", s.key).Msg("dataset load shared an in-flight fetch")
	}
	return v.(domain.Dataset), nil
}

// Invalidate drops both tiers; the next Load fetches from the source.
func (s *DatasetService) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	s.memo = nil
	s.version++
	s.mu.Unlock()
	s.sf.Forget(s.key)
	observability.ObserveCache("memory", "del")

	if s.cache != nil {
		if err := s.cache.Del(ctx, s.key); err != nil {
			return fmt.Errorf("invalidate shared cache: %w", err)
		}
	}
	log.Info().Str("key", s.key).Msg("dataset cache invalidated")
	return nil
}

func (s *DatasetService) Refresh(ctx context.Context) (domain.Dataset, error) {
	if err := s.Invalidate(ctx); err != nil {
		return domain.Dataset{}, err
	}
	return s.Load(ctx)
}

func (s *DatasetService) memoized() (domain.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.memo == nil {
		return domain.Dataset{}, false
	}
	if !s.memo.expires.IsZero() && !s.now().Before(s.memo.expires) {
		return domain.Dataset{}, false
	}
	return s.memo.ds, true
}

// current reports whether no Invalidate happened since version was read.
func (s *DatasetService) current(version uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return version == s.version
}

func (s *DatasetService) store(ds domain.Dataset, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return
	}
	e := &memoEntry{ds: ds}
	if s.cfg.MemoTTL > 0 {
		e.expires = s.now().Add(s.cfg.MemoTTL)
	}
	s.memo = e
	observability.ObserveCache("memory", "set")
	observability.SetDatasetRows(ds.Len())
}

// fill reads through the shared tier to the source. The result is written back
// only while version is current.
func (s *DatasetService) fill(ctx context.Context, version uint64) (domain.Dataset, error) {
	if s.cache != nil {
		var ds domain.Dataset
		ok, err := s.cache.Get(ctx, s.key, &ds)
		if err != nil {
			// shared tier is best-effort
			log.Warn().Err(err).Str("key", s.key).Msg("shared cache read failed")
		}
		if ok {
			log.Info().Str("key", s.key).Int("rows", ds.Len()).Msg("dataset served from shared cache")
			return ds, nil
		}
	}

	raw, err := s.src.Fetch(ctx)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("fetch dataset: %w", err)
	}
	ds, err := ParseDataset(raw, s.now())
	if err != nil {
		return domain.Dataset{}, err
	}
	log.Info().
		Str("url", raw.URL).
		Str("sha1", ds.Meta.SHA1).
		Int("rows", ds.Len()).
		Msg("dataset fetched")

	if s.cache != nil && s.current(version) {
		if err := s.cache.Set(ctx, s.key, ds, int(s.cfg.CacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", s.key).Msg("shared cache write failed")
		}
		// Invalidate bumps the version before its Del, so a Set that raced
		// past the check above is undone here.
		if !s.current(version) {
			if err := s.cache.Del(ctx, s.key); err != nil {
				log.Warn().Err(err).Str("key", s.key).Msg("stale shared cache entry not removed")
			}
		}
	}
	return ds, nil
}
