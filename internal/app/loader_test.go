package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"tourism_dashboard/internal/adapters/csvsource"
	redisad "tourism_dashboard/internal/adapters/redis"
	"tourism_dashboard/internal/app"
	"tourism_dashboard/internal/domain"
)

const testURL = "https://example.test/towns.csv"

func TestLoad_MemoizesAcrossCalls(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write(twoTowns)
	}))
	defer ts.Close()

	cl, err := csvsource.New(ts.URL, 100)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	svc := app.NewDatasetService(cl, nil, app.LoaderConfig{URL: ts.URL})
	ctx := context.Background()

	first, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("loads differ (-first +second):\n%s", diff)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected 1 fetch, got %d", n)
	}
}

func TestLoad_ConcurrentColdCacheSingleFetch(t *testing.T) {
	src := &fakeSource{body: twoTowns, gate: make(chan struct{})}
	svc := app.NewDatasetService(src, nil, app.LoaderConfig{URL: testURL})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := svc.Load(context.Background())
			if err == nil && ds.Len() != 2 {
				err = errors.New("short dataset")
			}
			errs <- err
		}()
	}
	// let the callers pile up on the in-flight fetch
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	if n := src.Hits(); n != 1 {
		t.Fatalf("expected 1 fetch, got %d", n)
	}
}

func TestLoad_InvalidateRefetches(t *testing.T) {
	src := &fakeSource{body: twoTowns}
	svc := app.NewDatasetService(src, nil, app.LoaderConfig{URL: testURL})
	ctx := context.Background()

	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	src.set(csvOf("C,1,1,1,1,1,5"), nil)
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	ds, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.Hits() != 2 || !cmp.Equal(ds.Towns(), []string{"C"}) {
		t.Fatalf("hits=%d towns=%v", src.Hits(), ds.Towns())
	}
}

func TestLoad_FailureIsNotCached(t *testing.T) {
	src := &fakeSource{err: domain.ErrUpstream}
	svc := app.NewDatasetService(src, nil, app.LoaderConfig{URL: testURL})
	ctx := context.Background()

	if _, err := svc.Load(ctx); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	src.set(twoTowns, nil)
	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if src.Hits() != 2 {
		t.Fatalf("expected 2 fetches, got %d", src.Hits())
	}
}

func TestLoad_MalformedCSVPropagates(t *testing.T) {
	src := &fakeSource{body: []byte("Town\nA\n")}
	svc := app.NewDatasetService(src, nil, app.LoaderConfig{URL: testURL})
	if _, err := svc.Load(context.Background()); !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func newRedis(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestLoad_SharedCacheHitSkipsFetch(t *testing.T) {
	cache, _ := newRedis(t)
	ctx := context.Background()

	// a warm replica filled the shared tier
	warm := app.NewDatasetService(&fakeSource{body: twoTowns}, cache, app.LoaderConfig{URL: testURL})
	want, err := warm.Load(ctx)
	if err != nil {
		t.Fatalf("warm load: %v", err)
	}

	src := &fakeSource{body: twoTowns}
	cold := app.NewDatasetService(src, cache, app.LoaderConfig{URL: testURL})
	got, err := cold.Load(ctx)
	if err != nil {
		t.Fatalf("cold load: %v", err)
	}
	if src.Hits() != 0 {
		t.Fatalf("expected no fetch on shared hit, got %d", src.Hits())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestInvalidate_DeletesSharedKey(t *testing.T) {
	cache, mr := newRedis(t)
	ctx := context.Background()
	svc := app.NewDatasetService(&fakeSource{body: twoTowns}, cache, app.LoaderConfig{URL: testURL, CacheTTL: time.Minute})

	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !mr.Exists(svc.Key()) {
		t.Fatalf("expected %s in redis", svc.Key())
	}
	if ttl := mr.TTL(svc.Key()); ttl != time.Minute {
		t.Fatalf("ttl: %s", ttl)
	}
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(svc.Key()) {
		t.Fatalf("expected key removed")
	}
}

func TestLoad_SharedCacheDownFallsBackToSource(t *testing.T) {
	cache, mr := newRedis(t)
	mr.Close()

	src := &fakeSource{body: twoTowns}
	svc := app.NewDatasetService(src, cache, app.LoaderConfig{URL: testURL})
	ds, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 2 || src.Hits() != 1 {
		t.Fatalf("rows=%d hits=%d", ds.Len(), src.Hits())
	}
}

func TestRefresh_Refetches(t *testing.T) {
	src := &fakeSource{body: twoTowns}
	svc := app.NewDatasetService(src, nil, app.LoaderConfig{URL: testURL})
	ctx := context.Background()
	if _, err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if src.Hits() != 2 {
		t.Fatalf("expected 2 fetches, got %d", src.Hits())
	}
}

func TestCacheKey_DependsOnURLOnly(t *testing.T) {
	if app.CacheKey(testURL) != app.CacheKey(testURL) {
		t.Fatalf("unstable key")
	}
	if app.CacheKey(testURL) == app.CacheKey(testURL+"?v=2") {
		t.Fatalf("distinct URLs share a key")
	}
}
