package asset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/benoitkugler/svgimg/imgerr"
	"github.com/benoitkugler/svgimg/svglog"
	"github.com/benoitkugler/svgimg/svgraster"
)

const loaderOp = "asset.Loader"

// RasterizeFunc turns document bytes into a bitmap for a logical size.
type RasterizeFunc func(data []byte, width, height float64) (*svgraster.Bitmap, error)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithResolver sets the resolver used for Path sources.
// It defaults to OS.
func WithResolver(r Resolver) LoaderOption {
	return func(l *Loader) { l.resolver = r }
}

// WithRasterizer replaces svgraster.Rasterize.
func WithRasterizer(f RasterizeFunc) LoaderOption {
	return func(l *Loader) { l.rasterize = f }
}

// WithLogger sets the logger, instead of svglog.Logger().
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// Stats is a snapshot of the loader activity.
type Stats struct {
	Entries  int    // cached results
	InFlight int    // rasterizations running
	Hits     uint64 // lookups served from the cache
	Misses   uint64 // lookups without a cached result
	Loads    uint64 // completed rasterizations
}

type entry struct {
	bmp *svgraster.Bitmap
	err error
}

// flight tracks a running load. A stale flight
// has been evicted and does not store its result.
type flight struct {
	stale bool
}

// Loader memoizes rasterizations by SizedSource.Key.
//
// At most one rasterization runs for a given key: concurrent
// callers share its result, success or error, which is then
// cached until evicted. Cached bitmaps hold one reference owned by
// the loader, released on eviction. Eviction never touches the pixels:
// a bitmap returned before an eviction stays valid for its holders.
// Callers sharing a bitmap Retain it so that Purge keeps it cached.
//
// A Loader is safe for concurrent use.
type Loader struct {
	resolver  Resolver
	rasterize RasterizeFunc
	logger    *slog.Logger

	group singleflight.Group

	mu       sync.Mutex
	entries  map[Key]entry
	inflight map[Key]*flight
	starting map[Key]bool
	waiters  map[Key][]func()

	hits, misses, loads atomic.Uint64
}

// NewLoader returns an empty loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		resolver: OS,
		rasterize: func(data []byte, width, height float64) (*svgraster.Bitmap, error) {
			return svgraster.Rasterize(data, width, height)
		},
		entries:  make(map[Key]entry),
		inflight: make(map[Key]*flight),
		starting: make(map[Key]bool),
		waiters:  make(map[Key][]func()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return svglog.Logger()
}

func (l *Loader) cached(key Key) (entry, bool) {
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if ok {
		l.hits.Add(1)
	} else {
		l.misses.Add(1)
	}
	return e, ok
}

// Load returns the bitmap for `src`, rasterizing it if needed, and
// blocks until it is available.
// Cancelling `ctx` only stops the wait: the shared rasterization
// completes and is cached.
func (l *Loader) Load(ctx context.Context, src SizedSource) (*svgraster.Bitmap, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	key := src.Key()
	if e, ok := l.cached(key); ok {
		return e.bmp, e.err
	}

	ch := l.group.DoChan(key.String(), func() (any, error) {
		return l.load(src, key), nil
	})
	select {
	case res := <-ch:
		e := res.Val.(entry)
		return e.bmp, e.err
	case <-ctx.Done():
		return nil, fmt.Errorf("asset: waiting for %s: %w", key, ctx.Err())
	}
}

// Request is the non blocking version of Load. When the result is
// cached, it is returned with ready set to true. Otherwise, a load is
// started if needed, and `notify` (if not nil) is called once, from
// another goroutine, when it completes.
func (l *Loader) Request(src SizedSource, notify func()) (bmp *svgraster.Bitmap, err error, ready bool) {
	if err := src.Validate(); err != nil {
		return nil, err, true
	}
	key := src.Key()

	l.mu.Lock()
	if e, ok := l.entries[key]; ok {
		l.mu.Unlock()
		l.hits.Add(1)
		return e.bmp, e.err, true
	}
	if notify != nil {
		l.waiters[key] = append(l.waiters[key], notify)
	}
	start := l.inflight[key] == nil && !l.starting[key]
	if start {
		l.starting[key] = true
	}
	l.mu.Unlock()
	l.misses.Add(1)

	if start {
		go l.group.Do(key.String(), func() (any, error) {
			return l.load(src, key), nil
		})
	}
	return nil, nil, false
}

// load runs inside a singleflight call.
func (l *Loader) load(src SizedSource, key Key) entry {
	l.mu.Lock()
	delete(l.starting, key)
	if e, ok := l.entries[key]; ok {
		// stored by a flight that ended after our lookup
		notify := l.takeWaiters(key)
		l.mu.Unlock()
		runAll(notify)
		return e
	}
	f := &flight{}
	l.inflight[key] = f
	l.mu.Unlock()

	start := time.Now()
	bmp, err := l.produce(src)
	e := entry{bmp: bmp, err: err}
	l.loads.Add(1)

	l.mu.Lock()
	if !f.stale {
		l.entries[key] = e
		delete(l.inflight, key)
	}
	notify := l.takeWaiters(key)
	l.mu.Unlock()

	if err != nil {
		l.log().Debug("asset: load failed", "key", key, "error", err)
	} else {
		l.log().Debug("asset: loaded", "key", key,
			"width", bmp.Width(), "height", bmp.Height(), "elapsed", time.Since(start))
	}
	runAll(notify)
	return e
}

// takeWaiters must be called with l.mu held.
func (l *Loader) takeWaiters(key Key) []func() {
	out := l.waiters[key]
	delete(l.waiters, key)
	return out
}

func runAll(fns []func()) {
	for _, f := range fns {
		f()
	}
}

func (l *Loader) produce(src SizedSource) (*svgraster.Bitmap, error) {
	data := src.Source.Bytes()
	if src.Source.IsPath() {
		b, err := l.resolver.Resolve(src.Source.PathName())
		if err != nil {
			return nil, imgerr.New(loaderOp, imgerr.KindSourceUnavailable,
				fmt.Errorf("failed to load svg image from path: %s: %w", src.Source.PathName(), err))
		}
		data = b
	}
	if err := sniff(data); err != nil {
		return nil, imgerr.New(loaderOp, imgerr.KindInvalidDocument, err)
	}
	return l.rasterize(data, src.Width, src.Height)
}

// evict must be called with l.mu held.
func (l *Loader) evict(key Key) bool {
	if f := l.inflight[key]; f != nil {
		f.stale = true
		delete(l.inflight, key)
		l.group.Forget(key.String())
	}
	e, ok := l.entries[key]
	if !ok {
		return false
	}
	delete(l.entries, key)
	if e.bmp != nil {
		e.bmp.Release()
	}
	return true
}

// Evict drops the result cached for `src`, and detaches a running
// load so that its result is not cached. It returns true if
// a result was dropped.
func (l *Loader) Evict(src SizedSource) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evict(src.Key())
}

// EvictSource drops the results cached for `src`, at every size,
// and returns how many were dropped.
func (l *Loader) EvictSource(src Source) int {
	id := src.ID()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key := range l.inflight {
		if key.Source == id {
			l.evict(key)
		}
	}
	for key := range l.entries {
		if key.Source == id && l.evict(key) {
			n++
		}
	}
	return n
}

// Purge drops the cached errors and the bitmaps referenced only by
// the loader, and returns how many entries were dropped.
func (l *Loader) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, e := range l.entries {
		if e.bmp == nil || e.bmp.Refs() <= 1 {
			l.evict(key)
			n++
		}
	}
	return n
}

// Clear drops every cached result and detaches the running loads.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.inflight {
		l.evict(key)
	}
	for key := range l.entries {
		l.evict(key)
	}
}

// Stats returns the current counters.
func (l *Loader) Stats() Stats {
	l.mu.Lock()
	entries, inflight := len(l.entries), len(l.inflight)
	l.mu.Unlock()
	return Stats{
		Entries:  entries,
		InFlight: inflight,
		Hits:     l.hits.Load(),
		Misses:   l.misses.Load(),
		Loads:    l.loads.Load(),
	}
}
