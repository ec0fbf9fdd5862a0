package asset

import (
	"context"
	"errors"
	"image/color"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgimg/imgerr"
	"github.com/benoitkugler/svgimg/svgraster"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
	<rect width="10" height="10" fill="red"/>
</svg>`

// blockingRasterizer counts its calls and waits for release
// before returning a 1x1 bitmap.
type blockingRasterizer struct {
	calls   atomic.Int32
	release chan struct{}
}

func newBlockingRasterizer() *blockingRasterizer {
	return &blockingRasterizer{release: make(chan struct{})}
}

func (b *blockingRasterizer) rasterize(data []byte, w, h float64) (*svgraster.Bitmap, error) {
	b.calls.Add(1)
	<-b.release
	return svgraster.NewBitmap([]byte{0, 0, 0xff, 0xff}, 1, 1, 4), nil
}

func waitInFlight(t *testing.T, l *Loader, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return l.Stats().InFlight == n }, time.Second, time.Millisecond)
}

func TestSourceIdentity(t *testing.T) {
	assert.Equal(t, String(redSquare).ID(), Data([]byte(redSquare)).ID())
	assert.NotEqual(t, String(redSquare).ID(), String(redSquare+" ").ID())
	assert.NotEqual(t, Path("a.svg").ID(), String("a.svg").ID())
	assert.Equal(t, Path("a.svg").ID(), Path("a.svg").ID())

	small := SizedSource{Source: String(redSquare), Width: 10, Height: 10}
	large := SizedSource{Source: String(redSquare), Width: 20, Height: 20}
	assert.Equal(t, small.Key().Source, large.Key().Source)
	assert.NotEqual(t, small.Key(), large.Key())
	assert.Equal(t, small.Key(), SizedSource{Source: Data([]byte(redSquare)), Width: 10, Height: 10}.Key())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, SizedSource{Width: 1, Height: 0.5}.Validate())
	for _, size := range [][2]float64{{0, 1}, {1, 0}, {-2, 3}} {
		err := SizedSource{Source: Path("a.svg"), Width: size[0], Height: size[1]}.Validate()
		assert.True(t, errors.Is(err, imgerr.ErrInvalidSize), size)
	}
}

func TestLoadRasterizes(t *testing.T) {
	l := NewLoader(WithResolver(Map{"icons/red.svg": []byte(redSquare)}))
	bmp, err := l.Load(context.Background(), SizedSource{Source: Path("icons/red.svg"), Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 20, bmp.Width())
	assert.Equal(t, 1, bmp.Refs())

	again, err := l.Load(context.Background(), SizedSource{Source: Path("icons/red.svg"), Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Same(t, bmp, again)

	st := l.Stats()
	assert.Equal(t, uint64(1), st.Loads)
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Entries)
}

func TestLoadDeduplicates(t *testing.T) {
	r := newBlockingRasterizer()
	l := NewLoader(WithRasterizer(r.rasterize))
	src := SizedSource{Source: String(redSquare), Width: 10, Height: 10}

	var (
		wg      sync.WaitGroup
		results [2]*svgraster.Bitmap
	)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			bmp, err := l.Load(context.Background(), src)
			assert.NoError(t, err)
			results[i] = bmp
		}()
	}
	waitInFlight(t, l, 1)
	// both callers missed the cache and wait on the running load
	require.Eventually(t, func() bool { return l.Stats().Misses == 2 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(r.release)
	wg.Wait()

	assert.Equal(t, int32(1), r.calls.Load())
	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])
	st := l.Stats()
	assert.Equal(t, 0, st.InFlight)
	assert.Equal(t, uint64(0), st.Hits)
	assert.Equal(t, uint64(1), st.Loads)
}

func TestLoadSourceUnavailable(t *testing.T) {
	l := NewLoader(WithResolver(Map{}))
	src := SizedSource{Source: Path("missing.svg"), Width: 10, Height: 10}

	_, err := l.Load(context.Background(), src)
	require.Error(t, err)
	assert.Equal(t, imgerr.KindSourceUnavailable, imgerr.KindOf(err))
	assert.Contains(t, err.Error(), "failed to load svg image from path: missing.svg")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	// errors are cached too
	_, err2 := l.Load(context.Background(), src)
	assert.Same(t, err, err2)
	assert.Equal(t, uint64(1), l.Stats().Loads)
}

func TestLoadInvalidInput(t *testing.T) {
	l := NewLoader()

	_, err := l.Load(context.Background(), SizedSource{Source: String(redSquare), Width: 0, Height: 10})
	assert.Equal(t, imgerr.KindInvalidSize, imgerr.KindOf(err))

	_, err = l.Load(context.Background(), SizedSource{Source: String("<svg"), Width: 10, Height: 10})
	assert.Equal(t, imgerr.KindInvalidDocument, imgerr.KindOf(err))

	_, err = l.Load(context.Background(), SizedSource{Source: String("\x89PNG\r\n\x1a\n"), Width: 10, Height: 10})
	assert.Equal(t, imgerr.KindInvalidDocument, imgerr.KindOf(err))
	assert.Contains(t, err.Error(), "image/png")

	assert.Equal(t, uint64(2), l.Stats().Loads)
}

func TestLoadCancelWait(t *testing.T) {
	r := newBlockingRasterizer()
	l := NewLoader(WithRasterizer(r.rasterize))
	src := SizedSource{Source: String(redSquare), Width: 10, Height: 10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx, src)
	assert.True(t, errors.Is(err, context.Canceled))

	// the load itself goes on
	waitInFlight(t, l, 1)
	close(r.release)
	require.Eventually(t, func() bool { return l.Stats().Entries == 1 }, time.Second, time.Millisecond)
}

func TestRequestNotifies(t *testing.T) {
	r := newBlockingRasterizer()
	l := NewLoader(WithRasterizer(r.rasterize))
	src := SizedSource{Source: String(redSquare), Width: 10, Height: 10}

	notified := make(chan int, 2)
	bmp, err, ready := l.Request(src, func() { notified <- 1 })
	assert.False(t, ready)
	assert.Nil(t, bmp)
	assert.NoError(t, err)

	waitInFlight(t, l, 1)
	_, _, ready = l.Request(src, func() { notified <- 2 })
	assert.False(t, ready)

	close(r.release)
	got := []int{<-notified, <-notified}
	assert.ElementsMatch(t, []int{1, 2}, got)

	bmp, err, ready = l.Request(src, nil)
	assert.True(t, ready)
	assert.NoError(t, err)
	assert.NotNil(t, bmp)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestRequestInvalidSize(t *testing.T) {
	l := NewLoader()
	bmp, err, ready := l.Request(SizedSource{Source: String(redSquare), Width: 10}, nil)
	assert.True(t, ready)
	assert.Nil(t, bmp)
	assert.Equal(t, imgerr.KindInvalidSize, imgerr.KindOf(err))
}

func TestEvictRunningLoad(t *testing.T) {
	r := newBlockingRasterizer()
	l := NewLoader(WithRasterizer(r.rasterize))
	src := SizedSource{Source: String(redSquare), Width: 10, Height: 10}

	notified := make(chan struct{}, 1)
	l.Request(src, func() { notified <- struct{}{} })
	waitInFlight(t, l, 1)

	assert.False(t, l.Evict(src))
	assert.Equal(t, 0, l.Stats().InFlight)
	close(r.release)
	<-notified
	assert.Equal(t, 0, l.Stats().Entries)
}

func TestEvictSource(t *testing.T) {
	l := NewLoader(WithResolver(Map{"red.svg": []byte(redSquare)}))
	ctx := context.Background()
	var bitmaps []*svgraster.Bitmap
	for _, size := range []float64{10, 20} {
		bmp, err := l.Load(ctx, SizedSource{Source: Path("red.svg"), Width: size, Height: size})
		require.NoError(t, err)
		bitmaps = append(bitmaps, bmp)
	}
	_, err := l.Load(ctx, SizedSource{Source: String(redSquare), Width: 10, Height: 10})
	require.NoError(t, err)

	assert.Equal(t, 0, l.EvictSource(Path("other.svg")))
	assert.Equal(t, 2, l.EvictSource(Path("red.svg")))
	assert.Equal(t, 1, l.Stats().Entries)
	for _, bmp := range bitmaps {
		assert.Equal(t, 0, bmp.Refs())
		assert.NotEmpty(t, bmp.Pix())
	}
}

func TestEvictKeepsPixels(t *testing.T) {
	l := NewLoader()
	src := SizedSource{Source: String(`<svg width="2" height="2"><rect width="2" height="2" fill="red"/></svg>`), Width: 2, Height: 2}
	bmp, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	before := append([]byte(nil), bmp.Pix()...)
	require.Len(t, before, 4*4*4)

	assert.True(t, l.Evict(src))
	assert.Equal(t, 0, bmp.Refs())
	assert.Equal(t, before, bmp.Pix())
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, bmp.NRGBAAt(1, 1))

	// a fresh load produces a new bitmap
	again, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.NotSame(t, bmp, again)
}

func TestPurgeKeepsRetained(t *testing.T) {
	l := NewLoader(WithResolver(Map{}))
	ctx := context.Background()

	kept, err := l.Load(ctx, SizedSource{Source: String(redSquare), Width: 10, Height: 10})
	require.NoError(t, err)
	dropped, err := l.Load(ctx, SizedSource{Source: String(redSquare), Width: 5, Height: 5})
	require.NoError(t, err)
	_, err = l.Load(ctx, SizedSource{Source: Path("missing.svg"), Width: 5, Height: 5})
	require.Error(t, err)

	kept.Retain()
	assert.Equal(t, 2, l.Purge())
	assert.Equal(t, 1, l.Stats().Entries)
	assert.Equal(t, 2, kept.Refs())
	assert.Equal(t, 0, dropped.Refs())

	kept.Release()
	l.Clear()
	assert.Equal(t, 0, l.Stats().Entries)
	assert.Equal(t, 0, kept.Refs())
}

func TestResolvers(t *testing.T) {
	fsys := fstest.MapFS{"icons/a.svg": {Data: []byte("a")}}

	for _, name := range []string{"icons/a.svg", "/icons/a.svg", "icons/../icons/a.svg"} {
		b, err := FS(fsys).Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, "a", string(b))
	}
	_, err := FS(fsys).Resolve("icons/b.svg")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = Map{}.Resolve("a")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	chained := Chain(Map{"b": []byte("1")}, FS(fsys), Map{"icons/a.svg": []byte("2")})
	b, err := chained.Resolve("icons/a.svg")
	require.NoError(t, err)
	assert.Equal(t, "a", string(b))

	_, err = chained.Resolve("c")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = Chain().Resolve("c")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	b, err = ResolverFunc(func(string) ([]byte, error) { return []byte("x"), nil }).Resolve("any")
	require.NoError(t, err)
	assert.Equal(t, "x", string(b))
}
