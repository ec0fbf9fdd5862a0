package element

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgimg/asset"
	"github.com/benoitkugler/svgimg/svglog"
	"github.com/benoitkugler/svgimg/svgraster"
)

type assetResult struct {
	bmp   *svgraster.Bitmap
	err   error
	ready bool
}

type paintCall struct {
	bounds Bounds
	radius Pixels
	bmp    *svgraster.Bitmap
	frame  int
	flip   bool
}

type mouseHandler struct {
	kind    MouseEventKind
	handler func(MouseEvent)
}

// fakeWindow records the calls made by elements.
type fakeWindow struct {
	styles   []Style
	hitboxes []Hitbox
	assets   map[asset.Key]assetResult
	used     []asset.SizedSource
	paints   []paintCall
	paintErr error
	handlers []mouseHandler
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{assets: make(map[asset.Key]assetResult)}
}

func (w *fakeWindow) RequestLayout(style Style, children []LayoutID) LayoutID {
	w.styles = append(w.styles, style)
	return LayoutID(len(w.styles))
}

func (w *fakeWindow) InsertHitbox(bounds Bounds) Hitbox {
	h := Hitbox{ID: HitboxID(len(w.hitboxes) + 1), Bounds: bounds}
	w.hitboxes = append(w.hitboxes, h)
	return h
}

func (w *fakeWindow) UseAsset(key asset.SizedSource) (*svgraster.Bitmap, error, bool) {
	w.used = append(w.used, key)
	res := w.assets[key.Key()]
	return res.bmp, res.err, res.ready
}

func (w *fakeWindow) PaintImage(bounds Bounds, cornerRadius Pixels, bmp *svgraster.Bitmap, frame int, flip bool) error {
	if w.paintErr != nil {
		err := w.paintErr
		w.paintErr = nil // only the first call fails
		return err
	}
	w.paints = append(w.paints, paintCall{bounds, cornerRadius, bmp, frame, flip})
	return nil
}

func (w *fakeWindow) OnMouse(hitbox Hitbox, kind MouseEventKind, handler func(MouseEvent)) {
	w.handlers = append(w.handlers, mouseHandler{kind, handler})
}

func (w *fakeWindow) dispatch(ev MouseEvent) {
	for _, h := range w.handlers {
		if h.kind == ev.Kind {
			h.handler(ev)
		}
	}
}

// frame runs the three phases on `el`, placed at `bounds`.
func (w *fakeWindow) frame(el Element, bounds Bounds) {
	w.handlers = nil
	_, st := el.RequestLayout(w)
	ps := el.Prepaint(w, bounds, st)
	el.Paint(w, bounds, st, ps)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	svglog.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { svglog.SetLogger(nil) })
	return &buf
}

func testBitmap() *svgraster.Bitmap {
	return svgraster.NewBitmap(make([]byte, 4), 1, 1, 4)
}

func TestFitAndCenter(t *testing.T) {
	for _, tc := range []struct {
		bounds  Bounds
		logical Size
		want    Bounds
	}{
		{BoundsFromLTWH(0, 0, 100, 50), Size{40, 40}, BoundsFromLTWH(30, 5, 40, 40)},
		{BoundsFromLTWH(0, 0, 100, 100), Size{200, 50}, BoundsFromLTWH(0, 37, 100, 25)},
		{BoundsFromLTWH(10, 20, 50, 50), Size{50, 50}, BoundsFromLTWH(10, 20, 50, 50)},
		{BoundsFromLTWH(0, 0, 30, 100), Size{60, 40}, BoundsFromLTWH(0, 40, 30, 20)},
		{BoundsFromLTWH(0, 0, 10, 10), Size{3, 3}, BoundsFromLTWH(3, 3, 3, 3)},
		{BoundsFromLTWH(5, 5, 10, 10), Size{}, BoundsFromLTWH(5, 5, 0, 0)},
	} {
		assert.Equal(t, tc.want, FitAndCenter(tc.bounds, tc.logical), tc.bounds)
	}
}

func TestSourceConversions(t *testing.T) {
	data := []byte("<svg/>")

	img := NewSvgImg().SourceData(data, 10, 20)
	src, ok := img.GetSource()
	require.True(t, ok)
	assert.False(t, src.Source.IsPath())
	assert.Equal(t, asset.Data(data).ID(), src.Source.ID())
	assert.Equal(t, 10., src.Width)
	assert.Equal(t, 20., src.Height)
	assert.Equal(t, Size{10, 20}, img.Size())

	src, _ = NewSvgImg().SourcePath("icons/a.svg", 1, 1).GetSource()
	assert.True(t, src.Source.IsPath())
	assert.Equal(t, "icons/a.svg", src.Source.PathName())

	src, _ = NewSvgImg().Source(asset.String("<svg/>"), 1, 1).GetSource()
	assert.Equal(t, asset.Data(data).ID(), src.Source.ID())

	_, ok = NewSvgImg().GetSource()
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	img := NewSvgImg().SourcePath("a.svg", 4, 8).WithID("logo").W(100).OnClick(func(MouseEvent) {})
	clone := img.Clone()

	assert.Equal(t, img.Size(), clone.Size())
	src, ok := clone.GetSource()
	require.True(t, ok)
	assert.Equal(t, "a.svg", src.Source.PathName())
	assert.Equal(t, ElementID(""), clone.ID())
	assert.Equal(t, Style{}, clone.BaseStyle)
	assert.Empty(t, clone.clickHandlers)
}

func TestPhases(t *testing.T) {
	img := NewSvgImg().SourcePath("a.svg", 40, 40).WithID("logo").SizeFull(100, 50)
	src, _ := img.GetSource()
	bmp := testBitmap()

	w := newFakeWindow()
	w.assets[src.Key()] = assetResult{bmp: bmp, ready: true}
	bounds := BoundsFromLTWH(0, 0, 100, 50)

	id, st := img.RequestLayout(w)
	assert.Equal(t, LayoutID(1), id)
	assert.Same(t, bmp, st.Bitmap)
	require.Len(t, w.styles, 1)
	assert.Equal(t, Px(100), w.styles[0].Width)
	assert.Equal(t, Px(50), w.styles[0].Height)

	ps := img.Prepaint(w, bounds, st)
	assert.Equal(t, Hitbox{ID: 1, Bounds: bounds}, ps.Hitbox)
	assert.Same(t, bmp, ps.Bitmap)

	img.Paint(w, bounds, st, ps)
	require.Len(t, w.paints, 1)
	assert.Equal(t, paintCall{BoundsFromLTWH(30, 5, 40, 40), 0, bmp, 0, false}, w.paints[0])
}

func TestPaintsOnceLoaded(t *testing.T) {
	img := NewSvgImg().Source(asset.String("<svg/>"), 10, 10)
	src, _ := img.GetSource()
	bounds := BoundsFromLTWH(0, 0, 20, 20)

	w := newFakeWindow()
	w.frame(img, bounds)
	assert.Empty(t, w.paints)
	assert.Len(t, w.used, 1)

	w.assets[src.Key()] = assetResult{bmp: testBitmap(), ready: true}
	w.frame(img, bounds)
	require.Len(t, w.paints, 1)
	assert.Equal(t, BoundsFromLTWH(5, 5, 10, 10), w.paints[0].bounds)
}

func TestNoSource(t *testing.T) {
	w := newFakeWindow()
	w.frame(NewSvgImg(), BoundsFromLTWH(0, 0, 20, 20))
	assert.Len(t, w.styles, 1)
	assert.Len(t, w.hitboxes, 1)
	assert.Empty(t, w.used)
	assert.Empty(t, w.paints)
}

func TestLoadFailureLoggedOnce(t *testing.T) {
	logs := captureLogs(t)
	img := NewSvgImg().SourcePath("load-failure-logged-once.svg", 10, 10)
	src, _ := img.GetSource()

	w := newFakeWindow()
	w.assets[src.Key()] = assetResult{err: errors.New("boom"), ready: true}
	for i := 0; i < 3; i++ {
		w.frame(img, BoundsFromLTWH(0, 0, 10, 10))
	}
	assert.Empty(t, w.paints)
	assert.Equal(t, 1, strings.Count(logs.String(), "svg image unavailable"))
	assert.Contains(t, logs.String(), "boom")

	// evicted by the host, then failing again
	w.assets[src.Key()] = assetResult{}
	w.frame(img, BoundsFromLTWH(0, 0, 10, 10))
	w.assets[src.Key()] = assetResult{err: errors.New("boom again"), ready: true}
	w.frame(img, BoundsFromLTWH(0, 0, 10, 10))
	w.frame(img, BoundsFromLTWH(0, 0, 10, 10))
	assert.Equal(t, 2, strings.Count(logs.String(), "svg image unavailable"))
	assert.Contains(t, logs.String(), "boom again")
	_, kept := reported.Load(src.Key())
	assert.True(t, kept)

	w.assets[src.Key()] = assetResult{bmp: testBitmap(), ready: true}
	w.frame(img, BoundsFromLTWH(0, 0, 10, 10))
	_, kept = reported.Load(src.Key())
	assert.False(t, kept)
}

func TestPaintFailureDoesNotAbort(t *testing.T) {
	logs := captureLogs(t)
	w := newFakeWindow()
	w.paintErr = errors.New("surface lost")

	first := NewSvgImg().Source(asset.String("<svg id='1'/>"), 10, 10)
	second := NewSvgImg().Source(asset.String("<svg id='2'/>"), 10, 10)
	for _, img := range []*SvgImg{first, second} {
		src, _ := img.GetSource()
		w.assets[src.Key()] = assetResult{bmp: testBitmap(), ready: true}
	}

	w.frame(first, BoundsFromLTWH(0, 0, 10, 10))
	w.frame(second, BoundsFromLTWH(0, 10, 10, 10))

	require.Len(t, w.paints, 1)
	assert.Equal(t, BoundsFromLTWH(0, 10, 10, 10), w.paints[0].bounds)
	assert.Contains(t, logs.String(), "failed to paint svg image")
	assert.Contains(t, logs.String(), "paint surface")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestMouseHandlers(t *testing.T) {
	var (
		clicks int
		hovers []bool
	)
	img := NewSvgImg().
		OnClick(func(MouseEvent) { clicks++ }).
		OnHover(func(h bool) { hovers = append(hovers, h) })

	w := newFakeWindow()
	w.frame(img, BoundsFromLTWH(10, 10, 20, 20))

	inside, outside := Point{15, 15}, Point{50, 50}
	w.dispatch(MouseEvent{Kind: MouseMove, Position: outside})
	w.dispatch(MouseEvent{Kind: MouseMove, Position: inside})
	w.dispatch(MouseEvent{Kind: MouseMove, Position: Point{16, 16}})
	w.dispatch(MouseEvent{Kind: MouseMove, Position: outside})
	assert.Equal(t, []bool{true, false}, hovers)

	w.dispatch(MouseEvent{Kind: MouseDown, Position: inside})
	w.dispatch(MouseEvent{Kind: MouseUp, Position: inside})
	assert.Equal(t, 1, clicks)

	// released outside
	w.dispatch(MouseEvent{Kind: MouseDown, Position: inside})
	w.dispatch(MouseEvent{Kind: MouseUp, Position: outside})
	// pressed outside
	w.dispatch(MouseEvent{Kind: MouseDown, Position: outside})
	w.dispatch(MouseEvent{Kind: MouseUp, Position: inside})
	assert.Equal(t, 1, clicks)
}

func TestStyleRefine(t *testing.T) {
	base := Style{Width: Px(10), Height: Px(20), FlexGrow: 1}
	got := base.Refine(Style{Height: Px(5), MaxWidth: Px(8)})
	assert.Equal(t, Style{Width: Px(10), Height: Px(5), MaxWidth: Px(8), FlexGrow: 1}, got)

	img := NewSvgImg().W(3).Flex(2)
	assert.Equal(t, Style{Width: Px(3), FlexGrow: 2}, img.BaseStyle)
}

func TestBoundsHelpers(t *testing.T) {
	b := BoundsFromLTWH(1.5, 2, 10, 3.2)
	assert.True(t, b.Contains(Point{1.5, 2}))
	assert.False(t, b.Contains(Point{11.5, 2}))
	assert.Equal(t, Pixels(11.5), b.Right())
	assert.Equal(t, BoundsFromLTWH(3, 4, 20, 6.4), b.Scale(2))
	r := b.ImageRect()
	assert.Equal(t, [4]int{1, 2, 12, 6}, [4]int{r.Min.X, r.Min.Y, r.Max.X, r.Max.Y})
}
