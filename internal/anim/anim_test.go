package anim

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
	"time"
)

func testAnimation(delays ...time.Duration) *CachedAnimation {
	a := &CachedAnimation{}
	for _, d := range delays {
		a.Frames = append(a.Frames, Frame{
			Image: image.NewRGBA(image.Rect(0, 0, FrameSize, FrameSize)),
			Delay: d,
		})
		a.TotalDuration += d
	}
	return a
}

func TestCache_TriState(t *testing.T) {
	c := NewCache()

	if c.IsCached("u") || c.IsLoading("u") {
		t.Fatal("fresh cache not empty")
	}

	if !c.MarkLoading("u") {
		t.Fatal("first mark rejected")
	}
	if c.MarkLoading("u") {
		t.Fatal("second mark accepted while loading")
	}
	if !c.IsLoading("u") {
		t.Fatal("not loading after mark")
	}

	c.Store("u", testAnimation(50*time.Millisecond))
	if c.IsLoading("u") {
		t.Fatal("still loading after store")
	}
	if !c.IsCached("u") {
		t.Fatal("not cached after store")
	}
	if c.MarkLoading("u") {
		t.Fatal("mark accepted for resolved entry")
	}
}

// A failed fetch caches as a permanent negative: reported cached, never
// re-marked for loading, until an explicit clear.
func TestCache_NegativeEntryPermanent(t *testing.T) {
	c := NewCache()
	c.MarkLoading("bad")
	c.Store("bad", nil)

	if !c.IsCached("bad") {
		t.Fatal("failure not cached")
	}
	if a, cached := c.Lookup("bad"); !cached || a != nil {
		t.Fatalf("lookup = (%v, %v)", a, cached)
	}
	if c.MarkLoading("bad") {
		t.Fatal("failed entry re-marked for loading")
	}

	c.Clear()
	if c.IsCached("bad") {
		t.Fatal("entry survived clear")
	}
	if !c.MarkLoading("bad") {
		t.Fatal("mark rejected after clear")
	}
}

func TestTicker_FirstFrameOnResolve(t *testing.T) {
	c := NewCache()
	tk := NewTicker(c)
	tk.SetButton(3, "u")

	// Unresolved: no output, button keeps static rendering.
	if res := tk.Tick(); len(res) != 0 {
		t.Fatalf("tick before resolve: %v", res)
	}
	if tk.Frame(3) != nil {
		t.Fatal("frame before resolve")
	}

	c.Store("u", testAnimation(time.Hour))

	res := tk.Tick()
	if len(res) != 1 || res[0].Button != 3 || res[0].Frame == nil {
		t.Fatalf("first tick after resolve: %+v", res)
	}

	// Delay has not elapsed: no further output.
	if res := tk.Tick(); len(res) != 0 {
		t.Fatalf("tick before delay elapsed: %v", res)
	}
}

func TestTicker_AdvanceWraps(t *testing.T) {
	c := NewCache()
	c.Store("u", testAnimation(time.Millisecond, time.Millisecond, time.Millisecond))
	tk := NewTicker(c)
	tk.SetButton(0, "u")

	tk.Tick() // first frame, index 0

	for want := 1; want <= 4; want++ {
		time.Sleep(3 * time.Millisecond)
		res := tk.Tick()
		if len(res) != 1 {
			t.Fatalf("advance %d: %v", want, res)
		}
		anim, _ := c.Lookup("u")
		if got := tk.Frame(0); got != anim.Frames[want%3].Image {
			t.Fatalf("advance %d: wrong frame", want)
		}
	}
}

// A cache clear followed by a re-fetch can shrink an entry while a cursor
// still points past the new frame count; the index must clamp, not panic.
func TestTicker_SurvivesEntryShrinking(t *testing.T) {
	c := NewCache()
	c.Store("u", testAnimation(time.Millisecond, time.Millisecond, time.Millisecond))
	tk := NewTicker(c)
	tk.SetButton(0, "u")

	tk.Tick() // first frame, index 0
	for i := 0; i < 2; i++ {
		time.Sleep(3 * time.Millisecond)
		tk.Tick()
	}

	c.Clear()
	short := testAnimation(time.Millisecond)
	c.Store("u", short)

	if got := tk.Frame(0); got != short.Frames[0].Image {
		t.Fatal("stale cursor not clamped to the replaced entry")
	}
	time.Sleep(3 * time.Millisecond)
	for _, res := range tk.Tick() {
		if res.Frame != short.Frames[0].Image {
			t.Fatal("tick emitted a frame outside the replaced entry")
		}
	}
}

func TestTicker_FailedEntrySkipped(t *testing.T) {
	c := NewCache()
	c.Store("bad", nil)
	tk := NewTicker(c)
	tk.SetButton(1, "bad")

	if res := tk.Tick(); len(res) != 0 {
		t.Fatalf("failed entry ticked: %v", res)
	}
	if tk.Frame(1) != nil {
		t.Fatal("failed entry produced a frame")
	}
}

func TestTicker_Pending(t *testing.T) {
	c := NewCache()
	tk := NewTicker(c)
	tk.SetButton(0, "a")
	tk.SetButton(1, "a") // same asset on two buttons
	tk.SetButton(2, "b")

	pending := tk.Pending()
	if len(pending) != 2 {
		t.Fatalf("pending = %v", pending)
	}

	c.MarkLoading("a")
	c.Store("b", nil)
	pending = tk.Pending()
	if len(pending) != 0 {
		t.Fatalf("pending after mark/store = %v", pending)
	}
}

func TestTicker_ClearButtonAndAll(t *testing.T) {
	c := NewCache()
	c.Store("u", testAnimation(time.Hour))
	tk := NewTicker(c)
	tk.SetButton(0, "u")
	tk.SetButton(1, "u")

	tk.ClearButton(0)
	if tk.HasAnimation(0) {
		t.Fatal("button survived clear")
	}
	if !tk.HasAnimation(1) {
		t.Fatal("wrong button cleared")
	}

	tk.ClearAll()
	if tk.HasAnimation(1) {
		t.Fatal("cursor survived clear all")
	}
	if res := tk.Tick(); len(res) != 0 {
		t.Fatalf("tick after clear all: %v", res)
	}
}

func encodeTestGIF(t *testing.T, delays []int) []byte {
	t.Helper()
	g := &gif.GIF{Config: image.Config{Width: 8, Height: 8}}
	for i, d := range delays {
		pal := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{
			color.Black, color.White,
		})
		for p := range pal.Pix {
			pal.Pix[p] = uint8(i % 2)
		}
		g.Image = append(g.Image, pal)
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_GIF(t *testing.T) {
	data := encodeTestGIF(t, []int{0, 5, 20})

	a := Decode(data)
	if a == nil {
		t.Fatal("decode returned nil")
	}
	if len(a.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(a.Frames))
	}

	// Declared delays are 0ms, 50ms, 200ms; the floor lifts the first two.
	wantDelays := []time.Duration{
		minFrameDelay, 50 * time.Millisecond, 200 * time.Millisecond,
	}
	for i, want := range wantDelays {
		if a.Frames[i].Delay != want {
			t.Fatalf("frame %d delay = %v, want %v", i, a.Frames[i].Delay, want)
		}
	}

	for i, f := range a.Frames {
		b := f.Image.Bounds()
		if b.Dx() != FrameSize || b.Dy() != FrameSize {
			t.Fatalf("frame %d size = %v", i, b)
		}
	}
}

func TestDecode_StillImageFallback(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	a := Decode(buf.Bytes())
	if a == nil {
		t.Fatal("decode returned nil")
	}
	if len(a.Frames) != 1 || a.Frames[0].Delay != stillFrameDelay {
		t.Fatalf("fallback frames = %+v", a.Frames)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if a := Decode([]byte("not an image")); a != nil {
		t.Fatalf("decoded garbage: %+v", a)
	}
}
