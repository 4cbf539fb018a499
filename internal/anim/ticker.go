package anim

import (
	"image"
	"sync"
	"time"
)

// cursor is the playback position of one button.
type cursor struct {
	url      string
	frame    int
	advanced time.Time
	rendered bool
}

// TickResult is one button due for a redraw with its current frame. Frames
// are shared pointers into the cache; callers must not mutate them.
type TickResult struct {
	Button int
	Frame  *image.RGBA
}

// Ticker owns the per-button playback cursors over a shared Cache. A cursor
// whose cache entry is absent, still loading, or a cached failure produces no
// output and keeps the button on its static rendering.
type Ticker struct {
	mu      sync.Mutex
	cache   *Cache
	cursors map[int]*cursor
}

func NewTicker(cache *Cache) *Ticker {
	return &Ticker{
		cache:   cache,
		cursors: make(map[int]*cursor),
	}
}

// SetButton points a button's cursor at a URL. The asset loads in the
// background; the button keeps its static rendering until the first tick
// after the asset resolves.
func (t *Ticker) SetButton(button int, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursors[button] = &cursor{url: url, advanced: time.Now()}
}

// ClearButton removes a button's cursor.
func (t *Ticker) ClearButton(button int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cursors, button)
}

// ClearAll removes every cursor, e.g. on a profile switch.
func (t *Ticker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursors = make(map[int]*cursor)
}

// HasAnimation reports whether a button has a cursor.
func (t *Ticker) HasAnimation(button int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.cursors[button]
	return ok
}

// Pending returns the URLs referenced by cursors that are neither resolved
// nor currently loading.
func (t *Ticker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool)
	var urls []string
	for _, cur := range t.cursors {
		if seen[cur.url] {
			continue
		}
		seen[cur.url] = true
		if !t.cache.IsCached(cur.url) && !t.cache.IsLoading(cur.url) {
			urls = append(urls, cur.url)
		}
	}
	return urls
}

// Frame returns the current frame for a button, or nil when its asset has
// not resolved.
func (t *Ticker) Frame(button int) *image.RGBA {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.cursors[button]
	if !ok {
		return nil
	}
	a, _ := t.cache.Lookup(cur.url)
	if a == nil || len(a.Frames) == 0 {
		return nil
	}
	// The entry may have been re-fetched with fewer frames since the
	// cursor last advanced.
	cur.frame %= len(a.Frames)
	return a.Frames[cur.frame].Image
}

// Tick advances every cursor whose frame delay has elapsed and returns the
// buttons due for a redraw. A newly resolved asset emits its first frame
// immediately; after that the index advances modulo the frame count.
func (t *Ticker) Tick() []TickResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	var results []TickResult

	for button, cur := range t.cursors {
		a, _ := t.cache.Lookup(cur.url)
		if a == nil || len(a.Frames) == 0 {
			continue
		}

		if !cur.rendered {
			cur.rendered = true
			cur.advanced = now
			results = append(results, TickResult{Button: button, Frame: a.Frames[0].Image})
			continue
		}

		cur.frame %= len(a.Frames)
		if now.Sub(cur.advanced) >= a.Frames[cur.frame].Delay {
			cur.frame = (cur.frame + 1) % len(a.Frames)
			cur.advanced = now
			results = append(results, TickResult{Button: button, Frame: a.Frames[cur.frame].Image})
		}
	}
	return results
}
