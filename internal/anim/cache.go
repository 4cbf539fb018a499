// Package anim caches network-fetched button animations and drives per-button
// playback cursors for the scheduler's render path.
package anim

import (
	"image"
	"sync"
	"time"
)

// FrameSize is the edge length frames are pre-resized to. Button images are
// 112x112 with a 90x90 content area.
const FrameSize = 90

// Frame is one decoded animation frame with its display duration.
type Frame struct {
	Image *image.RGBA
	Delay time.Duration
}

// CachedAnimation holds every frame of a decoded asset, pre-resized. Entries
// are immutable after insertion and shared by all buttons playing the same
// URL.
type CachedAnimation struct {
	Frames        []Frame
	TotalDuration time.Duration
}

// Cache maps asset URLs to decoded animations. A stored nil marks a fetch or
// decode failure; failed entries are never retried until the cache is
// cleared. Safe for use from the scheduler and background fetch goroutines.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*CachedAnimation
	loading map[string]struct{}
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*CachedAnimation),
		loading: make(map[string]struct{}),
	}
}

// Lookup returns the cached animation for a URL. cached reports whether the
// URL has resolved at all; a cached nil animation is a permanent failure.
func (c *Cache) Lookup(url string) (a *CachedAnimation, cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, cached = c.entries[url]
	return a, cached
}

// IsCached reports whether a URL has resolved, successfully or not.
func (c *Cache) IsCached(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[url]
	return ok
}

// IsLoading reports whether a background fetch for the URL is in flight.
func (c *Cache) IsLoading(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.loading[url]
	return ok
}

// MarkLoading records that a fetch is starting. Returns false when the URL is
// already loading or resolved, so only one fetch runs per URL.
func (c *Cache) MarkLoading(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.loading[url]; ok {
		return false
	}
	if _, ok := c.entries[url]; ok {
		return false
	}
	c.loading[url] = struct{}{}
	return true
}

// Store records a fetch result and clears the loading mark. A nil animation
// caches the failure.
func (c *Cache) Store(url string, a *CachedAnimation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading, url)
	c.entries[url] = a
}

// Clear drops every entry, including cached failures.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CachedAnimation)
	c.loading = make(map[string]struct{})
}
