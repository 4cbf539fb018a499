package anim

import (
	"bytes"
	"image"
	"image/gif"
	"io"
	"log/slog"
	"net/http"
	"time"

	// Still-image fallback formats.
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// maxAssetBytes bounds the fetched payload.
	maxAssetBytes = 10 << 20

	// minFrameDelay is the floor applied to declared frame delays, bounding
	// playback at ~33 fps and protecting the render path from zero-delay
	// frames.
	minFrameDelay = 30 * time.Millisecond

	// stillFrameDelay is the delay assigned to the single frame of a
	// non-animated fallback image.
	stillFrameDelay = 100 * time.Millisecond

	fetchTimeout = 15 * time.Second
)

var fetchClient = &http.Client{Timeout: fetchTimeout}

// FetchAndDecode retrieves an asset over HTTP and decodes it into pre-resized
// frames. Blocking; run it from a background goroutine, never from the
// scheduler loop. A payload with no decodable animation frames falls back to
// a single still image. Returns nil when the payload is not an image at all.
func FetchAndDecode(logger *slog.Logger, url string) *CachedAnimation {
	logger.Debug("fetching animation", "url", url)

	resp, err := fetchClient.Get(url)
	if err != nil {
		logger.Warn("animation fetch failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("animation fetch failed", "url", url, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		logger.Warn("animation read failed", "url", url, "error", err)
		return nil
	}

	a := Decode(data)
	if a == nil {
		logger.Warn("animation decode failed", "url", url)
		return nil
	}
	logger.Debug("animation loaded",
		"url", url, "frames", len(a.Frames), "duration", a.TotalDuration)
	return a
}

// Decode turns raw image bytes into a CachedAnimation. GIF payloads are
// composited frame by frame; anything else decodes as a single still frame.
func Decode(data []byte) *CachedAnimation {
	if g, err := gif.DecodeAll(bytes.NewReader(data)); err == nil && len(g.Image) > 0 {
		if a := decodeGIF(g); a != nil {
			return a
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return &CachedAnimation{
		Frames:        []Frame{{Image: resizeFrame(img), Delay: stillFrameDelay}},
		TotalDuration: stillFrameDelay,
	}
}

// decodeGIF composites each paletted frame onto a running canvas so frames
// that only carry a changed sub-rectangle still render whole.
func decodeGIF(g *gif.GIF) *CachedAnimation {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)

	a := &CachedAnimation{}
	for i, pal := range g.Image {
		xdraw.Draw(canvas, pal.Bounds(), pal, pal.Bounds().Min, xdraw.Over)

		delay := time.Duration(g.Delay[i]) * 10 * time.Millisecond
		if delay < minFrameDelay {
			delay = minFrameDelay
		}
		a.Frames = append(a.Frames, Frame{Image: resizeFrame(canvas), Delay: delay})
		a.TotalDuration += delay

		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalBackground {
			xdraw.Draw(canvas, pal.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		}
	}
	if len(a.Frames) == 0 {
		return nil
	}
	return a
}

// resizeFrame scales an image to the on-device content area. ApproxBiLinear
// trades quality for speed; every frame of every asset goes through here
// once at load time.
func resizeFrame(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, FrameSize, FrameSize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
