// Package render produces button images for the device. Drawing is
// deliberately simple: a background fill from the profile's color, with the
// current animation frame composited over it when one is available.
package render

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"termdeck/internal/anim"
	"termdeck/internal/device"
	"termdeck/internal/profile"
	"termdeck/internal/state"
)

// Renderer turns button configuration and session state into the images
// written to the device.
type Renderer interface {
	RenderButton(cfg profile.Button, flashed bool, frame *image.RGBA) *image.RGBA
	RenderStrip(panel int, s state.Session) *image.RGBA
	RenderSolid(r, g, b uint8) *image.RGBA
}

// Flat fills the button with its profile color, brightened while flashed,
// and centers the animation frame over it.
type Flat struct{}

func NewFlat() *Flat { return &Flat{} }

func (*Flat) RenderButton(cfg profile.Button, flashed bool, frame *image.RGBA) *image.RGBA {
	hex := cfg.Color
	if flashed && cfg.BrightColor != "" {
		hex = cfg.BrightColor
	}
	bg, err := ParseHexColor(hex)
	if err != nil {
		bg = color.RGBA{A: 0xff}
	}

	img := image.NewRGBA(image.Rect(0, 0, device.ButtonImageSize, device.ButtonImageSize))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	if frame != nil {
		offset := (device.ButtonImageSize - anim.FrameSize) / 2
		target := image.Rect(offset, offset, offset+anim.FrameSize, offset+anim.FrameSize)
		xdraw.Draw(img, target, frame, frame.Bounds().Min, xdraw.Over)
	}
	return img
}

// Strip panel colors. The strip shows coarse status only; the colors are
// chosen to read at a glance from across a desk.
var (
	stripIdle       = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	stripBusy       = color.RGBA{R: 0x00, G: 0x80, B: 0xff, A: 0xff}
	stripWaiting    = color.RGBA{R: 0xff, G: 0xb0, B: 0x00, A: 0xff}
	stripSelecting  = color.RGBA{R: 0x90, G: 0x40, B: 0xff, A: 0xff}
	stripConnected  = color.RGBA{R: 0x00, G: 0xff, B: 0x41, A: 0xff}
	stripDictation  = color.RGBA{R: 0xff, G: 0x3b, B: 0x30, A: 0xff}
	stripDisconnect = color.RGBA{R: 0x60, G: 0x00, B: 0x00, A: 0xff}
)

// RenderStrip draws one of the four status panels.
//
//	panel 0: task activity
//	panel 1: model selection
//	panel 2: input prompt
//	panel 3: connection and dictation
func (*Flat) RenderStrip(panel int, s state.Session) *image.RGBA {
	var bg color.RGBA
	switch panel {
	case 0:
		bg = stripBusy
		if s.TaskName == "" || s.TaskName == "READY" {
			bg = stripIdle
		}
	case 1:
		bg = stripIdle
		if s.ModelSelecting {
			bg = stripSelecting
		}
	case 2:
		bg = stripIdle
		if s.WaitingForInput {
			bg = stripWaiting
		}
	case 3:
		switch {
		case s.DictationActive:
			bg = stripDictation
		case s.Connected:
			bg = stripConnected
		default:
			bg = stripDisconnect
		}
	default:
		bg = stripIdle
	}

	img := image.NewRGBA(image.Rect(0, 0, device.ButtonImageSize, device.ButtonImageSize))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	return img
}

// RenderSolid fills a button image with one color; used by the startup
// animation.
func (*Flat) RenderSolid(r, g, b uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, device.ButtonImageSize, device.ButtonImageSize))
	bg := color.RGBA{R: r, G: g, B: b, A: 0xff}
	xdraw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	return img
}

// ParseHexColor parses "#rrggbb" (leading '#' optional).
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want rrggbb", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
