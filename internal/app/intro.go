package app

import (
	"time"

	"termdeck/internal/device"
)

// introColors is the rainbow wave palette.
var introColors = [6][3]uint8{
	{255, 50, 50},
	{255, 150, 50},
	{255, 255, 50},
	{50, 255, 100},
	{50, 150, 255},
	{150, 50, 255},
}

// introWaveOrder sweeps left to right, alternating top and bottom rows.
var introWaveOrder = [10]int{0, 5, 1, 6, 2, 7, 3, 8, 4, 9}

// playIntro runs the startup animation: a rainbow sweep, a white flash, and
// a fade to dark. Blocking; only called outside the interactive path (on
// connect and on explicit replay).
func (s *Scheduler) playIntro() {
	if s.link == nil {
		return
	}
	s.logger.Info("playing startup animation")

	for i, button := range introWaveOrder {
		c := introColors[i%len(introColors)]
		img := s.renderer.RenderSolid(c[0], c[1], c[2])
		if err := s.link.WriteButtonImage(device.DisplayKey(button), img); err != nil {
			s.logger.Warn("intro write failed", "error", err)
			return
		}
		s.flush()
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	white := s.renderer.RenderSolid(255, 255, 255)
	for button := 0; button < device.SquareButtonCount; button++ {
		if err := s.link.WriteButtonImage(device.DisplayKey(button), white); err != nil {
			s.logger.Warn("intro write failed", "error", err)
			return
		}
	}
	s.flush()
	time.Sleep(100 * time.Millisecond)

	for level := 10; level >= 0; level-- {
		v := uint8(level * 25)
		img := s.renderer.RenderSolid(v, v, v)
		for button := 0; button < device.SquareButtonCount; button++ {
			if err := s.link.WriteButtonImage(device.DisplayKey(button), img); err != nil {
				s.logger.Warn("intro write failed", "error", err)
				return
			}
		}
		s.flush()
		time.Sleep(30 * time.Millisecond)
	}
}
