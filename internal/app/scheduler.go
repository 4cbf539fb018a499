// Package app is the scheduler: the single cooperative loop that owns the
// hardware link and interleaves input polling, press classification,
// animation playback, and housekeeping without ever issuing overlapping
// device writes.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"termdeck/internal/anim"
	"termdeck/internal/config"
	"termdeck/internal/device"
	"termdeck/internal/input"
	"termdeck/internal/profile"
	"termdeck/internal/render"
	"termdeck/internal/state"
	"termdeck/internal/status"
	"termdeck/internal/system"
)

// Scheduler drives the device. All link access happens on the Run goroutine;
// background work (asset fetches, focus probes) communicates back through
// the shared stores and completion channels only.
type Scheduler struct {
	logger   *slog.Logger
	cfg      config.Config
	store    *state.Store
	profiles *profile.Manager
	handler  *input.Handler
	renderer render.Renderer

	connector device.Connector
	link      device.Link
	tracker   *device.EdgeTracker

	cache  *anim.Cache
	ticker *anim.Ticker
	prober *system.Prober

	commands <-chan status.Command

	// fetch is swapped out by tests; production wires anim.FetchAndDecode.
	fetch func(*slog.Logger, string) *anim.CachedAnimation

	lastWrite      time.Time
	lastKeepAlive  time.Time
	lastStatusPoll time.Time
	lastProbe      time.Time
	lastReconnect  time.Time
	lastAnimTick   time.Time
}

// NewScheduler wires the scheduler. The connector is called once at startup
// and again on the reconnect cadence after a disconnect.
func NewScheduler(
	logger *slog.Logger,
	cfg config.Config,
	store *state.Store,
	profiles *profile.Manager,
	handler *input.Handler,
	renderer render.Renderer,
	connector device.Connector,
	commands <-chan status.Command,
) *Scheduler {
	cache := anim.NewCache()
	return &Scheduler{
		logger:    logger,
		cfg:       cfg,
		store:     store,
		profiles:  profiles,
		handler:   handler,
		renderer:  renderer,
		connector: connector,
		tracker:   device.NewEdgeTracker(device.ButtonCount, device.EncoderCount),
		cache:     cache,
		ticker:    anim.NewTicker(cache),
		prober:    system.NewProber(logger),
		commands:  commands,
		fetch:     anim.FetchAndDecode,
	}
}

// Run executes the loop until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.connect()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		default:
		}

		s.step()
		time.Sleep(loopSleep)
	}
}

// step is one pass of the loop. Ordering matters: commands drain first so
// external state lands before rendering, input outranks animation, and
// every device write goes through the cooldown stamp.
func (s *Scheduler) step() {
	s.drainCommands()

	if s.link != nil {
		s.keepAlive()
		s.pollInput()
	} else {
		s.tryReconnect()
	}

	s.pollHold()
	s.pollStatusFile()
	s.pollSystem()
	s.startPendingFetches()
	s.tickAnimations()
}

func (s *Scheduler) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			s.applyCommand(cmd)
		default:
			return
		}
	}
}

func (s *Scheduler) applyCommand(cmd status.Command) {
	switch c := cmd.(type) {
	case status.UpdateCommand:
		status.Apply(&c.Record, s.store)
		s.updateDisplay()
	case status.ReloadProfilesCommand:
		profiles, err := profile.Load(config.ExpandPath(s.cfg.Profiles.Path))
		if err != nil {
			s.logger.Warn("profile reload failed", "error", err)
			return
		}
		s.profiles.SetProfiles(profiles)
		s.logger.Info("profiles reloaded", "count", len(profiles))
		// Drop cached animations, including negative entries, so edited
		// URLs and previously failed fetches get a fresh attempt.
		s.cache.Clear()
		s.syncAnimations()
		s.redrawAll()
	case status.SetModelCommand:
		if s.store.SetModel(c.Model) {
			s.updateDisplay()
		}
	case status.ResetCommand:
		s.store.Reset()
		s.updateDisplay()
	case status.SetBrightnessCommand:
		if s.link == nil {
			return
		}
		if err := s.link.SetBrightness(c.Percent); err != nil {
			s.logger.Warn("set brightness failed", "error", err)
		}
	case status.RedrawCommand:
		s.redrawAll()
		s.updateDisplay()
	case status.PlayIntroCommand:
		if s.link == nil {
			return
		}
		s.playIntro()
		s.redrawAll()
		s.updateDisplay()
	}
}

func (s *Scheduler) keepAlive() {
	if time.Since(s.lastKeepAlive) < keepAliveInterval {
		return
	}
	s.lastKeepAlive = time.Now()
	if err := s.link.KeepAlive(); err != nil {
		s.logger.Warn("keep-alive failed", "error", err)
	}
}

// pollInput reads at most one raw sample and runs it through decode, edge
// detection, and dispatch.
func (s *Scheduler) pollInput() {
	ev, err := s.link.ReadEvent(pollTimeout)
	if err != nil {
		if errors.Is(err, device.ErrTimeout) {
			return
		}
		if errors.Is(err, device.ErrDisconnected) {
			s.dropLink()
			return
		}
		s.logger.Warn("device read failed", "error", err)
		return
	}

	raw := device.Decode(ev.Code, ev.State, s.logger)
	in, ok := s.tracker.Apply(raw)
	if !ok {
		return
	}

	if err := s.handler.HandleEvent(in); err != nil {
		s.logger.Warn("input dispatch failed", "event", in.Kind.String(), "error", err)
	}
	s.updateDisplay()
	s.consumeIntroRequest()
}

// consumeIntroRequest replays the startup animation when an encoder press
// asked for it.
func (s *Scheduler) consumeIntroRequest() {
	var play bool
	s.store.Update(func(sess *state.Session) {
		play = sess.PlayIntro
		sess.PlayIntro = false
	})
	if play {
		s.playIntro()
		s.redrawAll()
	}
}

func (s *Scheduler) pollHold() {
	fired, err := s.handler.PollHold()
	if err != nil {
		s.logger.Warn("hold action failed", "error", err)
	}
	if fired {
		s.updateDisplay()
	}
}

func (s *Scheduler) pollStatusFile() {
	if time.Since(s.lastStatusPoll) < statusPollInterval {
		return
	}
	s.lastStatusPoll = time.Now()

	rec := status.ReadFile(s.logger, s.cfg.Status.FilePath)
	if rec == nil {
		return
	}
	before := s.store.Snapshot()
	status.Apply(rec, s.store)
	if s.store.Snapshot() != before {
		s.updateDisplay()
	}
}

// pollSystem kicks the background focus/lock probe on its cadence and
// consumes any finished result without blocking.
func (s *Scheduler) pollSystem() {
	if time.Since(s.lastProbe) >= probeInterval {
		s.lastProbe = time.Now()
		s.prober.Kick()
	}

	res, ok := s.prober.Poll()
	if !ok {
		return
	}

	appChanged := false
	s.store.Update(func(sess *state.Session) {
		if res.App != "" && sess.FocusedApp != res.App {
			s.logger.Info("focused app changed", "from", sess.FocusedApp, "to", res.App)
			sess.FocusedApp = res.App
			appChanged = true
		}
		if sess.Locked != res.Locked {
			s.logger.Info("screen lock changed", "locked", res.Locked)
			sess.Locked = res.Locked
		}
	})

	if appChanged {
		s.syncAnimations()
		s.redrawAll()
		s.updateDisplay()
	}
}

// syncAnimations points the playback cursors at the animation URLs of the
// active profile. Fetching happens later, off the loop.
func (s *Scheduler) syncAnimations() {
	s.ticker.ClearAll()
	app := s.store.Snapshot().FocusedApp
	for button := 0; button < device.SquareButtonCount; button++ {
		cfg := s.profiles.ButtonFor(app, button)
		if cfg.GIFURL != "" {
			s.ticker.SetButton(button, cfg.GIFURL)
		}
	}
}

// startPendingFetches spawns one background fetch per unresolved URL. The
// cache's loading mark guarantees a URL is fetched at most once; failures
// cache as permanent negatives.
func (s *Scheduler) startPendingFetches() {
	for _, url := range s.ticker.Pending() {
		if !s.cache.MarkLoading(url) {
			continue
		}
		go func(url string) {
			s.cache.Store(url, s.fetch(s.logger, url))
		}(url)
	}
}

// tickAnimations advances playback on its cadence. Writes only happen when
// the device-write cooldown has elapsed; a tick landing inside the cooldown
// drops its frames and the next tick catches up.
func (s *Scheduler) tickAnimations() {
	if s.link == nil {
		return
	}
	if time.Since(s.lastAnimTick) < animTickInterval {
		return
	}
	s.lastAnimTick = time.Now()

	if time.Since(s.lastWrite) < writeCooldown {
		return
	}

	results := s.ticker.Tick()
	if len(results) == 0 {
		return
	}

	sess := s.store.Snapshot()
	for _, res := range results {
		cfg := s.profiles.ButtonFor(sess.FocusedApp, res.Button)
		img := s.renderer.RenderButton(cfg, s.store.IsButtonFlashed(res.Button), res.Frame)
		if err := s.link.WriteButtonImage(device.DisplayKey(res.Button), img); err != nil {
			s.logger.Warn("animation write failed", "button", res.Button, "error", err)
			return
		}
	}
	s.flush()
}

// updateDisplay refreshes the strip panels and the mic button, the pieces
// that track fast-changing session state.
func (s *Scheduler) updateDisplay() {
	if s.link == nil {
		return
	}
	sess := s.store.Snapshot()

	for panel := 0; panel < device.StripButtonCount; panel++ {
		img := s.renderer.RenderStrip(panel, sess)
		if err := s.link.WriteButtonImage(panel, img); err != nil {
			s.logger.Warn("strip write failed", "panel", panel, "error", err)
			return
		}
	}

	micFrame := s.ticker.Frame(7)
	mic := s.renderer.RenderButton(
		s.profiles.ButtonFor(sess.FocusedApp, 7), s.store.IsButtonFlashed(7), micFrame)
	if err := s.link.WriteButtonImage(device.DisplayKey(7), mic); err != nil {
		s.logger.Warn("button write failed", "button", 7, "error", err)
		return
	}
	s.flush()
}

// redrawAll repaints every square button with the active profile.
func (s *Scheduler) redrawAll() {
	if s.link == nil {
		return
	}
	sess := s.store.Snapshot()

	for button := 0; button < device.SquareButtonCount; button++ {
		cfg := s.profiles.ButtonFor(sess.FocusedApp, button)
		img := s.renderer.RenderButton(cfg, false, s.ticker.Frame(button))
		if err := s.link.WriteButtonImage(device.DisplayKey(button), img); err != nil {
			s.logger.Warn("button write failed", "button", button, "error", err)
			return
		}
	}
	s.flush()
}

func (s *Scheduler) flush() {
	if err := s.link.Flush(); err != nil {
		s.logger.Warn("flush failed", "error", err)
	}
	s.lastWrite = time.Now()
}

// connect opens the link and runs the initial render. A failed attempt
// leaves the scheduler in reconnect mode.
func (s *Scheduler) connect() {
	link, err := s.connector.Connect()
	if err != nil {
		s.logger.Error("device connect failed", "error", err)
		s.lastReconnect = time.Now()
		return
	}
	s.logger.Info("device connected")
	s.link = link
	s.tracker.Reset()
	s.store.Update(func(sess *state.Session) { sess.Connected = true })

	if err := s.link.KeepAlive(); err != nil {
		s.logger.Warn("keep-alive failed", "error", err)
	}
	s.lastKeepAlive = time.Now()
	if err := s.link.SetBrightness(s.cfg.Device.Brightness); err != nil {
		s.logger.Warn("set brightness failed", "error", err)
	}

	if s.cfg.Device.Intro {
		s.playIntro()
	}
	s.syncAnimations()
	s.redrawAll()
	s.updateDisplay()
}

func (s *Scheduler) dropLink() {
	s.logger.Warn("device disconnected, entering reconnect loop")
	s.link.Close()
	s.link = nil
	s.lastReconnect = time.Now()
	s.tracker.Reset()
	s.store.Update(func(sess *state.Session) { sess.Connected = false })
}

func (s *Scheduler) tryReconnect() {
	if time.Since(s.lastReconnect) < reconnectInterval {
		return
	}
	s.lastReconnect = time.Now()
	s.connect()
}

func (s *Scheduler) shutdown() {
	s.logger.Info("scheduler stopping")
	if s.link != nil {
		s.link.Close()
		s.link = nil
	}
}
