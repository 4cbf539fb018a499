package app

import (
	"context"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"termdeck/internal/anim"
	"termdeck/internal/config"
	"termdeck/internal/device"
	"termdeck/internal/input"
	"termdeck/internal/keys"
	"termdeck/internal/profile"
	"termdeck/internal/render"
	"termdeck/internal/state"
	"termdeck/internal/status"
	"termdeck/internal/system"
)

type fakeLink struct {
	mu           sync.Mutex
	events       []device.RawEvent
	writes       map[int]int
	flushes      int
	keepAlives   int
	brightness   int
	disconnected bool
	closed       bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{writes: make(map[int]int)}
}

func (l *fakeLink) ReadEvent(timeout time.Duration) (device.RawEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disconnected {
		return device.RawEvent{}, device.ErrDisconnected
	}
	if len(l.events) == 0 {
		return device.RawEvent{}, device.ErrTimeout
	}
	ev := l.events[0]
	l.events = l.events[1:]
	return ev, nil
}

func (l *fakeLink) WriteButtonImage(displayKey int, img image.Image) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes[displayKey]++
	return nil
}

func (l *fakeLink) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushes++
	return nil
}

func (l *fakeLink) SetBrightness(percent int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.brightness = percent
	return nil
}

func (l *fakeLink) KeepAlive() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keepAlives++
	return nil
}

func (l *fakeLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *fakeLink) pushEvent(code, st byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, device.RawEvent{Code: code, State: st})
}

func (l *fakeLink) writeCount(displayKey int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes[displayKey]
}

type nopSender struct {
	mu   sync.Mutex
	keys []keys.Key
}

func (n *nopSender) SendKey(k keys.Key) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.keys = append(n.keys, k)
	return nil
}
func (n *nopSender) SendText(string) error  { return nil }
func (n *nopSender) ClearLine() error       { return nil }
func (n *nopSender) ToggleDictation() error { return nil }
func (n *nopSender) Close() error           { return nil }

type schedulerFixture struct {
	sched  *Scheduler
	link   *fakeLink
	store  *state.Store
	sender *nopSender
}

func newFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.DefaultConfig()
	cfg.Device.Intro = false
	dir := t.TempDir()
	cfg.Status.FilePath = filepath.Join(dir, "state.json")
	cfg.Profiles.Path = filepath.Join(dir, "profiles.yaml")

	store := state.NewStore(cfg.Models)
	profiles := profile.NewManager(profile.Defaults())
	sender := &nopSender{}
	handler := input.NewHandler(logger, store, profiles, sender)

	link := newFakeLink()
	connector := device.ConnectorFunc(func() (device.Link, error) {
		return link, nil
	})

	commands := make(chan status.Command, 8)
	sched := NewScheduler(logger, cfg, store, profiles, handler, render.NewFlat(), connector, commands)
	sched.fetch = func(*slog.Logger, string) *anim.CachedAnimation { return nil }

	return &schedulerFixture{sched: sched, link: link, store: store, sender: sender}
}

func TestScheduler_ConnectRendersEverything(t *testing.T) {
	f := newFixture(t)
	f.sched.connect()

	if !f.store.Snapshot().Connected {
		t.Fatal("not marked connected")
	}
	if f.link.brightness != 80 {
		t.Fatalf("brightness = %d", f.link.brightness)
	}
	if f.link.keepAlives == 0 {
		t.Fatal("no keep-alive on connect")
	}

	// Every square button painted through its display key.
	for button := 0; button < device.SquareButtonCount; button++ {
		if f.link.writeCount(device.DisplayKey(button)) == 0 {
			t.Fatalf("button %d never painted", button)
		}
	}
	// All four strip panels painted.
	for panel := 0; panel < device.StripButtonCount; panel++ {
		if f.link.writeCount(panel) == 0 {
			t.Fatalf("strip panel %d never painted", panel)
		}
	}
}

func TestScheduler_InputEventDispatches(t *testing.T) {
	f := newFixture(t)
	f.sched.connect()

	// Button 8 (ENTER) press then release.
	f.link.pushEvent(0x09, 1)
	f.sched.step()
	f.link.pushEvent(0x09, 0)
	f.sched.step()

	f.sender.mu.Lock()
	got := append([]keys.Key(nil), f.sender.keys...)
	f.sender.mu.Unlock()
	if len(got) != 1 || got[0] != keys.Enter {
		t.Fatalf("keys = %v, want [enter]", got)
	}
}

func TestScheduler_DisconnectAndReconnect(t *testing.T) {
	f := newFixture(t)
	f.sched.connect()

	f.link.disconnected = true
	f.sched.step()

	if f.store.Snapshot().Connected {
		t.Fatal("still marked connected")
	}
	if f.sched.link != nil {
		t.Fatal("link not dropped")
	}
	if !f.link.closed {
		t.Fatal("dropped link not closed")
	}

	// Within the reconnect interval nothing happens.
	f.link.disconnected = false
	f.sched.step()
	if f.sched.link != nil {
		t.Fatal("reconnected before interval")
	}

	// After the interval the scheduler reconnects and re-renders.
	before := f.link.writeCount(device.DisplayKey(0))
	f.sched.lastReconnect = time.Now().Add(-reconnectInterval - time.Second)
	f.sched.step()
	if f.sched.link == nil {
		t.Fatal("did not reconnect")
	}
	if !f.store.Snapshot().Connected {
		t.Fatal("not marked connected after reconnect")
	}
	if f.link.writeCount(device.DisplayKey(0)) <= before {
		t.Fatal("no re-render after reconnect")
	}
}

func TestScheduler_CommandsApply(t *testing.T) {
	f := newFixture(t)
	commands := make(chan status.Command, 8)
	f.sched.commands = commands
	f.sched.connect()

	commands <- status.UpdateCommand{Record: status.Record{
		Task:      "Bash",
		Timestamp: time.Now().Unix(),
	}}
	commands <- status.SetBrightnessCommand{Percent: 25}
	f.sched.step()

	if got := f.store.Snapshot().TaskName; got != "Bash" {
		t.Fatalf("task = %q", got)
	}
	if f.link.brightness != 25 {
		t.Fatalf("brightness = %d", f.link.brightness)
	}

	// A redraw command repaints every square button.
	before := f.link.writeCount(device.DisplayKey(3))
	commands <- status.RedrawCommand{}
	f.sched.step()
	if f.link.writeCount(device.DisplayKey(3)) <= before {
		t.Fatal("no repaint after redraw command")
	}
}

// A profile reload must drop the whole animation cache, negative entries
// included, so a previously failed fetch gets retried against the edited
// profile.
func TestScheduler_ProfileReloadClearsAnimationCache(t *testing.T) {
	f := newFixture(t)
	commands := make(chan status.Command, 8)
	f.sched.commands = commands
	f.sched.connect()

	const url = "test://broken.gif"
	f.sched.cache.MarkLoading(url)
	f.sched.cache.Store(url, nil)
	if !f.sched.cache.IsCached(url) {
		t.Fatal("negative entry not cached")
	}

	commands <- status.ReloadProfilesCommand{}
	f.sched.step()

	if f.sched.cache.IsCached(url) {
		t.Fatal("negative cache entry survived profile reload")
	}
}

// A focused-app change repaints the strip panels too, not just the square
// buttons; the panels would otherwise keep the previous app's status until
// some other trigger.
func TestScheduler_FocusChangeRefreshesStripPanels(t *testing.T) {
	f := newFixture(t)
	f.sched.connect()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.sched.prober = system.NewProberWith(logger,
		func(context.Context) (string, error) { return "Ghostty", nil },
		func(context.Context) (bool, error) { return false, nil },
	)

	// Strip panels write at display keys 0-3; only updateDisplay touches
	// them after connect.
	before := f.link.writeCount(0)

	f.sched.lastProbe = time.Now().Add(-probeInterval - time.Second)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && f.store.Snapshot().FocusedApp != "Ghostty" {
		f.sched.step()
		time.Sleep(time.Millisecond)
	}

	if got := f.store.Snapshot().FocusedApp; got != "Ghostty" {
		t.Fatalf("focused app = %q", got)
	}
	if f.link.writeCount(0) <= before {
		t.Fatal("strip panels not repainted after focus change")
	}
}

func TestScheduler_StatusFilePoll(t *testing.T) {
	f := newFixture(t)
	f.sched.connect()

	rec := &status.Record{Task: "Edit", Timestamp: time.Now().Unix()}
	if err := status.WriteFile(f.sched.cfg.Status.FilePath, rec); err != nil {
		t.Fatal(err)
	}

	f.sched.lastStatusPoll = time.Now().Add(-statusPollInterval - time.Second)
	f.sched.step()

	if got := f.store.Snapshot().TaskName; got != "Edit" {
		t.Fatalf("task = %q", got)
	}
}

// Animation writes respect the device-write cooldown: a tick landing inside
// the cooldown drops its frames instead of queueing them.
func TestScheduler_AnimationCooldown(t *testing.T) {
	f := newFixture(t)
	f.sched.connect()

	frames := &anim.CachedAnimation{
		Frames: []anim.Frame{{
			Image: image.NewRGBA(image.Rect(0, 0, anim.FrameSize, anim.FrameSize)),
			Delay: time.Millisecond,
		}},
		TotalDuration: time.Millisecond,
	}
	f.sched.cache.Store("test://a", frames)
	f.sched.ticker.SetButton(2, "test://a")

	key := device.DisplayKey(2)
	before := f.link.writeCount(key)

	// Cooldown active: connect just wrote, so this tick is dropped.
	f.sched.lastAnimTick = time.Time{}
	f.sched.lastWrite = time.Now()
	f.sched.tickAnimations()
	if f.link.writeCount(key) != before {
		t.Fatal("wrote during cooldown")
	}

	// Cooldown elapsed: the first frame lands.
	f.sched.lastAnimTick = time.Time{}
	f.sched.lastWrite = time.Now().Add(-writeCooldown - time.Millisecond)
	f.sched.tickAnimations()
	if f.link.writeCount(key) != before+1 {
		t.Fatalf("writes = %d, want %d", f.link.writeCount(key), before+1)
	}
}

func TestScheduler_PendingFetchStoresResult(t *testing.T) {
	f := newFixture(t)
	fetched := make(chan string, 1)
	f.sched.fetch = func(_ *slog.Logger, url string) *anim.CachedAnimation {
		fetched <- url
		return &anim.CachedAnimation{Frames: []anim.Frame{{
			Image: image.NewRGBA(image.Rect(0, 0, anim.FrameSize, anim.FrameSize)),
			Delay: time.Second,
		}}}
	}
	f.sched.connect()
	f.sched.ticker.SetButton(0, "test://fetch")

	f.sched.startPendingFetches()

	select {
	case url := <-fetched:
		if url != "test://fetch" {
			t.Fatalf("fetched %q", url)
		}
	case <-time.After(time.Second):
		t.Fatal("fetch never started")
	}

	deadline := time.Now().Add(time.Second)
	for !f.sched.cache.IsCached("test://fetch") {
		if time.Now().After(deadline) {
			t.Fatal("result never stored")
		}
		time.Sleep(time.Millisecond)
	}

	// A second pass spawns nothing new.
	f.sched.startPendingFetches()
	select {
	case url := <-fetched:
		t.Fatalf("refetched %q", url)
	case <-time.After(50 * time.Millisecond):
	}
}
