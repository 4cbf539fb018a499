package input

import (
	"fmt"
	"log/slog"
	"time"

	"termdeck/internal/device"
	"termdeck/internal/keys"
	"termdeck/internal/profile"
	"termdeck/internal/state"
)

const (
	// longPressThreshold separates short taps from long presses.
	longPressThreshold = 2 * time.Second

	// retryReplayDelay sits between Up and Enter so the terminal has
	// recalled the previous line before it is submitted.
	retryReplayDelay = 50 * time.Millisecond

	// rewindEscapeDelay sits between the two Escapes of a rewind so the
	// terminal treats them as separate presses.
	rewindEscapeDelay = 100 * time.Millisecond

	// dictationWarmupDelay follows the extra priming toggle on first use.
	dictationWarmupDelay = 200 * time.Millisecond
)

// holdToActivateButtons fire their long-press action the moment the
// threshold is reached instead of waiting for release. Currently only the
// mic button, whose hold action clears the input line.
var holdToActivateButtons = []int{7}

// Handler maps decoded input events to keystrokes and state changes,
// resolving each button through the profile matched to the focused
// application.
type Handler struct {
	logger     *slog.Logger
	store      *state.Store
	profiles   *profile.Manager
	sender     keys.Sender
	classifier *Classifier

	// NewSession, when set, is invoked by a long press of the tab button
	// to open a fresh terminal session.
	NewSession func()

	dictationFirstUse bool
}

// NewHandler wires a handler over the shared state store, the profile set,
// and a keystroke sender.
func NewHandler(logger *slog.Logger, store *state.Store, profiles *profile.Manager, sender keys.Sender) *Handler {
	return &Handler{
		logger:            logger,
		store:             store,
		profiles:          profiles,
		sender:            sender,
		classifier:        NewClassifier(longPressThreshold, holdToActivateButtons),
		dictationFirstUse: true,
	}
}

// HandleEvent dispatches one input event. Dispatch is suspended while the
// screen is locked; events arriving then are dropped.
func (h *Handler) HandleEvent(ev device.InputEvent) error {
	if h.store.Snapshot().Locked {
		h.logger.Debug("input dropped while locked", "event", ev.Kind.String())
		return nil
	}

	switch ev.Kind {
	case device.ButtonDown:
		if ev.Button < device.SquareButtonCount {
			h.classifier.OnDown(ev.Button)
		}
	case device.ButtonUp:
		if ev.Button < device.SquareButtonCount {
			return h.buttonUp(ev.Button)
		}
	case device.EncoderRotate:
		return h.encoderRotate(ev.Encoder, ev.Direction)
	case device.EncoderPress:
		return h.encoderPress(ev.Encoder)
	case device.EncoderRelease:
		// No action on encoder release.
	}
	return nil
}

// PollHold fires any hold-to-activate actions whose threshold has been
// reached. Called from the main loop between device reads. Reports whether
// an action fired so the caller can redraw.
func (h *Handler) PollHold() (bool, error) {
	fired := false
	for _, button := range h.classifier.PollLongPress() {
		if button == 7 {
			h.logger.Info("clearing input line")
			if err := h.sender.ClearLine(); err != nil {
				return fired, fmt.Errorf("clear line: %w", err)
			}
			h.store.FlashButton(button)
			fired = true
		}
	}
	return fired, nil
}

func (h *Handler) buttonUp(button int) error {
	rel := h.classifier.OnUp(button)
	if rel.AlreadyFired {
		h.logger.Debug("button released after hold action", "button", button)
		return nil
	}

	h.logger.Debug("button released",
		"button", button, "duration", rel.Duration, "long", rel.Long)

	app := h.store.Snapshot().FocusedApp
	cfg := h.profiles.ButtonFor(app, button)
	if err := h.runAction(button, cfg, rel.Long); err != nil {
		return err
	}
	h.store.FlashButton(button)
	return nil
}

func (h *Handler) runAction(button int, cfg profile.Button, long bool) error {
	switch cfg.Action.Kind {
	case profile.ActionKey:
		k, ok := keys.ParseKey(cfg.Action.Value)
		if !ok {
			h.logger.Warn("unknown key in profile", "key", cfg.Action.Value)
			return nil
		}
		if err := h.sender.SendKey(k); err != nil {
			return err
		}
		return h.autoSubmit(cfg)
	case profile.ActionText, profile.ActionEmoji:
		h.logger.Info("typing text", "label", cfg.Label, "value", cfg.Action.Value)
		if err := h.sender.SendText(cfg.Action.Value); err != nil {
			return err
		}
		return h.autoSubmit(cfg)
	case profile.ActionCustom:
		return h.runCustom(cfg.Action.Value, long)
	default:
		h.logger.Warn("unknown action type", "type", string(cfg.Action.Kind), "button", button)
		return nil
	}
}

func (h *Handler) autoSubmit(cfg profile.Button) error {
	if !cfg.Action.AutoSubmit {
		return nil
	}
	return h.sender.SendKey(keys.Enter)
}

func (h *Handler) runCustom(name string, long bool) error {
	switch name {
	case "":
		// Placeholder slot.
		return nil
	case "accept":
		h.logger.Info("accept: Enter")
		if err := h.sender.SendKey(keys.Enter); err != nil {
			return err
		}
		h.store.Update(func(s *state.Session) { s.WaitingForInput = false })
		return nil
	case "reject":
		h.logger.Info("reject: Escape")
		if err := h.sender.SendKey(keys.Escape); err != nil {
			return err
		}
		h.store.Update(func(s *state.Session) { s.WaitingForInput = false })
		return nil
	case "stop":
		h.logger.Info("stop: Escape")
		return h.sender.SendKey(keys.Escape)
	case "retry":
		h.logger.Info("retry: Up + Enter")
		if err := h.sender.SendKey(keys.Up); err != nil {
			return err
		}
		time.Sleep(retryReplayDelay)
		return h.sender.SendKey(keys.Enter)
	case "rewind":
		h.logger.Info("rewind: double Escape")
		if err := h.sender.SendKey(keys.Escape); err != nil {
			return err
		}
		time.Sleep(rewindEscapeDelay)
		return h.sender.SendKey(keys.Escape)
	case "trust":
		h.logger.Info("trust: selecting option 2")
		return h.sender.SendText("2")
	case "tab":
		if long {
			h.openNewSession()
			return nil
		}
		return h.sender.SendKey(keys.Tab)
	case "mic":
		if long {
			// Hold action handled by PollHold.
			return nil
		}
		return h.toggleDictation()
	case "enter":
		return h.sender.SendKey(keys.Enter)
	case "clear":
		h.logger.Info("clear: /clear + Enter")
		if err := h.sender.SendText("/clear"); err != nil {
			return err
		}
		if err := h.sender.SendKey(keys.Enter); err != nil {
			return err
		}
		h.store.Reset()
		return nil
	default:
		h.logger.Warn("unknown custom action", "name", name)
		return nil
	}
}

func (h *Handler) openNewSession() {
	if h.NewSession == nil {
		h.logger.Debug("no new-session hook configured")
		return
	}
	h.logger.Info("opening new terminal session")
	h.NewSession()
}

func (h *Handler) toggleDictation() error {
	h.logger.Info("toggling dictation")

	// The first toggle after startup is unreliable on macOS; prime the
	// sender with an extra toggle before the real one.
	if h.dictationFirstUse {
		if err := h.sender.ToggleDictation(); err != nil {
			return err
		}
		time.Sleep(dictationWarmupDelay)
		h.dictationFirstUse = false
	}
	if err := h.sender.ToggleDictation(); err != nil {
		return err
	}

	var active bool
	h.store.Update(func(s *state.Session) {
		s.DictationActive = !s.DictationActive
		active = s.DictationActive
	})
	h.logger.Info("dictation state changed", "active", active)
	return nil
}

func (h *Handler) encoderRotate(encoder, direction int) error {
	h.logger.Debug("encoder rotated", "encoder", encoder, "direction", direction)

	switch encoder {
	case 0:
		// Scroll terminal output.
		if direction > 0 {
			return h.sender.SendKey(keys.PageDown)
		}
		return h.sender.SendKey(keys.PageUp)
	case 1:
		h.store.CycleModel(direction)
		return nil
	case 2:
		// Command history.
		if direction > 0 {
			return h.sender.SendKey(keys.Down)
		}
		return h.sender.SendKey(keys.Up)
	default:
		return nil
	}
}

func (h *Handler) encoderPress(encoder int) error {
	h.logger.Debug("encoder pressed", "encoder", encoder)

	switch encoder {
	case 0:
		h.store.Update(func(s *state.Session) { s.PlayIntro = true })
		return nil
	case 1:
		model := h.store.ConfirmModel()
		h.logger.Info("switching model", "model", model)
		if err := h.sender.SendText("/model " + model); err != nil {
			return err
		}
		return h.sender.SendKey(keys.Enter)
	case 2:
		return h.sender.SendKey(keys.Enter)
	case 3:
		return h.sender.SendKey(keys.End)
	default:
		return nil
	}
}
