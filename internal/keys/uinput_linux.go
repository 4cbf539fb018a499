//go:build linux

package keys

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux input event types and codes (from <linux/input-event-codes.h>).
const (
	evSyn = 0x00
	evKey = 0x01

	synReport = 0

	keyEnter    = 28
	keyEsc      = 1
	keyTab      = 15
	keyUp       = 103
	keyDown     = 108
	keyPageUp   = 104
	keyPageDown = 109
	keyHome     = 102
	keyEnd      = 107

	keyLeftCtrl  = 29
	keyLeftShift = 42
	keyU         = 22
)

// uinput ioctl requests (from <linux/uinput.h>).
const (
	uiSetEvBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiDevCreate = 0x5501
	uiDevSetup  = 0x405c5503
)

// uinputSetup mirrors struct uinput_setup.
type uinputSetup struct {
	ID   inputID
	Name [80]byte
	_    uint32 // ff_effects_max
}

type inputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// inputEvent mirrors struct input_event on 64-bit Linux.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// keyCodes maps logical keys to evdev key codes.
var keyCodes = map[Key]uint16{
	Enter:    keyEnter,
	Escape:   keyEsc,
	Tab:      keyTab,
	Up:       keyUp,
	Down:     keyDown,
	PageUp:   keyPageUp,
	PageDown: keyPageDown,
	Home:     keyHome,
	End:      keyEnd,
}

// charCodes maps lowercase ASCII to (evdev code, needs shift).
var charCodes = map[rune]struct {
	code  uint16
	shift bool
}{
	'a': {30, false}, 'b': {48, false}, 'c': {46, false}, 'd': {32, false},
	'e': {18, false}, 'f': {33, false}, 'g': {34, false}, 'h': {35, false},
	'i': {23, false}, 'j': {36, false}, 'k': {37, false}, 'l': {38, false},
	'm': {50, false}, 'n': {49, false}, 'o': {24, false}, 'p': {25, false},
	'q': {16, false}, 'r': {19, false}, 's': {31, false}, 't': {20, false},
	'u': {22, false}, 'v': {47, false}, 'w': {17, false}, 'x': {45, false},
	'y': {21, false}, 'z': {44, false},
	'1': {2, false}, '2': {3, false}, '3': {4, false}, '4': {5, false},
	'5': {6, false}, '6': {7, false}, '7': {8, false}, '8': {9, false},
	'9': {10, false}, '0': {11, false},
	' ': {57, false}, '-': {12, false}, '=': {13, false}, '/': {53, false},
	'.': {52, false}, ',': {51, false}, ';': {39, false}, '\'': {40, false},
	':': {39, true}, '?': {53, true}, '_': {12, true}, '+': {13, true},
	'!': {2, true}, '@': {3, true}, '#': {4, true}, '$': {5, true},
	'%': {6, true}, '^': {7, true}, '&': {8, true}, '*': {9, true},
	'(': {10, true}, ')': {11, true},
}

// uinputSender injects keystrokes through a virtual /dev/uinput keyboard.
type uinputSender struct {
	fd     int
	logger *slog.Logger
}

// NewSender creates the platform keystroke sender. On Linux this registers
// a virtual keyboard with the kernel; the caller needs write access to
// /dev/uinput.
func NewSender(logger *slog.Logger) (Sender, error) {
	fd, err := unix.Open("/dev/uinput", unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	if err := ioctl(fd, uiSetEvBit, evKey); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("enable EV_KEY: %w", err)
	}

	// Register every key we may emit.
	codes := map[uint16]bool{keyLeftCtrl: true, keyLeftShift: true, keyU: true}
	for _, c := range keyCodes {
		codes[c] = true
	}
	for _, cc := range charCodes {
		codes[cc.code] = true
	}
	for c := range codes {
		if err := ioctl(fd, uiSetKeyBit, int(c)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("enable key %d: %w", c, err)
		}
	}

	setup := uinputSetup{
		ID: inputID{BusType: 0x03, Vendor: 0x1d6b, Product: 0x0104, Version: 1},
	}
	copy(setup.Name[:], "termdeck virtual keyboard")
	if err := ioctlPtr(fd, uiDevSetup, unsafe.Pointer(&setup)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uinput setup: %w", err)
	}
	if err := ioctl(fd, uiDevCreate, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("uinput create: %w", err)
	}

	// Give the kernel a moment to register the new device before the first
	// injected event; events written too early are dropped.
	time.Sleep(100 * time.Millisecond)

	return &uinputSender{fd: fd, logger: logger}, nil
}

func ioctl(fd int, req uint, arg int) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func ioctlPtr(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func (s *uinputSender) emit(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]
	if _, err := unix.Write(s.fd, buf); err != nil {
		return fmt.Errorf("write input event: %w", err)
	}
	return nil
}

func (s *uinputSender) tap(code uint16, mods ...uint16) error {
	for _, m := range mods {
		if err := s.emit(evKey, m, 1); err != nil {
			return err
		}
	}
	if err := s.emit(evKey, code, 1); err != nil {
		return err
	}
	if err := s.emit(evKey, code, 0); err != nil {
		return err
	}
	for _, m := range mods {
		if err := s.emit(evKey, m, 0); err != nil {
			return err
		}
	}
	return s.emit(evSyn, synReport, 0)
}

func (s *uinputSender) SendKey(k Key) error {
	code, ok := keyCodes[k]
	if !ok {
		return fmt.Errorf("no key code for %s", k)
	}
	return s.tap(code)
}

func (s *uinputSender) SendText(text string) error {
	for _, r := range strings.ToValidUTF8(text, "") {
		lower := r
		shift := false
		if r >= 'A' && r <= 'Z' {
			lower = r + 32
			shift = true
		}
		cc, ok := charCodes[lower]
		if !ok {
			s.logger.Debug("untypeable character skipped", "rune", string(r))
			continue
		}
		var err error
		if shift || cc.shift {
			err = s.tap(cc.code, keyLeftShift)
		} else {
			err = s.tap(cc.code)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *uinputSender) ClearLine() error {
	return s.tap(keyU, keyLeftCtrl)
}

func (s *uinputSender) ToggleDictation() error {
	// No standard dictation hotkey on Linux desktops.
	s.logger.Warn("dictation toggle not supported on this platform")
	return nil
}

func (s *uinputSender) Close() error {
	return unix.Close(s.fd)
}
