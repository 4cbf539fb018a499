package device

import (
	"errors"
	"image"
	"time"
)

// Transport sentinel errors. A timeout is expected during normal polling and
// is not a failure; a disconnect is fatal to the session and switches the
// scheduler into reconnect mode.
var (
	// ErrTimeout means no sample arrived within the poll deadline.
	ErrTimeout = errors.New("device: read timeout")

	// ErrDisconnected means the transport is gone and the link handle must
	// be dropped.
	ErrDisconnected = errors.New("device: disconnected")
)

// RawEvent is one raw hardware sample as delivered by the transport.
type RawEvent struct {
	Code  byte
	State byte
}

// Link is the connected hardware transport. Implementations wrap the actual
// USB/HID plumbing; the scheduler is the only caller and serializes all
// access.
type Link interface {
	// ReadEvent blocks up to timeout for the next raw sample. Returns
	// ErrTimeout when nothing arrived and ErrDisconnected when the
	// transport is gone.
	ReadEvent(timeout time.Duration) (RawEvent, error)

	// WriteButtonImage queues an image for the given display key.
	WriteButtonImage(displayKey int, img image.Image) error

	// Flush pushes all queued images to the hardware.
	Flush() error

	// SetBrightness sets panel brightness 0-100.
	SetBrightness(percent int) error

	// KeepAlive pings the device to prevent its firmware idle timeout.
	KeepAlive() error

	// Close releases the transport.
	Close() error
}

// Connector opens a Link. The scheduler calls it at startup and again from
// its reconnect loop.
type Connector interface {
	Connect() (Link, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func() (Link, error)

func (f ConnectorFunc) Connect() (Link, error) { return f() }
