//go:build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// USB identity of the supported panel.
const (
	VendorID  = 0x0300
	ProductID = 0x3004
)

const (
	// packetSize is the v3 protocol write packet size.
	packetSize = 1024
	// inputReportSize is the raw input report size.
	inputReportSize = 512
	// jpegQuality trades upload size against image fidelity; the panels
	// are small enough that artifacts do not show.
	jpegQuality = 85
)

// Command packets start with "CRT" followed by a three-letter opcode.
var cmdMagic = []byte("CRT\x00\x00")

// Input report field offsets. Reports are acknowledged command echoes; key
// state reports carry the event code and state after the "ACK" header.
const (
	reportCodeOffset  = 9
	reportStateOffset = 10
)

// FindHIDDevice scans /sys/class/hidraw for the panel and returns its
// /dev/hidraw path.
func FindHIDDevice() (string, error) {
	entries, err := os.ReadDir("/sys/class/hidraw")
	if err != nil {
		return "", fmt.Errorf("scan hidraw: %w", err)
	}

	want := fmt.Sprintf("%08X:%08X", VendorID, ProductID)
	for _, e := range entries {
		uevent, err := os.ReadFile(filepath.Join("/sys/class/hidraw", e.Name(), "device", "uevent"))
		if err != nil {
			continue
		}
		if strings.Contains(string(uevent), want) {
			return "/dev/" + e.Name(), nil
		}
	}
	return "", fmt.Errorf("no device %04x:%04x found", VendorID, ProductID)
}

// hidLink drives the panel over a hidraw node.
type hidLink struct {
	fd     int
	logger *slog.Logger
	buf    [inputReportSize]byte
}

// OpenHID locates the panel and opens its hidraw node. The caller needs
// read/write access to the device node.
func OpenHID(logger *slog.Logger) (Link, error) {
	path, err := FindHIDDevice()
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	logger.Info("hid device opened", "path", path)
	return &hidLink{fd: fd, logger: logger}, nil
}

func (l *hidLink) ReadEvent(timeout time.Duration) (RawEvent, error) {
	fds := []unix.PollFd{{Fd: int32(l.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout/time.Millisecond))
	if err != nil {
		if err == unix.EINTR {
			return RawEvent{}, ErrTimeout
		}
		return RawEvent{}, ErrDisconnected
	}
	if n == 0 {
		return RawEvent{}, ErrTimeout
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0 {
		return RawEvent{}, ErrDisconnected
	}

	nr, err := unix.Read(l.fd, l.buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return RawEvent{}, ErrTimeout
		}
		return RawEvent{}, ErrDisconnected
	}
	if nr <= reportStateOffset || !bytes.HasPrefix(l.buf[:nr], []byte("ACK")) {
		// Command echoes and short reports carry no input.
		return RawEvent{}, ErrTimeout
	}
	return RawEvent{Code: l.buf[reportCodeOffset], State: l.buf[reportStateOffset]}, nil
}

// command sends one fixed-size packet: magic, opcode, then arguments.
func (l *hidLink) command(op string, args ...byte) error {
	pkt := make([]byte, packetSize)
	n := copy(pkt, cmdMagic)
	n += copy(pkt[n:], op)
	copy(pkt[n:], args)
	if _, err := unix.Write(l.fd, pkt); err != nil {
		return fmt.Errorf("command %s: %w", op, err)
	}
	return nil
}

func (l *hidLink) WriteButtonImage(displayKey int, img image.Image) error {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotate180(img), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encode button image: %w", err)
	}
	data := buf.Bytes()

	// Announce the transfer: target key plus payload length.
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	args := append([]byte{byte(displayKey)}, size[:]...)
	if err := l.command("BAT", args...); err != nil {
		return err
	}

	for off := 0; off < len(data); off += packetSize {
		end := off + packetSize
		if end > len(data) {
			end = len(data)
		}
		pkt := make([]byte, packetSize)
		copy(pkt, data[off:end])
		if _, err := unix.Write(l.fd, pkt); err != nil {
			return fmt.Errorf("image payload: %w", err)
		}
	}
	return nil
}

func (l *hidLink) Flush() error {
	return l.command("STP")
}

func (l *hidLink) SetBrightness(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return l.command("LIG", byte(percent))
}

func (l *hidLink) KeepAlive() error {
	return l.command("CON")
}

func (l *hidLink) Close() error {
	// Best effort: tell the firmware we are going away so it blanks the
	// panels instead of freezing on the last frame.
	if err := l.command("DIS"); err != nil {
		l.logger.Debug("disconnect command failed", "error", err)
	}
	return unix.Close(l.fd)
}

// rotate180 flips the image both ways; the panel mounts its LCDs upside
// down.
func rotate180(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(b.Dx()-1-(x-b.Min.X), b.Dy()-1-(y-b.Min.Y), src.At(x, y))
		}
	}
	return dst
}
