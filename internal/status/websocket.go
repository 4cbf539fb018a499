package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsHandshakeTimeout = 2 * time.Second
	wsRetryDelay       = 5 * time.Second
)

// Subscriber maintains a websocket connection to a status feed and queues
// each pushed record as an UpdateCommand. The feed is optional; when no URL
// is configured the subscriber is simply not started.
type Subscriber struct {
	logger   *slog.Logger
	url      string
	commands chan<- Command
}

func NewSubscriber(logger *slog.Logger, url string, commands chan<- Command) *Subscriber {
	return &Subscriber{logger: logger, url: url, commands: commands}
}

// Run connects, reads until the connection drops, and reconnects until the
// context is cancelled. Always returns the context's error.
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		if err := s.readLoop(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("status feed disconnected", "url", s.url, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wsRetryDelay):
		}
	}
}

func (s *Subscriber) readLoop(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: wsHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	s.logger.Info("status feed connected", "url", s.url)

	// Unblock ReadMessage on cancellation.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var rec Record
		if err := json.Unmarshal(message, &rec); err != nil {
			s.logger.Warn("status feed parse failed", "error", err)
			continue
		}

		select {
		case s.commands <- UpdateCommand{Record: rec}:
		default:
			s.logger.Debug("command queue full, dropping status push")
		}
	}
}
