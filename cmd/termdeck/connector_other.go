//go:build !linux

package main

import (
	"errors"
	"log/slog"

	"termdeck/internal/device"
)

// newConnector on platforms without a hidraw transport. The daemon still
// runs (status ingestion, IPC) and the scheduler stays in its reconnect
// loop; wire a platform transport here to drive a panel.
func newConnector(logger *slog.Logger) device.Connector {
	warned := false
	return device.ConnectorFunc(func() (device.Link, error) {
		if !warned {
			logger.Warn("no hid transport on this platform")
			warned = true
		}
		return nil, errors.New("device: no transport for this platform")
	})
}

func probeDevice() (string, error) {
	return "", errors.New("device: no transport for this platform")
}
