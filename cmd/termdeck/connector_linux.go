//go:build linux

package main

import (
	"log/slog"

	"termdeck/internal/device"
)

// newConnector opens the panel over hidraw. The scheduler retries through
// this on its reconnect cadence, so a missing device at startup is fine.
func newConnector(logger *slog.Logger) device.Connector {
	return device.ConnectorFunc(func() (device.Link, error) {
		return device.OpenHID(logger)
	})
}

// probeDevice reports the device node a connect would use.
func probeDevice() (string, error) {
	return device.FindHIDDevice()
}
