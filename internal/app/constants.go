package app

import "time"

// Scheduler cadences. The loop is a single cooperative thread of control;
// everything hardware-facing is paced from these.
const (
	// pollTimeout bounds one hardware read so the loop keeps servicing
	// animation, status, and housekeeping between input events.
	pollTimeout = time.Millisecond

	// loopSleep paces the loop when the poll returned immediately.
	loopSleep = 10 * time.Millisecond

	// keepAliveInterval pings the device before its firmware idle timeout.
	keepAliveInterval = 10 * time.Second

	// statusPollInterval rereads the hook-written status file.
	statusPollInterval = 500 * time.Millisecond

	// probeInterval kicks the focus/lock prober.
	probeInterval = 500 * time.Millisecond

	// reconnectInterval spaces connection attempts while disconnected.
	reconnectInterval = 5 * time.Second

	// animTickInterval is the animation advance cadence.
	animTickInterval = 16 * time.Millisecond

	// writeCooldown is the minimum spacing between physical device writes.
	// Animation ticks that land inside the cooldown are dropped, never
	// queued.
	writeCooldown = 33 * time.Millisecond
)
