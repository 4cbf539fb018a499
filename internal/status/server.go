package status

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
)

// The IPC server lets external clients drive the daemon over a unix domain
// socket: hook scripts pushing status, command-line tools reloading profiles
// or switching models.
//
// Protocol: line-delimited JSON.
//   client sends:   {"type": "command_name", "data": {...}}
//   server replies: {"status": "ok"} or {"status": "error", "error": "msg"}

// Response is sent back to IPC clients after each command.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Server accepts commands on a unix socket and queues them for the
// scheduler.
type Server struct {
	logger   *slog.Logger
	path     string
	listener net.Listener
	commands chan<- Command
}

// NewServer binds the socket. An existing socket file is removed first so a
// crashed previous instance does not block startup.
func NewServer(logger *slog.Logger, path string, commands chan<- Command) (*Server, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o666); err != nil {
		listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	return &Server{
		logger:   logger,
		path:     path,
		listener: listener,
		commands: commands,
	}, nil
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() error {
	s.logger.Info("ipc listening", "socket", s.path)
	defer os.Remove(s.path)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Debug("ipc listener closed")
				return nil
			}
			s.logger.Warn("ipc accept failed", "error", err)
			continue
		}
		go s.handle(conn)
	}
}

// Close shuts the listener down; Serve returns nil.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	encoder := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		s.logger.Debug("ipc received", "line", string(line))

		cmd, err := UnmarshalCommand(line)
		if err != nil {
			s.reply(encoder, Response{Status: "error", Error: err.Error()})
			continue
		}

		select {
		case s.commands <- cmd:
			s.reply(encoder, Response{Status: "ok"})
		default:
			s.reply(encoder, Response{Status: "error", Error: "command queue full"})
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warn("ipc read failed", "error", err)
	}
}

func (s *Server) reply(encoder *json.Encoder, resp Response) {
	if err := encoder.Encode(resp); err != nil {
		s.logger.Warn("ipc reply failed", "error", err)
	}
}

// Send delivers one command to a running daemon over its socket and waits
// for the reply. Used by command-line tools and tests.
func Send(socketPath string, cmd Command) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := MarshalCommand(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return fmt.Errorf("send command: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status == "error" {
		return fmt.Errorf("daemon error: %s", resp.Error)
	}
	return nil
}
