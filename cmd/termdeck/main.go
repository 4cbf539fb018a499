package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"termdeck/internal/app"
	"termdeck/internal/config"
	"termdeck/internal/input"
	"termdeck/internal/keys"
	"termdeck/internal/logging"
	"termdeck/internal/profile"
	"termdeck/internal/render"
	"termdeck/internal/state"
	"termdeck/internal/status"
	"termdeck/internal/system"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("termdeck v%s\n", version)
	fmt.Println("Macro pad daemon for driving a terminal session")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  termdeck [OPTIONS]")
	fmt.Println("  termdeck send [OPTIONS] COMMAND [ARG]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that bridges a 10-button macro pad (with touch strip and")
	fmt.Println("  rotary encoders) to a terminal session via synthetic keystrokes.")
	fmt.Println("  Button panels show per-app profiles and animated GIFs; the touch")
	fmt.Println("  strip reflects live session status ingested from a status file,")
	fmt.Println("  a unix socket, or an optional websocket feed.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (optional; defaults apply without it)")
	fmt.Println()
	fmt.Println("  -brightness int")
	fmt.Println("        Panel backlight level 0-100 (default 80)")
	fmt.Println()
	fmt.Println("  -status-file string")
	fmt.Printf("        Session status file written by hooks (default %q)\n", status.DefaultPath())
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Println("        Unix domain socket path for IPC (default \"/tmp/termdeck.sock\")")
	fmt.Println()
	fmt.Println("  -ws-url string")
	fmt.Println("        Websocket status feed URL (optional; disabled when empty)")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -status")
	fmt.Println("        Probe for the device and exit (prints the device node)")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("SUBCOMMANDS:")
	fmt.Println("  send")
	fmt.Println("        Send a control command to a running daemon over its IPC socket")
	fmt.Println("        Options: -ipc-socket")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start daemon with default settings")
	fmt.Println("  termdeck")
	fmt.Println()
	fmt.Println("  # Custom config and dimmer panels")
	fmt.Println("  termdeck -config ~/.config/termdeck/config.yaml -brightness 40")
	fmt.Println()
	fmt.Println("  # Tell a running daemon to reload button profiles")
	fmt.Println("  termdeck send reload_profiles")
	fmt.Println()
	fmt.Println("  # Switch the active model")
	fmt.Println("  termdeck send set_model sonnet")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Requires read/write access to the hidraw device node")
	fmt.Println("  - The daemon keeps running without a device and reconnects when")
	fmt.Println("    one appears")
	fmt.Println()
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "send" {
		runSendSubcommand()
		return
	}

	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		brightness  = flag.Int("brightness", 80, "Panel backlight level 0-100")
		statusFile  = flag.String("status-file", status.DefaultPath(), "Session status file written by hooks")
		ipcSocket   = flag.String("ipc-socket", "/tmp/termdeck.sock", "Unix domain socket path for IPC")
		wsURL       = flag.String("ws-url", "", "Websocket status feed URL")
		logLevelStr = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showStatus  = flag.Bool("status", false, "Probe for the device and exit")
		showVersion = flag.Bool("version", false, "Print version and exit")
		showHelp    = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}
	if *showStatus {
		path, err := probeDevice()
		if err != nil {
			fmt.Println("device: not found")
			os.Exit(1)
		}
		fmt.Printf("device: %s\n", path)
		return
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	}

	// Flags only override what was passed on the command line.
	overrides := config.FlagOverrides{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "brightness":
			overrides.Brightness = brightness
		case "status-file":
			overrides.StatusFile = statusFile
		case "ipc-socket":
			overrides.SocketPath = ipcSocket
		case "ws-url":
			overrides.WsURL = wsURL
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := logging.Setup(logLevel)

	profiles, err := profile.Load(config.ExpandPath(cfg.Profiles.Path))
	if err != nil {
		logger.Error("failed to load profiles", "path", cfg.Profiles.Path, "error", err)
		os.Exit(1)
	}
	manager := profile.NewManager(profiles)

	store := state.NewStore(cfg.Models)

	sender, err := keys.NewSender(logger)
	if err != nil {
		logger.Error("failed to initialize key sender", "error", err)
		os.Exit(1)
	}
	defer sender.Close()

	handler := input.NewHandler(logger, store, manager, sender)
	handler.NewSession = func() {
		system.OpenTerminalSession(logger, cfg.Session.TerminalApp, cfg.Session.LaunchCommand)
	}

	commands := make(chan status.Command, 64)

	server, err := status.NewServer(logger, cfg.Status.SocketPath, commands)
	if err != nil {
		logger.Error("failed to start IPC server", "socket", cfg.Status.SocketPath, "error", err)
		os.Exit(1)
	}

	sched := app.NewScheduler(logger, cfg, store, manager, handler, render.NewFlat(), newConnector(logger), commands)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting termdeck", "version", version,
		"status_file", cfg.Status.FilePath,
		"ipc_socket", cfg.Status.SocketPath,
		"ws_url", cfg.Status.WsURL,
		"profiles", cfg.Profiles.Path,
		"models", cfg.Models)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		<-ctx.Done()
		return server.Close()
	})
	if cfg.Status.WsURL != "" {
		sub := status.NewSubscriber(logger, cfg.Status.WsURL, commands)
		g.Go(func() error { return sub.Run(ctx) })
	}
	g.Go(func() error { return sched.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shut down")
}

func printSendUsage() {
	fmt.Printf("termdeck send v%s\n", version)
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  termdeck send [OPTIONS] COMMAND [ARG]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Sends a control command to a running termdeck daemon over its")
	fmt.Println("  unix IPC socket.")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  reload_profiles        Reload the button profile file")
	fmt.Println("  reset                  Reset session state to idle")
	fmt.Println("  redraw                 Force a full repaint of every panel")
	fmt.Println("  play_intro             Replay the startup animation")
	fmt.Println("  set_model NAME         Select a model by name")
	fmt.Println("  set_brightness LEVEL   Set panel backlight (0-100)")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -ipc-socket string")
	fmt.Println("        Unix domain socket path for IPC (default \"/tmp/termdeck.sock\")")
	fmt.Println()
	fmt.Println("EXAMPLE:")
	fmt.Println("  termdeck send set_brightness 30")
	fmt.Println()
}

func runSendSubcommand() {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	ipcSocket := fs.String("ipc-socket", "/tmp/termdeck.sock", "Unix domain socket path for IPC")
	showHelp := fs.Bool("help", false, "Print help message")

	fs.Usage = printSendUsage
	fs.Parse(os.Args[2:])

	if *showHelp {
		printSendUsage()
		return
	}
	if fs.NArg() == 0 {
		printSendUsage()
		os.Exit(1)
	}

	cmd, err := parseSendCommand(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := status.Send(*ipcSocket, cmd); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func parseSendCommand(args []string) (status.Command, error) {
	switch args[0] {
	case "reload_profiles":
		return status.ReloadProfilesCommand{}, nil
	case "reset":
		return status.ResetCommand{}, nil
	case "redraw":
		return status.RedrawCommand{}, nil
	case "play_intro":
		return status.PlayIntroCommand{}, nil
	case "set_model":
		if len(args) < 2 {
			return nil, errors.New("set_model requires a model name")
		}
		return status.SetModelCommand{Model: args[1]}, nil
	case "set_brightness":
		if len(args) < 2 {
			return nil, errors.New("set_brightness requires a level")
		}
		level, err := strconv.Atoi(args[1])
		if err != nil || level < 0 || level > 100 {
			return nil, errors.New("set_brightness level must be 0-100")
		}
		return status.SetBrightnessCommand{Percent: level}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", args[0])
	}
}
