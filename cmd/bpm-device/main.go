// Command bpm-device runs the simulated blood pressure monitor.
//
// The device serves the atomic measurement collection and its blood
// pressure child over CoAP/UDP, pushes observe notifications every
// observation interval, advertises itself over mDNS and optionally
// mirrors every push to an MQTT broker.
//
// Usage:
//
//	bpm-device [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-interactive          Start the interactive console
//	-protocol-log string  Write a CBOR protocol capture to this file
//	-reset-identity       Generate a new device ID on start
//	-version              Print version and exit
//
// Every setting can be overridden with BPM_ environment variables, e.g.
// BPM_COAP_ADDRESS=:5684 or BPM_LOG_LEVEL=debug.
//
// Examples:
//
//	# Start with defaults on :5683
//	bpm-device
//
//	# Start with a config file and a console
//	bpm-device -config /etc/bpm/device.yaml -interactive
//
//	# Capture the protocol exchange for bpm-log
//	bpm-device -protocol-log /tmp/device.blog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/ocf-bpm/bpm-go/cmd/bpm-device/interactive"
	"github.com/ocf-bpm/bpm-go/pkg/config"
	"github.com/ocf-bpm/bpm-go/pkg/version"
)

// Flags holds the command-line flags.
type Flags struct {
	ConfigFile    string
	Interactive   bool
	ProtocolLog   string
	ResetIdentity bool
	Version       bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive console")
	flag.StringVar(&flags.ProtocolLog, "protocol-log", "", "Write a CBOR protocol capture to this file")
	flag.BoolVar(&flags.ResetIdentity, "reset-identity", false, "Generate a new device ID on start")
	flag.BoolVar(&flags.Version, "version", false, "Print version and exit")
}

func main() {
	flag.Parse()

	if flags.Version {
		fmt.Println("bpm-device", version.String())
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bpm-device: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flags.ProtocolLog != "" {
		cfg.Log.ProtocolLog = flags.ProtocolLog
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	output := &logOutput{w: os.Stderr}
	logger := newLogger(cfg.Log, output)

	dev, err := newDevice(cfg, logger, flags.ResetIdentity)
	if err != nil {
		return err
	}
	defer dev.Close()

	if flags.Interactive {
		console, err := interactive.New(dev.consoleDeps())
		if err != nil {
			return err
		}
		// Route log output through readline so it does not break the prompt.
		output.Set(console.Stdout())
		go console.Run(ctx, cancel)
	}

	err = dev.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("goodbye")
	return err
}

// newLogger builds the process logger from the log config.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("service", "bpm-device"),
		slog.String("version", version.Version),
	)
}

// logOutput is an io.Writer whose target can be swapped at runtime.
type logOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (o *logOutput) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

// Set replaces the target writer.
func (o *logOutput) Set(w io.Writer) {
	o.mu.Lock()
	o.w = w
	o.mu.Unlock()
}
