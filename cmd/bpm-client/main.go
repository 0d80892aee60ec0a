// Command bpm-client reads and observes a blood pressure monitor.
//
// Usage:
//
//	bpm-client <command> [flags] [uri]
//
// Commands:
//
//	get       Read a resource once
//	observe   Register for notifications and print them
//	put       Send a write (the device refuses it)
//	discover  List monitors advertised over mDNS
//
// The target is given with -addr host:port or, with -device, looked up
// over mDNS by device ID.
//
// Examples:
//
//	# Batch read of the atomic measurement
//	bpm-client get -q if=oic.if.b /BloodPressureMonitorAMResURI
//
//	# Print five notifications, then deregister
//	bpm-client observe -n 5 /BloodPressureMonitorAMResURI
//
//	# Find monitors on the local network
//	bpm-client discover -timeout 3s
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ocf-bpm/bpm-go/pkg/discovery"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/version"
)

const usage = `bpm-client - Blood Pressure Monitor Client

Usage:
  bpm-client <command> [flags] [uri]

Commands:
  get       Read a resource once
  observe   Register for notifications and print them
  put       Send a write (the device refuses it)
  discover  List monitors advertised over mDNS
  version   Print version

Use "bpm-client <command> -help" for more information about a command.
`

const defaultAddr = "127.0.0.1:5683"

// target holds the flags shared by every device command.
type target struct {
	addr     string
	deviceID string
	timeout  time.Duration
}

func (t *target) register(fs *flag.FlagSet) {
	fs.StringVar(&t.addr, "addr", defaultAddr, "Device address (host:port)")
	fs.StringVar(&t.deviceID, "device", "", "Look the device up over mDNS by device ID")
	fs.DurationVar(&t.timeout, "timeout", 5*time.Second, "Request timeout")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "get":
		err = runGet(ctx, args)
	case "observe":
		err = runObserve(ctx, args)
	case "put":
		err = runPut(ctx, args)
	case "discover":
		err = runDiscover(ctx, args)
	case "version":
		fmt.Println("bpm-client", version.String())
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseURI(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		return model.AtomicMeasurementHref, nil
	}
	return fs.Arg(0), nil
}

func runGet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	var t target
	t.register(fs)
	query := fs.String("q", "", "Query, e.g. if=oic.if.baseline")

	uri, err := parseURI(fs, args)
	if err != nil {
		return err
	}

	c, err := dial(ctx, t)
	if err != nil {
		return err
	}
	defer c.Close()

	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := c.Get(reqCtx, uri, *query)
	if err != nil {
		return err
	}
	printResponse(os.Stdout, uri, resp)
	return nil
}

func runObserve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("observe", flag.ExitOnError)
	var t target
	t.register(fs)
	query := fs.String("q", "", "Query, e.g. if=oic.if.b")
	count := fs.Int("n", 0, "Stop after this many notifications (0: until interrupted)")

	uri, err := parseURI(fs, args)
	if err != nil {
		return err
	}

	c, err := dial(ctx, t)
	if err != nil {
		return err
	}
	defer c.Close()

	return observe(ctx, c, uri, *query, *count, t.timeout, os.Stdout)
}

func runPut(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	var t target
	t.register(fs)

	uri, err := parseURI(fs, args)
	if err != nil {
		return err
	}

	c, err := dial(ctx, t)
	if err != nil {
		return err
	}
	defer c.Close()

	reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	body := model.NewRepresentation()
	body.SetInt(model.KeySystolic, 0)
	resp, err := c.Put(reqCtx, uri, body)
	if err != nil {
		return err
	}
	printResponse(os.Stdout, uri, resp)
	return nil
}

func runDiscover(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	timeout := fs.Duration("timeout", discovery.BrowseTimeout, "Browse duration")
	iface := fs.String("interface", "", "Network interface (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := discovery.DefaultBrowserConfig()
	cfg.BrowseTimeout = *timeout
	cfg.Interface = *iface
	browser := discovery.NewMDNSBrowser(cfg)

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	services, err := browser.Browse(ctx)
	if err != nil {
		return err
	}

	// A device that leaves and returns is reported again.
	seen := make(map[string]bool)
	for svc := range services {
		if seen[svc.InstanceName] {
			continue
		}
		seen[svc.InstanceName] = true
		printService(os.Stdout, svc)
	}
	fmt.Printf("%d device(s) found\n", len(seen))
	return nil
}

// dial connects to the target, resolving it over mDNS when a device ID is set.
func dial(ctx context.Context, t target) (*transport.Client, error) {
	addr := t.addr
	if t.deviceID != "" {
		cfg := discovery.DefaultBrowserConfig()
		svc, err := discovery.NewMDNSBrowser(cfg).FindByDeviceID(ctx, t.deviceID)
		if err != nil {
			return nil, fmt.Errorf("looking up device %s: %w", t.deviceID, err)
		}
		addr, err = serviceAddr(svc)
		if err != nil {
			return nil, err
		}
	}
	return transport.Dial(ctx, addr)
}
