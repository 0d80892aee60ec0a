// Command bpm-log views and summarizes protocol captures.
//
// Captures are written by bpm-device with the -protocol-log flag.
//
// Usage:
//
//	bpm-log <command> [flags] <file.blog>
//
// Commands:
//
//	view     View the capture in human-readable format
//	stats    Show statistics about the capture
//	export   Export the capture as JSON lines
//
// Examples:
//
//	# View all events
//	bpm-log view device.blog
//
//	# View only notifications
//	bpm-log view -type notification device.blog
//
//	# View one resource from one peer
//	bpm-log view -uri /BloodPressureMonitorAMResURI -peer 2f9c1a3e-... device.blog
//
//	# Show statistics
//	bpm-log stats device.blog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ocf-bpm/bpm-go/cmd/bpm-log/commands"
	"github.com/ocf-bpm/bpm-go/pkg/log"
)

const usage = `bpm-log - Blood Pressure Monitor Protocol Log Analyzer

Usage:
  bpm-log <command> [flags] <file.blog>

Commands:
  view     View the capture in human-readable format
  stats    Show statistics about the capture
  export   Export the capture as JSON lines

Use "bpm-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "stats":
		runStats(args)
	case "export":
		runExport(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bpm-log view - View the capture in human-readable format

Usage:
  bpm-log view [flags] <file.blog>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (transport, resource, observation)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (message, state, error)")
	msgType := fs.String("type", "", "Filter by message type (request, response, notification)")
	uri := fs.String("uri", "", "Filter by resource URI")
	peer := fs.String("peer", "", "Filter by peer ID")
	since := fs.String("since", "", "Only events at or after this time (RFC3339)")
	until := fs.String("until", "", "Only events before this time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := log.Filter{URI: *uri, PeerID: *peer}

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}
	if *msgType != "" {
		m, err := commands.ParseMessageTypeFlag(*msgType)
		if err != nil {
			fail(err)
		}
		filter.MessageType = &m
	}
	if *since != "" {
		ts, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			fail(fmt.Errorf("invalid -since: %w", err))
		}
		filter.TimeStart = &ts
	}
	if *until != "" {
		ts, err := time.Parse(time.RFC3339, *until)
		if err != nil {
			fail(fmt.Errorf("invalid -until: %w", err))
		}
		filter.TimeEnd = &ts
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bpm-log stats - Show statistics about the capture

Usage:
  bpm-log stats <file.blog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `bpm-log export - Export the capture as JSON lines

Usage:
  bpm-log export [flags] <file.blog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *output); err != nil {
		fail(err)
	}
}
