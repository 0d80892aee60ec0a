// Package interactive provides the interactive command-line interface
// for the bpm-device command.
package interactive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/plgd-dev/go-coap/v2/message"
	"github.com/plgd-dev/go-coap/v2/message/codes"

	"github.com/ocf-bpm/bpm-go/pkg/mirror"
	"github.com/ocf-bpm/bpm-go/pkg/model"
	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/resource"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// consolePeer is the peer name of requests issued from the console.
const consolePeer = "console"

// Deps are the device parts the console operates on.
type Deps struct {
	// Controller serves local reads and subscription events. Required.
	Controller *resource.Controller

	// Sensor is the polled source. set and random replace its inner source.
	Sensor *sensor.Switchable

	// Random is restored by the random command.
	Random sensor.Source

	// Observers reports remote observer counts (optional).
	Observers *transport.Observers

	// Server reports client connections (optional).
	Server *transport.Server

	// Mirror reports MQTT mirror counters (optional).
	Mirror *mirror.Notifier
}

// Console handles interactive mode for bpm-device.
type Console struct {
	deps Deps
	out  io.Writer
	rl   *readline.Instance
}

// New creates a console reading from the terminal.
func New(deps Deps) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bpm> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(deps, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(deps Deps, out io.Writer) *Console {
	return &Console{deps: deps, out: out}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run starts the interactive command loop. cancel is called on quit or EOF.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.Exec(line) {
			cancel()
			return
		}
	}
}

// Exec runs one command line. It returns false when the console should exit.
func (c *Console) Exec(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "read", "r":
		c.cmdRead(args)

	case "subscribe", "sub":
		c.cmdSubscription(observe.Subscribe)

	case "unsubscribe", "unsub":
		c.cmdSubscription(observe.Unsubscribe)

	case "status", "s":
		c.cmdStatus()

	case "set":
		c.cmdSet(args)

	case "random":
		c.cmdRandom()

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return false

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Blood Pressure Monitor Commands:
  Resources:
    read [uri] [query]     - Dispatch a local GET (default: the atomic measurement)
                             e.g. read if=oic.if.b, read /myBloodPressureResURI
    subscribe              - Start the observation loop
    unsubscribe            - Stop the observation loop
    status                 - Show observation, sensor and mirror status

  Sensor:
    set <sys> <dia> <pulse> - Serve a fixed reading
    random                  - Return to random readings

  General:
    help                   - Show this help
    quit                   - Exit device`)
}

// captureWriter records a local response.
type captureWriter struct {
	code codes.Code
	body []byte
}

func (w *captureWriter) SetResponse(code codes.Code, _ message.MediaType, d io.ReadSeeker, _ ...message.Option) error {
	w.code = code
	if d == nil {
		return nil
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, d); err != nil {
		return err
	}
	w.body = buf.Bytes()
	return nil
}

// cmdRead handles the read command.
func (c *Console) cmdRead(args []string) {
	uri := model.AtomicMeasurementHref
	if len(args) > 0 && strings.HasPrefix(args[0], "/") {
		uri = args[0]
		args = args[1:]
	}
	query := strings.Join(args, "&")

	w := &captureWriter{}
	ex := &transport.Exchange{
		URI:     uri,
		Peer:    consolePeer,
		Writer:  w,
		Started: time.Now(),
	}
	outcome := c.deps.Controller.HandleRequest(uri, &wire.Request{
		Method: wire.MethodGet,
		Query:  query,
		Handle: ex,
	})

	fmt.Fprintf(c.out, "%s %s?%s -> %s (%s)\n", wire.MethodGet, uri, query, outcome, w.code)
	if len(w.body) == 0 {
		return
	}
	diag, err := wire.Diagnose(w.body)
	if err != nil {
		fmt.Fprintf(c.out, "  <%d bytes: %v>\n", len(w.body), err)
		return
	}
	fmt.Fprintf(c.out, "  %s\n", diag)
}

// cmdSubscription handles the subscribe and unsubscribe commands.
func (c *Console) cmdSubscription(ev observe.Event) {
	uri := model.AtomicMeasurementHref
	if err := c.deps.Controller.OnSubscriptionEvent(uri, ev); err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	status, _ := c.deps.Controller.Status(uri)
	fmt.Fprintf(c.out, "%s %s: observation %s\n", ev, uri, status)
}

// cmdStatus handles the status command.
func (c *Console) cmdStatus() {
	fmt.Fprintln(c.out, "Resources:")
	for _, uri := range c.deps.Controller.URIs() {
		r, _ := c.deps.Controller.Resource(uri)
		line := fmt.Sprintf("  %-32s polls=%d", uri, r.State.Polls())
		if r.Observable() {
			line += fmt.Sprintf(" observation=%s", r.State.Status())
			if c.deps.Observers != nil {
				line += fmt.Sprintf(" observers=%d seq=%d",
					c.deps.Observers.Count(uri), c.deps.Observers.Sequence(uri))
			}
		}
		fmt.Fprintln(c.out, line)
		if reading := r.State.Reading(); reading.Units != "" {
			fmt.Fprintf(c.out, "    last reading: %s\n", reading)
		}
	}

	if c.deps.Server != nil {
		fmt.Fprintf(c.out, "Connections: %d\n", c.deps.Server.ConnectionCount())
	}
	if c.deps.Mirror != nil {
		published, failed := c.deps.Mirror.Stats()
		fmt.Fprintf(c.out, "MQTT mirror: published=%d failed=%d\n", published, failed)
	}
}

// cmdSet handles the set command.
func (c *Console) cmdSet(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(c.out, "Usage: set <sys> <dia> <pulse>")
		fmt.Fprintln(c.out, "  Example: set 80 120 58")
		return
	}

	var values [3]int64
	for i, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Fprintf(c.out, "Invalid value %q: %v\n", arg, err)
			return
		}
		values[i] = v
	}

	reading := sensor.NewReading(values[0], values[1], values[2])
	if err := reading.Validate(); err != nil {
		fmt.Fprintf(c.out, "Warning: %v\n", err)
	}
	c.deps.Sensor.Use(sensor.NewFixedSource(reading))
	fmt.Fprintf(c.out, "Sensor fixed at %s\n", reading)
}

// cmdRandom handles the random command.
func (c *Console) cmdRandom() {
	if c.deps.Random == nil {
		fmt.Fprintln(c.out, "No random source configured")
		return
	}
	c.deps.Sensor.Use(c.deps.Random)
	fmt.Fprintln(c.out, "Sensor back to random readings")
}
