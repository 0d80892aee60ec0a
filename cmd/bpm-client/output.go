package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/ocf-bpm/bpm-go/pkg/discovery"
	"github.com/ocf-bpm/bpm-go/pkg/transport"
)

// ErrNotObserved is returned when the device answered an observe
// registration without registering the client.
var ErrNotObserved = errors.New("registration refused")

// observer is the part of *transport.Client used by observe.
type observer interface {
	Observe(ctx context.Context, uri, query string, fn func(transport.Response)) (transport.Observation, error)
}

// printResponse writes one response in a human-readable form.
func printResponse(w io.Writer, uri string, resp transport.Response) {
	line := fmt.Sprintf("%s %s (%s)", uri, resp.Code, resp.Outcome)
	if resp.Observe != nil {
		line += fmt.Sprintf(" observe=%d", *resp.Observe)
	}
	fmt.Fprintln(w, line)
	if len(resp.Payload) > 0 {
		fmt.Fprintf(w, "  %s\n", resp.Diagnose())
	}
}

// printService writes one discovered device.
func printService(w io.Writer, svc *discovery.Service) {
	addr, err := serviceAddr(svc)
	if err != nil {
		addr = "?"
	}
	fmt.Fprintf(w, "%s  %s  di=%s  n=%q  rt=%s\n",
		svc.InstanceName, addr, svc.DeviceID, svc.DeviceName, svc.ResourceType)
}

// serviceAddr returns the CoAP address of a discovered device.
func serviceAddr(svc *discovery.Service) (string, error) {
	host := svc.Host
	if len(svc.Addresses) > 0 {
		host = svc.Addresses[0]
	}
	if host == "" {
		return "", fmt.Errorf("service %s has no address", svc.InstanceName)
	}
	port := svc.Port
	if port == 0 {
		port = discovery.DefaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port))), nil
}

// observe registers for uri and prints the registration response and up to
// count notifications. count 0 runs until ctx is done.
func observe(ctx context.Context, c observer, uri, query string, count int, timeout time.Duration, w io.Writer) error {
	responses := make(chan transport.Response, 16)

	regCtx, cancel := context.WithTimeout(ctx, timeout)
	obs, err := c.Observe(regCtx, uri, query, func(resp transport.Response) {
		select {
		case responses <- resp:
		default:
		}
	})
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		cancelCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = obs.Cancel(cancelCtx)
	}()

	registered := false
	received := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case resp := <-responses:
			printResponse(w, uri, resp)
			if !registered {
				if resp.Observe == nil {
					return fmt.Errorf("%s: %w (%s)", uri, ErrNotObserved, resp.Outcome)
				}
				registered = true
				continue
			}
			received++
			if count > 0 && received >= count {
				return nil
			}
		}
	}
}
