// Package commands implements the bpm-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ocf-bpm/bpm-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [peer:id] DIRECTION LAYER Type uri
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	peer := shortenID(event.PeerID)

	var typeLabel string
	switch {
	case event.Message != nil:
		typeLabel = event.Message.Type.String()
	case event.StateChange != nil:
		typeLabel = "STATE"
	case event.Error != nil:
		typeLabel = "ERROR"
	default:
		typeLabel = "UNKNOWN"
	}

	fmt.Fprintf(w, "%s [peer:%s] %-3s %s %s", ts, peer, event.Direction, event.Layer, typeLabel)
	if event.URI != "" {
		fmt.Fprintf(w, " %s", event.URI)
	}
	fmt.Fprintln(w)

	switch {
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}
	if event.RemoteAddr != "" {
		fmt.Fprintf(w, "  Remote: %s\n", event.RemoteAddr)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a peer ID.
func shortenID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatMessageDetails writes message-specific details.
func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	if msg.Token != "" {
		fmt.Fprintf(w, "  Token: %s\n", msg.Token)
	}

	switch msg.Type {
	case log.MessageTypeRequest:
		if msg.Method != nil {
			fmt.Fprintf(w, "  Method: %s\n", *msg.Method)
		}
		if msg.Query != "" {
			fmt.Fprintf(w, "  Query: %s\n", msg.Query)
		}
		if msg.Observe != nil {
			fmt.Fprintf(w, "  Observe: %d\n", *msg.Observe)
		}

	case log.MessageTypeResponse:
		if msg.Outcome != nil {
			fmt.Fprintf(w, "  Outcome: %s\n", *msg.Outcome)
		}
		if msg.Sequence != nil {
			fmt.Fprintf(w, "  Sequence: %d\n", *msg.Sequence)
		}
		if msg.ProcessingTime != nil {
			fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*msg.ProcessingTime))
		}

	case log.MessageTypeNotification:
		if msg.Sequence != nil {
			fmt.Fprintf(w, "  Sequence: %d\n", *msg.Sequence)
		}
		if msg.ProcessingTime != nil {
			fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*msg.ProcessingTime))
		}
	}

	if msg.Payload != "" {
		fmt.Fprintf(w, "  Payload: %s\n", msg.Payload)
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "resource":
		return log.LayerResource, nil
	case "observation":
		return log.LayerObservation, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, resource, or observation)", s)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// ParseMessageTypeFlag parses a message type string (case-insensitive).
func ParseMessageTypeFlag(s string) (log.MessageType, error) {
	switch strings.ToLower(s) {
	case "request":
		return log.MessageTypeRequest, nil
	case "response":
		return log.MessageTypeResponse, nil
	case "notification":
		return log.MessageTypeNotification, nil
	default:
		return 0, fmt.Errorf("invalid message type: %s (must be request, response, or notification)", s)
	}
}

// RunView writes every event of the capture at path that matches filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	err = reader.Each(func(event log.Event) error {
		formatEvent(output, event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}
	return nil
}
