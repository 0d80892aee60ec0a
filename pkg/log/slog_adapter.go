package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.PeerID != "" {
		attrs = append(attrs, slog.String("peer_id", event.PeerID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.URI != "" {
		attrs = append(attrs, slog.String("uri", event.URI))
	}

	switch {
	case event.Message != nil:
		msg := event.Message
		attrs = append(attrs, slog.String("msg_type", msg.Type.String()))
		if msg.Token != "" {
			attrs = append(attrs, slog.String("token", msg.Token))
		}
		if msg.Method != nil {
			attrs = append(attrs, slog.String("method", msg.Method.String()))
		}
		if msg.Query != "" {
			attrs = append(attrs, slog.String("query", msg.Query))
		}
		if msg.Observe != nil {
			attrs = append(attrs, slog.Uint64("observe", uint64(*msg.Observe)))
		}
		if msg.Outcome != nil {
			attrs = append(attrs, slog.String("outcome", msg.Outcome.String()))
		}
		if msg.Sequence != nil {
			attrs = append(attrs, slog.Uint64("seq", uint64(*msg.Sequence)))
		}
		if msg.ProcessingTime != nil {
			attrs = append(attrs, slog.Duration("processing_time", *msg.ProcessingTime))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
