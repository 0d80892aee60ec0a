package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ocf-bpm/bpm-go/pkg/log"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

// Stats holds aggregate statistics about a capture.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	MessagesByType    map[log.MessageType]int
	Outcomes          map[wire.Outcome]int
	Resources         map[string]*ResourceStats
	Peers             map[string]*PeerStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ResourceStats holds statistics for a single resource.
type ResourceStats struct {
	Requests      int
	Notifications int
	MaxSequence   uint32

	// Time between consecutive notifications.
	lastNotification time.Time
	intervalTotal    time.Duration
	intervals        int
}

// MeanInterval returns the mean time between notifications.
func (r *ResourceStats) MeanInterval() time.Duration {
	if r.intervals == 0 {
		return 0
	}
	return r.intervalTotal / time.Duration(r.intervals)
}

// PeerStats holds statistics for a single peer.
type PeerStats struct {
	FirstSeen  time.Time
	LastSeen   time.Time
	Events     int
	RemoteAddr string
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		MessagesByType:    make(map[log.MessageType]int),
		Outcomes:          make(map[wire.Outcome]int),
		Resources:         make(map[string]*ResourceStats),
		Peers:             make(map[string]*PeerStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.PeerID != "" {
		peer, ok := s.Peers[event.PeerID]
		if !ok {
			peer = &PeerStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			s.Peers[event.PeerID] = peer
		}
		peer.Events++
		if event.Timestamp.After(peer.LastSeen) {
			peer.LastSeen = event.Timestamp
		}
		if peer.RemoteAddr == "" {
			peer.RemoteAddr = event.RemoteAddr
		}
	}

	if msg := event.Message; msg != nil {
		s.MessagesByType[msg.Type]++
		if msg.Outcome != nil {
			s.Outcomes[*msg.Outcome]++
		}
		if event.URI != "" {
			s.addResourceMessage(event.URI, event.Timestamp, msg)
		}
	}

	if event.Error != nil {
		s.Errors++
	}
}

func (s *Stats) addResourceMessage(uri string, ts time.Time, msg *log.MessageEvent) {
	res, ok := s.Resources[uri]
	if !ok {
		res = &ResourceStats{}
		s.Resources[uri] = res
	}

	switch msg.Type {
	case log.MessageTypeRequest:
		res.Requests++
	case log.MessageTypeNotification:
		res.Notifications++
		if msg.Sequence != nil && *msg.Sequence > res.MaxSequence {
			res.MaxSequence = *msg.Sequence
		}
		if !res.lastNotification.IsZero() && ts.After(res.lastNotification) {
			res.intervalTotal += ts.Sub(res.lastNotification)
			res.intervals++
		}
		res.lastNotification = ts
	}
}

// RunStats analyzes the capture at path and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	err = reader.Each(func(event log.Event) error {
		stats.add(event)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Blood Pressure Monitor Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerResource, log.LayerObservation} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.MessagesByType) > 0 {
		fmt.Fprintln(w, "Messages:")
		for _, mt := range []log.MessageType{log.MessageTypeRequest, log.MessageTypeResponse, log.MessageTypeNotification} {
			if count := stats.MessagesByType[mt]; count > 0 {
				fmt.Fprintf(w, "  %-14s %d\n", mt.String()+":", count)
			}
		}
		fmt.Fprintln(w)
	}

	if len(stats.Outcomes) > 0 {
		fmt.Fprintln(w, "Outcomes:")
		outcomes := make([]wire.Outcome, 0, len(stats.Outcomes))
		for o := range stats.Outcomes {
			outcomes = append(outcomes, o)
		}
		sort.Slice(outcomes, func(i, j int) bool { return outcomes[i] < outcomes[j] })
		for _, o := range outcomes {
			fmt.Fprintf(w, "  %-20s %d\n", o.String()+":", stats.Outcomes[o])
		}
		fmt.Fprintln(w)
	}

	if len(stats.Resources) > 0 {
		fmt.Fprintln(w, "Resources:")
		uris := make([]string, 0, len(stats.Resources))
		for uri := range stats.Resources {
			uris = append(uris, uri)
		}
		sort.Strings(uris)
		for _, uri := range uris {
			res := stats.Resources[uri]
			fmt.Fprintf(w, "  %s: %d requests, %d notifications", uri, res.Requests, res.Notifications)
			if res.Notifications > 0 {
				fmt.Fprintf(w, " (max seq %d", res.MaxSequence)
				if mean := res.MeanInterval(); mean > 0 {
					fmt.Fprintf(w, ", every %s", mean.Round(time.Millisecond))
				}
				fmt.Fprint(w, ")")
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Peers: %d\n", len(stats.Peers))
	if len(stats.Peers) > 0 {
		type peerInfo struct {
			id    string
			stats *PeerStats
		}
		peers := make([]peerInfo, 0, len(stats.Peers))
		for id, ps := range stats.Peers {
			peers = append(peers, peerInfo{id, ps})
		}
		sort.Slice(peers, func(i, j int) bool {
			return peers[i].stats.FirstSeen.Before(peers[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, p := range peers {
			duration := p.stats.LastSeen.Sub(p.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(p.id), p.stats.Events, duration)
			if p.stats.RemoteAddr != "" {
				fmt.Fprintf(w, "           Remote: %s\n", p.stats.RemoteAddr)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
