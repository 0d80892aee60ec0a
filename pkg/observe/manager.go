package observe

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
)

// Manager owns the push loop of one observable resource.
type Manager struct {
	uri      string
	target   Target
	notifier Notifier
	config   Config

	mu sync.Mutex

	// Handle of the running loop, nil while Idle.
	cancel context.CancelFunc
	done   chan struct{}

	// Set by Subscribe while Active; checked before self-stopping on
	// NoObservers so a subscriber that arrived during the push is not lost.
	resubscribed bool

	// Callbacks
	onStatusChange func(uri string, status Status)
	onPush         func(PushResult)
}

// NewManager creates a manager for the resource at uri.
func NewManager(uri string, target Target, notifier Notifier, config Config) *Manager {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}

	return &Manager{
		uri:      uri,
		target:   target,
		notifier: notifier,
		config:   config,
	}
}

// URI returns the observed resource URI.
func (m *Manager) URI() string {
	return m.uri
}

// Status returns the current observation status.
func (m *Manager) Status() Status {
	return m.target.Status()
}

// OnStatusChange sets the callback invoked after every Idle/Active transition.
func (m *Manager) OnStatusChange(fn func(uri string, status Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStatusChange = fn
}

// OnPush sets the callback invoked after every push attempt.
func (m *Manager) OnPush(fn func(PushResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPush = fn
}

// Handle applies a subscription event.
func (m *Manager) Handle(ev Event) error {
	switch ev {
	case Subscribe:
		m.Subscribe()
	case Unsubscribe:
		m.Unsubscribe()
	default:
		return ErrUnknownEvent
	}
	return nil
}

// Subscribe starts the push loop if the manager is Idle.
// It returns true if a loop was started.
func (m *Manager) Subscribe() bool {
	m.mu.Lock()

	if !m.target.CompareAndSwapStatus(Idle, Active) {
		m.resubscribed = true
		m.mu.Unlock()
		m.debugLog("subscribe: already active")
		return false
	}

	prev := m.done
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := m.config.Clock.Ticker(m.config.Interval)

	m.cancel = cancel
	m.done = done
	m.resubscribed = false
	cb := m.onStatusChange
	m.mu.Unlock()

	go func() {
		defer close(done)
		defer ticker.Stop()

		// A loop that stopped itself may still be returning.
		if prev != nil {
			<-prev
		}
		m.run(ctx, ticker, done)
	}()

	m.debugLog("subscribe: loop started", "interval", m.config.Interval)
	if cb != nil {
		cb(m.uri, Active)
	}
	return true
}

// Unsubscribe stops the push loop and waits for it to exit.
// It is a no-op while Idle and must not be called from the Notifier.
func (m *Manager) Unsubscribe() {
	m.mu.Lock()

	if !m.target.CompareAndSwapStatus(Active, Idle) {
		m.mu.Unlock()
		m.debugLog("unsubscribe: already idle")
		return
	}

	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.resubscribed = false
	cb := m.onStatusChange
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	m.debugLog("unsubscribe: loop stopped")
	if cb != nil {
		cb(m.uri, Idle)
	}
}

// Close stops the loop if it is running.
func (m *Manager) Close() {
	m.Unsubscribe()
}

// Wait blocks until the current loop, if any, has exited.
func (m *Manager) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (m *Manager) run(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Both cases may be ready at once.
		if ctx.Err() != nil {
			return
		}

		if !m.tick(ctx, done) {
			return
		}
	}
}

// tick refreshes and pushes once. It returns false when the loop must exit.
func (m *Manager) tick(ctx context.Context, done chan struct{}) bool {
	m.mu.Lock()
	if m.done != done || m.target.Status() != Active {
		m.mu.Unlock()
		return false
	}
	m.resubscribed = false
	m.mu.Unlock()

	reading := m.target.Refresh()
	delivery, err := m.notifier.NotifyObservers(ctx, m.uri, m.config.QoS)

	m.mu.Lock()
	pushCb := m.onPush
	m.mu.Unlock()
	if pushCb != nil {
		pushCb(PushResult{URI: m.uri, Reading: reading, Delivery: delivery, Err: err})
	}

	if err != nil {
		m.warnLog("push failed", "error", err)
		return true
	}
	if delivery != NoObservers {
		return true
	}

	m.mu.Lock()
	// Stopped or superseded while pushing.
	if ctx.Err() != nil || m.done != done {
		m.mu.Unlock()
		return false
	}
	if m.resubscribed {
		m.resubscribed = false
		m.mu.Unlock()
		m.debugLog("push found no observers but a subscribe arrived; continuing")
		return true
	}
	if !m.target.CompareAndSwapStatus(Active, Idle) {
		m.mu.Unlock()
		return false
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	cb := m.onStatusChange
	m.mu.Unlock()

	m.debugLog("no observers remain; loop stopped")
	if cb != nil {
		cb(m.uri, Idle)
	}
	return false
}

func (m *Manager) debugLog(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, append([]any{"uri", m.uri}, args...)...)
	}
}

func (m *Manager) warnLog(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Warn(msg, append([]any{"uri", m.uri}, args...)...)
	}
}
