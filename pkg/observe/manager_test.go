package observe_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ocf-bpm/bpm-go/pkg/observe"
	"github.com/ocf-bpm/bpm-go/pkg/observe/mocks"
	"github.com/ocf-bpm/bpm-go/pkg/sensor"
	"github.com/ocf-bpm/bpm-go/pkg/wire"
)

const testURI = "/BloodPressureMonitorAMResURI"

// fakeTarget is a mutex-guarded reading plus status.
type fakeTarget struct {
	mu        sync.Mutex
	status    observe.Status
	reading   sensor.Reading
	src       sensor.Source
	refreshes int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{src: sensor.NewSeededRandomSource(7, 9)}
}

func (f *fakeTarget) Refresh() sensor.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reading = f.src.Poll()
	f.refreshes++
	return f.reading
}

func (f *fakeTarget) Status() observe.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeTarget) CompareAndSwapStatus(old, next observe.Status) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status != old {
		return false
	}
	f.status = next
	return true
}

func (f *fakeTarget) Refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

// countingNotifier returns a configurable delivery and counts pushes.
type countingNotifier struct {
	pushes   atomic.Int64
	delivery atomic.Uint32
	err      atomic.Pointer[error]
}

func (n *countingNotifier) NotifyObservers(_ context.Context, _ string, _ wire.QoS) (observe.Delivery, error) {
	n.pushes.Add(1)
	if e := n.err.Load(); e != nil {
		return observe.Delivered, *e
	}
	return observe.Delivery(n.delivery.Load()), nil
}

func newTestManager(target observe.Target, notifier observe.Notifier, clk clock.Clock) *observe.Manager {
	return observe.NewManager(testURI, target, notifier, observe.Config{
		Interval: observe.DefaultInterval,
		QoS:      wire.QoSLow,
		Clock:    clk,
	})
}

func eventuallyEqual(t *testing.T, want int64, get func() int64) {
	t.Helper()
	assert.Eventually(t, func() bool { return get() == want }, time.Second, time.Millisecond,
		"expected %d, got %d", want, get())
}

// advance moves the mock clock one interval and waits for the push.
func advance(t *testing.T, clk *clock.Mock, n *countingNotifier, want int64) {
	t.Helper()
	clk.Add(observe.DefaultInterval)
	eventuallyEqual(t, want, n.pushes.Load)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "IDLE", observe.Idle.String())
	assert.Equal(t, "ACTIVE", observe.Active.String())
	assert.Equal(t, "UNKNOWN", observe.Status(9).String())
	assert.Equal(t, "NO_OBSERVERS", observe.NoObservers.String())
	assert.Equal(t, "SUBSCRIBE", observe.Subscribe.String())
}

func TestNewManagerDefaults(t *testing.T) {
	m := observe.NewManager(testURI, newFakeTarget(), &countingNotifier{}, observe.Config{})
	assert.Equal(t, testURI, m.URI())
	assert.Equal(t, observe.Idle, m.Status())
}

func TestSubscribePushesEveryInterval(t *testing.T) {
	clk := clock.NewMock()
	target := newFakeTarget()
	n := &countingNotifier{}
	m := newTestManager(target, n, clk)

	require.True(t, m.Subscribe())
	assert.Equal(t, observe.Active, m.Status())

	// Nothing before the first interval elapses.
	clk.Add(observe.DefaultInterval / 2)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, int64(0), n.pushes.Load())

	clk.Add(observe.DefaultInterval / 2)
	eventuallyEqual(t, 1, n.pushes.Load)
	advance(t, clk, n, 2)
	advance(t, clk, n, 3)

	assert.Equal(t, 3, target.Refreshes(), "one refresh per push")

	m.Unsubscribe()
	assert.Equal(t, observe.Idle, m.Status())

	for i := 0; i < 3; i++ {
		clk.Add(observe.DefaultInterval)
	}
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, int64(3), n.pushes.Load(), "no push after unsubscribe")
	assert.Equal(t, 3, target.Refreshes())
}

func TestSubscribeIsIdempotent(t *testing.T) {
	clk := clock.NewMock()
	target := newFakeTarget()
	n := &countingNotifier{}
	m := newTestManager(target, n, clk)

	require.True(t, m.Subscribe())
	assert.False(t, m.Subscribe(), "second subscribe must not start a loop")
	assert.False(t, m.Subscribe())

	advance(t, clk, n, 1)
	advance(t, clk, n, 2)
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, int64(2), n.pushes.Load())
	assert.Equal(t, 2, target.Refreshes(), "one reading update per interval")

	m.Unsubscribe()
}

func TestUnsubscribeWhileIdleIsNoop(t *testing.T) {
	target := mocks.NewMockTarget(t)
	notifier := mocks.NewMockNotifier(t)
	target.EXPECT().CompareAndSwapStatus(observe.Active, observe.Idle).Return(false).Once()
	target.EXPECT().Status().Return(observe.Idle).Once()

	var changes atomic.Int32
	m := newTestManager(target, notifier, clock.NewMock())
	m.OnStatusChange(func(string, observe.Status) { changes.Add(1) })

	m.Unsubscribe()

	assert.Equal(t, observe.Idle, m.Status())
	assert.Equal(t, int32(0), changes.Load())
}

func TestNoObserversStopsLoop(t *testing.T) {
	clk := clock.NewMock()
	target := newFakeTarget()
	n := &countingNotifier{}
	n.delivery.Store(uint32(observe.NoObservers))
	m := newTestManager(target, n, clk)

	var mu sync.Mutex
	var transitions []observe.Status
	m.OnStatusChange(func(uri string, s observe.Status) {
		assert.Equal(t, testURI, uri)
		mu.Lock()
		transitions = append(transitions, s)
		mu.Unlock()
	})

	require.True(t, m.Subscribe())
	advance(t, clk, n, 1)

	assert.Eventually(t, func() bool { return m.Status() == observe.Idle }, time.Second, time.Millisecond)
	m.Wait()

	clk.Add(3 * observe.DefaultInterval)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, int64(1), n.pushes.Load(), "loop must not push after self-stop")

	// A later subscribe restarts the loop.
	n.delivery.Store(uint32(observe.Delivered))
	require.True(t, m.Subscribe())
	advance(t, clk, n, 2)
	assert.Equal(t, observe.Active, m.Status())

	m.Unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []observe.Status{observe.Active, observe.Idle, observe.Active, observe.Idle}, transitions)
}

func TestPushErrorKeepsLoopRunning(t *testing.T) {
	clk := clock.NewMock()
	target := newFakeTarget()
	n := &countingNotifier{}
	boom := errors.New("send failed")
	n.err.Store(&boom)
	m := newTestManager(target, n, clk)

	var results []observe.PushResult
	var mu sync.Mutex
	m.OnPush(func(r observe.PushResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	m.Subscribe()
	advance(t, clk, n, 1)
	advance(t, clk, n, 2)

	assert.Equal(t, observe.Active, m.Status())
	m.Unsubscribe()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, boom)
		assert.NoError(t, r.Reading.Validate())
	}
}

func TestLoopUsesConfiguredQoS(t *testing.T) {
	clk := clock.NewMock()
	target := newFakeTarget()
	notifier := mocks.NewMockNotifier(t)

	pushed := make(chan struct{}, 1)
	notifier.EXPECT().NotifyObservers(mock.Anything, testURI, wire.QoSHigh).
		RunAndReturn(func(context.Context, string, wire.QoS) (observe.Delivery, error) {
			pushed <- struct{}{}
			return observe.Delivered, nil
		}).Once()

	m := observe.NewManager(testURI, target, notifier, observe.Config{QoS: wire.QoSHigh, Clock: clk})
	m.Subscribe()
	clk.Add(observe.DefaultInterval)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("no push")
	}
	m.Close()
}

func TestHandleEvents(t *testing.T) {
	clk := clock.NewMock()
	m := newTestManager(newFakeTarget(), &countingNotifier{}, clk)

	require.NoError(t, m.Handle(observe.Subscribe))
	assert.Equal(t, observe.Active, m.Status())
	require.NoError(t, m.Handle(observe.Unsubscribe))
	assert.Equal(t, observe.Idle, m.Status())
	assert.ErrorIs(t, m.Handle(observe.Event(0)), observe.ErrUnknownEvent)
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	target := newFakeTarget()
	n := &countingNotifier{}
	m := observe.NewManager(testURI, target, n, observe.Config{Interval: time.Millisecond})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if (i+j)%2 == 0 {
					m.Subscribe()
				} else {
					m.Unsubscribe()
				}
			}
		}(i)
	}
	wg.Wait()

	m.Close()
	m.Wait()
	assert.Equal(t, observe.Idle, m.Status())

	before := n.pushes.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, before, n.pushes.Load(), "no loop may survive Close")
}
