package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/storage"
)

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

// fireAll runs every timer callback, stopped or not, to mimic a late fire.
func (c *fakeClock) fireAll() {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

func sampleSnapshot(step int) Snapshot {
	f := form.New()
	f.Role = form.RoleHomeowner
	f.Location = "Austin, TX"
	return Snapshot{FormData: f, AnalysisResults: analysis.NewResults(), CurrentStep: step}
}

func TestPendingAbsent(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), nil)
	snap, err := m.Pending(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveThenPending(t *testing.T) {
	ctx := context.Background()
	m := NewManager(storage.NewMemoryStore(), nil)
	want := sampleSnapshot(3)
	want.ActiveProjectID = "proj_1"
	require.NoError(t, m.Save(ctx, want))

	got, err := m.Pending(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.CurrentStep)
	assert.Equal(t, "proj_1", got.ActiveProjectID)
	assert.Equal(t, "Austin, TX", got.FormData.Location)
	assert.Len(t, got.AnalysisResults, len(analysis.AllKeys))
}

func TestPendingDiscardsCorruptBlob(t *testing.T) {
	ctx := context.Background()
	tests := map[string]string{
		"not json":      `{"formData":`,
		"missing form":  `{"analysisResults":{},"currentStep":1}`,
		"step too high": `{"formData":{},"analysisResults":{},"currentStep":9}`,
		"bad role":      `{"formData":{"role":"Astronaut"},"analysisResults":{},"currentStep":1}`,
	}
	for name, blob := range tests {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.Save(ctx, storage.SessionKey, []byte(blob)))
			m := NewManager(store, nil)

			snap, err := m.Pending(ctx)
			require.NoError(t, err)
			assert.Nil(t, snap)

			_, err = store.Load(ctx, storage.SessionKey)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := NewManager(store, nil)
	require.NoError(t, m.Save(ctx, sampleSnapshot(1)))
	require.NoError(t, m.Discard(ctx))
	snap, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestAutosaverDebounces(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := NewManager(store, nil)
	clock := &fakeClock{}

	var mu sync.Mutex
	step := 1
	snapshot := func() Snapshot {
		mu.Lock()
		defer mu.Unlock()
		return sampleSnapshot(step)
	}
	a := NewAutosaver(m, snapshot, nil, WithAfterFunc(clock.AfterFunc), WithDelay(time.Second))
	assert.Equal(t, StatusIdle, a.Status())

	a.Touch()
	mu.Lock()
	step = 2
	mu.Unlock()
	a.Touch()
	assert.Equal(t, StatusSaving, a.Status())
	require.Len(t, clock.timers, 2)
	assert.True(t, clock.timers[0].stopped)
	assert.Equal(t, time.Second, clock.delays[1])

	clock.fireAll()
	assert.Equal(t, StatusSaved, a.Status())
	assert.Equal(t, 1, store.Saves())

	got, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentStep)
}

func TestAutosaverCancelDropsPendingWrite(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := &fakeClock{}
	a := NewAutosaver(NewManager(store, nil), func() Snapshot { return sampleSnapshot(1) }, nil,
		WithAfterFunc(clock.AfterFunc))

	a.Touch()
	a.Cancel()
	clock.fireAll()
	assert.Equal(t, 0, store.Saves())
	assert.Equal(t, StatusIdle, a.Status())
}

func TestAutosaverDisabledIgnoresTouch(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := &fakeClock{}
	a := NewAutosaver(NewManager(store, nil), func() Snapshot { return sampleSnapshot(1) }, nil,
		WithAfterFunc(clock.AfterFunc))
	a.Disable()
	a.Touch()
	assert.Empty(t, clock.timers)
	assert.Equal(t, StatusIdle, a.Status())
}

func TestAutosaverFlush(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	clock := &fakeClock{}
	var seen []Status
	a := NewAutosaver(NewManager(store, nil), func() Snapshot { return sampleSnapshot(4) }, nil,
		WithAfterFunc(clock.AfterFunc), WithStatusHook(func(s Status) { seen = append(seen, s) }))

	require.NoError(t, a.Flush(ctx))
	assert.Equal(t, 0, store.Saves())

	a.Touch()
	require.NoError(t, a.Flush(ctx))
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, StatusSaved, a.Status())

	// The superseded timer must not write again.
	clock.fireAll()
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, []Status{StatusSaving, StatusSaved}, seen)
}

func TestAutosaverCancelWaitsForInFlightWrite(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	m := NewManager(store, nil)
	clock := &fakeClock{}

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	snapshot := func() Snapshot {
		once.Do(func() { close(started) })
		<-release
		return sampleSnapshot(3)
	}
	a := NewAutosaver(m, snapshot, nil, WithAfterFunc(clock.AfterFunc))

	a.Touch()
	go clock.fireAll()
	<-started

	cancelled := make(chan struct{})
	go func() {
		a.Cancel()
		close(cancelled)
	}()
	assert.Never(t, func() bool {
		select {
		case <-cancelled:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("Cancel did not return")
	}

	// Discarding after Cancel leaves nothing behind.
	require.NoError(t, m.Discard(ctx))
	snap, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Equal(t, 1, store.Saves())
	assert.Equal(t, StatusIdle, a.Status())
}
