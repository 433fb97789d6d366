package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/christopherlanz-debug/dsV2/internal/events"
)

type runnerHandle struct {
	runner *Runner
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns one Runner per active screen. Screens are independent units
// of concurrency: each runner is a single goroutine and runners never share
// mutable state.
type Manager struct {
	lib          Library
	display      Display
	bus          *events.Bus
	clock        Clock
	logger       zerolog.Logger
	resolveEvery time.Duration

	mu      sync.Mutex
	ctx     context.Context
	runners map[int]*runnerHandle
}

func NewManager(lib Library, display Display, bus *events.Bus, clock Clock, resolveEvery time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		lib:          lib,
		display:      display,
		bus:          bus,
		clock:        clock,
		logger:       logger,
		resolveEvery: resolveEvery,
		runners:      make(map[int]*runnerHandle),
	}
}

// Run parents every runner to ctx and blocks until cancellation, then waits
// for all runners to drain.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()

	<-ctx.Done()

	m.mu.Lock()
	handles := make([]*runnerHandle, 0, len(m.runners))
	for _, h := range m.runners {
		handles = append(handles, h)
	}
	m.runners = make(map[int]*runnerHandle)
	m.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		<-h.done
	}
	return ctx.Err()
}

// StartScreen spins up the evaluation loop for a screen. Starting an already
// running screen is a no-op.
func (m *Manager) StartScreen(screenID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.runners[screenID]; running {
		return
	}
	parent := m.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	r := NewRunner(screenID, m.lib, m.display, m.bus, m.clock, m.resolveEvery, m.logger)
	h := &runnerHandle{runner: r, cancel: cancel, done: make(chan struct{})}
	m.runners[screenID] = h

	go func() {
		defer close(h.done)
		r.Run(ctx)
	}()
}

// StopScreen cancels both of the screen's timers immediately and drops the
// runner; no dangling timer keeps firing against a removed screen.
func (m *Manager) StopScreen(screenID int) {
	m.mu.Lock()
	h, ok := m.runners[screenID]
	delete(m.runners, screenID)
	m.mu.Unlock()

	if !ok {
		return
	}
	h.cancel()
	<-h.done
}

// Refresh forces immediate re-resolution of one screen.
func (m *Manager) Refresh(screenID int) {
	if h := m.handle(screenID); h != nil {
		h.runner.Refresh()
	}
}

// Pause freezes playback on a screen.
func (m *Manager) Pause(screenID int) {
	if h := m.handle(screenID); h != nil {
		h.runner.Pause()
	}
}

// Resume continues playback on a screen.
func (m *Manager) Resume(screenID int) {
	if h := m.handle(screenID); h != nil {
		h.runner.Resume()
	}
}

// ScreenState reports the screen's last published sequencer state. The
// second return is false when the screen has no runner.
func (m *Manager) ScreenState(screenID int) (State, bool) {
	h := m.handle(screenID)
	if h == nil {
		return StateIdle, false
	}
	return h.runner.State(), true
}

// PlaylistChanged fans a playlist mutation out to every runner; runners not
// playing that playlist ignore it.
func (m *Manager) PlaylistChanged(playlistID int) {
	m.mu.Lock()
	handles := make([]*runnerHandle, 0, len(m.runners))
	for _, h := range m.runners {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.runner.PlaylistChanged(playlistID)
	}
}

// ScheduleChanged nudges every runner to re-resolve; eligibility windows may
// have opened or closed.
func (m *Manager) ScheduleChanged() {
	m.mu.Lock()
	handles := make([]*runnerHandle, 0, len(m.runners))
	for _, h := range m.runners {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.runner.Refresh()
	}
}

func (m *Manager) handle(screenID int) *runnerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runners[screenID]
}
