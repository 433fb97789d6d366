package playback

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/christopherlanz-debug/dsV2/internal/events"
	"github.com/christopherlanz-debug/dsV2/internal/model"
	"github.com/christopherlanz-debug/dsV2/internal/playlist"
	"github.com/christopherlanz-debug/dsV2/internal/schedule"
)

// Library provides the read surface playback needs. Implementations sit over
// the persistence store and the playlist order store.
type Library interface {
	Screen(id int) (model.Screen, error)
	Playlist(id int) (model.Playlist, error)
	ActiveSchedules(playlistID int) ([]model.PlaylistSchedule, error)
	Snapshot(playlistID int) (playlist.Snapshot, error)
}

// Display receives the sequencer's sole outward side effect: render this
// content item on this screen for this many seconds.
type Display interface {
	Display(screenID, contentItemID, seconds int) error
}

// Clock supplies the current localized time. Resolution happens in the
// screen's configured zone; conversion is the clock's concern.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in local time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type commandKind int

const (
	cmdRefresh commandKind = iota
	cmdPause
	cmdResume
	cmdPlaylistChanged
)

type command struct {
	kind       commandKind
	playlistID int
}

// Runner owns the evaluation loop for one screen: a coarse re-resolution
// ticker, a per-item display timer, and a command channel. All three feed a
// single goroutine, so a resolution change and an item advance never race
// within one screen.
type Runner struct {
	screenID int
	lib      Library
	display  Display
	bus      *events.Bus
	clock    Clock
	logger   zerolog.Logger

	resolveEvery time.Duration
	seq          *Sequencer

	commands chan command

	itemTimer    *time.Timer
	timerArmed   bool
	itemDeadline time.Time
	lastState    State

	// published mirrors lastState for readers outside the loop goroutine
	published atomic.Int32
}

// State reports the last published sequencer state. Safe to call from any
// goroutine.
func (r *Runner) State() State {
	return State(r.published.Load())
}

// NewRunner creates a runner for one screen. resolveEvery must not exceed a
// minute; schedule windows are minute-granular.
func NewRunner(screenID int, lib Library, display Display, bus *events.Bus, clock Clock, resolveEvery time.Duration, logger zerolog.Logger) *Runner {
	if resolveEvery <= 0 || resolveEvery > time.Minute {
		resolveEvery = time.Minute
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Runner{
		screenID:     screenID,
		lib:          lib,
		display:      display,
		bus:          bus,
		clock:        clock,
		logger:       logger.With().Int("screen_id", screenID).Logger(),
		resolveEvery: resolveEvery,
		seq:          NewSequencer(nil),
		commands:     make(chan command, 16),
		lastState:    StateIdle,
	}
}

// Refresh forces an immediate re-resolution, used when an operator changes
// the screen's assignment and expects it to take effect without waiting for
// the next poll.
func (r *Runner) Refresh() {
	select {
	case r.commands <- command{kind: cmdRefresh}:
	default:
	}
}

// Pause freezes playback on the current item.
func (r *Runner) Pause() {
	select {
	case r.commands <- command{kind: cmdPause}:
	default:
	}
}

// Resume continues playback mid-item.
func (r *Runner) Resume() {
	select {
	case r.commands <- command{kind: cmdResume}:
	default:
	}
}

// PlaylistChanged tells the runner the playlist's item set mutated. Runners
// not currently playing that playlist ignore it.
func (r *Runner) PlaylistChanged(playlistID int) {
	select {
	case r.commands <- command{kind: cmdPlaylistChanged, playlistID: playlistID}:
	default:
	}
}

// Run executes the evaluation loop until context cancellation.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info().Msg("playback runner started")

	ticker := time.NewTicker(r.resolveEvery)
	defer ticker.Stop()

	r.itemTimer = time.NewTimer(time.Hour)
	r.stopItemTimer()
	defer r.itemTimer.Stop()

	r.resolve()

	for {
		select {
		case <-ctx.Done():
			r.seq.Reset()
			r.notifyState()
			r.logger.Info().Msg("playback runner stopped")
			return
		case <-ticker.C:
			r.resolve()
		case <-r.itemTimer.C:
			r.timerArmed = false
			r.advance()
		case cmd := <-r.commands:
			r.handle(cmd)
		}
	}
}

func (r *Runner) handle(cmd command) {
	switch cmd.kind {
	case cmdRefresh:
		r.resolve()
	case cmdPause:
		if r.seq.State() != StatePlaying {
			return
		}
		r.seq.Pause(r.itemDeadline.Sub(r.clock.Now()))
		r.stopItemTimer()
		r.notifyState()
	case cmdResume:
		remaining, ok := r.seq.Resume()
		if !ok {
			return
		}
		r.armItemTimer(remaining)
		r.notifyState()
	case cmdPlaylistChanged:
		if r.seq.PlaylistID() != cmd.playlistID {
			return
		}
		r.applyPlaylistMutation(cmd.playlistID)
	}
}

// resolve re-evaluates which playlist the screen should play. Backend errors
// are fail-static: the sequencer retains its state and resolution retries on
// the next tick, so a transient outage never blanks a screen mid-playback.
func (r *Runner) resolve() {
	screen, err := r.lib.Screen(r.screenID)
	if err != nil {
		r.logger.Error().Err(err).Msg("[playback] resolve: screen fetch failed, keeping state")
		return
	}

	var active []model.PlaylistSchedule
	if screen.AssignedPlaylistID != nil {
		active, err = r.lib.ActiveSchedules(*screen.AssignedPlaylistID)
		if err != nil {
			r.logger.Error().Err(err).Msg("[playback] resolve: schedule fetch failed, keeping state")
			return
		}
	}

	pid, ok := schedule.Resolve(screen.AssignedPlaylistID, active, schedule.InstantFrom(r.clock.Now()))
	if !ok {
		if r.seq.State() != StateIdle {
			r.seq.Reset()
			r.stopItemTimer()
			r.notifyState()
		}
		return
	}

	if pid == r.seq.PlaylistID() {
		// Same playlist; pick up item-set drift missed between mutation events.
		snap, err := r.lib.Snapshot(pid)
		if err == nil && snap.Version != r.seq.Version() {
			r.applySnapshot(snap)
		}
		return
	}

	r.seed(pid)
}

// seed discards the cursor and re-initializes the sequencer on a newly
// resolved playlist. Old indices are never mapped onto the new item set.
func (r *Runner) seed(playlistID int) {
	pl, err := r.lib.Playlist(playlistID)
	if err != nil {
		r.logger.Error().Err(err).Int("playlist_id", playlistID).Msg("[playback] seed: playlist fetch failed, keeping state")
		return
	}
	snap, err := r.lib.Snapshot(playlistID)
	if err != nil {
		r.logger.Error().Err(err).Int("playlist_id", playlistID).Msg("[playback] seed: snapshot failed, keeping state")
		return
	}

	if err := r.seq.Load(playlistID, pl.Loop, pl.Shuffle, snap); err != nil {
		r.reportConfigError(playlistID, err)
		r.stopItemTimer()
		r.notifyState()
		return
	}

	item, _ := r.seq.Current()
	r.show(item)
	r.notifyState()
}

func (r *Runner) advance() {
	item, ok := r.seq.Advance()
	if !ok {
		r.stopItemTimer()
		r.notifyState()
		return
	}
	r.show(item)
}

func (r *Runner) applyPlaylistMutation(playlistID int) {
	snap, err := r.lib.Snapshot(playlistID)
	if err != nil {
		r.logger.Error().Err(err).Int("playlist_id", playlistID).Msg("[playback] snapshot fetch failed, keeping state")
		return
	}
	r.applySnapshot(snap)
}

func (r *Runner) applySnapshot(snap playlist.Snapshot) {
	wasPaused := r.seq.State() == StatePaused
	item, redisplay, err := r.seq.ApplySnapshot(snap)
	if err != nil {
		r.reportConfigError(r.seq.PlaylistID(), err)
		r.stopItemTimer()
		r.notifyState()
		return
	}
	if redisplay {
		// The displayed item was removed out from under the cursor.
		r.show(item)
		if wasPaused {
			r.notifyState()
		}
		return
	}
	// Current item survived: its remaining display time is not interrupted.
}

// show hands the item to the rendering client and arms the display timer.
func (r *Runner) show(item playlist.Item) {
	if err := r.display.Display(r.screenID, item.ContentItemID, item.Duration); err != nil {
		r.logger.Error().Err(err).Int("content_item_id", item.ContentItemID).Msg("[playback] display command failed")
	}
	r.bus.Publish(events.EventDisplay, events.Payload{
		"screen_id":       r.screenID,
		"content_item_id": item.ContentItemID,
		"seconds":         item.Duration,
	})
	r.armItemTimer(time.Duration(item.Duration) * time.Second)
}

func (r *Runner) armItemTimer(d time.Duration) {
	r.stopItemTimer()
	r.itemDeadline = r.clock.Now().Add(d)
	r.itemTimer.Reset(d)
	r.timerArmed = true
}

func (r *Runner) stopItemTimer() {
	if r.itemTimer == nil {
		return
	}
	if !r.itemTimer.Stop() && r.timerArmed {
		select {
		case <-r.itemTimer.C:
		default:
		}
	}
	r.timerArmed = false
}

func (r *Runner) notifyState() {
	state := r.seq.State()
	if state == r.lastState {
		return
	}
	r.lastState = state
	r.published.Store(int32(state))
	r.bus.Publish(events.EventSequencerState, events.Payload{
		"screen_id": r.screenID,
		"state":     state.String(),
	})
	r.logger.Debug().Str("state", state.String()).Msg("[playback] state change")
}

func (r *Runner) reportConfigError(playlistID int, err error) {
	if !errors.Is(err, ErrEmptyPlaylist) && !errors.Is(err, ErrBadDuration) {
		r.logger.Error().Err(err).Msg("[playback] unexpected sequencer error")
		return
	}
	r.logger.Warn().Err(err).Int("playlist_id", playlistID).Msg("[playback] configuration error, parking idle")
	r.bus.Publish(events.EventConfigError, events.Payload{
		"screen_id":   r.screenID,
		"playlist_id": playlistID,
		"error":       err.Error(),
	})
}
