package viewer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/brainview/internal/butterfly"
	"github.com/banshee-data/brainview/internal/timeutil"
)

// Selection is a copy of a session's interactive state.
type Selection struct {
	TimeIndex int  `json:"time_index"`
	Source    *int `json:"source,omitempty"`
	Realtime  bool `json:"realtime"`
}

func (s Selection) clone() Selection {
	if s.Source != nil {
		n := *s.Source
		s.Source = &n
	}
	return s
}

// Session is one user's selection. It is safe for concurrent use.
type Session struct {
	ID string

	mu       sync.Mutex
	sel      Selection
	lastSeen time.Time
}

// NewSession starts a session at time index 0 with nothing selected.
func (v *Viewer) NewSession() *Session {
	return &Session{
		ID:  uuid.New().String(),
		sel: Selection{Realtime: v.opts.Realtime},
	}
}

// Snapshot returns the current selection.
func (s *Session) Snapshot() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.clone()
}

func (s *Session) update(fn func(*Selection)) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.sel)
	return s.sel.clone()
}

// ErrNoTimes is returned for time events on a dataset without time points.
var ErrNoTimes = errors.New("dataset has no time points")

// Click selects the time point nearest t and the given source, and leaves
// realtime mode. A nil source clears the source selection, as happens when
// the click lands on a summary trace.
func (v *Viewer) Click(s *Session, t float64, source *int) (Selection, error) {
	if v.data.NumTimes() == 0 {
		return s.Snapshot(), ErrNoTimes
	}
	if math.IsNaN(t) {
		return s.Snapshot(), errors.New("click time is NaN")
	}
	if source != nil && !v.data.ValidSource(*source) {
		return s.Snapshot(), fmt.Errorf("source %d out of range [0, %d)", *source, v.data.NumSources())
	}
	idx := butterfly.NearestTimeIndex(v.data.Times, t)
	return s.update(func(sel *Selection) {
		sel.TimeIndex = idx
		sel.Source = nil
		if source != nil {
			n := *source
			sel.Source = &n
		}
		sel.Realtime = false
	}), nil
}

// Hover moves the time selection to the point nearest t, but only in
// realtime mode. The second result reports whether the hover was applied.
func (v *Viewer) Hover(s *Session, t float64) (Selection, bool) {
	if v.data.NumTimes() == 0 || math.IsNaN(t) {
		return s.Snapshot(), false
	}
	idx := butterfly.NearestTimeIndex(v.data.Times, t)
	applied := false
	sel := s.update(func(sel *Selection) {
		if sel.Realtime {
			sel.TimeIndex = idx
			applied = true
		}
	})
	return sel, applied
}

// SetRealtime switches hover tracking on or off.
func (v *Viewer) SetRealtime(s *Session, on bool) Selection {
	return s.update(func(sel *Selection) { sel.Realtime = on })
}

// SelectTime jumps straight to a time index.
func (v *Viewer) SelectTime(s *Session, idx int) (Selection, error) {
	if !v.data.ValidTime(idx) {
		return s.Snapshot(), fmt.Errorf("time index %d out of range [0, %d)", idx, v.data.NumTimes())
	}
	return s.update(func(sel *Selection) { sel.TimeIndex = idx }), nil
}

// Info returns the info panel lines for the session.
func (v *Viewer) Info(s *Session) []string {
	return v.InfoFor(s.Snapshot())
}

// InfoFor returns the info panel lines for a selection. Out-of-range
// indices are left out.
func (v *Viewer) InfoFor(sel Selection) []string {
	var info []string
	if v.data.ValidTime(sel.TimeIndex) {
		info = append(info, fmt.Sprintf("Time: %.3f s (index %d)", v.data.Times[sel.TimeIndex], sel.TimeIndex))
	}
	if sel.Source != nil && v.data.ValidSource(*sel.Source) {
		c := v.data.Coords[*sel.Source]
		info = append(info,
			fmt.Sprintf("Selected source: %d", *sel.Source),
			fmt.Sprintf("Coordinates: (%.3f, %.3f, %.3f) m", c.X, c.Y, c.Z))
	}
	if len(info) == 0 {
		return []string{"Click on the plots to interact"}
	}
	return info
}

// InfoText joins the info lines the way the panel shows them.
func InfoText(lines []string) string {
	return strings.Join(lines, " | ")
}

// Store keeps the sessions of a running dashboard and forgets the ones that
// have been idle for longer than the configured limit.
type Store struct {
	viewer *Viewer
	clock  timeutil.Clock
	idle   time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty store. A non-positive idle limit keeps sessions
// forever.
func NewStore(v *Viewer, clock timeutil.Clock, idle time.Duration) *Store {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Store{viewer: v, clock: clock, idle: idle, sessions: make(map[string]*Session)}
}

// Acquire returns the session with the given id, or a fresh one when the id
// is empty or unknown. The session's idle timer is reset.
func (st *Store) Acquire(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = st.viewer.NewSession()
		st.sessions[s.ID] = s
	}
	s.mu.Lock()
	s.lastSeen = st.clock.Now()
	s.mu.Unlock()
	return s
}

// Lookup returns an existing session without creating one.
func (st *Store) Lookup(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Prune drops idle sessions and returns how many were removed.
func (st *Store) Prune() int {
	if st.idle <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := st.clock.Since(s.lastSeen)
		s.mu.Unlock()
		if idle > st.idle {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes idle sessions every interval until done is closed.
func (st *Store) Run(done <-chan struct{}, interval time.Duration) {
	ticker := st.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C():
			if n := st.Prune(); n > 0 {
				logf("pruned %d idle sessions", n)
			}
		}
	}
}
