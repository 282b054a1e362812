package focus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"blitzit/internal/model"
)

// TickSource produces the one-second ticks for a running session. The stop
// function releases the underlying timer.
type TickSource func() (ticks <-chan time.Time, stop func())

// SecondTicker is the production tick source.
func SecondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// Manager keeps one focus slot per owner and drives the running session of
// each slot from its own tick source.
type Manager struct {
	mu        sync.Mutex
	slots     map[uuid.UUID]*slot
	newTicker TickSource
}

type slot struct {
	mu      sync.Mutex
	session *Session
	stop    chan struct{}
	done    chan struct{}
}

func NewManager(ticks TickSource) *Manager {
	if ticks == nil {
		ticks = SecondTicker
	}
	return &Manager{
		slots:     make(map[uuid.UUID]*slot),
		newTicker: ticks,
	}
}

func (m *Manager) slot(owner uuid.UUID) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[owner]
	if !ok {
		s = &slot{}
		m.slots[owner] = s
	}
	return s
}

// Start replaces the owner's session with a new paused one for t. The
// previous session's tick source is stopped first; its final state is
// returned so the caller can persist it.
func (m *Manager) Start(owner uuid.UUID, t model.Task) (previous *State, current State) {
	s := m.slot(owner)
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		prev := s.session.Snapshot()
		previous = &prev
	}
	s.session = StartSession(t)
	return previous, s.session.Snapshot()
}

// Toggle pauses or resumes the owner's session. ok is false when idle.
func (m *Manager) Toggle(owner uuid.UUID) (state State, ok bool) {
	s := m.slot(owner)

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return State{Paused: true}, false
	}
	if s.session.Paused {
		s.session.TogglePause()
		s.run(m.newTicker)
		s.mu.Unlock()
	} else {
		s.mu.Unlock()
		s.halt()
	}
	return m.Snapshot(owner)
}

// Snapshot returns the owner's current session state.
func (m *Manager) Snapshot(owner uuid.UUID) (State, bool) {
	s := m.slot(owner)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return State{Paused: true}, false
	}
	return s.session.Snapshot(), true
}

// End stops and discards the owner's session, returning its final state.
func (m *Manager) End(owner uuid.UUID) (State, bool) {
	s := m.slot(owner)
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return State{Paused: true}, false
	}
	final := s.session.Snapshot()
	s.session = nil
	return final, true
}

// Shutdown stops every running tick source.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	slots := make([]*slot, 0, len(m.slots))
	for _, s := range m.slots {
		slots = append(slots, s)
	}
	m.mu.Unlock()

	for _, s := range slots {
		s.halt()
	}
}

// run starts the tick loop. Caller holds s.mu.
func (s *slot) run(newTicker TickSource) {
	if s.stop != nil {
		return
	}
	ticks, stopTicker := newTicker()
	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done

	go func() {
		defer close(done)
		defer stopTicker()
		for {
			select {
			case <-ticks:
				s.mu.Lock()
				s.session.Tick()
				s.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

// halt stops the tick loop, waits for it to exit and pauses the session.
// Ticks already received are applied first. Caller must not hold s.mu.
func (s *slot) halt() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	if s.session != nil {
		s.session.Paused = true
	}
	s.mu.Unlock()
}
