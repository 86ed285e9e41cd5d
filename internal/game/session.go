package game

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/logger"
)

// Session hosts one game inside a window: it serializes moves and runs the
// bot's reply after a short delay
type Session struct {
	mu       sync.Mutex
	game     *Game
	delay    time.Duration
	picker   Picker
	onChange func(Snapshot)

	// generation invalidates bot replies scheduled before a reset or close
	generation uint64
	timer      *time.Timer
	closed     bool
}

// NewSession starts a game. onChange, if set, receives every new state and
// is invoked without the session lock held.
func NewSession(delay time.Duration, picker Picker, onChange func(Snapshot)) *Session {
	if picker == nil {
		picker = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	return &Session{
		game:     New(),
		delay:    delay,
		picker:   picker,
		onChange: onChange,
	}
}

// Move plays the human's mark; invalid moves are silent no-ops
func (s *Session) Move(index int) bool {
	s.mu.Lock()
	if s.closed || !s.game.Play(index) {
		s.mu.Unlock()
		return false
	}

	snap := s.game.Snapshot()
	if snap.State == InProgress {
		gen := s.generation
		s.timer = time.AfterFunc(s.delay, func() { s.botTurn(gen) })
	}
	s.mu.Unlock()

	s.notify(snap)
	return true
}

func (s *Session) botTurn(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	index, ok := s.game.BotMove(s.picker)
	snap := s.game.Snapshot()
	s.timer = nil
	s.mu.Unlock()

	if !ok {
		return
	}
	logger.WithComponent("game").Debug().Int("cell", index).Str("state", string(snap.State)).Msg("Bot moved")
	s.notify(snap)
}

// Reset starts over and drops any pending bot reply
func (s *Session) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.game.Reset()
	snap := s.game.Snapshot()
	s.mu.Unlock()

	s.notify(snap)
}

// Close stops the session; later moves and timers are ignored
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelLocked()
}

func (s *Session) cancelLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
