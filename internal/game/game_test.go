package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPicker always picks the same slot among the empty cells
type fixedPicker struct{ slot int }

func (p fixedPicker) IntN(n int) int {
	if p.slot >= n {
		return n - 1
	}
	return p.slot
}

// countingPicker records every n it was asked about
type countingPicker struct {
	mu    sync.Mutex
	calls []int
}

func (p *countingPicker) IntN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, n)
	return 0
}

func TestTopRowWin(t *testing.T) {
	g := FromBoard(Board{X, X, Empty, Empty, O, Empty, Empty, Empty, Empty}, X)

	require.True(t, g.Play(2))
	snap := g.Snapshot()
	assert.Equal(t, Won, snap.State)
	assert.Equal(t, X, snap.Winner)
	assert.Equal(t, "X Wins!", snap.Message)

	// Terminal state rejects moves until reset
	assert.False(t, g.Play(3))
	_, ok := g.BotMove(fixedPicker{})
	assert.False(t, ok)
	assert.Equal(t, Empty, g.Snapshot().Board[3])

	g.Reset()
	assert.True(t, g.Play(3))
}

func TestEvaluateAllLines(t *testing.T) {
	for _, l := range lines {
		var b Board
		for _, i := range l {
			b[i] = O
		}
		state, winner := Evaluate(b)
		assert.Equal(t, Won, state, "line %v", l)
		assert.Equal(t, O, winner)
	}
}

func TestFullBoardWithoutLineIsDraw(t *testing.T) {
	b := Board{
		X, O, X,
		X, O, O,
		O, X, X,
	}
	state, winner := Evaluate(b)
	assert.Equal(t, Draw, state)
	assert.Equal(t, Empty, winner)

	// Reaching the draw through a final move
	g := FromBoard(Board{X, O, X, X, O, O, O, X, Empty}, X)
	require.True(t, g.Play(8))
	assert.Equal(t, Draw, g.Snapshot().State)
	assert.Equal(t, "It's a Draw!", g.Snapshot().Message)
}

func TestInvalidMovesAreNoOps(t *testing.T) {
	g := New()
	assert.Equal(t, "Player vs Bot", g.Snapshot().Message)

	assert.False(t, g.Play(-1))
	assert.False(t, g.Play(9))

	require.True(t, g.Play(4))
	assert.Equal(t, O, g.Snapshot().Turn)

	// Out of turn
	assert.False(t, g.Play(0))
	// Occupied
	idx, ok := g.BotMove(fixedPicker{slot: 0})
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.False(t, g.Play(0))
	assert.False(t, g.Play(4))
	assert.Equal(t, "Your Turn (X)", g.Snapshot().Message)
}

func TestBotPicksAmongEmptyCells(t *testing.T) {
	p := &countingPicker{}
	g := FromBoard(Board{X, Empty, O, Empty, X, Empty, Empty, Empty, Empty}, O)

	idx, ok := g.BotMove(p)
	require.True(t, ok)
	assert.Equal(t, 1, idx, "slot 0 of the empty cells is index 1")
	assert.Equal(t, []int{6}, p.calls)
}

func TestSessionBotRepliesAfterDelay(t *testing.T) {
	updates := make(chan Snapshot, 8)
	s := NewSession(10*time.Millisecond, fixedPicker{}, func(snap Snapshot) { updates <- snap })
	defer s.Close()

	require.True(t, s.Move(4))
	first := <-updates
	assert.Equal(t, O, first.Turn)
	assert.Equal(t, "Bot is thinking...", first.Message)

	// Still the bot's turn until it replies
	assert.False(t, s.Move(0))

	select {
	case reply := <-updates:
		assert.Equal(t, O, reply.Board[0])
		assert.Equal(t, X, reply.Turn)
	case <-time.After(time.Second):
		t.Fatal("bot never replied")
	}
}

func TestSessionResetDropsPendingBotMove(t *testing.T) {
	updates := make(chan Snapshot, 8)
	s := NewSession(30*time.Millisecond, fixedPicker{}, func(snap Snapshot) { updates <- snap })
	defer s.Close()

	require.True(t, s.Move(4))
	<-updates
	s.Reset()
	reset := <-updates
	assert.Equal(t, Board{}, reset.Board)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, Board{}, s.Snapshot().Board)
	assert.Empty(t, updates)
}

func TestSessionCloseIgnoresLaterInput(t *testing.T) {
	s := NewSession(time.Millisecond, nil, nil)
	s.Close()
	assert.False(t, s.Move(0))
	s.Reset()
	assert.Equal(t, Board{}, s.Snapshot().Board)
}
