package game

// Picker chooses an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Picker interface {
	IntN(n int) int
}

// Snapshot is a copy of the game visible to the window body
type Snapshot struct {
	Board   Board  `json:"board"`
	Turn    Mark   `json:"turn"`
	State   State  `json:"state"`
	Winner  Mark   `json:"winner,omitempty"`
	Message string `json:"message"`
}

// Game is the turn-based state machine. It is not safe for concurrent use;
// Session serializes access.
type Game struct {
	board  Board
	turn   Mark
	state  State
	winner Mark
}

// New returns a fresh game with X to move
func New() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// FromBoard resumes a game from an arbitrary position with the given mover
func FromBoard(b Board, turn Mark) *Game {
	g := &Game{board: b, turn: turn}
	g.state, g.winner = Evaluate(b)
	return g
}

// Reset clears the board; allowed at any time
func (g *Game) Reset() {
	g.board = Board{}
	g.turn = Human
	g.state = InProgress
	g.winner = Empty
}

// Play places the human's mark. Moves on occupied cells, out of range, out
// of turn, or after the game ended are ignored and report false.
func (g *Game) Play(index int) bool {
	return g.place(Human, index)
}

// BotMove places the bot's mark on a uniformly random empty cell. It returns
// the chosen index, or false when it is not the bot's turn.
func (g *Game) BotMove(p Picker) (int, bool) {
	if g.state != InProgress || g.turn != Bot {
		return -1, false
	}
	empty := g.board.EmptyCells()
	if len(empty) == 0 {
		return -1, false
	}
	index := empty[p.IntN(len(empty))]
	return index, g.place(Bot, index)
}

func (g *Game) place(player Mark, index int) bool {
	if g.state != InProgress || g.turn != player {
		return false
	}
	if index < 0 || index >= len(g.board) || g.board[index] != Empty {
		return false
	}

	g.board[index] = player
	g.state, g.winner = Evaluate(g.board)
	if g.state == InProgress {
		g.turn = opponent(player)
	}
	return true
}

func opponent(m Mark) Mark {
	if m == X {
		return O
	}
	return X
}

// Snapshot copies the current state
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:   g.board,
		Turn:    g.turn,
		State:   g.state,
		Winner:  g.winner,
		Message: g.message(),
	}
}

func (g *Game) message() string {
	switch g.state {
	case Won:
		return string(g.winner) + " Wins!"
	case Draw:
		return "It's a Draw!"
	}
	if g.turn == Bot {
		return "Bot is thinking..."
	}
	if len(g.board.EmptyCells()) == len(g.board) {
		return "Player vs Bot"
	}
	return "Your Turn (X)"
}
