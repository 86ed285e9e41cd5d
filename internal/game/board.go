// Package game implements the tic-tac-toe mini-game hosted in a desktop
// window: a human playing X against a bot that picks empty cells at random.
package game

// Mark is the content of one cell
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Human and Bot are the fixed seats
const (
	Human = X
	Bot   = O
)

// Board is the 3x3 grid in row-major order
type Board [9]Mark

// State is the lifecycle of one game
type State string

const (
	InProgress State = "in-progress"
	Won        State = "won"
	Draw       State = "draw"
)

// lines are the winning triples: rows, columns, diagonals
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate reports whether the board is won, drawn or still open
func Evaluate(b Board) (State, Mark) {
	for _, l := range lines {
		a := b[l[0]]
		if a != Empty && a == b[l[1]] && a == b[l[2]] {
			return Won, a
		}
	}
	if len(b.EmptyCells()) == 0 {
		return Draw, Empty
	}
	return InProgress, Empty
}

// EmptyCells returns the indices of unmarked cells in ascending order
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, len(b))
	for i, m := range b {
		if m == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// Full reports whether every cell is marked
func (b Board) Full() bool {
	return len(b.EmptyCells()) == 0
}
