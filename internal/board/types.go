// internal/board/types.go
//
// Core type definitions for the Memory Scramble board.
// Defines:
//   - Cell: a (row, col) coordinate on the grid.
//   - Card: one grid cell with a label and visibility/control state.
//   - move: a player's attempt at a pair (first flip, then second flip).
//   - playerState: lazily-created per-player bookkeeping.

package board

// Cell addresses one card on the grid.
type Cell struct {
	Row int
	Col int
}

// Card is one cell of the grid. A card with a controller is always face up;
// a removed card has no controller and is never face up again.
type Card struct {
	Label      string // opaque; equality is exact string equality
	FaceUp     bool
	Controller string // player id, "" when uncontrolled
	Removed    bool
}

// move records a player's in-progress or just-completed pair attempt.
// It is replaced wholesale when the player starts a new attempt.
type move struct {
	first     Cell
	second    Cell
	hasFirst  bool
	hasSecond bool
	matched   bool
	done      bool
}

// playerState is created on first reference to a player id and lives for the
// lifetime of the board.
type playerState struct {
	controlled map[Cell]bool
	move       move
}
