// internal/board/board.go
//
// Core engine for a single Memory Scramble board.
// Responsibilities:
//   - Hold the grid, per-player state, per-cell waiters, and version clock
//     under one mutex (the kernel exclusion domain).
//   - Implement the three flip rules: first card, second card, and deferred
//     cleanup of the previous attempt on the player's next move.
//   - Block a first flip on a card another player controls until the card is
//     released or the wait times out.
//   - Long-poll support: WaitVersion blocks until the change counter advances.
//   - Atomic bulk relabeling of all live cards.
//   - Board renewal: when at most one live card remains, the grid resets to
//     its initial labels and a new round begins.
//
// Notes:
//   - The only places a goroutine blocks while logically inside an operation
//     are the Rule 1-D park (which drops the lock) and the bulk-map transform
//     (which holds it, by design of the match-check atomicity requirement).
//   - Any opaque non-empty string is a valid player id; first use allocates
//     its state.

package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultFlipWait bounds how long a first flip blocks on a card controlled by
// another player.
const DefaultFlipWait = 30 * time.Second

// Board is the shared game state. All exported methods are safe for
// concurrent use.
type Board struct {
	// FlipWait is the Rule 1-D park timeout. Set it before the board is
	// shared between goroutines; it is read without the lock.
	FlipWait time.Duration

	rows, cols int
	initial    []string // row-major labels, kept for renewal

	mu      sync.Mutex
	grid    [][]Card
	players map[string]*playerState
	waiters waitSet
	clock   versionClock
	round   string
}

// FlipOutcome is the result of a successful flip.
type FlipOutcome struct {
	Board   string // serialized board from the flipping player's perspective
	Matched bool   // true when this flip completed a matching pair
	Label   string // the matched label, when Matched
	Round   string // id of the round the flip happened in
}

// New builds a board from row-major labels. len(labels) must equal rows*cols.
func New(rows, cols int, labels []string) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("board: bad dimensions %dx%d", rows, cols)
	}
	if len(labels) != rows*cols {
		return nil, fmt.Errorf("board: expected %d labels, got %d", rows*cols, len(labels))
	}
	for i, l := range labels {
		if l == "" {
			return nil, fmt.Errorf("board: empty label at index %d", i)
		}
	}
	b := &Board{
		FlipWait: DefaultFlipWait,
		rows:     rows,
		cols:     cols,
		initial:  append([]string(nil), labels...),
		players:  make(map[string]*playerState),
		waiters:  newWaitSet(),
		clock:    newVersionClock(),
		round:    uuid.NewString(),
	}
	b.grid = freshGrid(rows, cols, b.initial)
	return b, nil
}

func freshGrid(rows, cols int, labels []string) [][]Card {
	grid := make([][]Card, rows)
	i := 0
	for r := 0; r < rows; r++ {
		grid[r] = make([]Card, cols)
		for c := 0; c < cols; c++ {
			grid[r][c] = Card{Label: labels[i]}
			i++
		}
	}
	return grid
}

// Dimensions returns the grid size.
func (b *Board) Dimensions() (rows, cols int) { return b.rows, b.cols }

// Round returns the id of the current round.
func (b *Board) Round() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.round
}

// Version returns the current change counter.
func (b *Board) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, _ := b.clock.current()
	return v
}

// ------------------------------ flip ---------------------------------------

// Flip is a player's next card flip: the first card of a new attempt, or the
// second card of the attempt in progress. Before a new attempt starts, the
// previous one is resolved — a matched pair is removed from the board, a
// mismatched pair is turned face down again.
//
// A first flip on a card controlled by another player blocks until the card
// is released, ctx is done, or FlipWait elapses.
func (b *Board) Flip(ctx context.Context, player string, row, col int) (FlipOutcome, error) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return FlipOutcome{}, ErrBadCoord
	}
	cell := Cell{Row: row, Col: col}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeRenew()

	p := b.player(player)
	if !p.move.hasFirst || p.move.done {
		b.cleanup(player, p)
		return b.flipFirst(ctx, player, cell)
	}
	return b.flipSecond(player, p, cell)
}

// flipFirst implements Rule 1. Called and returns with the lock held; drops
// it while parked on a controlled card.
func (b *Board) flipFirst(ctx context.Context, player string, cell Cell) (FlipOutcome, error) {
	deadline := time.Now().Add(b.FlipWait)
	for {
		// Re-fetch per iteration: both the card and the player state may
		// have been replaced while parked (release, removal, renewal).
		c := b.at(cell)
		switch {
		case c.Removed:
			return FlipOutcome{}, ErrGone
		case !c.FaceUp:
			c.FaceUp = true
			c.Controller = player
		case c.Controller == "":
			c.Controller = player
		case c.Controller == player:
			return FlipOutcome{}, ErrSelfControlled
		default:
			if err := b.park(ctx, cell, deadline); err != nil {
				return FlipOutcome{}, err
			}
			continue
		}
		p := b.player(player)
		p.controlled[cell] = true
		p.move = move{first: cell, hasFirst: true}
		b.clock.bump()
		return b.outcome(player, false, ""), nil
	}
}

// park blocks the caller on cell until it is released, the deadline passes,
// or ctx is done. The board lock is released while parked and reacquired
// before park returns.
func (b *Board) park(ctx context.Context, cell Cell, deadline time.Time) error {
	gate := b.waiters.gate(cell)
	b.mu.Unlock()
	defer b.mu.Lock()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-gate:
		return nil
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// flipSecond implements Rule 2. The player's first card is guaranteed face up
// and controlled by them.
func (b *Board) flipSecond(player string, p *playerState, cell Cell) (FlipOutcome, error) {
	first := p.move.first
	if cell == first {
		b.relinquish(player, p)
		return FlipOutcome{}, ErrSameCard
	}

	s := b.at(cell)
	if s.Removed {
		b.relinquish(player, p)
		return FlipOutcome{}, ErrGone
	}
	if s.FaceUp && s.Controller != "" && s.Controller != player {
		b.relinquish(player, p)
		return FlipOutcome{}, ErrControlled
	}

	f := b.at(first)
	if !s.FaceUp {
		s.FaceUp = true
	}

	if s.Label == f.Label {
		s.Controller = player
		p.controlled[cell] = true
		p.move.second, p.move.hasSecond = cell, true
		p.move.matched, p.move.done = true, true
		b.clock.bump()
		return b.outcome(player, true, s.Label), nil
	}

	// Mismatch: both cards stay face up until the player's next move, but
	// neither is held any longer.
	f.Controller = ""
	s.Controller = ""
	delete(p.controlled, first)
	p.move.second, p.move.hasSecond = cell, true
	p.move.matched, p.move.done = false, true
	b.waiters.release(first)
	b.waiters.release(cell)
	b.clock.bump()
	return b.outcome(player, false, ""), nil
}

// relinquish drops the player's hold on the first card of the in-progress
// attempt and completes the attempt as a mismatch. The card stays face up.
func (b *Board) relinquish(player string, p *playerState) {
	first := p.move.first
	b.at(first).Controller = ""
	delete(p.controlled, first)
	p.move = move{first: first, hasFirst: true, done: true}
	b.waiters.release(first)
	b.clock.bump()
}

// cleanup resolves the player's previous attempt before a new one starts:
// a matched pair is removed, a mismatched pair is turned face down if nobody
// has picked the cards up in the meantime.
func (b *Board) cleanup(player string, p *playerState) {
	m := p.move
	p.move = move{}
	if !m.done {
		return
	}

	var cells []Cell
	if m.hasFirst {
		cells = append(cells, m.first)
	}
	if m.hasSecond {
		cells = append(cells, m.second)
	}

	if m.matched && b.allControlledBy(player, cells) {
		for _, cell := range cells {
			c := b.at(cell)
			c.Removed = true
			c.FaceUp = false
			c.Controller = ""
			delete(p.controlled, cell)
			// Wake anyone queued on the card so they fail fast.
			b.waiters.release(cell)
		}
		b.clock.bump()
		return
	}

	changed := false
	for _, cell := range cells {
		c := b.at(cell)
		if !c.Removed && c.FaceUp && c.Controller == "" {
			c.FaceUp = false
			changed = true
		}
	}
	if changed {
		b.clock.bump()
	}
}

// ------------------------------ look & watch -------------------------------

// Look serializes the board from the player's perspective.
func (b *Board) Look(player string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.render(player)
}

// WaitVersion blocks until the change counter exceeds since, the timeout
// elapses, or ctx is done, and returns the counter as of its return.
func (b *Board) WaitVersion(ctx context.Context, since uint64, timeout time.Duration) uint64 {
	b.mu.Lock()
	v, changed := b.clock.current()
	b.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for v <= since {
		select {
		case <-changed:
		case <-timer.C:
			return v
		case <-ctx.Done():
			return v
		}
		b.mu.Lock()
		v, changed = b.clock.current()
		b.mu.Unlock()
	}
	return v
}

// Watch blocks until the board changes or the timeout elapses, then returns
// the serialized board. A timeout is not an error: the caller simply gets
// the unchanged board.
func (b *Board) Watch(ctx context.Context, player string, timeout time.Duration) string {
	b.mu.Lock()
	since, _ := b.clock.current()
	b.mu.Unlock()
	b.WaitVersion(ctx, since, timeout)
	return b.Look(player)
}

// ------------------------------ bulk map -----------------------------------

// Map rewrites the label of every live card through transform, atomically
// with respect to every other board operation: the lock is held across all
// transform calls, so no flip can ever observe a partially-relabeled board.
func (b *Board) Map(player string, transform func(label string) string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for r := range b.grid {
		for c := range b.grid[r] {
			card := &b.grid[r][c]
			if card.Removed {
				continue
			}
			card.Label = transform(card.Label)
		}
	}
	b.clock.bump()
	return b.render(player)
}

// ------------------------------ internals ----------------------------------

func (b *Board) at(cell Cell) *Card { return &b.grid[cell.Row][cell.Col] }

func (b *Board) player(id string) *playerState {
	p, ok := b.players[id]
	if !ok {
		p = &playerState{controlled: make(map[Cell]bool)}
		b.players[id] = p
	}
	return p
}

func (b *Board) allControlledBy(player string, cells []Cell) bool {
	for _, cell := range cells {
		if b.at(cell).Controller != player {
			return false
		}
	}
	return len(cells) > 0
}

func (b *Board) outcome(player string, matched bool, label string) FlipOutcome {
	return FlipOutcome{Board: b.render(player), Matched: matched, Label: label, Round: b.round}
}

// maybeRenew resets the grid to its initial labels once at most one live
// card remains. Player state clears, parked waiters wake to re-evaluate, and
// a fresh round id is issued.
func (b *Board) maybeRenew() {
	live := 0
	for r := range b.grid {
		for c := range b.grid[r] {
			if !b.grid[r][c].Removed {
				live++
			}
		}
	}
	if live > 1 {
		return
	}
	b.grid = freshGrid(b.rows, b.cols, b.initial)
	b.players = make(map[string]*playerState)
	b.waiters.releaseAll()
	b.round = uuid.NewString()
	b.clock.bump()
	log.Info().Str("round", b.round).Msg("board renewed")
}

// render is the lock-held serialization: dimensions line, then one line per
// card in row-major order.
func (b *Board) render(player string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d", b.rows, b.cols)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			card := &b.grid[r][c]
			sb.WriteByte('\n')
			switch {
			case card.Removed:
				sb.WriteString("none")
			case !card.FaceUp:
				sb.WriteString("down")
			case card.Controller == player:
				sb.WriteString("my ")
				sb.WriteString(card.Label)
			default:
				sb.WriteString("up ")
				sb.WriteString(card.Label)
			}
		}
	}
	return sb.String()
}
