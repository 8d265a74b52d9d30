package board

import "errors"

// Rule failures surfaced by Flip. The transport maps all of them to a 409
// response; none of them corrupts board state.
var (
	ErrBadCoord       = errors.New("position is off the board")
	ErrGone           = errors.New("card has been removed")
	ErrSelfControlled = errors.New("you already control this card")
	ErrControlled     = errors.New("card is controlled by another player")
	ErrSameCard       = errors.New("second card is the same as the first")
	ErrTimeout        = errors.New("timed out waiting for the card to be released")
)
