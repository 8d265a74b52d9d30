package board

import "testing"

func TestWaitSetReleaseWakesAllThenResets(t *testing.T) {
	w := newWaitSet()
	cell := Cell{Row: 1, Col: 2}

	g1 := w.gate(cell)
	g2 := w.gate(cell)
	if g1 != g2 {
		t.Fatal("waiters on the same cell should share one gate")
	}
	if !w.waiting(cell) {
		t.Fatal("waiting = false with a gate open")
	}

	w.release(cell)
	select {
	case <-g1:
	default:
		t.Fatal("release did not close the gate")
	}
	if w.waiting(cell) {
		t.Fatal("waiting = true after release")
	}

	// A later park gets a fresh, unclosed gate.
	g3 := w.gate(cell)
	select {
	case <-g3:
		t.Fatal("fresh gate is already closed")
	default:
	}
}

func TestWaitSetReleaseAll(t *testing.T) {
	w := newWaitSet()
	a := w.gate(Cell{Row: 0, Col: 0})
	b := w.gate(Cell{Row: 3, Col: 1})
	w.releaseAll()
	for _, g := range []<-chan struct{}{a, b} {
		select {
		case <-g:
		default:
			t.Fatal("releaseAll left a gate open")
		}
	}
}

func TestWaitSetReleaseWithoutWaiters(t *testing.T) {
	w := newWaitSet()
	w.release(Cell{Row: 0, Col: 0}) // must not panic
}
