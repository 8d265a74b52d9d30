package board

// versionClock is a monotonic change counter with a broadcast channel.
// Every bump closes the current channel and installs a fresh one, so any
// number of watchers can select on it without consuming each other's wakeup.
// All methods must be called with the board lock held.
type versionClock struct {
	n       uint64
	changed chan struct{}
}

func newVersionClock() versionClock {
	return versionClock{changed: make(chan struct{})}
}

func (v *versionClock) bump() {
	v.n++
	close(v.changed)
	v.changed = make(chan struct{})
}

// current returns the version together with the channel that will be closed
// on the next bump.
func (v *versionClock) current() (uint64, <-chan struct{}) {
	return v.n, v.changed
}
