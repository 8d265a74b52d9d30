package board

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// TestConcurrentScramble drives several players making random flips at once,
// with lookers, a watcher, and an occasional relabel mixed in, then checks
// that the board invariants survived. Rule failures are expected throughout;
// only state corruption is a test failure.
func TestConcurrentScramble(t *testing.T) {
	labels := []string{
		"A", "B", "C", "D",
		"D", "C", "B", "A",
		"E", "F", "G", "H",
		"H", "G", "F", "E",
	}
	b, err := New(4, 4, labels)
	if err != nil {
		t.Fatal(err)
	}
	b.FlipWait = 5 * time.Millisecond

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(id)))
			player := fmt.Sprintf("p%d", id)
			for n := 0; n < 200; n++ {
				_, _ = b.Flip(ctx, player, rng.Intn(4), rng.Intn(4))
				if n%25 == 0 {
					_ = b.Look(player)
				}
			}
		}(i)
	}

	stop := make(chan struct{})
	var aux sync.WaitGroup
	aux.Add(2)
	go func() {
		defer aux.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = b.Watch(ctx, "watcher", 10*time.Millisecond)
			}
		}
	}()
	go func() {
		defer aux.Done()
		for {
			select {
			case <-stop:
				return
			default:
				// Identity relabel: exercises map's serialization without
				// disturbing which labels pair up.
				_ = b.Map("mapper", func(l string) string { return l })
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()

	wg.Wait()
	close(stop)
	aux.Wait()
	checkInvariants(t, b)
}
