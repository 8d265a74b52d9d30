package history

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const testSchema = `
CREATE TABLE matches (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  player     TEXT NOT NULL,
  round_id   TEXT NOT NULL,
  label      TEXT NOT NULL,
  matched_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
);
CREATE TABLE players (
  id    TEXT PRIMARY KEY,
  pairs INTEGER NOT NULL DEFAULT 0
);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return NewStore(db)
}

func TestRecordMatchAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, m := range []Match{
		{Player: "alice", Round: "r1", Label: "A"},
		{Player: "alice", Round: "r1", Label: "B"},
		{Player: "bob", Round: "r1", Label: "C"},
	} {
		if err := s.RecordMatch(ctx, m); err != nil {
			t.Fatalf("record %v: %v", m, err)
		}
	}

	st, err := s.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Pairs != 2 {
		t.Fatalf("alice pairs = %d, want 2", st.Pairs)
	}
}

func TestStatsUnknownPlayer(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Stats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Pairs != 0 || st.Player != "nobody" {
		t.Fatalf("stats = %+v, want zero pairs for nobody", st)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, player := range []string{"alice", "alice", "alice", "bob", "carol", "carol"} {
		m := Match{Player: player, Round: "r1", Label: string(rune('A' + i))}
		if err := s.RecordMatch(ctx, m); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	lb, err := s.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb) != 2 {
		t.Fatalf("len = %d, want 2", len(lb))
	}
	if lb[0].Player != "alice" || lb[0].Pairs != 3 {
		t.Fatalf("top = %+v, want alice with 3", lb[0])
	}
	if lb[1].Player != "carol" || lb[1].Pairs != 2 {
		t.Fatalf("second = %+v, want carol with 2", lb[1])
	}
}
