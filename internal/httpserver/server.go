// internal/httpserver/server.go
//
// HTTP wiring for the Memory Scramble server.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, CORS, per-request
//     timeouts on everything but the long-poll routes).
//   - Board endpoints (plain text): /look, /flip, /watch, /replace.
//   - WebSocket board stream: /ws/{player} (see ws.go).
//   - Stats endpoints (JSON): /stats/{player}, /leaderboard.
//   - Embedded index page at "/" and a /health probe.
//
// Notes:
//   - Flip failures come back as 409 with "cannot flip this card: <reason>";
//     they are ordinary game outcomes, not server errors.
//   - /watch and /ws are long-lived by design and are the only routes left
//     out of the timeout middleware; /flip gets a bound sized above the
//     kernel's park wait.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/memory-scramble/go-server/assets"
	"github.com/memory-scramble/go-server/internal/board"
	"github.com/memory-scramble/go-server/internal/history"
)

// Options tunes the transport; zero values fall back to sensible defaults.
type Options struct {
	WatchTimeout time.Duration // long-poll bound for /watch (default 60s)
	ClientOrigin string        // CORS origin (default "*")
}

// Server bundles the router, the board kernel, and the history store.
// History may be nil; stats endpoints then report 503 and matches are not
// recorded.
type Server struct {
	r        *chi.Mux
	board    *board.Board
	history  *history.Store
	opts     Options
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(b *board.Board, hist *history.Store, opts Options) *Server {
	if opts.WatchTimeout <= 0 {
		opts.WatchTimeout = 60 * time.Second
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "*"
	}
	s := &Server{
		r:       chi.NewRouter(),
		board:   b,
		history: hist,
		opts:    opts,
		upgrader: websocket.Upgrader{
			// The browser client is served from "/" but may also run on a
			// dev origin; the board is public, so accept any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(s.cors)

	// Bound handler time everywhere except /watch and /ws, which are
	// long-lived by design. A flip can legitimately park close to FlipWait,
	// so the bound must stay above it; everything else returns quickly.
	bounded := s.r.With(chimw.Timeout(10 * time.Second))

	bounded.Get("/", s.handleIndex)
	bounded.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	bounded.Get("/look/{player}", s.handleLook)
	s.r.With(chimw.Timeout(flipTimeout(b))).Get("/flip/{player}/{cell}", s.handleFlip)
	s.r.Get("/watch/{player}", s.handleWatch)
	bounded.Get("/replace/{player}/{from}/{to}", s.handleReplace)
	s.r.Get("/ws/{player}", s.handleWS)

	bounded.Get("/stats/{player}", s.handleStats)
	bounded.Get("/leaderboard", s.handleLeaderboard)

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// cors allows the configured origin on every route.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ board routes -------------------------------

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := assets.IndexHTML()
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleLook(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	writeBoard(w, s.board.Look(player))
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	row, col, ok := parseCell(chi.URLParam(r, "cell"))
	if !ok {
		http.Error(w, "bad cell, want row,col", http.StatusBadRequest)
		return
	}

	out, err := s.board.Flip(r.Context(), player, row, col)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("cannot flip this card: " + err.Error()))
		return
	}

	if out.Matched && s.history != nil {
		// Best effort: a failed write must not fail the flip.
		m := history.Match{Player: player, Round: out.Round, Label: out.Label}
		if err := s.history.RecordMatch(r.Context(), m); err != nil {
			log.Warn().Err(err).Str("player", player).Msg("record match")
		}
	}
	writeBoard(w, out.Board)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	writeBoard(w, s.board.Watch(r.Context(), player, s.opts.WatchTimeout))
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")
	out := s.board.Map(player, func(label string) string {
		if label == from {
			return to
		}
		return label
	})
	writeBoard(w, out)
}

// ------------------------------ stats routes -------------------------------

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, `{"error":"history disabled"}`, http.StatusServiceUnavailable)
		return
	}
	st, err := s.history.Stats(r.Context(), chi.URLParam(r, "player"))
	if err != nil {
		log.Error().Err(err).Msg("player stats")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, st)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, `{"error":"history disabled"}`, http.StatusServiceUnavailable)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	lb, err := s.history.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, lb)
}

// ------------------------------- helpers -----------------------------------

// flipTimeout keeps the /flip request bound above the kernel's park wait, so
// the middleware never cuts off a flip that is still legitimately parked.
func flipTimeout(b *board.Board) time.Duration {
	d := b.FlipWait
	if d <= 0 {
		d = board.DefaultFlipWait
	}
	return d + 5*time.Second
}

// parseCell splits "row,col" into coordinates.
func parseCell(raw string) (row, col int, ok bool) {
	rs, cs, found := strings.Cut(raw, ",")
	if !found {
		return 0, 0, false
	}
	row, err := strconv.Atoi(rs)
	if err != nil {
		return 0, 0, false
	}
	col, err = strconv.Atoi(cs)
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}

func writeBoard(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
