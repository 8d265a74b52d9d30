package main

import (
	"bytes"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/memory-scramble/go-server/assets"
	"github.com/memory-scramble/go-server/internal/board"
	"github.com/memory-scramble/go-server/internal/config"
	"github.com/memory-scramble/go-server/internal/history"
	"github.com/memory-scramble/go-server/internal/httpserver"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// The board file may be given positionally (first argument) or via
	// BOARD_FILE; otherwise an embedded default board is used.
	boardPath := cfg.BoardFile
	if len(os.Args) > 1 {
		boardPath = os.Args[1]
	}
	b, err := loadBoard(boardPath)
	if err != nil {
		log.Fatal().Err(err).Str("board", boardPath).Msg("failed to load board")
	}
	b.FlipWait = cfg.FlipWait

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	srv := httpserver.New(b, history.NewStore(db), httpserver.Options{
		WatchTimeout: cfg.WatchTimeout,
		ClientOrigin: cfg.ClientOrigin,
	})

	rows, cols := b.Dimensions()
	log.Info().
		Str("port", cfg.Port).
		Int("rows", rows).
		Int("cols", cols).
		Msg("starting memory-scramble server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func loadBoard(path string) (*board.Board, error) {
	if path != "" {
		return board.ParseFile(path)
	}
	raw, err := assets.DefaultBoard()
	if err != nil {
		return nil, err
	}
	return board.Parse(bytes.NewReader(raw))
}
