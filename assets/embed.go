package assets

import "embed"

//go:embed index.html default_board.txt
var fs embed.FS

// IndexHTML is the minimal browser client served at "/".
func IndexHTML() ([]byte, error) {
	return fs.ReadFile("index.html")
}

// DefaultBoard is the board used when no board file is configured.
func DefaultBoard() ([]byte, error) {
	return fs.ReadFile("default_board.txt")
}
