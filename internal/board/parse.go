// internal/board/parse.go
//
// Board file loading. The format is one token per line, UTF-8, blank lines
// ignored:
//
//	<rows>x<cols>
//	<label_1>
//	...
//	<label_{rows*cols}>
//
// Labels are opaque strings read left-to-right, top-to-bottom.

package board

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads a board file from r and builds the board.
func Parse(r io.Reader) (*Board, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		lines = append(lines, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read board: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty board file")
	}

	rows, cols, err := parseDims(lines[0])
	if err != nil {
		return nil, err
	}
	labels := lines[1:]
	if len(labels) != rows*cols {
		return nil, fmt.Errorf("expected %d cards, got %d", rows*cols, len(labels))
	}
	return New(rows, cols, labels)
}

// ParseFile loads a board from a file on disk.
func ParseFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open board file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func parseDims(line string) (rows, cols int, err error) {
	rs, cs, ok := strings.Cut(line, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid dimension line %q", line)
	}
	rows, err = strconv.Atoi(rs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row count %q", rs)
	}
	cols, err = strconv.Atoi(cs)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column count %q", cs)
	}
	return rows, cols, nil
}
