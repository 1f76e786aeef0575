package formats

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// lineError is a grammar failure at a 1-based line of a signature file.
type lineError struct {
	line int
	msg  string
}

func (e *lineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

func malformed(line int, format string, args ...interface{}) error {
	return &lineError{line: line, msg: fmt.Sprintf(format, args...)}
}

// lineOf extracts the line number of a grammar failure, or 0.
func lineOf(err error) int {
	var le *lineError
	if errors.As(err, &le) {
		return le.line
	}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

const maxLine = 1 << 20

// scanLines calls fn for each line with trailing CR stripped.
func scanLines(r io.Reader, fn func(n int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	n := 0
	for sc.Scan() {
		n++
		if err := fn(n, strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

// splitOwner splits "owner/path/name" at its last slash.
func splitOwner(s string) (string, string, bool) {
	i := strings.LastIndexByte(s, '/')
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// readCSV calls fn for every record after an optional header row whose first
// column equals header.
func readCSV(r io.Reader, header string, fn func(line int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if header != "" && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), header) {
				continue
			}
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

// keepSide applies a CSV side column: 0 client, 1 server, 2 both.
// Combined keeps every row; unknown values are kept.
func keepSide(side Side, col string) bool {
	switch strings.TrimSpace(col) {
	case "0":
		return side != SideServer
	case "1":
		return side != SideClient
	default:
		return true
	}
}
