package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"wavecrc/internal/wave"
)

// maxLineSize bounds a single log line.
const maxLineSize = 64 << 20

// Collect scans a complete log one line at a time and returns every dump it
// reconstructs, in emission order. Only read errors from r are returned; the
// dumps gathered before the error are still returned with it.
func Collect(r io.Reader, m *Matcher, w wave.Window) ([]wave.Dump, Stats, error) {
	rec := NewReconstructor(w)
	var dumps []wave.Dump
	lines := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(ScanLogLines)
	for sc.Scan() {
		lines++
		if ev, ok := m.Match(sc.Text()); ok {
			if d, ok := rec.Feed(ev); ok {
				dumps = append(dumps, d)
			}
		}
	}
	if err := sc.Err(); err != nil {
		stats := rec.Stats()
		stats.Lines = lines
		return dumps, stats, fmt.Errorf("read log after line %d: %w", lines, err)
	}

	if d, ok := rec.Flush(); ok {
		dumps = append(dumps, d)
	}

	stats := rec.Stats()
	stats.Lines = lines
	return dumps, stats, nil
}

// ScanLogLines is a bufio.SplitFunc that ends a line at "\r\n", a lone "\r",
// "\n", and the other line boundaries of text mode output: "\v", "\f",
// "\x1c".."\x1e", U+0085, U+2028 and U+2029. The terminator is not part of
// the token. A final line without a terminator is still returned.
func ScanLogLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n', '\v', '\f', 0x1c, 0x1d, 0x1e:
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// a following '\n' may still arrive
				return 0, nil, nil
			}
			return i + 1, data[:i], nil
		case 0xC2: // U+0085
			if i+1 >= len(data) && !atEOF {
				return 0, nil, nil
			}
			if i+1 < len(data) && data[i+1] == 0x85 {
				return i + 2, data[:i], nil
			}
		case 0xE2: // U+2028, U+2029
			if i+2 >= len(data) && !atEOF {
				return 0, nil, nil
			}
			if i+2 < len(data) && data[i+1] == 0x80 && (data[i+2] == 0xA8 || data[i+2] == 0xA9) {
				return i + 3, data[:i], nil
			}
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// CollectString is Collect over an in-memory log. Only an over-long line can
// make it stop early.
func CollectString(log string, m *Matcher, w wave.Window) ([]wave.Dump, Stats) {
	dumps, stats, _ := Collect(strings.NewReader(log), m, w)
	return dumps, stats
}

// CollectEvents runs the reconstructor over already matched events.
func CollectEvents(events []wave.ReadEvent, w wave.Window) ([]wave.Dump, Stats) {
	rec := NewReconstructor(w)
	var dumps []wave.Dump
	for _, ev := range events {
		if d, ok := rec.Feed(ev); ok {
			dumps = append(dumps, d)
		}
	}
	if d, ok := rec.Flush(); ok {
		dumps = append(dumps, d)
	}
	return dumps, rec.Stats()
}
