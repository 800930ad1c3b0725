package trace

import (
	"fmt"
	"regexp"
	"strconv"

	"wavecrc/internal/wave"
)

// DefaultPattern matches the emulator's debug line for a channel 3 wave RAM read,
// e.g. `level=DEBUG msg="apu.ch3 wave read" addr=0xFF30 ... result=0x84`.
const DefaultPattern = `apu\.ch3 wave read.*addr=0x([0-9A-Fa-f]{4}).*result=0x([0-9A-Fa-f]{2})`

// Matcher extracts at most one read event from a log line.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles pattern, which must capture the address then the result.
// An empty pattern selects DefaultPattern.
func NewMatcher(pattern string) (*Matcher, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile trace pattern: %w", err)
	}
	if re.NumSubexp() != 2 {
		return nil, fmt.Errorf("trace pattern %q has %d capture groups, want 2 (address, result)", pattern, re.NumSubexp())
	}
	return &Matcher{re: re}, nil
}

// Match returns the read event reported by line, if any.
func (m *Matcher) Match(line string) (wave.ReadEvent, bool) {
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return wave.ReadEvent{}, false
	}
	addr, err := strconv.ParseUint(sub[1], 16, 16)
	if err != nil {
		return wave.ReadEvent{}, false
	}
	val, err := strconv.ParseUint(sub[2], 16, 8)
	if err != nil {
		return wave.ReadEvent{}, false
	}
	return wave.ReadEvent{Addr: uint16(addr), Value: uint8(val)}, true
}

// Pattern returns the source text of the compiled expression.
func (m *Matcher) Pattern() string {
	return m.re.String()
}
