package trace

import (
	"fmt"

	"wavecrc/internal/wave"
)

// Stats counts what the reconstructor saw. Counters never affect output.
type Stats struct {
	Lines           int // lines scanned (Collect only)
	Events          int // matched read events, in or out of window
	OutOfWindow     int
	Accepted        int // bytes appended to an accumulator
	Dumps           int
	DiscardedRuns   int // non-empty accumulators dropped by a restart, gap or truncation
	DiscardedBytes  int
	DiscardedEvents int // in-window events that could not start a run
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d events=%d out_of_window=%d accepted=%d dumps=%d discarded_runs=%d discarded_bytes=%d discarded_events=%d",
		s.Lines, s.Events, s.OutOfWindow, s.Accepted, s.Dumps, s.DiscardedRuns, s.DiscardedBytes, s.DiscardedEvents)
}

// Reconstructor groups read events into complete, contiguous window dumps.
//
// A run starts at Window.Start and must visit every address in order. A read of
// Start always restarts the run; any other gap drops the run. Incomplete runs
// never produce output.
type Reconstructor struct {
	window   wave.Window
	acc      []byte
	expected uint16
	stats    Stats
}

// NewReconstructor creates a reconstructor for the given window.
func NewReconstructor(w wave.Window) *Reconstructor {
	return &Reconstructor{
		window:   w,
		acc:      make([]byte, 0, w.Size()),
		expected: w.Start,
	}
}

// Stats returns a copy of the counters.
func (r *Reconstructor) Stats() Stats { return r.stats }

// Pending returns the number of bytes in the current run.
func (r *Reconstructor) Pending() int { return len(r.acc) }

// Expected returns the next address that extends the current run.
func (r *Reconstructor) Expected() uint16 { return r.expected }

// Feed consumes one event and returns a dump when it completes one.
func (r *Reconstructor) Feed(ev wave.ReadEvent) (wave.Dump, bool) {
	r.stats.Events++
	if !r.window.Contains(ev.Addr) {
		r.stats.OutOfWindow++
		return nil, false
	}

	// A read of Start always begins a new run. The accumulator is never full
	// here since a full run is emitted as soon as its last byte arrives.
	if ev.Addr == r.window.Start && len(r.acc) > 0 {
		r.drop()
	}

	if ev.Addr != r.expected {
		r.drop()
		if ev.Addr != r.expected {
			r.stats.DiscardedEvents++
			return nil, false
		}
	}

	r.acc = append(r.acc, ev.Value)
	r.stats.Accepted++
	r.expected = r.window.Next(r.expected)

	if len(r.acc) == r.window.Size() {
		return r.emit(), true
	}
	return nil, false
}

// Flush ends the input. A full trailing run is emitted; anything shorter is dropped.
func (r *Reconstructor) Flush() (wave.Dump, bool) {
	if len(r.acc) == r.window.Size() {
		return r.emit(), true
	}
	r.drop()
	return nil, false
}

// Reset returns to the initial state, keeping the counters.
func (r *Reconstructor) Reset() {
	r.acc = r.acc[:0]
	r.expected = r.window.Start
}

func (r *Reconstructor) emit() wave.Dump {
	d := make(wave.Dump, len(r.acc))
	copy(d, r.acc)
	r.stats.Dumps++
	r.Reset()
	return d
}

func (r *Reconstructor) drop() {
	if len(r.acc) > 0 {
		r.stats.DiscardedRuns++
		r.stats.DiscardedBytes += len(r.acc)
	}
	r.Reset()
}
