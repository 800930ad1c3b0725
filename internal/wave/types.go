package wave

import (
	"fmt"
	"strings"
)

// Wave RAM of the DMG sound channel 3.
const (
	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F

	// WindowSize is the dump length for the default window.
	WindowSize = int(WaveRAMEnd-WaveRAMStart) + 1
)

// DefaultWindow covers the sixteen wave RAM registers.
var DefaultWindow = Window{Start: WaveRAMStart, End: WaveRAMEnd}

// ReadEvent is one memory read scraped from the emulator log.
type ReadEvent struct {
	Addr  uint16
	Value uint8
}

func (e ReadEvent) String() string {
	return fmt.Sprintf("addr=0x%04X result=0x%02X", e.Addr, e.Value)
}

// Window is a closed address range [Start, End] of monitored memory.
type Window struct {
	Start uint16
	End   uint16
}

// Size returns the number of addresses in the window.
func (w Window) Size() int {
	return int(w.End) - int(w.Start) + 1
}

// Contains returns true if addr falls inside the window.
func (w Window) Contains(addr uint16) bool {
	return addr >= w.Start && addr <= w.End
}

// Next returns the address following addr, wrapping End back to Start.
func (w Window) Next(addr uint16) uint16 {
	if addr >= w.End {
		return w.Start
	}
	return addr + 1
}

// Validate checks the window bounds.
func (w Window) Validate() error {
	if w.Start > w.End {
		return fmt.Errorf("invalid address window 0x%04X-0x%04X: start above end", w.Start, w.End)
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("0x%04X-0x%04X", w.Start, w.End)
}

// Dump holds one complete window's worth of bytes in ascending address order.
type Dump []byte

// String renders the dump as space separated two digit hex values.
func (d Dump) String() string {
	var sb strings.Builder
	for i, b := range d {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
