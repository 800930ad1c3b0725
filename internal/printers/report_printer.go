package printers

import (
	"fmt"
	"io"

	"wavecrc/internal/report"
)

// ReportPrinter writes the checksum report.
//
//	Captured 3 wave RAM dumps from rom.gb (48 bytes total).
//	00 11 22 ...
//	Final CRC32: 0x1234ABCD (48 bytes)
type ReportPrinter struct {
	ItemPrinter
	hideDumps  bool
	printIndex bool
}

// NewReportPrinter creates a report printer for w.
func NewReportPrinter(w io.Writer) *ReportPrinter {
	return &ReportPrinter{
		ItemPrinter: *NewItemPrinter(w),
	}
}

// HideDumps drops the per-dump hex lines and keeps the header and CRC lines.
func (p *ReportPrinter) HideDumps(hide bool) { p.hideDumps = hide }

// PrintIndex prefixes each dump line with its position.
func (p *ReportPrinter) PrintIndex(on bool) { p.printIndex = on }

// PrintSummary writes the full report for a run over source.
func (p *ReportPrinter) PrintSummary(source string, s *report.Summary) {
	p.ItemPrintLine(fmt.Sprintf("Captured %d wave RAM dumps from %s (%d bytes total).", len(s.Dumps), source, s.Bytes))
	if !p.hideDumps {
		for i, d := range s.Dumps {
			line := report.FormatDump(d)
			if p.printIndex {
				line = fmt.Sprintf("[%4d] %s", i, line)
			}
			p.ItemPrintLine(line)
		}
	}
	p.ItemPrintLine(fmt.Sprintf("Final CRC32: %s (%d bytes)", s.CRCString(), s.Bytes))
}
