package printers

import (
	"fmt"
	"io"

	"wavecrc/common"
)

// ItemPrinter is the base for line oriented report output.
type ItemPrinter struct {
	writer io.Writer
	msgLog common.Logger
}

// NewItemPrinter constructs an ItemPrinter using the given io.Writer.
func NewItemPrinter(writer io.Writer) *ItemPrinter {
	return &ItemPrinter{
		writer: writer,
	}
}

// SetMessageLogger mirrors every printed line to a logger at debug level.
func (p *ItemPrinter) SetMessageLogger(logger common.Logger) {
	p.msgLog = logger
}

// ItemPrintLine writes msg followed by a newline.
func (p *ItemPrinter) ItemPrintLine(msg string) {
	if p.writer != nil {
		fmt.Fprintln(p.writer, msg)
	}
	if p.msgLog != nil {
		p.msgLog.Debug(msg)
	}
}
