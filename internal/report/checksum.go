package report

import (
	"fmt"
	"hash/crc32"

	"wavecrc/internal/common"
	"wavecrc/internal/wave"
)

// Summary is the checksum over every reconstructed dump.
type Summary struct {
	Dumps  []wave.Dump
	Stream []byte // dumps concatenated in emission order
	CRC32  uint32 // IEEE, as computed by zlib
	Bytes  int
}

// Summarize concatenates dumps and checksums the result.
// Zero dumps is a failure (common.ErrNoDumps), not a checksum of empty data.
func Summarize(dumps []wave.Dump) (*Summary, error) {
	if len(dumps) == 0 {
		return nil, common.NewError(common.CodeNoDumps)
	}

	size := 0
	for _, d := range dumps {
		size += len(d)
	}
	stream := make([]byte, 0, size)
	for _, d := range dumps {
		stream = append(stream, d...)
	}

	return &Summary{
		Dumps:  dumps,
		Stream: stream,
		CRC32:  crc32.ChecksumIEEE(stream),
		Bytes:  len(stream),
	}, nil
}

// CRCString renders the checksum as 0x followed by eight upper case hex digits.
func (s *Summary) CRCString() string {
	return FormatCRC(s.CRC32)
}

// Verify compares the checksum against an expected value.
func (s *Summary) Verify(expected uint32) error {
	if s.CRC32 != expected {
		return common.NewErrorf(common.CodeChecksumMismatch,
			"final CRC32 %s does not match expected %s", s.CRCString(), FormatCRC(expected))
	}
	return nil
}

// FormatCRC renders a checksum as 0xXXXXXXXX.
func FormatCRC(crc uint32) string {
	return fmt.Sprintf("0x%08X", crc)
}

// FormatDump renders a dump as space separated upper case hex bytes.
func FormatDump(d wave.Dump) string {
	return d.String()
}

// Split re-slices a stream into size byte dumps. A short tail is dropped.
func Split(stream []byte, size int) []wave.Dump {
	if size <= 0 {
		return nil
	}
	dumps := make([]wave.Dump, 0, len(stream)/size)
	for off := 0; off+size <= len(stream); off += size {
		d := make(wave.Dump, size)
		copy(d, stream[off:off+size])
		dumps = append(dumps, d)
	}
	return dumps
}
