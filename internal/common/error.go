package common

import (
	"fmt"
	"strings"
)

// Code classifies failures reported by the checker.
type Code uint32

const (
	OK Code = iota
	CodeFail
	CodeNoDumps
	CodeBinaryNotFound
	CodeROMNotFound
	CodeBuildFailed
	CodeEmulatorExit
	CodeLogFile
	CodeConfigParse
	CodeChecksumMismatch
	CodeLast
)

// Error is the checker error object.
// Two errors are considered equal by errors.Is when their codes match.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Sentinels for errors.Is checks.
var (
	ErrNoDumps          = &Error{Code: CodeNoDumps}
	ErrBinaryNotFound   = &Error{Code: CodeBinaryNotFound}
	ErrROMNotFound      = &Error{Code: CodeROMNotFound}
	ErrBuildFailed      = &Error{Code: CodeBuildFailed}
	ErrEmulatorExit     = &Error{Code: CodeEmulatorExit}
	ErrLogFile          = &Error{Code: CodeLogFile}
	ErrConfigParse      = &Error{Code: CodeConfigParse}
	ErrChecksumMismatch = &Error{Code: CodeChecksumMismatch}
)

func NewError(code Code) *Error {
	return &Error{Code: code}
}

func NewErrorMsg(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func NewErrorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a coded error.
func WrapError(code Code, err error, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Error implements the standard error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	if desc, ok := errorCodeDesc[e.Code]; ok {
		sb.WriteString(fmt.Sprintf("%s [%s]", desc.name, desc.msg))
	} else {
		sb.WriteString(fmt.Sprintf("UNKNOWN 0x%04x", uint32(e.Code)))
	}

	if e.Message != "" {
		sb.WriteString("; ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Detail returns the message without the code prefix, as shown to users.
func (e *Error) Detail() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	if desc, ok := errorCodeDesc[e.Code]; ok {
		return desc.msg
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

type errDesc struct {
	name string
	msg  string
}

var errorCodeDesc = map[Code]errDesc{
	OK:                   {"WAVECRC_OK", "No Error."},
	CodeFail:             {"WAVECRC_ERR_FAIL", "General failure."},
	CodeNoDumps:          {"WAVECRC_ERR_NO_DUMPS", "No complete wave RAM dumps found in log output."},
	CodeBinaryNotFound:   {"WAVECRC_ERR_BINARY_NOT_FOUND", "Emulator binary not found."},
	CodeROMNotFound:      {"WAVECRC_ERR_ROM_NOT_FOUND", "ROM not found."},
	CodeBuildFailed:      {"WAVECRC_ERR_BUILD_FAILED", "Build step failed."},
	CodeEmulatorExit:     {"WAVECRC_ERR_EMULATOR_EXIT", "Emulator exited with non-zero status."},
	CodeLogFile:          {"WAVECRC_ERR_LOG_FILE", "Log file access error."},
	CodeConfigParse:      {"WAVECRC_ERR_CONFIG_PARSE", "Configuration parse error."},
	CodeChecksumMismatch: {"WAVECRC_ERR_CHECKSUM_MISMATCH", "Final CRC32 differs from the expected value."},
	CodeLast:             {"WAVECRC_ERR_LAST", "No error - error code end marker"},
}
