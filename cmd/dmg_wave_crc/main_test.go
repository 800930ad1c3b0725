package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeWaveLog(t *testing.T, cycles int) string {
	t.Helper()
	var sb strings.Builder
	for c := 0; c < cycles; c++ {
		for i := 0; i < 16; i++ {
			fmt.Fprintf(&sb, "level=DEBUG msg=\"apu.ch3 wave read\" addr=0x%04X result=0x%02X\n", 0xFF30+i, i)
		}
	}
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestRunFromSavedLog(t *testing.T) {
	logPath := writeWaveLog(t, 1)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log", logPath, "-expect", "0xCECEE288"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	want := "Captured 1 wave RAM dumps from " + logPath + " (16 bytes total).\n" +
		"00 01 02 03 04 05 06 07 08 09 0A 0B 0C 0D 0E 0F\n" +
		"Final CRC32: 0xCECEE288 (16 bytes)\n"
	if stdout.String() != want {
		t.Errorf("stdout mismatch:\ngot:\n%s\nwant:\n%s", stdout.String(), want)
	}
}

func TestRunNoDumpsFails(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "empty.log")
	if err := os.WriteFile(logPath, []byte("nothing to see\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log", logPath}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "No complete wave RAM dumps found in log output.") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
}

func TestRunChecksumMismatch(t *testing.T) {
	logPath := writeWaveLog(t, 2)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-log", logPath, "-expect", "12345678", "-quiet"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "does not match expected 0x12345678") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "Final CRC32:") {
		t.Errorf("report should still be printed, got %q", stdout.String())
	}
}

func TestRunConfigFileAndOverrides(t *testing.T) {
	logPath := writeWaveLog(t, 1)
	cfgPath := filepath.Join(t.TempDir(), "wavecrc.ini")
	ini := "[window]\nstart = 0xFF30\nend = 0xFF33\n[check]\nexpect = 0xFFFFFFFF\n"
	if err := os.WriteFile(cfgPath, []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	// The flag replaces the config file's wrong expectation; the window stays from the file.
	code := run([]string{"-config", cfgPath, "-log", logPath, "-expect", "", "-index"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Captured 1 wave RAM dumps") ||
		!strings.Contains(stdout.String(), "[   0] 00 01 02 03\n") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunBadArguments(t *testing.T) {
	tests := [][]string{
		{"-frames", "notanumber"},
		{"-log_level", "chatty"},
		{"-window_start", "0x10000", "-log", "x.log"},
		{"a.gb", "b.gb"},
		{"-log", "saved.log", "-keep_log", "copy.log"},
	}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != 1 {
			t.Errorf("run(%q) = %d, want 1", args, code)
		}
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-h"}, &stdout, &stderr); code != 0 {
		t.Errorf("-h exit code = %d, want 0", code)
	}
	if !strings.Contains(stderr.String(), "Usage: dmg_wave_crc") {
		t.Errorf("usage not printed: %q", stderr.String())
	}
}

func TestRunKeepLogWithSavedLog(t *testing.T) {
	logPath := writeWaveLog(t, 1)
	keep := filepath.Join(t.TempDir(), "copy.log")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-log", logPath, "-keep_log", keep}, &stdout, &stderr); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "keep_log has no effect") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if _, err := os.Stat(keep); !os.IsNotExist(err) {
		t.Errorf("keep_log file should not be written, stat err = %v", err)
	}
}
