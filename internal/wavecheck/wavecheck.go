package wavecheck

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"wavecrc/common"
	wcerr "wavecrc/internal/common"
	"wavecrc/internal/config"
	"wavecrc/internal/printers"
	"wavecrc/internal/report"
	"wavecrc/internal/runner"
	"wavecrc/internal/trace"
	"wavecrc/internal/wave"
)

// Options wires a run to its outputs.
type Options struct {
	Config config.Config
	Output io.Writer     // report destination, stdout when nil
	Logger common.Logger // diagnostics, discarded when nil
}

// Run builds and runs the emulator (or reads a saved log), reconstructs the wave
// RAM dumps and prints the checksum report.
func Run(ctx context.Context, opts Options) (*report.Summary, error) {
	cfg := opts.Config
	w := opts.Output
	if w == nil {
		w = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = common.NewNoOpLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	matcher, err := trace.NewMatcher(cfg.Pattern)
	if err != nil {
		return nil, wcerr.WrapError(wcerr.CodeConfigParse, err, "")
	}

	var (
		dumps  []wave.Dump
		stats  trace.Stats
		source string
	)
	if cfg.LogFile != "" {
		source = cfg.LogFile
		dumps, stats, err = collectFile(cfg.LogFile, matcher, cfg.Window)
		if err != nil {
			return nil, err
		}
	} else {
		source = cfg.ROM
		logText, err := runEmulator(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.KeepLog != "" {
			if err := os.WriteFile(cfg.KeepLog, []byte(logText), 0o644); err != nil {
				return nil, wcerr.WrapError(wcerr.CodeLogFile, err, "save emulator log")
			}
			logger.Debug("emulator log saved to " + cfg.KeepLog)
		}
		dumps, stats = trace.CollectString(logText, matcher, cfg.Window)
	}
	logger.Debug(fmt.Sprintf("window %s: %s", cfg.Window, stats))

	summary, err := report.Summarize(dumps)
	if err != nil {
		return nil, err
	}

	p := printers.NewReportPrinter(w)
	p.SetMessageLogger(logger)
	p.HideDumps(cfg.HideDumps)
	p.PrintIndex(cfg.PrintIndex)
	p.PrintSummary(source, summary)

	if expected, ok, _ := cfg.Expected(); ok {
		if err := summary.Verify(expected); err != nil {
			return summary, err
		}
		logger.Info(fmt.Sprintf("final CRC32 matches expected %s", report.FormatCRC(expected)))
	}
	return summary, nil
}

func runEmulator(ctx context.Context, cfg config.Config, logger common.Logger) (string, error) {
	if !cfg.SkipBuild {
		if _, err := runner.Build(ctx, cfg.BuildArgs(), cfg.WorkDir, logger); err != nil {
			return "", err
		}
	}

	emu := &runner.Emulator{
		Binary:  cfg.Binary,
		ROM:     cfg.ROM,
		Frames:  cfg.Frames,
		Dir:     cfg.WorkDir,
		Timeout: cfg.Timeout,
		Logger:  logger,
	}
	out, err := emu.Run(ctx)
	if err != nil {
		return "", err
	}
	logger.Debug(fmt.Sprintf("captured %d log lines", strings.Count(out, "\n")))
	return out, nil
}

func collectFile(path string, m *trace.Matcher, win wave.Window) ([]wave.Dump, trace.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, trace.Stats{}, wcerr.WrapError(wcerr.CodeLogFile, err, "open log")
	}
	defer f.Close()

	dumps, stats, err := trace.Collect(f, m, win)
	if err != nil {
		return nil, stats, wcerr.WrapError(wcerr.CodeLogFile, err, path)
	}
	return dumps, stats, nil
}
