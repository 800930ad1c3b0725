package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"wavecrc/common"
	wcerr "wavecrc/internal/common"
	"wavecrc/internal/config"
	"wavecrc/internal/wavecheck"
)

const exitInterrupted = 130

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dmg_wave_crc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dmg_wave_crc [options] [ROM]")
		fmt.Fprintln(stderr, "Run the emulator headless, capture CH3 wave RAM reads from its log")
		fmt.Fprintln(stderr, "and report the CRC32 of all complete dumps.")
		fs.PrintDefaults()
	}

	def := config.Default()
	configPath := fs.String("config", "", "Optional INI file with run settings (flags override it)")
	binary := fs.String("binary", def.Binary, "Path to the emulator executable")
	frames := fs.Int("frames", def.Frames, "Number of frames to run in headless mode")
	keepLog := fs.String("keep_log", "", "Optional path to write the full emulator log output")
	logFile := fs.String("log", "", "Read a saved emulator log instead of building and running")
	noBuild := fs.Bool("no_build", false, "Skip the build step")
	buildCmd := fs.String("build_cmd", def.BuildCommand, "Build command run before the emulator")
	workDir := fs.String("dir", "", "Working directory for the build and the emulator")
	timeout := fs.Duration("timeout", 0, "Kill the emulator after this long (0 = no limit)")
	expect := fs.String("expect", "", "Expected final CRC32 (hex); a mismatch fails the run")
	pattern := fs.String("pattern", def.Pattern, "Trace line pattern capturing address and result")
	winStart := fs.Uint("window_start", uint(def.Window.Start), "First monitored address")
	winEnd := fs.Uint("window_end", uint(def.Window.End), "Last monitored address")
	quiet := fs.Bool("quiet", false, "Do not print the per-dump hex lines")
	index := fs.Bool("index", false, "Prefix each dump line with its position")
	logLevel := fs.String("log_level", "info", "Diagnostic level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "dmg_wave_crc: Error: expected at most one ROM argument")
		fs.Usage()
		return 1
	}

	sev, err := common.ParseSeverity(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "dmg_wave_crc: Error: %v\n", err)
		return 1
	}
	logger := common.NewStdLoggerWithWriter(stderr, sev)

	cfg := def
	if *configPath != "" {
		if err := config.LoadFile(*configPath, &cfg); err != nil {
			return fail(stderr, err)
		}
	}

	// Explicit flags win over the config file.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["binary"] {
		cfg.Binary = *binary
	}
	if set["frames"] {
		cfg.Frames = *frames
	}
	if set["build_cmd"] {
		cfg.BuildCommand = *buildCmd
	}
	if set["no_build"] {
		cfg.SkipBuild = *noBuild
	}
	if set["dir"] {
		cfg.WorkDir = *workDir
	}
	if set["timeout"] {
		cfg.Timeout = *timeout
	}
	if set["expect"] {
		cfg.ExpectCRC = *expect
	}
	if set["pattern"] {
		cfg.Pattern = *pattern
	}
	if set["window_start"] {
		if *winStart > 0xFFFF {
			return fail(stderr, wcerr.NewErrorf(wcerr.CodeConfigParse, "window_start 0x%X out of range", *winStart))
		}
		cfg.Window.Start = uint16(*winStart)
	}
	if set["window_end"] {
		if *winEnd > 0xFFFF {
			return fail(stderr, wcerr.NewErrorf(wcerr.CodeConfigParse, "window_end 0x%X out of range", *winEnd))
		}
		cfg.Window.End = uint16(*winEnd)
	}
	if fs.NArg() == 1 {
		cfg.ROM = fs.Arg(0)
	}
	cfg.KeepLog = *keepLog
	cfg.LogFile = *logFile
	cfg.HideDumps = *quiet
	cfg.PrintIndex = *index

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	_, err = wavecheck.Run(ctx, wavecheck.Options{
		Config: cfg,
		Output: stdout,
		Logger: logger,
	})
	logger.Debug(fmt.Sprintf("finished in %s", time.Since(start).Round(time.Millisecond)))

	if ctx.Err() != nil {
		return exitInterrupted
	}
	if err != nil {
		return fail(stderr, err)
	}
	return 0
}

// fail prints the user facing message for err and returns the exit status.
func fail(stderr io.Writer, err error) int {
	var cerr *wcerr.Error
	if errors.As(err, &cerr) {
		fmt.Fprintln(stderr, cerr.Detail())
	} else {
		fmt.Fprintln(stderr, err)
	}
	return 1
}
