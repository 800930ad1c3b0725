package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wavecrc/internal/common"
	"wavecrc/internal/trace"
	"wavecrc/internal/wave"
)

const (
	DefaultROM    = "test-roms/game-boy-test-roms/blargg/dmg_sound/rom_singles/10-wave trigger while on.gb"
	DefaultBinary = "./bin/jeebie"
	DefaultFrames = 400
	DefaultBuild  = "make build"
)

const (
	// config file sections and keys
	EmulatorSectionName = "emulator"
	BinaryKey           = "binary"
	ROMKey              = "rom"
	FramesKey           = "frames"
	TimeoutKey          = "timeout"

	BuildSectionName = "build"
	CommandKey       = "command"
	SkipKey          = "skip"
	DirKey           = "dir"

	WindowSectionName = "window"
	StartKey          = "start"
	EndKey            = "end"

	TraceSectionName = "trace"
	PatternKey       = "pattern"

	CheckSectionName = "check"
	ExpectKey        = "expect"
)

// Config holds everything needed for one checker run.
type Config struct {
	ROM     string
	Binary  string
	Frames  int
	Timeout time.Duration // 0 waits for the emulator indefinitely

	BuildCommand string
	SkipBuild    bool
	WorkDir      string // build and emulator working directory

	LogFile string // read this log instead of running the emulator
	KeepLog string // save the emulator log here

	Window  wave.Window
	Pattern string

	ExpectCRC string // optional regression value, 0x prefixed hex

	HideDumps  bool
	PrintIndex bool
}

// Default returns the settings for the blargg "wave trigger while on" check.
func Default() Config {
	return Config{
		ROM:          DefaultROM,
		Binary:       DefaultBinary,
		Frames:       DefaultFrames,
		BuildCommand: DefaultBuild,
		Window:       wave.DefaultWindow,
		Pattern:      trace.DefaultPattern,
	}
}

// LoadFile applies the values found in an INI config file on top of cfg.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return common.WrapError(common.CodeConfigParse, err, "open config")
	}
	defer f.Close()

	ini, err := ParseIni(f)
	if err != nil {
		return common.WrapError(common.CodeConfigParse, err, path)
	}
	if err := Apply(ini, cfg); err != nil {
		return common.WrapError(common.CodeConfigParse, err, path)
	}
	return nil
}

// Apply copies recognised keys from ini into cfg.
func Apply(ini *IniFile, cfg *Config) error {
	if v, ok := ini.Get(EmulatorSectionName, BinaryKey); ok {
		cfg.Binary = v
	}
	if v, ok := ini.Get(EmulatorSectionName, ROMKey); ok {
		cfg.ROM = v
	}
	if v, ok := ini.Get(EmulatorSectionName, FramesKey); ok {
		n, err := parseUint(v, 31)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", EmulatorSectionName, FramesKey, err)
		}
		cfg.Frames = int(n)
	}
	if v, ok := ini.Get(EmulatorSectionName, TimeoutKey); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", EmulatorSectionName, TimeoutKey, err)
		}
		cfg.Timeout = d
	}

	if v, ok := ini.Get(BuildSectionName, CommandKey); ok {
		cfg.BuildCommand = v
	}
	if v, ok := ini.Get(BuildSectionName, SkipKey); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", BuildSectionName, SkipKey, err)
		}
		cfg.SkipBuild = b
	}
	if v, ok := ini.Get(BuildSectionName, DirKey); ok {
		cfg.WorkDir = v
	}

	if v, ok := ini.Get(WindowSectionName, StartKey); ok {
		n, err := parseUint(v, 16)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", WindowSectionName, StartKey, err)
		}
		cfg.Window.Start = uint16(n)
	}
	if v, ok := ini.Get(WindowSectionName, EndKey); ok {
		n, err := parseUint(v, 16)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", WindowSectionName, EndKey, err)
		}
		cfg.Window.End = uint16(n)
	}

	if v, ok := ini.Get(TraceSectionName, PatternKey); ok {
		cfg.Pattern = v
	}
	if v, ok := ini.Get(CheckSectionName, ExpectKey); ok {
		cfg.ExpectCRC = v
	}
	return nil
}

// Validate rejects configurations that cannot produce a run.
func (c *Config) Validate() error {
	if c.LogFile != "" && c.KeepLog != "" {
		return common.NewErrorMsg(common.CodeConfigParse, "keep_log has no effect when reading a saved log")
	}
	if c.LogFile == "" {
		if c.Frames <= 0 {
			return common.NewErrorf(common.CodeConfigParse, "frames must be positive, got %d", c.Frames)
		}
		if c.Binary == "" {
			return common.NewErrorMsg(common.CodeConfigParse, "emulator binary path is empty")
		}
		if c.ROM == "" {
			return common.NewErrorMsg(common.CodeConfigParse, "ROM path is empty")
		}
		if c.Timeout < 0 {
			return common.NewErrorf(common.CodeConfigParse, "timeout must not be negative, got %s", c.Timeout)
		}
	}
	if err := c.Window.Validate(); err != nil {
		return common.WrapError(common.CodeConfigParse, err, "")
	}
	if _, err := trace.NewMatcher(c.Pattern); err != nil {
		return common.WrapError(common.CodeConfigParse, err, "")
	}
	if _, _, err := c.Expected(); err != nil {
		return common.WrapError(common.CodeConfigParse, err, "")
	}
	return nil
}

// Expected parses ExpectCRC. The boolean is false when no value is configured.
func (c *Config) Expected() (uint32, bool, error) {
	s := strings.TrimSpace(c.ExpectCRC)
	if s == "" {
		return 0, false, nil
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false, fmt.Errorf("expected CRC32 %q: %w", c.ExpectCRC, err)
	}
	return uint32(v), true, nil
}

// BuildArgs splits the build command into program and arguments.
func (c *Config) BuildArgs() []string {
	return strings.Fields(c.BuildCommand)
}

// parseUint accepts decimal or 0x prefixed hex.
func parseUint(s string, bits int) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}
