package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"wavecrc/common"
	wcerr "wavecrc/internal/common"
)

// waitDelay bounds how long Wait keeps pipes open after the process is killed.
const waitDelay = 2 * time.Second

// Build runs the build command in dir and returns its combined output.
func Build(ctx context.Context, args []string, dir string, logger common.Logger) ([]byte, error) {
	if len(args) == 0 {
		return nil, wcerr.NewErrorMsg(wcerr.CodeBuildFailed, "empty build command")
	}
	if logger == nil {
		logger = common.NewNoOpLogger()
	}
	cmdline := strings.Join(args, " ")
	logger.Info(fmt.Sprintf("Rebuilding binary via `%s`...", cmdline))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, wcerr.WrapError(wcerr.CodeBuildFailed, err, fmt.Sprintf("run `%s`", cmdline))
		}
		logger.Debug(fmt.Sprintf("build exited with status %d", exitErr.ExitCode()))
		return out, wcerr.NewErrorMsg(wcerr.CodeBuildFailed, fmt.Sprintf("`%s` failed:\n%s", cmdline, out))
	}
	logger.Debug(fmt.Sprintf("build finished (%d bytes of output)", len(out)))
	return out, nil
}

// Emulator describes one headless emulator run.
type Emulator struct {
	Binary  string
	ROM     string
	Frames  int
	Dir     string        // working directory; relative paths resolve against it
	Timeout time.Duration // 0 disables the timeout
	Logger  common.Logger
}

// Args returns the emulator command line arguments.
func (e *Emulator) Args() []string {
	return []string{"--headless", "--frames=" + strconv.Itoa(e.Frames), "--debug", e.ROM}
}

func (e *Emulator) resolve(p string) string {
	if e.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Dir, p)
}

// Run starts the emulator, waits for it to exit and returns its stdout followed by
// its stderr. The output gathered so far is returned with any error.
func (e *Emulator) Run(ctx context.Context) (string, error) {
	logger := e.Logger
	if logger == nil {
		logger = common.NewNoOpLogger()
	}

	if _, err := os.Stat(e.resolve(e.Binary)); err != nil {
		return "", wcerr.NewErrorMsg(wcerr.CodeBinaryNotFound, "emulator binary not found: "+e.Binary)
	}
	if _, err := os.Stat(e.resolve(e.ROM)); err != nil {
		return "", wcerr.NewErrorMsg(wcerr.CodeROMNotFound, "ROM not found: "+e.ROM)
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Binary, e.Args()...)
	cmd.Dir = e.Dir
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", err
	}

	logger.Debug(fmt.Sprintf("exec %s %s", e.Binary, strings.Join(e.Args(), " ")))
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return "", wcerr.WrapError(wcerr.CodeEmulatorExit, err, "start emulator")
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})
	copyErr := g.Wait()
	waitErr := cmd.Wait()

	output := outBuf.String() + errBuf.String()
	logger.Debug(fmt.Sprintf("emulator finished in %s (%d bytes of output)", time.Since(start).Round(time.Millisecond), len(output)))

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return output, wcerr.WrapError(wcerr.CodeEmulatorExit, ctxErr, fmt.Sprintf("emulator did not finish within %s", e.Timeout))
		}
		return output, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		msg := strings.TrimRight(fmt.Sprintf("emulator exited with status %d\n\n%s", exitErr.ExitCode(), output), " \t\r\n")
		return output, wcerr.NewErrorMsg(wcerr.CodeEmulatorExit, msg)
	}
	if waitErr != nil {
		return output, wcerr.WrapError(wcerr.CodeEmulatorExit, waitErr, "wait for emulator")
	}
	if copyErr != nil && !errors.Is(copyErr, os.ErrClosed) {
		return output, wcerr.WrapError(wcerr.CodeEmulatorExit, copyErr, "read emulator output")
	}
	return output, nil
}
