package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultShell runs command lines when no shell is configured.
	DefaultShell = "/bin/sh -c"
	// DefaultShellTimeout bounds foreground commands.
	DefaultShellTimeout = 300 * time.Second

	maxOutputBytes = 50 * 1024
)

// ShellRequest is one command to run.
type ShellRequest struct {
	Run        string
	Dir        string
	Timeout    time.Duration
	Background bool
}

// ShellOutcome is what the executor observed.
type ShellOutcome struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	PID       int
	Duration  time.Duration
	TimedOut  bool
	Truncated bool
}

// ShellExecutor runs command lines through a shell.
type ShellExecutor struct {
	shell string
}

// NewShellExecutor builds an executor for shell, e.g. "/bin/bash -lc". An
// empty shell uses DefaultShell.
func NewShellExecutor(shell string) *ShellExecutor {
	if strings.TrimSpace(shell) == "" {
		shell = DefaultShell
	}
	return &ShellExecutor{shell: shell}
}

// Execute runs req. A non-zero exit status is reported through
// ShellOutcome.ExitCode, not as an error; errors mean the command could not
// be started.
func (e *ShellExecutor) Execute(ctx context.Context, req ShellRequest) (ShellOutcome, error) {
	if strings.TrimSpace(req.Run) == "" {
		return ShellOutcome{}, errors.New("command: empty command")
	}

	if req.Background {
		return e.startBackground(req)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultShellTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd, err := buildShellCommand(runCtx, e.shell, req.Run)
	if err != nil {
		return ShellOutcome{}, fmt.Errorf("command: %w", err)
	}
	cmd.Dir = req.Dir
	cmd.WaitDelay = time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return ShellOutcome{}, fmt.Errorf("command: start: %w", err)
	}
	runErr := cmd.Wait()

	outcome := ShellOutcome{Duration: time.Since(start), PID: cmd.Process.Pid}
	stdout, stdoutTruncated := truncateOutput(stdoutBuf.Bytes(), maxOutputBytes)
	stderr, stderrTruncated := truncateOutput(stderrBuf.Bytes(), maxOutputBytes)
	outcome.Stdout = string(stdout)
	outcome.Stderr = string(stderr)
	outcome.Truncated = stdoutTruncated || stderrTruncated

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		outcome.TimedOut = true
		outcome.ExitCode = 1
		return outcome, nil
	}
	if err := ctx.Err(); err != nil {
		return outcome, fmt.Errorf("command: %w", err)
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(runErr, &exitErr):
		outcome.ExitCode = exitErr.ExitCode()
	case runErr != nil:
		return outcome, fmt.Errorf("command: wait: %w", runErr)
	}
	return outcome, nil
}

// startBackground launches the command detached from ctx and reaps it in a
// goroutine once it exits.
func (e *ShellExecutor) startBackground(req ShellRequest) (ShellOutcome, error) {
	cmd, err := buildShellCommand(context.Background(), e.shell, req.Run)
	if err != nil {
		return ShellOutcome{}, fmt.Errorf("command: %w", err)
	}
	cmd.Dir = req.Dir
	if err := cmd.Start(); err != nil {
		return ShellOutcome{}, fmt.Errorf("command: start: %w", err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return ShellOutcome{PID: cmd.Process.Pid}, nil
}

// truncateOutput keeps the last maxBytes bytes of output.
func truncateOutput(output []byte, maxBytes int) ([]byte, bool) {
	if maxBytes > 0 && len(output) > maxBytes {
		return output[len(output)-maxBytes:], true
	}
	return output, false
}

// buildShellCommand normalizes the shell string ("/bin/bash", "bash -lc",
// etc.) before wiring it up with the command line. A shell without flags
// gets "-c".
func buildShellCommand(ctx context.Context, shell, run string) (*exec.Cmd, error) {
	parts := strings.Fields(shell)
	if len(parts) == 0 {
		return nil, fmt.Errorf("invalid shell: %q", shell)
	}

	execPath := parts[0]
	args := parts[1:]
	if len(args) == 0 {
		args = append(args, "-c")
	}

	args = append(args, run)
	return exec.CommandContext(ctx, execPath, args...), nil
}

// formatShellOutput renders outcome as the tool's output text.
func formatShellOutput(outcome ShellOutcome, timeout time.Duration) string {
	if outcome.TimedOut {
		return fmt.Sprintf("Command execution timed out after %d seconds", int(timeout.Seconds()))
	}
	text := outcome.Stdout
	if outcome.ExitCode != 0 && outcome.Stderr != "" {
		text += fmt.Sprintf("\nError (code %d): %s", outcome.ExitCode, outcome.Stderr)
	}
	if outcome.Truncated {
		text = "[output truncated]\n" + text
	}
	return text
}
