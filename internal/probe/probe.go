// Package probe runs the external hardware probe and captures its output.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultProbe is the hardware lister used when no probe is configured.
const DefaultProbe = "lshw"

// Command describes the probe invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration // zero means no timeout
}

// DefaultCommand returns `lshw -json`.
func DefaultCommand() Command {
	return Command{Name: DefaultProbe, Args: []string{"-json"}}
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds what the probe wrote and how long it ran.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Error represents a probe that could not be started or exited unsuccessfully.
type Error struct {
	Command  string
	Message  string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("probe %q: %s", e.Command, e.Message)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Cause != nil && e.ExitCode == 0 {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Run executes the probe and returns its stdout. The binary is resolved via PATH.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, &Error{Message: "probe command is empty"}
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		probeErr := &Error{
			Command: cmd.String(),
			Stderr:  strings.TrimSpace(stderr.String()),
			Cause:   err,
		}
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			probeErr.Message = "probe was cancelled"
			probeErr.Cause = ctx.Err()
		case errors.As(err, &exitErr):
			probeErr.Message = "probe failed"
			probeErr.ExitCode = exitErr.ExitCode()
		default:
			probeErr.Message = "failed to start probe"
		}
		return result, probeErr
	}

	return result, nil
}
