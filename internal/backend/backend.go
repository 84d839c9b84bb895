// Package backend provides the hosts firewall queries run against: the
// local shell and a replayable mock loaded from TOML fixtures.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fwprobe/internal/firewalld"
)

var (
	_ firewalld.Runner = (*Local)(nil)
	_ firewalld.Runner = (*Mock)(nil)
	_ firewalld.Runner = (*Recorder)(nil)
)

var ErrCommandNotFound = errors.New("command not found")

type Stats struct {
	Start    time.Time
	Duration time.Duration
}

// Command is the captured result of one command.
type Command struct {
	Command    string
	Stats      Stats
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Executor runs a command and reports its outcome. A non-zero exit status
// is not an error at this level; the error return is for failures to run
// the command at all.
type Executor interface {
	Run(ctx context.Context, command string) (*Command, error)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command    string
	ExitStatus int
	Stderr     string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitStatus)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// CheckOutput runs command and returns its stdout without the trailing line
// terminator. A non-zero exit status yields an *ExitError.
func CheckOutput(ctx context.Context, e Executor, command string) (string, error) {
	res, err := e.Run(ctx, command)
	if err != nil {
		return "", err
	}
	if res.ExitStatus != 0 {
		return "", &ExitError{Command: command, ExitStatus: res.ExitStatus, Stderr: res.Stderr}
	}
	return strings.TrimRight(res.Stdout, "\r\n"), nil
}

// Bind adapts e to firewalld.Runner, running every command under ctx. A
// positive timeout bounds each command on its own, so a long-lived runner
// never outlives its deadline.
func Bind(ctx context.Context, e Executor, timeout time.Duration) firewalld.RunnerFunc {
	return func(command string) (string, error) {
		if timeout <= 0 {
			return CheckOutput(ctx, e, command)
		}
		cmdCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return CheckOutput(cmdCtx, e, command)
	}
}
