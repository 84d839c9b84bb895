package backend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// waitDelay bounds how long a canceled command may keep its output pipes
// open through orphaned children.
const waitDelay = 2 * time.Second

// Local runs commands on this machine through a shell.
type Local struct {
	shell   []string
	sudo    bool
	timeout time.Duration
}

// LocalOption configures a Local executor.
type LocalOption func(*Local)

// WithSudo prefixes every command with sudo.
func WithSudo(enabled bool) LocalOption {
	return func(l *Local) {
		l.sudo = enabled
	}
}

// WithShell replaces the default "sh -c". The command is appended as the
// last argument.
func WithShell(shell ...string) LocalOption {
	return func(l *Local) {
		if len(shell) > 0 {
			l.shell = shell
		}
	}
}

// WithTimeout bounds each CheckOutput call. Zero means no limit.
func WithTimeout(d time.Duration) LocalOption {
	return func(l *Local) {
		l.timeout = d
	}
}

// NewLocal returns a Local executor running commands through sh -c.
func NewLocal(opts ...LocalOption) *Local {
	l := &Local{shell: []string{"sh", "-c"}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Build returns command as it will be handed to the shell.
func (l *Local) Build(command string) string {
	if l.sudo {
		return "sudo " + command
	}
	return command
}

// Run executes command. A non-zero exit is reported in the result, a
// canceled or expired ctx as its error.
func (l *Local) Run(ctx context.Context, command string) (*Command, error) {
	command = l.Build(command)
	slog.Debug("local run command", "command", command)

	args := append(append([]string{}, l.shell[1:]...), command)
	cmd := exec.CommandContext(ctx, l.shell[0], args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &Command{Command: command, Stats: Stats{Start: time.Now()}}
	err := cmd.Run()
	res.Stats.Duration = time.Since(res.Stats.Start)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitStatus = exitErr.ExitCode()
		slog.Debug("local command exited", "command", command, "status", res.ExitStatus)
		return res, nil
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, err
}

// CheckOutput implements firewalld.Runner using the configured timeout.
func (l *Local) CheckOutput(command string) (string, error) {
	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	return CheckOutput(ctx, l, command)
}
