package backend

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
)

// MockCommand is a canned command result as stored in a fixture file.
type MockCommand struct {
	Stdout     string `toml:"stdout"`
	Stderr     string `toml:"stderr,omitempty"`
	ExitStatus int    `toml:"exit_status"`
}

// Fixture is the TOML layout of a mock file:
//
//	[commands."firewall-cmd --get-default-zone"]
//	stdout = "public\n"
type Fixture struct {
	Commands map[string]*MockCommand `toml:"commands"`
}

// Mock replays canned command results. Unknown commands fail with
// ErrCommandNotFound and are remembered in Missing.
type Mock struct {
	mu       sync.Mutex
	commands map[string]*MockCommand
	calls    []string
	missing  map[string]bool
}

// NewMock returns a Mock with no canned results.
func NewMock() *Mock {
	return &Mock{
		commands: make(map[string]*MockCommand),
		missing:  make(map[string]bool),
	}
}

// ParseFixture decodes a TOML fixture. Commands declared without a body
// answer with empty output and exit status zero.
func ParseFixture(data string) (*Fixture, error) {
	fixture := &Fixture{}
	if _, err := toml.Decode(data, fixture); err != nil {
		return nil, fmt.Errorf("decode mock fixture: %w", err)
	}
	if fixture.Commands == nil {
		fixture.Commands = make(map[string]*MockCommand)
	}
	for command, c := range fixture.Commands {
		if c == nil {
			fixture.Commands[command] = &MockCommand{}
		}
	}
	slog.Debug("mock fixture loaded", "commands", len(fixture.Commands))
	return fixture, nil
}

// NewMockFromFile loads the fixture at path into a new Mock.
func NewMockFromFile(path string) (*Mock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mock fixture: %w", err)
	}
	fixture, err := ParseFixture(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m := NewMock()
	m.Load(fixture)
	return m, nil
}

// Load merges the fixture's commands into m, replacing existing entries.
func (m *Mock) Load(fixture *Fixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for command, c := range fixture.Commands {
		m.commands[command] = c
	}
}

// Set registers stdout for a command that exits zero.
func (m *Mock) Set(command, stdout string) {
	m.SetResult(command, MockCommand{Stdout: stdout})
}

// SetResult registers a full result for command.
func (m *Mock) SetResult(command string, c MockCommand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[command] = &c
}

// Run replays the canned result for command.
func (m *Mock) Run(ctx context.Context, command string) (*Command, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, command)

	c, ok := m.commands[command]
	if !ok {
		m.missing[command] = true
		slog.Debug("mock command not found", "command", command)
		return nil, fmt.Errorf("%w: %s", ErrCommandNotFound, command)
	}
	return &Command{
		Command:    command,
		Stdout:     c.Stdout,
		Stderr:     c.Stderr,
		ExitStatus: c.ExitStatus,
	}, nil
}

// CheckOutput implements firewalld.Runner.
func (m *Mock) CheckOutput(command string) (string, error) {
	return CheckOutput(context.Background(), m, command)
}

// Calls returns the commands run so far, in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Missing returns the commands that had no canned result, sorted.
func (m *Mock) Missing() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.missing))
	for command := range m.missing {
		out = append(out, command)
	}
	sort.Strings(out)
	return out
}

// Fixture returns a copy of the canned results.
func (m *Mock) Fixture() *Fixture {
	m.mu.Lock()
	defer m.mu.Unlock()
	fixture := &Fixture{Commands: make(map[string]*MockCommand, len(m.commands))}
	for command, c := range m.commands {
		copied := *c
		fixture.Commands[command] = &copied
	}
	return fixture
}

// Encode writes the fixture as TOML.
func (f *Fixture) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, fmt.Errorf("encode mock fixture: %w", err)
	}
	return buf.Bytes(), nil
}
