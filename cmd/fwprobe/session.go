//go:build linux
// +build linux

package main

import (
	"context"
	"log/slog"

	"fwprobe/internal/backend"
	"fwprobe/internal/config"
	"fwprobe/internal/firewalld"
)

// session is one opened backend plus whatever has to happen when the
// command finishes. The timeout bounds each query, not the session, so
// browse can keep querying for as long as it runs.
type session struct {
	querier  firewalld.Querier
	client   *firewalld.Client
	mock     *backend.Mock
	recorder *backend.Recorder
	record   string
}

func openSession(ctx context.Context, o *options) (*session, error) {
	s := &session{record: o.record}

	if o.backend == config.BackendDBus {
		client, err := firewalld.NewClient(ctx, o.timeout)
		if err != nil {
			return nil, err
		}
		slog.Debug("session opened", "backend", o.backend, "firewalld", client.Version(), "api", client.APIVersion())
		s.client = client
		s.querier = client
		return s, nil
	}

	var exec backend.Executor
	switch o.backend {
	case config.BackendMock:
		mock, err := backend.NewMockFromFile(o.mockFile)
		if err != nil {
			return nil, err
		}
		s.mock = mock
		exec = mock
	default:
		exec = backend.NewLocal(backend.WithShell(o.shell...), backend.WithSudo(o.sudo))
	}

	if o.record != "" {
		s.recorder = backend.NewRecorder(exec)
		exec = s.recorder
	}
	slog.Debug("session opened", "backend", o.backend, "sudo", o.sudo, "record", o.record, "timeout", o.timeout)
	s.querier = firewalld.New(backend.Bind(ctx, exec, o.timeout))
	return s, nil
}

// close releases the backend and writes the recording, if any. Commands
// the mock fixture could not answer are logged so the fixture can be
// completed.
func (s *session) close() error {
	var err error
	if s.mock != nil {
		if missing := s.mock.Missing(); len(missing) > 0 {
			slog.Warn("mock fixture has no result for commands", "commands", missing)
		}
		slog.Debug("mock session closed", "calls", len(s.mock.Calls()))
	}
	if s.recorder != nil {
		err = s.recorder.Save(s.record)
	}
	if s.client != nil {
		if cerr := s.client.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
