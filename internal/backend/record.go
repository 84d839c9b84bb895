package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Recorder runs commands on another executor and keeps every result so
// the session can be saved as a mock fixture and replayed offline.
type Recorder struct {
	observe Executor
	mock    *Mock
}

func NewRecorder(observe Executor) *Recorder {
	return &Recorder{observe: observe, mock: NewMock()}
}

func (r *Recorder) Run(ctx context.Context, command string) (*Command, error) {
	res, err := r.observe.Run(ctx, command)
	if err != nil {
		// failures to run at all are not replayable
		return nil, err
	}
	r.mock.SetResult(command, MockCommand{
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		ExitStatus: res.ExitStatus,
	})
	return res, nil
}

func (r *Recorder) CheckOutput(command string) (string, error) {
	return CheckOutput(context.Background(), r, command)
}

func (r *Recorder) Fixture() *Fixture {
	return r.mock.Fixture()
}

// Save writes the recorded commands to path.
func (r *Recorder) Save(path string) error {
	data, err := r.Fixture().Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write mock fixture: %w", err)
	}
	slog.Info("recorded commands saved", "path", path)
	return nil
}
