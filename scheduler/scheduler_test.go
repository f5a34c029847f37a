package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(t)

	id, err := s.AddJob("backup", "0 3 * * *", func() error { return nil })
	if err != nil {
		t.Fatalf("AddJob() error = %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("AddJob() returned nil job id")
	}
	names := s.JobNames()
	if len(names) != 1 || names[0] != "backup" {
		t.Fatalf("JobNames() = %v, want [backup]", names)
	}
}

func TestAddJobRejectsBadInput(t *testing.T) {
	s := newTestScheduler(t)
	noop := func() error { return nil }

	tests := []struct {
		name    string
		job     string
		cron    string
		wantErr error
	}{
		{"empty name", "  ", "0 3 * * *", ErrEmptyJobName},
		{"empty cron", "backup", "", ErrEmptyCronExpr},
		{"malformed cron", "backup", "every night", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddJob(tt.job, tt.cron, noop)
			if err == nil {
				t.Fatal("AddJob() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddJob() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if n := len(s.JobNames()); n != 0 {
		t.Fatalf("registered jobs = %d, want 0", n)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := newTestScheduler(t)
	s.Start()
	if err := s.Stop(); err != nil {
		t.Fatalf("first Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}

	var nilScheduler *Scheduler
	if err := nilScheduler.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("nil Stop() error = %v, want ErrNotInitialized", err)
	}
}

func TestTimedReturnsTaskError(t *testing.T) {
	s := newTestScheduler(t)
	boom := errors.New("boom")

	calls := 0
	run := s.timed("backup", func() error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if err := run(); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if err := run(); !errors.Is(err, boom) {
		t.Fatalf("second run error = %v, want %v", err, boom)
	}
}
