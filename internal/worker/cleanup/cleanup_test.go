package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type mockSessionDeleter struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockSessionDeleter) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type mockCleanupMetrics struct {
	cleaned int
}

func (m *mockCleanupMetrics) RecordSessionsCleaned(count int) {
	m.cleaned += count
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRun_DeletesExpiredSessions(t *testing.T) {
	deleter := &mockSessionDeleter{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 7, nil
		},
	}
	recorder := &mockCleanupMetrics{}
	job := NewCleanupJob(deleter, recorder, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if recorder.cleaned != 7 {
		t.Errorf("recorded cleaned = %d, want 7", recorder.cleaned)
	}
}

func TestRun_NothingToDelete_Succeeds(t *testing.T) {
	job := NewCleanupJob(&mockSessionDeleter{}, nil, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRun_DeleteFailure_ReturnsError(t *testing.T) {
	deleter := &mockSessionDeleter{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}
	job := NewCleanupJob(deleter, nil, discardLogger())

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
