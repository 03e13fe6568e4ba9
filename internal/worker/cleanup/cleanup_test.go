package cleanup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakeResult struct {
	rowsAffected int64
}

func (r *fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r *fakeResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

// Executor インターフェースに対するモック実装
type mockExecutor struct {
	execCalled bool
	query      string
	args       []interface{}
	result     sql.Result
	err        error
}

func (m *mockExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	m.execCalled = true
	m.query = query
	m.args = args
	return m.result, m.err
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestSweepJob_Run_DeletesExpiredSessions(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 3},
	}
	job := NewSweepJob(mock, logger)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !mock.execCalled {
		t.Fatal("ExecContext should be called")
	}
	if !strings.Contains(mock.query, "DELETE FROM sessions") {
		t.Errorf("query = %q, want DELETE FROM sessions", mock.query)
	}
	if !strings.Contains(mock.query, "expires_at < now()") {
		t.Errorf("query = %q, want expires_at condition", mock.query)
	}
}

func TestSweepJob_Run_LogsDeletedCount(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 7},
	}
	job := NewSweepJob(mock, logger)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if entry["deleted_count"] != float64(7) {
		t.Errorf("deleted_count = %v, want 7", entry["deleted_count"])
	}
}

func TestSweepJob_Run_NoExpiredSessions_Succeeds(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		result: &fakeResult{rowsAffected: 0},
	}
	job := NewSweepJob(mock, logger)

	// 冪等: 削除対象ゼロでもエラーにならない
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestSweepJob_Run_ExecError_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	mock := &mockExecutor{
		err: errors.New("connection refused"),
	}
	job := NewSweepJob(mock, logger)

	if err := job.Run(context.Background()); err == nil {
		t.Error("expected error when ExecContext fails")
	}
}
