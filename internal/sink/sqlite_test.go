package sink

import (
	"context"
	"testing"

	"github.com/me/ratefeed/internal/logging"
)

func newTestSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := NewSQLiteSink(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSink_AppendKeepsOrder(t *testing.T) {
	s := newTestSQLiteSink(t)
	ctx := context.Background()

	for _, line := range []string{"2024-01-01,1", "2024-01-02,1.01", "2024-01-03,"} {
		if err := s.Append(ctx, "USD", line); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := s.Lines(ctx, "USD")
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	want := []string{"2024-01-01,1", "2024-01-02,1.01", "2024-01-03,"}
	if len(got) != len(want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSQLiteSink_OverwriteReplacesAllRows(t *testing.T) {
	s := newTestSQLiteSink(t)
	ctx := context.Background()

	if err := s.Append(ctx, "EUR", "2024-01-01,0.85"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(ctx, "EUR", "2024-01-02,0.86"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Overwrite(ctx, "EUR", "2024-01-03,0.87"); err != nil {
		t.Fatalf("Overwrite() error = %v", err)
	}

	got, err := s.Lines(ctx, "EUR")
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if len(got) != 1 || got[0] != "2024-01-03,0.87" {
		t.Errorf("Lines() = %v, want [2024-01-03,0.87]", got)
	}
}

func TestSQLiteSink_DestinationsAreIsolated(t *testing.T) {
	s := newTestSQLiteSink(t)
	ctx := context.Background()

	if err := s.Append(ctx, "EUR", "2024-01-01,0.85"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Overwrite(ctx, "USD", "2024-01-01,1"); err != nil {
		t.Fatalf("Overwrite() error = %v", err)
	}

	eur, err := s.Lines(ctx, "EUR")
	if err != nil {
		t.Fatalf("Lines() error = %v", err)
	}
	if len(eur) != 1 || eur[0] != "2024-01-01,0.85" {
		t.Errorf("EUR lines = %v, want [2024-01-01,0.85]", eur)
	}
}
