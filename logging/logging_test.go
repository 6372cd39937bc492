package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/icodeforyou/spotprice-go/database"
)

type memStore struct {
	mu   sync.Mutex
	rows []database.LogEntryRow
	err  error
}

func (s *memStore) SaveLogEntry(_ context.Context, r database.LogEntryRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, r)
	return nil
}

func TestLevelFromString(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		input    *string
		expected slog.Level
	}{
		{nil, slog.LevelInfo},
		{str("debug"), slog.LevelDebug},
		{str("WARN"), slog.LevelWarn},
		{str("Error"), slog.LevelError},
		{str("verbose"), slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := LevelFromString(tt.input); got != tt.expected {
			t.Errorf("LevelFromString(%v) got %v, wanted %v", tt.input, got, tt.expected)
		}
	}
}

func TestSQLiteHandlerJSON(t *testing.T) {
	store := &memStore{}
	logger := slog.New(NewSQLiteHandler(store, slog.LevelInfo, LogAttrFormatJSON)).
		With(slog.String("module", "pricing"))

	logger.Debug("dropped")
	logger.Info("day priced", slog.String("day", "2025-01-08"), slog.Int("highCost", 8))

	if len(store.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.rows))
	}
	row := store.rows[0]
	if row.Message != "day priced" || row.Level != int(slog.LevelInfo) {
		t.Errorf("unexpected row %+v", row)
	}
	expected := `[{"module":"pricing"},{"day":"2025-01-08"},{"highCost":"8"}]`
	if row.Attrs != expected {
		t.Errorf("got attrs %s, wanted %s", row.Attrs, expected)
	}
	if row.Timestamp.IsZero() {
		t.Errorf("expected a timestamp")
	}
}

func TestSQLiteHandlerText(t *testing.T) {
	store := &memStore{}
	logger := slog.New(NewSQLiteHandler(store, slog.LevelDebug, LogAttrFormatText)).WithGroup("req")

	logger.Warn("odd value", slog.String("q", "a=b;c"))

	if len(store.rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(store.rows))
	}
	expected := `req.q=a\=b\;c`
	if store.rows[0].Attrs != expected {
		t.Errorf("got attrs %s, wanted %s", store.rows[0].Attrs, expected)
	}
}

func TestMultiHandler(t *testing.T) {
	var buf bytes.Buffer
	console := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	store := &memStore{}
	db := NewSQLiteHandler(store, slog.LevelWarn, LogAttrFormatJSON)

	logger := slog.New(NewMultiHandler(console, db)).With(slog.String("module", "test"))
	logger.Debug("only console")
	logger.Error("both", slog.String("k", "v"))

	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("expected 2 console lines, got %q", buf.String())
	}
	if len(store.rows) != 1 || store.rows[0].Message != "both" {
		t.Errorf("expected only the error in the store, got %+v", store.rows)
	}
	if !strings.Contains(store.rows[0].Attrs, `{"module":"test"}`) {
		t.Errorf("expected inherited attrs, got %s", store.rows[0].Attrs)
	}
}

func TestMultiHandlerJoinsErrors(t *testing.T) {
	boom := errors.New("disk full")
	h := NewMultiHandler(
		NewSQLiteHandler(&memStore{err: boom}, slog.LevelInfo, LogAttrFormatJSON),
		NewSQLiteHandler(&memStore{}, slog.LevelInfo, LogAttrFormatJSON),
	)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	if err := h.Handle(context.Background(), r); !errors.Is(err, boom) {
		t.Errorf("expected joined error, got %v", err)
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Errorf("expected debug to be disabled")
	}
}
