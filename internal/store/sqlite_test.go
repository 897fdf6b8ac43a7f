package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scbrown/newman/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewCreatesDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")
	s, err := New(filepath.Join(nested, "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(nested); err != nil {
		t.Errorf("expected directory %s to exist: %v", nested, err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s1, err := New(dbPath)
	if err != nil {
		t.Fatalf("first New: %v", err)
	}
	s1.Close()

	// Opening again should not fail (migration is idempotent).
	s2, err := New(dbPath)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	s2.Close()
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.db.Exec("UPDATE schema_version SET version = ?", schemaVersion+1); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	s.Close()

	if _, err := New(dbPath); err == nil {
		t.Fatal("expected error opening a newer schema")
	}
}

func TestRecordAndListAlerts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	a := model.Alert{
		ID:           "alert-1",
		Timestamp:    ts,
		Severity:     model.SeverityError,
		Message:      "division by zero",
		ErrorType:    "*errors.errorString",
		Namespace:    "calc",
		Operation:    "divide",
		InvocationID: "inv-1",
		Host:         "build-3",
	}
	if err := s.RecordAlert(ctx, a); err != nil {
		t.Fatalf("RecordAlert: %v", err)
	}

	alerts, err := s.ListAlerts(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0] != a {
		t.Errorf("alert = %+v, want %+v", alerts[0], a)
	}
}

func TestRecordAlertMinimal(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := model.Alert{ID: "m-1", Timestamp: time.Now().UTC(), Severity: model.SeverityWarning, Message: "slow"}
	if err := s.RecordAlert(ctx, a); err != nil {
		t.Fatalf("RecordAlert: %v", err)
	}
	alerts, err := s.ListAlerts(ctx, ListOpts{})
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Namespace != "" || alerts[0].Host != "" {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestRecordAlertDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := model.Alert{ID: "dup", Timestamp: time.Now().UTC(), Severity: model.SeverityError, Message: "x"}
	if err := s.RecordAlert(ctx, a); err != nil {
		t.Fatalf("first RecordAlert: %v", err)
	}
	if err := s.RecordAlert(ctx, a); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func seedAlerts(t *testing.T, s Store) time.Time {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Add(-48 * time.Hour)
	rows := []struct {
		sev, ns, op string
		age         time.Duration
	}{
		{model.SeverityError, "calc", "divide", 0},
		{model.SeverityError, "calc", "divide", time.Hour},
		{model.SeverityCritical, "alerts", "raise", 2 * time.Hour},
		{model.SeverityWarning, "greet", "hello", 47 * time.Hour},
		{model.SeverityError, "calc", "divide", 47*time.Hour + time.Minute},
	}
	for i, r := range rows {
		a := model.Alert{
			ID:        fmt.Sprintf("a-%d", i),
			Timestamp: base.Add(r.age),
			Severity:  r.sev,
			Message:   "m",
			Namespace: r.ns,
			Operation: r.op,
		}
		if err := s.RecordAlert(ctx, a); err != nil {
			t.Fatalf("RecordAlert: %v", err)
		}
	}
	return base
}

func TestListAlertsFilters(t *testing.T) {
	s := newTestStore(t)
	base := seedAlerts(t, s)
	ctx := context.Background()

	tests := []struct {
		name string
		opts ListOpts
		want []string
	}{
		{"all newest first", ListOpts{}, []string{"a-4", "a-3", "a-2", "a-1", "a-0"}},
		{"severity", ListOpts{Severity: model.SeverityError}, []string{"a-4", "a-1", "a-0"}},
		{"namespace", ListOpts{Namespace: "greet"}, []string{"a-3"}},
		{"operation", ListOpts{Namespace: "calc", Operation: "divide", Limit: 2}, []string{"a-4", "a-1"}},
		{"since", ListOpts{Since: base.Add(24 * time.Hour)}, []string{"a-4", "a-3"}},
		{"limit", ListOpts{Limit: 1}, []string{"a-4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts, err := s.ListAlerts(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListAlerts: %v", err)
			}
			var got []string
			for _, a := range alerts {
				got = append(got, a.ID)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats on empty store: %v", err)
	}
	if empty.Total != 0 || !empty.Earliest.IsZero() {
		t.Errorf("empty stats = %+v", empty)
	}

	seedAlerts(t, s)
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 5 {
		t.Errorf("Total = %d, want 5", st.Total)
	}
	if st.BySeverity[model.SeverityError] != 3 || st.BySeverity[model.SeverityCritical] != 1 {
		t.Errorf("BySeverity = %v", st.BySeverity)
	}
	if len(st.TopOperations) == 0 || st.TopOperations[0] != (NameCount{Name: "calc divide", Count: 3}) {
		t.Errorf("TopOperations = %+v", st.TopOperations)
	}
	if st.Last24h != 2 {
		t.Errorf("Last24h = %d, want 2", st.Last24h)
	}
	if !st.Earliest.Before(st.Latest) {
		t.Errorf("Earliest %v not before Latest %v", st.Earliest, st.Latest)
	}
}
