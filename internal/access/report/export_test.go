package report_test

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/presence"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/report"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

type mapNames map[string]string

func (m mapNames) Resolve(badgeID string) (types.DirectoryEntry, bool) {
	name, ok := m[badgeID]
	return types.DirectoryEntry{BadgeID: badgeID, Name: name}, ok
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteReports(t *testing.T) {
	dayLog := report.NewLog()
	dayLog.Append(types.AccessEvent{
		EventID: "ev-1", BadgeID: "7", Name: "Joao Silva",
		Type: types.EventEntry, Result: types.ResultGranted,
		Reason:    "first entry today",
		Timestamp: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	})
	dayLog.Append(types.AccessEvent{
		EventID: "ev-2", BadgeID: "42", Name: "Maria Santos",
		Type: types.EventAccessDenied, Result: types.ResultDenied,
		Reason:    "collaborator not authorized",
		Timestamp: time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC),
	})

	tracker := presence.New()
	tracker.Toggle("7") // inside at export time

	exp := &report.Exporter{
		Dir:       t.TempDir(),
		Log:       dayLog,
		Tracker:   tracker,
		Names:     mapNames{"7": "Joao Silva", "42": "Maria Santos"},
		Denials:   func() map[string]int { return map[string]int{"42": 1} },
		Intrusion: func() int { return 0 },
		Logger:    log.New(io.Discard, "", 0),
	}

	eventsPath, summaryPath, err := exp.WriteReports(time.Now())
	if err != nil {
		t.Fatalf("WriteReports: %v", err)
	}

	events := readCSV(t, eventsPath)
	if len(events) != 3 { // header + 2 rows
		t.Fatalf("expected 3 event rows incl header, got %d", len(events))
	}
	if events[1][1] != "ENTRY" || events[1][2] != "7" {
		t.Errorf("unexpected first event row: %v", events[1])
	}
	if events[2][1] != "ACCESS_DENIED" || events[2][5] != "collaborator not authorized" {
		t.Errorf("unexpected second event row: %v", events[2])
	}

	summary := readCSV(t, summaryPath)
	if len(summary) != 2 { // header + badge 7
		t.Fatalf("expected 2 summary rows incl header, got %d", len(summary))
	}
	if summary[1][0] != "7" || summary[1][1] != "Joao Silva" {
		t.Errorf("unexpected summary row: %v", summary[1])
	}
	if summary[1][4] != "0" {
		t.Errorf("badge 7 has no denials, got %s", summary[1][4])
	}
}

func TestLogSummary_DoesNotPanicOnEmptyDay(t *testing.T) {
	exp := &report.Exporter{
		Dir:       t.TempDir(),
		Log:       report.NewLog(),
		Tracker:   presence.New(),
		Names:     mapNames{},
		Denials:   func() map[string]int { return nil },
		Intrusion: func() int { return 0 },
		Logger:    log.New(io.Discard, "", 0),
	}
	exp.LogSummary(time.Now())
}
