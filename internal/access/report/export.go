// Package report produces the end-of-day artifacts: a CSV of every
// event, a per-badge summary CSV, and an operator-facing summary in
// the process log.
package report

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/presence"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/types"
)

// NameResolver maps a badge to a display name; badges no longer in the
// directory fall back to "Unknown".
type NameResolver interface {
	Resolve(badgeID string) (types.DirectoryEntry, bool)
}

// Exporter gathers the day's state from its sources at export time.
type Exporter struct {
	Dir       string
	Log       *Log
	Tracker   *presence.Tracker
	Names     NameResolver
	Denials   func() map[string]int
	Intrusion func() int
	Logger    *log.Logger
}

// WriteReports writes the events and summary CSVs, returning both
// paths. Still-open sessions count up to the export moment, the same
// way an operator reading the room would count them.
func (e *Exporter) WriteReports(now time.Time) (eventsPath, summaryPath string, err error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir report dir: %w", err)
	}

	stamp := now.Format("20060102_150405")
	eventsPath = filepath.Join(e.Dir, fmt.Sprintf("access_report_%s.csv", stamp))
	summaryPath = filepath.Join(e.Dir, fmt.Sprintf("access_summary_%s.csv", stamp))

	if err := e.writeEvents(eventsPath); err != nil {
		return "", "", err
	}
	if err := e.writeSummary(summaryPath, now); err != nil {
		return "", "", err
	}
	return eventsPath, summaryPath, nil
}

func (e *Exporter) writeEvents(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "event_type", "badge_id", "name", "result", "reason"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ev := range e.Log.Events() {
		rec := []string{
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			string(ev.Type),
			ev.BadgeID,
			ev.Name,
			string(ev.Result),
			ev.Reason,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write event row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (e *Exporter) writeSummary(path string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"badge_id", "name", "total_hours", "total_minutes", "denied_attempts"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	denials := e.Denials()
	for _, rec := range e.Tracker.Snapshot() {
		total := totalTime(rec, now)
		hours := int(total.Hours())
		minutes := int(total.Minutes()) % 60
		row := []string{
			rec.BadgeID,
			e.name(rec.BadgeID),
			strconv.Itoa(hours),
			strconv.Itoa(minutes),
			strconv.Itoa(denials[rec.BadgeID]),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// LogSummary prints the end-of-run report to the process log.
func (e *Exporter) LogSummary(now time.Time) {
	e.Logger.Printf("end-of-day report")

	roster := e.Tracker.Snapshot()
	if len(roster) == 0 {
		e.Logger.Printf("  no collaborators recorded today")
	}
	for _, rec := range roster {
		total := totalTime(rec, now)
		h := int(total.Hours())
		m := int(total.Minutes()) % 60
		s := int(total.Seconds()) % 60
		e.Logger.Printf("  %s: %dh %dm %ds", e.name(rec.BadgeID), h, m, s)
	}

	denials := e.Denials()
	if len(denials) == 0 {
		e.Logger.Printf("  no denied access attempts")
	}
	for badge, n := range denials {
		e.Logger.Printf("  denied: %s x%d", e.name(badge), n)
	}

	e.Logger.Printf("  intrusion attempts (unregistered tags): %d", e.Intrusion())
}

func (e *Exporter) name(badgeID string) string {
	if entry, ok := e.Names.Resolve(badgeID); ok {
		return entry.Name
	}
	return "Unknown"
}

func totalTime(rec presence.Record, now time.Time) time.Duration {
	total := rec.Cumulative
	if rec.Inside && !rec.EnteredAt.IsZero() {
		total += now.Sub(rec.EnteredAt)
	}
	return total
}
