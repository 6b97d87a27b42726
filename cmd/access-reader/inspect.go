package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store/sqlite"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/config"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/db"
)

// openStores opens the local database for offline inspection while the
// reader is not running.
func openStores(ctx context.Context) (*sqlite.OutboxStore, *sqlite.DirectoryStore, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	sqlDB, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return nil, nil, nil, err
	}

	writer := db.NewWorker(sqlDB)
	cleanup := func() {
		writer.Close()
		_ = sqlDB.Close()
	}
	return sqlite.NewOutboxStore(sqlDB, writer), sqlite.NewDirectoryStore(sqlDB, writer), cleanup, nil
}

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "List events still waiting for delivery",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		outbox, _, cleanup, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		items, err := outbox.Pending(ctx)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("outbox empty")
			return nil
		}

		for _, it := range items {
			fmt.Printf("%-6d %-14s %-13s %-8s attempts=%d  %s  %s\n",
				it.ID, it.Event.BadgeID, it.Event.Type, it.Event.Result,
				it.Attempts, it.Event.Timestamp.Format(time.RFC3339), it.Event.Reason)
		}
		fmt.Printf("%d pending\n", len(items))
		return nil
	},
}

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "List the cached authorization directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, dirStore, cleanup, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		entries, err := dirStore.Load(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("directory cache empty (no successful sync yet)")
			return nil
		}

		for _, e := range entries {
			status := "denied"
			if e.Authorized {
				status = "authorized"
			}
			fmt.Printf("%-14s %-10s %s\n", e.BadgeID, status, e.Name)
		}
		fmt.Printf("%d badges\n", len(entries))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export still-undelivered events to a CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		outbox, _, cleanup, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		items, err := outbox.Pending(ctx)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
			return fmt.Errorf("mkdir report dir: %w", err)
		}
		path := filepath.Join(cfg.ReportDir, fmt.Sprintf("access_pending_%s.csv", time.Now().Format("20060102_150405")))

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()

		w := csv.NewWriter(f)
		if err := w.Write([]string{"timestamp", "event_type", "badge_id", "name", "result", "reason"}); err != nil {
			return err
		}
		for _, it := range items {
			rec := []string{
				it.Event.Timestamp.Format(time.RFC3339),
				string(it.Event.Type),
				it.Event.BadgeID,
				it.Event.Name,
				string(it.Event.Result),
				it.Event.Reason,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}

		fmt.Printf("wrote %d pending events to %s\n", len(items), path)
		return nil
	},
}
