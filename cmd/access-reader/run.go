package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/delivery"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/directory"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/engine"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/feedback"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/presence"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/report"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/access/store/sqlite"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/apiclient"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/config"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/db"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/httpapi"
	"github.com/GabrielViecili/RFID-and-distributed-systems/internal/reader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reader: scan loop, delivery worker, and diagnostics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, "access-reader ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, sqlDB); err != nil {
			logger.Printf("dev seed failed: %v", err)
		}
	}

	writer := db.NewWorker(sqlDB)
	defer writer.Close()

	outbox := sqlite.NewOutboxStore(sqlDB, writer)
	dirStore := sqlite.NewDirectoryStore(sqlDB, writer)

	api := apiclient.New(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)

	cache := directory.New(api, dirStore, logger)
	if n, err := cache.Seed(ctx); err != nil {
		logger.Printf("directory seed: %v", err)
	} else {
		logger.Printf("directory cache seeded with %d entries", n)
	}
	if _, err := cache.Refresh(ctx); err != nil {
		logger.Printf("initial directory refresh failed, running from cached snapshot: %v", err)
	}

	tracker := presence.New()
	eng := engine.New(cache, tracker, logger)
	dayLog := report.NewLog()

	pipeline := delivery.NewPipeline(api, outbox, cfg.RequestTimeout, logger)
	worker := delivery.NewWorker(pipeline, cache, cfg.FlushInterval, logger)
	worker.Start(ctx)

	var dispatcher feedback.Dispatcher = feedback.NewConsole(logger)
	if cfg.NATSURL != "" {
		nd, err := feedback.NewNATSDispatcher(cfg.NATSURL, cfg.FeedbackSubject, logger)
		if err != nil {
			logger.Printf("feedback bus unavailable, using console: %v", err)
		} else {
			dispatcher = nd
			defer nd.Close()
		}
	}

	var srv *httpapi.Server
	if cfg.HTTPAddr != "" {
		srv = httpapi.NewServer(httpapi.Dependencies{
			Logger:  logger,
			Addr:    cfg.HTTPAddr,
			Outbox:  outbox,
			Cache:   cache,
			Tracker: tracker,
			DayLog:  dayLog,
		})
		go func() {
			logger.Printf("diagnostics listening on %s", cfg.HTTPAddr)
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("diagnostics server error: %v", err)
			}
		}()
	}

	source := reader.NewLineSource(os.Stdin)
	defer source.Close()

	loop := &reader.Loop{
		Source:   source,
		Debounce: engine.NewDebouncer(cfg.DebounceWindow),
		Engine:   eng,
		DayLog:   dayLog,
		Pipeline: pipeline,
		Feedback: dispatcher,
		Logger:   logger,
	}

	logger.Printf("reading badge scans from stdin (one tag id per line)")
	loopErr := loop.Run(ctx)
	stop()

	// Shutdown: stop the periodic worker, then one bounded attempt to
	// flush whatever is still queued before we go dark.
	worker.Stop()
	worker.FinalDrain(cfg.ShutdownGrace)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}

	exporter := &report.Exporter{
		Dir:       cfg.ReportDir,
		Log:       dayLog,
		Tracker:   tracker,
		Names:     cache,
		Denials:   eng.Denials,
		Intrusion: eng.Intrusions,
		Logger:    logger,
	}
	now := time.Now()
	if evPath, sumPath, err := exporter.WriteReports(now); err != nil {
		logger.Printf("report export failed: %v", err)
	} else {
		logger.Printf("reports written: %s %s", evPath, sumPath)
	}
	exporter.LogSummary(now)

	return loopErr
}
