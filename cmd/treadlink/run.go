package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"treadlink/internal/admin"
	"treadlink/internal/chart"
	"treadlink/internal/config"
	"treadlink/internal/link"
	"treadlink/internal/logging"
	"treadlink/internal/record"
	"treadlink/internal/scenario"
	"treadlink/internal/telemetry"
	"treadlink/internal/tui"
)

var (
	runConfigPath   string
	runSchemaPath   string
	runAddr         string
	runRecordFile   string
	runPrintSamples bool
	runTUI          bool
	runAdminAddr    string
	runLogJSON      bool
)

// sampleEvery is the cadence of passive session capture while running.
const sampleEvery = time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the machine and drive a workout scenario",
	Long:  "run connects the telemetry link, starts the configured scenario, and serves the admin UI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}
		if runAddr != "" {
			cfg.Link.Address = runAddr
		}
		if runRecordFile == "" {
			runRecordFile = cfg.Record.Path
		}

		logger := logging.NewWithOptions(os.Stdout, logging.Options{JSON: runLogJSON})
		var dash *tui.Dashboard
		if runTUI {
			// The TUI owns the terminal; log lines go to its event viewport.
			dash = tui.NewDashboard(cfg)
			defer dash.Close()
			logger = logging.NewWithOptions(dash, logging.Options{})
		}

		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), logger))
		defer cancel()

		store := telemetry.NewStore()
		manager := link.NewManager(store, logger)
		defer manager.Close()
		engine := scenario.NewEngine(manager, store)
		defer engine.Stop()
		series := chart.NewSeries()
		sampler := chart.NewSampler(store, series)
		go sampler.Run(ctx)

		writer, cleanup, err := newSampleWriter(runPrintSamples, runRecordFile, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		if runRecordFile != "" || runPrintSamples {
			recorder := record.NewRecorder(store, writer, logger)
			go captureLoop(ctx, recorder)
		}

		if dash != nil {
			manager.OnStateChange(func(s link.State) {
				dash.LinkState(s, cfg.Link.Address)
			})
			go dashboardLoop(ctx, dash, store, engine)
		}

		srv := admin.NewServer(manager, engine, store, series, cfg)
		go func() {
			logger.Info("admin UI listening", "addr", runAdminAddr)
			if err := srv.Start(ctx, runAdminAddr); err != nil && err != http.ErrServerClosed {
				logger.Error("admin server failed", "err", err)
			}
		}()

		engine.Start(ctx, cfg)
		if err := manager.Connect(cfg.Link.Address); err != nil {
			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		logger.Info("treadlink stopped")
		return nil
	},
}

// captureLoop records one passive sample per second. Pose landmark frames
// arrive over a separate integration; running without one still yields a
// telemetry-only session stream.
func captureLoop(ctx context.Context, recorder *record.Recorder) {
	ticker := time.NewTicker(sampleEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = recorder.Capture(nil)
		}
	}
}

func dashboardLoop(ctx context.Context, dash *tui.Dashboard, store *telemetry.Store, engine *scenario.Engine) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dash.Telemetry(store.Snapshot())
			speed, incline := engine.Targets()
			dash.Scenario(engine.Name(), engine.Running(), speed, incline)
		}
	}
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "config/scenario.yaml", "Path to scenario configuration YAML")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/scenario.cue", "Path to CUE schema file")
	runCmd.Flags().StringVar(&runAddr, "addr", "", "Telemetry endpoint override (ws:// or wss://)")
	runCmd.Flags().StringVar(&runRecordFile, "record", "", "Path to export session samples (JSONL)")
	runCmd.Flags().BoolVar(&runPrintSamples, "print-samples", false, "Print session samples to STDOUT instead of writing to DB")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Render the interactive dashboard")
	runCmd.Flags().StringVar(&runAdminAddr, "admin", ":8080", "Admin UI listen address")
	runCmd.Flags().BoolVar(&runLogJSON, "log-json", false, "Emit logs as JSON")
}
