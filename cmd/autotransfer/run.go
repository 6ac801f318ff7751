package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/franksops/autotransfer/config"
	"github.com/franksops/autotransfer/engine"
	"github.com/franksops/autotransfer/provider"
	"github.com/franksops/autotransfer/store"
	"github.com/franksops/autotransfer/ui"
	"github.com/franksops/autotransfer/watch"
)

// shutdownTimeout bounds how long killed transfers get to report back.
const shutdownTimeout = 10 * time.Second

func run(ctx context.Context, path string, stdout *os.File) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cfg.Settings.LockFile != "" {
		lock := flock.New(cfg.Settings.LockFile)
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return errors.New("another autotransfer instance is already running")
		}
		defer func() { _ = lock.Unlock() }()
	}

	useDashboard := ui.DashboardSupported(cfg.Settings.Dashboard, stdout)

	console := stdout
	if useDashboard {
		console = nil
	}
	logger, closeLog, err := newLogger(cfg.Settings, writerOrNil(console))
	if err != nil {
		return err
	}
	defer closeLog()

	var (
		sink ui.Sink
		dash *ui.Dashboard
	)
	if useDashboard {
		dash = ui.NewDashboard(ui.DefaultLogCapacity, logger)
		sink = dash
	} else {
		sink = ui.NewTextSink(logger)
	}

	var history store.Store
	if cfg.Settings.HistoryDB != "" {
		bs, err := store.NewBoltStore(cfg.Settings.HistoryDB)
		if err != nil {
			return fmt.Errorf("open history %s: %w", cfg.Settings.HistoryDB, err)
		}
		defer bs.Close()
		history = bs
	}
	tracker := engine.NewTracker(history)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fs := provider.NewLocalProvider(nil)
	queue := engine.NewQueue(ctx, engine.Config{
		MaxTransfers: cfg.Settings.MaxSimultaneousTransfers,
		Program:      cfg.Settings.TransferProgram,
		Launcher:     engine.ExecLauncher{},
		Router:       engine.NewRouter(fs),
		Sink:         sink,
		Tracker:      tracker,
	})

	source, err := watch.NewSource(cfg.Profiles, sink)
	if err != nil {
		return err
	}
	filter := watch.NewFilter(cfg, queue, sink)
	handle := func(ev watch.Event) { filter.Handle(ev) }

	watching := make(chan error, 1)
	go func() { watching <- source.Run(ctx, handle) }()

	if err := watch.Scan(ctx, fs, cfg.Profiles, sink, handle); err != nil {
		sink.Error(err.Error())
	}

	if dash != nil {
		if err := ui.NewProgram(dash, queue, tea.WithoutSignalHandler()).Run(ctx); err != nil {
			logger.Error().Err(err).Msg("dashboard stopped")
		}
	} else {
		<-ctx.Done()
	}

	shutdown(queue, source, cancel, sink, logger)
	if err := <-watching; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("watcher stopped")
	}

	if summary := renderSummary(tracker.Summary()); summary != "" {
		fmt.Fprintln(stdout, summary)
	}
	return nil
}

// shutdown kills every running transfer and stops watching. Sources of
// killed transfers stay where they are.
func shutdown(queue *engine.Queue, source *watch.Source, cancel context.CancelFunc, sink ui.Sink, logger zerolog.Logger) {
	sink.Info("Shutting down...")
	queue.Shutdown()
	cancel()
	if err := source.Close(); err != nil {
		logger.Warn().Err(err).Msg("close watcher")
	}

	done := make(chan struct{})
	go func() {
		queue.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		logger.Warn().Int("active", queue.ActiveCount()).Msg("transfers still running after shutdown timeout")
	}
}

// writerOrNil keeps a nil *os.File from becoming a non-nil io.Writer.
func writerOrNil(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}
