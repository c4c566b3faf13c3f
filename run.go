package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/sysinsight/config"
	"gitlab.com/tinyland/lab/sysinsight/display/markup"
	"gitlab.com/tinyland/lab/sysinsight/display/summary"
	"gitlab.com/tinyland/lab/sysinsight/display/tui"
	"gitlab.com/tinyland/lab/sysinsight/insight"
)

// onceWarmup separates the priming sample from the reported one, so the CPU
// load covers a short recent window instead of the time since boot.
const onceWarmup = time.Second

// newLogger returns a text logger on w at the named level. verbose forces debug.
func newLogger(level string, verbose bool, w io.Writer) *slog.Logger {
	lvl := parseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openLogFile opens path for appending, creating parent directories.
// An empty path discards output.
func openLogFile(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{io.Discard}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// newExplainer builds the insight client. A missing API key is not an error:
// it returns a nil client and the notice to show instead.
func newExplainer(cfg *config.Config, logger *slog.Logger) (*insight.Client, string, error) {
	client, err := insight.NewClient(insight.Options{
		Endpoint: cfg.Insight.Endpoint,
		Model:    cfg.Insight.Model,
		APIKey:   cfg.APIKey(),
		Timeout:  cfg.InsightTimeout(),
	}, logger)
	if errors.Is(err, insight.ErrMissingAPIKey) {
		return nil, fmt.Sprintf("AI insight is disabled: set %s to enable it.", cfg.Insight.APIKeyEnv), nil
	}
	if err != nil {
		return nil, "", err
	}
	return client, "", nil
}

// writeDefaultConfig writes the default configuration to path, or to
// config.DefaultPath when path is empty. An existing file is never replaced.
func writeDefaultConfig(w io.Writer, path string) error {
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check config file: %w", err)
	}
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(w, "Wrote default config to %s\n", path)
	return nil
}

// sampleOnce primes s, waits warmup, and returns the next sample.
func sampleOnce(ctx context.Context, s collectors.Sampler, warmup time.Duration) (collectors.SystemSnapshot, error) {
	if _, err := s.Sample(ctx); err != nil {
		return collectors.SystemSnapshot{}, err
	}

	timer := time.NewTimer(warmup)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return collectors.SystemSnapshot{}, ctx.Err()
	case <-timer.C:
	}

	return s.Sample(ctx)
}

// printSnapshot writes snap as indented JSON or as a boxed text summary.
func printSnapshot(w io.Writer, snap collectors.SystemSnapshot, host sysmetrics.HostInfo, asJSON bool, width int) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	_, err := fmt.Fprintln(w, summary.Render(snap, host, width))
	return err
}

// explainSnapshot asks e about snap and prints the styled answer to w. When
// htmlPath is set the answer is also written there as an HTML page.
func explainSnapshot(ctx context.Context, w io.Writer, e tui.Explainer, snap collectors.SystemSnapshot, htmlPath string, width int) error {
	res := <-e.ExplainSnapshot(ctx, snap)
	if res.Err != nil {
		return fmt.Errorf("explain: %w", res.Err)
	}

	fmt.Fprintln(w, markup.Title)
	fmt.Fprintln(w, markup.Terminal(res.Text, width))
	fmt.Fprintln(w, markup.Attribution)

	if htmlPath == "" {
		return nil
	}
	if err := os.WriteFile(htmlPath, []byte(markup.Render(res.Text)), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// watchSnapshots prints one JSON line per poll until ctx is cancelled.
func watchSnapshots(ctx context.Context, w io.Writer, s collectors.Sampler, interval time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sched := collectors.NewScheduler(s, collectors.WithLogger(logger))
	enc := json.NewEncoder(w)

	err := sched.Start(interval, func(snap collectors.SystemSnapshot) {
		if err := enc.Encode(snap); err != nil {
			logger.Warn("write snapshot failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	sched.Stop()
	return nil
}

// snapshotBufferSize bounds the snapshots queued for the dashboard. When the
// event loop falls behind, further snapshots are dropped.
const snapshotBufferSize = 64

// dashboardConsumer stores every snapshot in latest and queues it for the
// dashboard without blocking the sampling goroutine.
func dashboardConsumer(latest *collectors.Latest, updates chan<- collectors.SystemSnapshot, logger *slog.Logger) func(collectors.SystemSnapshot) {
	return func(snap collectors.SystemSnapshot) {
		latest.Store(snap)

		select {
		case updates <- snap:
		default:
			logger.Warn("dashboard update channel full, dropping snapshot", "taken_at", snap.TakenAt())
		}
	}
}

// forwardSnapshots hands queued snapshots to send until done is closed.
func forwardSnapshots(updates <-chan collectors.SystemSnapshot, done <-chan struct{}, send func(tea.Msg)) {
	for {
		select {
		case <-done:
			return
		case snap := <-updates:
			send(tui.SnapshotMsg{Snapshot: snap})
		}
	}
}

// runDashboard polls s into a Latest store and the dashboard until the user
// quits or ctx is cancelled.
func runDashboard(ctx context.Context, s collectors.Sampler, interval time.Duration, opts tui.Options, progOpts ...tea.ProgramOption) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	latest := &collectors.Latest{}
	opts.Latest = latest

	progOpts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, progOpts...)
	p := tea.NewProgram(tui.NewModel(opts), progOpts...)

	updates := make(chan collectors.SystemSnapshot, snapshotBufferSize)
	done := make(chan struct{})
	defer close(done)

	sched := collectors.NewScheduler(s, collectors.WithLogger(opts.Logger))
	if err := sched.Start(interval, dashboardConsumer(latest, updates, opts.Logger)); err != nil {
		return err
	}
	defer sched.Stop()

	// Bridge goroutine: convert queued snapshots into Bubbletea messages.
	go forwardSnapshots(updates, done, p.Send)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
