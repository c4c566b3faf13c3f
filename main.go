// sysinsight samples host metrics and explains them with an AI model.
//
// It polls CPU, memory, disk and process counters, shows them on a live
// terminal dashboard, and on request sends a summary of the latest snapshot
// to the Gemini API for a plain-language diagnosis.
//
// Usage:
//
//	sysinsight [flags]
//
// Flags:
//
//	-config string     Path to configuration file (default: ~/.config/sysinsight/config.yaml)
//	-init-config       Write a default config file (to -config or the default path) and exit
//	-tui               Launch the interactive dashboard (default when stdout is a terminal)
//	-once              Print one snapshot and exit
//	-json              Print the snapshot as JSON (implies -once)
//	-watch             Print a JSON snapshot per poll until interrupted
//	-explain           Take a snapshot, ask the AI model about it, print the answer
//	-html string       Also write the explanation as an HTML page (with -explain)
//	-interval duration Poll interval override
//	-top int           Number of top processes override
//	-keys              Print dashboard key bindings
//	-verbose           Enable debug logging
//	-version           Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/tinyland/lab/sysinsight/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/sysinsight/config"
	"gitlab.com/tinyland/lab/sysinsight/display/summary"
	"gitlab.com/tinyland/lab/sysinsight/display/tui"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/sysinsight/config.yaml)")
		initConfig  = flag.Bool("init-config", false, "Write a default config file and exit")
		runTUI      = flag.Bool("tui", false, "Launch the interactive dashboard")
		once        = flag.Bool("once", false, "Print one snapshot and exit")
		jsonOut     = flag.Bool("json", false, "Print the snapshot as JSON (implies -once)")
		watch       = flag.Bool("watch", false, "Print a JSON snapshot per poll until interrupted")
		explain     = flag.Bool("explain", false, "Ask the AI model about a fresh snapshot and print the answer")
		htmlPath    = flag.String("html", "", "Also write the explanation as an HTML page (with -explain)")
		interval    = flag.Duration("interval", 0, "Poll interval override (e.g. 5s)")
		topN        = flag.Int("top", 0, "Number of top processes override")
		showKeys    = flag.Bool("keys", false, "Print dashboard key bindings")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	// ---------------------------------------------------------------
	// Commands that don't require config
	// ---------------------------------------------------------------

	if *showVersion {
		fmt.Printf("sysinsight %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if *showKeys {
		fmt.Print(tui.KeyTable())
		os.Exit(0)
	}

	if *initConfig {
		if err := writeDefaultConfig(os.Stdout, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "init-config: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *htmlPath != "" && !*explain {
		fmt.Fprintln(os.Stderr, "-html requires -explain")
		os.Exit(2)
	}

	// ---------------------------------------------------------------
	// Load configuration
	// ---------------------------------------------------------------

	var cfg *config.Config
	var cfgErr error

	if *configPath != "" {
		cfg, cfgErr = config.LoadFromFile(*configPath)
	} else {
		cfg, cfgErr = config.Load()
	}
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", cfgErr)
		os.Exit(1)
	}

	applyOverrides(cfg, *interval, *topN)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	interactive := *runTUI || (!*once && !*jsonOut && !*watch && !*explain && summary.IsTerminal(os.Stdout))

	// The dashboard owns the terminal, so its logs go to a file.
	logOut := io.Writer(os.Stderr)
	if interactive {
		f, err := openLogFile(cfg.Display.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg.Logging.Level, *verbose, logOut)

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	collector := sysmetrics.NewCollector(
		sysmetrics.NewHostProvider(logger),
		sysmetrics.WithTopN(cfg.Sampler.TopN),
		sysmetrics.WithDiskMount(cfg.Sampler.DiskMount),
		sysmetrics.WithLogger(logger),
	)

	host, err := sysmetrics.ReadHostInfo(ctx)
	if err != nil {
		logger.Warn("host info unavailable", "error", err)
	}

	explainer, disabledReason, err := newExplainer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insight client: %v\n", err)
		os.Exit(1)
	}

	width, _ := summary.DetectTerminalSize()

	// ---------------------------------------------------------------
	// Explain mode
	// ---------------------------------------------------------------

	if *explain {
		if explainer == nil {
			fmt.Fprintln(os.Stderr, disabledReason)
			os.Exit(1)
		}
		snap, err := sampleOnce(ctx, collector, onceWarmup)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sampling failed: %v\n", err)
			os.Exit(1)
		}
		if err := explainSnapshot(ctx, os.Stdout, explainer, snap, *htmlPath, width); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Watch mode
	// ---------------------------------------------------------------

	if *watch {
		if err := watchSnapshots(ctx, os.Stdout, collector, cfg.SampleInterval(), logger); err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// TUI mode
	// ---------------------------------------------------------------

	if interactive {
		defer func() {
			if r := recover(); r != nil {
				// Attempt to restore terminal from alt-screen before printing error.
				fmt.Print("\x1b[?1049l\x1b[?25h")
				fmt.Fprintf(os.Stderr, "sysinsight: TUI panic: %v\n", r)
				os.Exit(1)
			}
		}()

		opts := tui.Options{
			Context:        ctx,
			DisabledReason: disabledReason,
			Host:           host,
			Interval:       cfg.SampleInterval(),
			Theme:          cfg.Display.Theme,
			Logger:         logger,
		}
		// A nil *insight.Client must stay a nil interface.
		if explainer != nil {
			opts.Explainer = explainer
		}
		if err := runDashboard(ctx, collector, cfg.SampleInterval(), opts); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Default: one snapshot
	// ---------------------------------------------------------------

	snap, err := sampleOnce(ctx, collector, onceWarmup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sampling failed: %v\n", err)
		os.Exit(1)
	}
	if err := printSnapshot(os.Stdout, snap, host, *jsonOut, width); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// applyOverrides copies non-zero command line values over the config.
func applyOverrides(cfg *config.Config, interval time.Duration, topN int) {
	if interval > 0 {
		cfg.Sampler.Interval = interval.String()
	}
	if topN > 0 {
		cfg.Sampler.TopN = topN
	}
}
