// Package main is the entry point for the statreporter application.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/pflag"

	"statreporter/internal/collector"
	"statreporter/internal/config"
	"statreporter/internal/live"
	"statreporter/internal/logger"
	"statreporter/internal/report"
	"statreporter/internal/scheduler"
	"statreporter/internal/sender"
	"statreporter/internal/service"
	"statreporter/internal/snapshot"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const startupErrorLogDir = "log/statreporter"

// options are the parsed command-line flags.
type options struct {
	live        bool
	output      string
	configPath  string
	monitorPath string
	loggingPath string
	showVersion bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	flagSet := pflag.NewFlagSet("statreporter", pflag.ContinueOnError)
	flagSet.BoolVarP(&opts.live, "live", "l", false, "show a live terminal view instead of writing a report")
	flagSet.StringVarP(&opts.output, "output", "o", "", "HTML report path (default: ReportPath from the config, rapport_etat_systeme.html)")
	flagSet.StringVar(&opts.configPath, "config", "conf/statreporter/StatReporter.json", "path to main configuration file")
	flagSet.StringVar(&opts.monitorPath, "monitor", "conf/statreporter/Monitor.json", "path to monitor configuration file")
	flagSet.StringVar(&opts.loggingPath, "logging", "conf/statreporter/Logging.json", "path to logging configuration file")
	flagSet.BoolVar(&opts.showVersion, "version", false, "show version information")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.live && opts.output != "" {
		return nil, fmt.Errorf("--output cannot be combined with --live")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err == pflag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if opts.showVersion {
		fmt.Printf("statreporter %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	cfg, mc, lc, err := config.LoadSplit(opts.configPath, opts.monitorPath, opts.loggingPath)
	if err != nil {
		exitStartup("Failed to load configuration", err)
	}

	if err := logger.Init(*lc); err != nil {
		exitStartup("Failed to initialize logger", err)
	}
	defer logger.Close()

	log := logger.WithComponent("main")
	log.Info().
		Str("version", version).
		Str("config", opts.configPath).
		Str("monitor", opts.monitorPath).
		Str("logging", opts.loggingPath).
		Bool("live", opts.live).
		Msg("Starting statreporter")

	svc := service.New(func(ctx context.Context) error {
		return run(ctx, opts, cfg, mc)
	})

	if err := svc.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("statreporter exited with error")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}

	log.Info().Msg("statreporter stopped")
}

func exitStartup(msg string, err error) {
	service.WriteStartupErrorFile(startupErrorLogDir, err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

// setupCollectors creates the collector registry and configures it from MonitorConfig.
func setupCollectors(env *collector.Env, mc *config.MonitorConfig) (*collector.Registry, error) {
	registry := collector.DefaultRegistry(env)
	mc.ApplyDefaults(registry.DefaultConfigs())
	if err := registry.Configure(mc.Collectors); err != nil {
		return nil, fmt.Errorf("failed to configure collectors: %w", err)
	}
	return registry, nil
}

// setupSender creates the sender. It returns nil when publishing is off.
func setupSender(cfg *config.Config) (sender.Sender, error) {
	snd, err := sender.NewSender(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}
	return snd, nil
}

func run(ctx context.Context, opts *options, cfg *config.Config, mc *config.MonitorConfig) error {
	log := logger.WithComponent("main")

	env := collector.NewEnv(cfg)
	registry, err := setupCollectors(env, mc)
	if err != nil {
		return err
	}
	aggregator := snapshot.NewAggregator(registry, env.Clock)

	snd, err := setupSender(cfg)
	if err != nil {
		return err
	}
	if snd != nil {
		defer func() {
			log.Info().Msg("Closing sender")
			if err := snd.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing sender")
			}
		}()
	}

	if !opts.live {
		path := opts.output
		if path == "" {
			path = cfg.ReportPath
		}
		return writeReport(ctx, aggregator, snd, path)
	}

	view := live.NewView(os.Stdout, live.DefaultTheme)
	sched := scheduler.New(aggregator, view, snd, env.Clock, cfg.RefreshInterval)

	cleanupWatchers := setupWatchers(registry, sched, opts)
	defer cleanupWatchers()

	return sched.Run(ctx)
}

// writeReport collects one snapshot, writes it as HTML and publishes it.
func writeReport(ctx context.Context, aggregator *snapshot.Aggregator, snd sender.Sender, path string) error {
	snap := aggregator.Collect(ctx)

	if err := report.WriteFile(path, snap); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", path)

	if snd != nil {
		if err := snd.Send(ctx, snap); err != nil {
			log := logger.WithComponent("main")
			log.Error().Err(err).Msg("Failed to publish snapshot")
		}
	}
	return nil
}

// setupWatchers creates hot-reload watchers for the three configuration
// files. It returns a cleanup function that stops every started watcher.
func setupWatchers(registry *collector.Registry, sched *scheduler.Scheduler, opts *options) func() {
	log := logger.WithComponent("main")
	var watcherMu sync.Mutex
	var cleanups []func()

	start := func(name string, w *config.FileWatcher, err error) {
		if err != nil {
			log.Warn().Err(err).Str("watcher", name).Msg("Failed to create watcher, hot reload disabled")
			return
		}
		if err := w.Start(); err != nil {
			log.Warn().Err(err).Str("watcher", name).Msg("Failed to start watcher")
			_ = w.Stop()
			return
		}
		cleanups = append(cleanups, func() {
			if err := w.Stop(); err != nil {
				log.Error().Err(err).Str("watcher", name).Msg("Error stopping watcher")
			}
		})
	}

	w, err := config.NewConfigWatcher(opts.configPath, func(newCfg *config.Config) {
		watcherMu.Lock()
		defer watcherMu.Unlock()

		if newCfg.RefreshInterval == sched.Interval() {
			return
		}
		if err := sched.SetInterval(newCfg.RefreshInterval); err != nil {
			log.Error().Err(err).Msg("Failed to update refresh interval")
		}
	})
	start("config", w, err)

	w, err = config.NewMonitorWatcher(opts.monitorPath, func(newMC *config.MonitorConfig) {
		watcherMu.Lock()
		defer watcherMu.Unlock()

		log.Info().Msg("Applying monitor configuration changes")
		newMC.ApplyDefaults(registry.DefaultConfigs())
		if err := registry.Configure(newMC.Collectors); err != nil {
			log.Error().Err(err).Msg("Failed to update collector configurations")
			return
		}
		log.Info().Msg("Monitor configuration updated")
	})
	start("monitor", w, err)

	w, err = config.NewLoggingWatcher(opts.loggingPath, func(newLC *logger.Config) {
		watcherMu.Lock()
		defer watcherMu.Unlock()

		if err := logger.Init(*newLC); err != nil {
			log.Error().Err(err).Msg("Failed to update logging configuration")
			return
		}
		mainLog := logger.WithComponent("main")
		mainLog.Info().Msg("Logging configuration updated")
	})
	start("logging", w, err)

	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
}
