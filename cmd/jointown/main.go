// Command jointown replays person events against a World and prints the
// ownership after every step.
//
// Events come from a scenario file (-scenario) or, one per line, from a file
// or stdin (-events). Optionally the World is instrumented with Prometheus
// metrics (-metrics-addr) and its snapshots are published into a NATS
// JetStream KV bucket (-nats-mode).
//
// Usage:
//
//	jointown -objects 10 < events.txt
//	jointown -config jointown.toml -scenario flow.yaml -metrics-addr :9090 -serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/jointown"
	"github.com/arloliu/jointown/flow"
	"github.com/arloliu/jointown/internal/logging"
	"github.com/arloliu/jointown/internal/metrics"
	"github.com/arloliu/jointown/types"
)

type cliFlags struct {
	config      string
	scenario    string
	events      string
	objects     int
	logLevel    string
	metricsAddr string
	serve       bool
	natsMode    string
	natsURL     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "jointown:", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("jointown", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.config, "config", "", "Path to a YAML or TOML config file")
	fs.StringVar(&f.scenario, "scenario", "", "Path to a YAML scenario file")
	fs.StringVar(&f.events, "events", "-", "Path to an event file, - for stdin")
	fs.IntVar(&f.objects, "objects", -1, "Number of objects, overrides the config file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.BoolVar(&f.serve, "serve", false, "Keep serving metrics after the events until interrupted")
	fs.StringVar(&f.natsMode, "nats-mode", "", "Publish snapshots to NATS KV: embedded or external")
	fs.StringVar(&f.natsURL, "nats-url", "", "NATS server URL in external mode")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		return cliFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return f, nil
}

// overlay applies command line flags on top of the file config.
func (f cliFlags) overlay(cfg *fileConfig) error {
	if f.objects >= 0 {
		cfg.World.Objects = f.objects
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if f.natsMode != "" {
		cfg.NATS.Mode = f.natsMode
	}
	if f.natsURL != "" {
		cfg.NATS.URL = f.natsURL
	}

	return validateConfig(cfg)
}

//nolint:cyclop // linear setup of optional components
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}

	var scenario *flow.Scenario
	if f.scenario != "" {
		scenario, err = flow.LoadScenarioFile(f.scenario)
		if err != nil {
			return err
		}
		cfg.World.Objects = scenario.Objects
	}
	if err := f.overlay(&cfg); err != nil {
		return err
	}
	if scenario != nil && scenario.Objects != cfg.World.Objects {
		return fmt.Errorf("-objects %d conflicts with scenario of %d objects", cfg.World.Objects, scenario.Objects)
	}

	logger, err := logging.New(stderr, cfg.Log)
	if err != nil {
		return err
	}

	var collector types.MetricsCollector = metrics.NewNop()
	var srv *metricsServer
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)
		srv, err = startMetricsServer(cfg.Metrics.Addr, reg, logger)
		if err != nil {
			return err
		}
		defer srv.shutdown()
	}

	w, err := jointown.NewWorld(&cfg.World, jointown.WithLogger(logger), jointown.WithMetrics(collector))
	if err != nil {
		return err
	}

	var pub *snapshotPublisher
	if cfg.NATS.Mode != natsDisabled {
		pub, err = startPublisher(ctx, cfg.NATS, w, logger)
		if err != nil {
			return err
		}
		defer pub.close()
	}

	runner := flow.NewRunner(w, stdout)
	if err := runner.Header(); err != nil {
		return err
	}

	if scenario != nil {
		_, err = runner.RunScenario(ctx, scenario)
	} else {
		err = streamEvents(ctx, runner, f.events, stdin)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, w.String())

	if pub != nil {
		if err := pub.finish(ctx); err != nil {
			return err
		}
	}

	if f.serve && srv != nil {
		logger.Info("events done, serving metrics until interrupted", "addr", srv.addr())
		<-ctx.Done()
	}

	return nil
}

func streamEvents(ctx context.Context, runner *flow.Runner, path string, stdin io.Reader) error {
	rd := stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open events: %w", err)
		}
		defer file.Close()
		rd = file
	}

	_, err := runner.Stream(ctx, rd)

	return err
}
