package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	handleguard "github.com/wippyai/handle-guard"
	"github.com/wippyai/handle-guard/engine"
	"github.com/wippyai/handle-guard/metrics"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to foreign component wasm (default: embedded guest)")
		families    = flag.String("families", "connection,credential,wallet", "Resource families (comma-separated)")
		count       = flag.Int("n", 100, "Proxies to open per family")
		drop        = flag.Float64("drop", 0.5, "Fraction of proxies left to the garbage collector")
		timeout     = flag.Duration("timeout", 10*time.Second, "How long to wait for collection")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		logLevel    = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *count < 0 || *drop < 0 || *drop > 1 {
		fmt.Fprintln(os.Stderr, "Usage: guard [-wasm file.wasm] [-families a,b] [-n count] [-drop 0..1]")
		fmt.Fprintln(os.Stderr, "       guard -i  (interactive mode)")
		os.Exit(1)
	}

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	handleguard.SetLogger(logger.Named("guard"))
	engine.SetLogger(logger.Named("engine"))

	ctx := context.Background()

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = handleguard.CheckCleanup(probeCtx)
	cancel()
	if err != nil {
		logger.Fatal("runtime cleanup unavailable", zap.Error(err))
	}

	handleguard.Subscribe(metrics.New())

	if *metricsAddr != "" {
		srv := metrics.NewServer(*metricsAddr)
		if err := srv.Start(); err != nil {
			logger.Fatal("start metrics server", zap.Error(err))
		}
		defer srv.Close(ctx)
		logger.Info("serving metrics", zap.String("addr", srv.Addr()))
	}

	opts := options{
		wasmFile: *wasmFile,
		families: splitList(*families),
		count:    *count,
		drop:     *drop,
		timeout:  *timeout,
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(ctx, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func run(ctx context.Context, opts options) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	fmt.Printf("Families: %s\n", strings.Join(opts.families, ", "))
	fmt.Printf("Proxies per family: %d (%.0f%% dropped)\n\n", opts.count, opts.drop*100)

	report, err := a.scenario(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-14s %8s %8s\n", "family", "before", "after")
	for _, fam := range report.families {
		fmt.Printf("%-14s %8d %8d\n", fam.name, fam.before, fam.after)
	}
	fmt.Printf("\nEvents: installed=%d released=%d collected=%d\n",
		report.events.installed, report.events.released, report.events.collected)

	if !report.drained {
		return fmt.Errorf("handles still live after %s", opts.timeout)
	}
	fmt.Println("All handles returned.")
	return nil
}
