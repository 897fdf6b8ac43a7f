// Command newman is a demo host: the calc, greet, alerts and config
// namespaces exposed as a command line, with failures journaled to the alert
// store.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/scbrown/newman/internal/alert"
	"github.com/scbrown/newman/internal/config"
	"github.com/scbrown/newman/internal/demo/alerts"
	"github.com/scbrown/newman/internal/demo/calc"
	"github.com/scbrown/newman/internal/demo/greet"
	"github.com/scbrown/newman/internal/demo/settings"
	"github.com/scbrown/newman/internal/logging"
	"github.com/scbrown/newman/internal/store"
	"github.com/scbrown/newman/pkg/newman"
)

const description = `newman turns Go functions into commands.

Required parameters are positional arguments, parameters with defaults are
flags and variadic parameters take the remaining arguments. Global flags go
before the namespace:

  newman --dry-run true calc divide 1 3 --precision 4`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	calc.Stdout, greet.Stdout, alerts.Stdout, settings.Stdout = stdout, stdout, stdout, stdout

	app := newman.New("newman", description, newman.WithArgs(args), newman.WithOutput(stdout, stderr))
	for _, top := range []struct {
		name string
		def  any
	}{
		{"config", ""},
		{"log_level", ""},
		{"dry_run", false},
	} {
		if err := app.AddTopLevel(top.name, top.def); err != nil {
			fmt.Fprintln(stderr, "newman:", err)
			return 1
		}
	}
	for _, ns := range []struct {
		module newman.Module
		name   string
	}{
		{calc.Module, "calc"},
		{greet.Module, "greet"},
		{alerts.Module, "alerts"},
		{settings.Module, "config"},
	} {
		if err := app.Register(ns.module, ns.name); err != nil {
			fmt.Fprintln(stderr, "newman:", err)
			return 1
		}
	}

	p, err := app.Parse()
	if err != nil {
		code, _ := app.Run(ctx)
		return code
	}
	top := p.TopLevelArgs()

	configPath, _ := top["config"].(string)
	settings.ConfigPath = configPath
	alerts.ConfigPath = configPath
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(stderr, "newman:", err)
		return 1
	}
	levelName, _ := top["log_level"].(string)
	if levelName == "" {
		levelName = cfg.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		fmt.Fprintln(stderr, "newman:", err)
		return 1
	}
	logger := logging.New(stderr, level, cfg.LogFormat)
	app.SetLogger(logger)

	if dryRun, _ := top["dry_run"].(bool); dryRun {
		if _, _, ok := p.Operation(); ok {
			fmt.Fprintln(stdout, p.String())
			return 0
		}
	}

	if target := cfg.StoreTarget(); target != "" {
		threshold, err := alert.ParseSeverity(cfg.AlertThreshold)
		if err != nil {
			fmt.Fprintln(stderr, "newman:", err)
			return 1
		}
		s, err := store.Open(target)
		if err != nil {
			logger.Warn("alert journal unavailable", "target", target, "error", err)
		} else {
			defer s.Close()
			app.AttachSink(alert.NewStoreSink(s), threshold)
		}
	}

	code, _ := app.Run(ctx)
	return code
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}
