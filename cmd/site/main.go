// Command site serves the coming-soon landing page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Its-donkey/coming-soon/internal/config"
	"github.com/Its-donkey/coming-soon/internal/storage"
	"github.com/Its-donkey/coming-soon/internal/ui/server"
	"github.com/Its-donkey/coming-soon/logging"
	"github.com/alecthomas/kong"
)

var version = "dev"

type globals struct {
	EnvFile  string `name:"env-file" default:".env" help:"Dotenv file loaded before the environment. A missing file is ignored."`
	Listen   string `help:"Listen address. Overrides LISTEN_ADDR and PORT." placeholder:"ADDR"`
	LogLevel string `name:"log-level" help:"Minimum log level (debug, info, warn, error). Overrides LOG_LEVEL." placeholder:"LEVEL"`
}

type siteCLI struct {
	Globals globals          `embed:""`
	Version kong.VersionFlag `help:"Show version information."`

	Serve serveCmd `cmd:"" default:"withargs" help:"Serve the site."`
	Check checkCmd `cmd:"" help:"Validate configuration and open the email store, then exit."`
}

func newParser(cli *siteCLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("site"),
		kong.Description("Coming-soon landing page with waitlist and launch gift."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli siteCLI
	parser, err := newParser(&cli)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(&cli.Globals)
	err = kctx.Run()
	stop()
	kctx.FatalIfErrorf(err)
}

// setup loads configuration, applies flag overrides and builds the logger.
// The returned close func flushes the log file, if any.
func (g *globals) setup(stdout io.Writer) (config.Config, *logging.Logger, func(), error) {
	noop := func() {}
	cfg, err := config.Load(g.EnvFile)
	if err != nil {
		return config.Config{}, nil, noop, err
	}
	if listen := strings.TrimSpace(g.Listen); listen != "" {
		cfg.ListenAddr = listen
	}
	if level := strings.TrimSpace(g.LogLevel); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, noop, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, noop, err
	}
	writers := []io.Writer{stdout}
	closeLogs := noop
	if dir := strings.TrimSpace(cfg.LogDir); dir != "" {
		rf, err := logging.OpenRotatingFile(logging.RotateOptions{Dir: dir})
		if err != nil {
			return config.Config{}, nil, noop, err
		}
		writers = append(writers, rf)
		closeLogs = func() { _ = rf.Close() }
	}
	return cfg, logging.New(cfg.Site.Name, level, writers...), closeLogs, nil
}

type serveCmd struct{}

func (serveCmd) Run(ctx context.Context, g *globals) error {
	cfg, logger, closeLogs, err := g.setup(os.Stdout)
	if err != nil {
		return err
	}
	defer closeLogs()

	store, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	err = server.Run(ctx, server.Options{Config: cfg, Store: store, Logger: logger})
	if errors.Is(err, context.Canceled) {
		logger.Info("general", "shutting down", nil)
		return nil
	}
	return err
}

type checkCmd struct{}

func (checkCmd) Run(ctx context.Context, g *globals) error {
	return runCheck(ctx, g, os.Stdout)
}

// runCheck opens the configured store without the memory fallback so a
// broken backend is reported.
func runCheck(ctx context.Context, g *globals, out io.Writer) error {
	cfg, logger, closeLogs, err := g.setup(io.Discard)
	if err != nil {
		return err
	}
	defer closeLogs()

	storeCfg := cfg.Store
	storeCfg.Fallback = false
	store, err := storage.Open(ctx, storeCfg, logger)
	if err != nil {
		return fmt.Errorf("check store: %w", err)
	}
	defer store.Close()

	fmt.Fprintf(out, "config ok: listen=%s store=%s faq=%s\n", cfg.ListenAddr, store.Name(), cfg.FAQ.Mode)
	return nil
}
