// Package main is the entry point for the composer engine host.
//
// With -script it runs a Lua editing scenario. With -listen it serves the
// bridge over HTTP and websockets. Otherwise it serves the JSON-lines
// bridge on stdin and stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/composer/internal/bridge"
	"github.com/dshills/composer/internal/config"
	"github.com/dshills/composer/internal/config/watcher"
	"github.com/dshills/composer/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the parsed command line.
type options struct {
	ConfigPath string
	ScriptPath string
	Listen     string
	LogLevel   string
	Watch      bool
	Version    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.Version {
		fmt.Fprintf(stdout, "composer %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Listen != "" {
		cfg.Bridge.Listen = opts.Listen
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	if opts.ScriptPath != "" {
		return runScript(ctx, cfg, logger, opts.ScriptPath, stdout, stderr)
	}

	srv := bridge.NewServer(serverOptions(cfg, logger)...)

	if opts.Watch && opts.ConfigPath != "" {
		w, err := watchConfig(opts.ConfigPath, srv, logger)
		if err != nil {
			logger.Warn("config watch disabled", zap.String("path", opts.ConfigPath), zap.Error(err))
		} else {
			defer w.Close()
		}
	}

	if cfg.Bridge.Listen != "" {
		err = serveHTTP(ctx, cfg.Bridge.Listen, srv, logger)
	} else {
		logger.Info("serving bridge on stdio")
		err = srv.Serve(ctx, stdin, stdout)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("bridge stopped", zap.Error(err))
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("composer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.ScriptPath, "script", "", "Run a Lua scenario and exit")
	fs.StringVar(&opts.ScriptPath, "s", "", "Run a Lua scenario and exit (shorthand)")
	fs.StringVar(&opts.Listen, "listen", "", "Serve the bridge over HTTP on this address")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload configuration when the file changes")
	fs.BoolVar(&opts.Version, "version", false, "Show version information")
	fs.BoolVar(&opts.Version, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "composer - rich text composer engine host\n\n")
		fmt.Fprintf(stderr, "Usage: composer [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  composer                     JSON-lines bridge on stdin/stdout\n")
		fmt.Fprintf(stderr, "  composer -listen :8080       Bridge over websocket at /ws\n")
		fmt.Fprintf(stderr, "  composer -s scenario.lua     Run a scripted scenario\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments %v\n", fs.Args())
		fs.Usage()
		return opts, errors.New("unexpected arguments")
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, errors.New("invalid log level")
	}
	return opts, nil
}

func serverOptions(cfg *config.Config, logger *zap.Logger) []bridge.Option {
	return []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithEngineOptions(cfg.EngineOptions(logger.Named("engine"))...),
		bridge.WithMaxSessions(cfg.Bridge.MaxSessions),
		bridge.WithMarkupEncoding(cfg.Bridge.MarkupEncoding),
	}
}

func runScript(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string, stdout, stderr io.Writer) int {
	st := script.NewState(
		script.WithOutput(stdout),
		script.WithLogger(logger),
		script.WithEngineOptions(cfg.EngineOptions(logger.Named("engine"))...),
	)
	defer st.Close()

	if err := st.RunFile(ctx, path); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// watchConfig reloads the configuration into srv when the file changes.
// Listen address changes need a restart.
func watchConfig(path string, srv *bridge.Server, logger *zap.Logger) (*watcher.Watcher, error) {
	w, err := watcher.New(watcher.WithErrorHandler(func(err error) {
		logger.Warn("config watcher", zap.Error(err))
	}))
	if err != nil {
		return nil, err
	}

	w.OnChange(func(event watcher.Event) {
		cfg, err := config.Load(path)
		if err != nil {
			logger.Error("config reload failed", zap.String("path", event.Path), zap.Error(err))
			return
		}
		logger.Info("config changed", zap.String("path", event.Path), zap.Stringer("op", event.Op))
		srv.Reconfigure(serverOptions(cfg, logger)...)
	})

	if err := w.Watch(path); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func serveHTTP(ctx context.Context, addr string, srv *bridge.Server, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	hs := &http.Server{
		Handler:           bridge.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.Serve(ln) }()
	logger.Info("listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown timed out", zap.Error(err))
	}
	return nil
}
