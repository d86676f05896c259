// Command traction reads a SimulationInput JSON from a file argument (or stdin),
// runs the simulation, and writes the SimulationLog JSON to stdout.
//
// With -metrics the input is a MetricsInput and the output the planning
// preview of that convoy. With -watch the input file is re-run every time it
// is saved.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/cxd309/traction-engine/internal/config"
	"github.com/cxd309/traction-engine/internal/engine"
)

func main() {
	configPath := flag.String("config", "", "YAML file with default settings")
	metrics := flag.Bool("metrics", false, "preview a convoy instead of running a simulation")
	watch := flag.Bool("watch", false, "re-run whenever the input file changes")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	r := runner{
		metrics: *metrics,
		pretty:  cfg.Output.Pretty,
		opts:    []engine.Option{engine.WithSettings(cfg.Settings()), engine.WithLogger(logger)},
	}

	input := flag.Arg(0)
	if *watch {
		if input == "" {
			fmt.Fprintln(os.Stderr, "-watch needs an input file")
			os.Exit(2)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := r.watch(ctx, input, os.Stdout, logger); err != nil {
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var data []byte
	if input != "" {
		data, err = os.ReadFile(input)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	if err := r.run(data, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		os.Exit(1)
	}
}

type runner struct {
	metrics bool
	pretty  bool
	opts    []engine.Option
}

func (r runner) run(data []byte, w io.Writer) error {
	entry := engine.RunJSON
	if r.metrics {
		entry = engine.MetricsJSON
	}
	result, err := entry(string(data), r.opts...)
	if err != nil {
		return err
	}
	if r.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(result), "", "  "); err != nil {
			return fmt.Errorf("formatting output: %w", err)
		}
		result = buf.String()
	}
	_, err = fmt.Fprintln(w, result)
	return err
}

// watch runs path once and again after every save until ctx is done.
// Failed runs are logged and do not stop the loop.
//
// The directory is watched rather than the file: editors that save by
// renaming a temporary file over path replace the inode a file watch is
// bound to.
func (r runner) watch(ctx context.Context, path string, w io.Writer, logger *slog.Logger) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watching %q: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %q: %w", path, err)
	}

	rerun := func() {
		data, err := os.ReadFile(path)
		if err == nil {
			err = r.run(data, w)
		}
		if err != nil {
			logger.Error("run failed", "input", path, "error", err)
		}
	}
	rerun()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				logger.Info("input changed", "input", path)
				rerun()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
