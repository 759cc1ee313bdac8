// factcore is an interactive console over a tag-keyed fact store.
// Usage: factcore [--version] [--plain] [--script <file>] [--trace] [--preset <name>]... [--no-slots] [--watch] <content_dir>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/nathoo/factcore/cli"
	"github.com/nathoo/factcore/config"
	"github.com/nathoo/factcore/engine"
	"github.com/nathoo/factcore/engine/save"
	"github.com/nathoo/factcore/loader"
	"github.com/nathoo/factcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: factcore [--version] [--plain] [--script <file>] [--trace] [--preset <name>]... [--no-slots] [--watch] <content_dir>"

// options holds the parsed command line on top of the environment config.
type options struct {
	version    bool
	plain      bool
	trace      bool
	watch      bool
	noSlots    bool
	contentDir string
	scriptFile string
	presets    []string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseArgs(args []string, cfg config.Config) (options, error) {
	opts := options{
		plain:   cfg.Plain,
		watch:   cfg.Watch,
		presets: append([]string(nil), cfg.Presets...),
	}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			opts.version = true
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--watch":
			opts.watch = true
		case "--no-slots":
			opts.noSlots = true
		case "--script":
			if i+1 >= len(args) {
				return options{}, errors.New("--script requires a file path")
			}
			i++
			opts.scriptFile = args[i]
		case "--preset":
			if i+1 >= len(args) {
				return options{}, errors.New("--preset requires a preset name")
			}
			i++
			opts.presets = append(opts.presets, args[i])
		default:
			if opts.contentDir == "" {
				opts.contentDir = args[i]
			}
		}
	}
	if opts.contentDir == "" {
		opts.contentDir = cfg.ContentDir
	}
	if opts.contentDir == "" && !opts.version {
		return options{}, errors.New(usage)
	}
	return opts, nil
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := parseArgs(args, cfg)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Printf("factcore %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	interactive := opts.scriptFile == "" && !opts.plain && isTerminal()

	logger, closeLog, err := newLogger(cfg, interactive)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closeLog()

	content, err := loader.Load(opts.contentDir, logger)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	session := engine.New(content, logger)
	defer session.Close()

	if len(opts.presets) > 0 {
		if _, err := session.ApplyPreset(opts.presets...); err != nil {
			return err
		}
	}

	var slots *save.Slots
	if !opts.noSlots {
		slots, err = save.OpenSlots(cfg.SlotsDB)
		if err != nil {
			logger.Printf("save slots unavailable, using JSON files: %v", err)
			slots = nil
		} else {
			defer slots.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	banner := []string{
		fmt.Sprintf("factcore %s: %d presets, %d conditions from %s",
			version, len(content.Presets), len(content.Conditions), opts.contentDir),
		"Type help for commands, /help for system commands.",
	}

	// Script mode: open file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		fmt.Printf("%s\n\n", banner[0])
		c := cli.New(session, slots, cfg.SaveDir)
		c.In = f
		c.EchoInput = true
		c.Meta.Trace = opts.trace
		c.Meta.ContentDir, c.Meta.Logger = opts.contentDir, logger
		c.Run(ctx)
		return nil
	}

	if !interactive {
		fmt.Printf("%s\n%s\n\n", banner[0], banner[1])
		if opts.watch {
			logger.Printf("--watch needs the interactive console; use /reload instead")
		}
		c := cli.New(session, slots, cfg.SaveDir)
		c.Meta.Trace = opts.trace
		c.Meta.ContentDir, c.Meta.Logger = opts.contentDir, logger
		c.Run(ctx)
		return nil
	}

	meta := &cli.Meta{
		Session:    session,
		Slots:      slots,
		SaveDir:    cfg.SaveDir,
		Trace:      opts.trace,
		ContentDir: opts.contentDir,
		Logger:     logger,
	}

	var changes chan struct{}
	if opts.watch {
		changes = make(chan struct{}, 1)
		go func() {
			err := loader.Watch(ctx, opts.contentDir, logger, func() {
				select {
				case changes <- struct{}{}:
				default:
				}
			})
			if err != nil {
				logger.Printf("content watch stopped: %v", err)
			}
		}()
	}

	return tui.Run(ctx, session, meta, banner, changes)
}

// newLogger writes to FACTCORE_LOG_FILE when set. Without one, the TUI
// discards log output so it cannot tear the alternate screen; the plain
// console logs to stderr.
func newLogger(cfg config.Config, interactive bool) (*log.Logger, func(), error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return log.New(f, cfg.LogPrefix, log.LstdFlags), func() { _ = f.Close() }, nil
	}
	var w io.Writer = os.Stderr
	if interactive {
		w = io.Discard
	}
	return log.New(w, cfg.LogPrefix, log.LstdFlags), func() {}, nil
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
