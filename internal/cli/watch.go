package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/pkg/types"
)

type watchOptions struct {
	input    string
	output   string
	format   string
	title    string
	debounce time.Duration
	th       thresholdFlags
}

func newWatchCmd(a *app) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild a deck whenever its script changes",
		Long: `Build the deck once, then rebuild it each time the script file is saved.
Runs until interrupted. Build errors are logged and the previous output is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Script file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file; defaults to the input name with the format extension")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format (defaults to the configured format)")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Deck title (defaults to the input file name)")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 200*time.Millisecond, "Quiet period after a change before rebuilding")
	opts.th.register(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, opts *watchOptions) error {
	if opts.input == stdio {
		return fmt.Errorf("watch needs a script file, not stdin")
	}

	th, err := opts.th.resolve(a.cfg)
	if err != nil {
		return err
	}
	enc, err := a.encoder(opts.format)
	if err != nil {
		return err
	}

	input, err := filepath.Abs(opts.input)
	if err != nil {
		return err
	}
	output := opts.output
	if output == "" {
		output = defaultOutput(opts.input, enc.Extension())
	}
	if output == stdio {
		return fmt.Errorf("watch writes to a file; stdout is not supported")
	}

	ctx := cmd.Context()
	rebuild := func() {
		if err := a.rebuild(ctx, input, output, opts.title, enc, th); err != nil {
			a.logger.Error("rebuild failed", "input", opts.input, "error", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it, so the directory
	// is watched and events are filtered by name
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(input), err)
	}

	rebuild()
	a.logger.Info("watching script", "input", opts.input, "output", output)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != input {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(opts.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", "error", err)
		case <-pending:
			pending = nil
			rebuild()
		}
	}
}

func (a *app) rebuild(ctx context.Context, input, output, title string, enc render.Encoder, th types.Thresholds) error {
	d, err := a.buildDeck(ctx, nil, input, title, th)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, d); err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}
	if err := writeOutput(nil, output, enc, buf.Bytes()); err != nil {
		return err
	}

	a.logger.Info("deck rebuilt", "output", output, "slides", len(d.Slides))
	return nil
}
