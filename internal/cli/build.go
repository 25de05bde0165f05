package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/unalkalkan/Prompter/internal/deck"
	"github.com/unalkalkan/Prompter/internal/parser"
	"github.com/unalkalkan/Prompter/internal/pipeline"
	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/internal/storage"
	"github.com/unalkalkan/Prompter/pkg/types"
)

// stdio names standard input or output in -i and -o
const stdio = "-"

type buildOptions struct {
	input  string
	output string
	format string
	title  string
	store  bool
	th     thresholdFlags
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a slide deck from a script",
		Long: `Build a slide deck from a plain-text script, one line per script line.
The deck is written to --output, to stdout with "-o -", and optionally to the
configured artifact store with --store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", `Script file ("-" for stdin)`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `Output file ("-" for stdout); defaults to the input name with the format extension`)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: "+strings.Join(render.Formats(), ", ")+" (defaults to the configured format)")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Deck title (defaults to the input file name)")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Also save the deck to the configured artifact store")
	opts.th.register(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, opts *buildOptions) error {
	th, err := opts.th.resolve(a.cfg)
	if err != nil {
		return err
	}

	enc, err := a.encoder(opts.format)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = defaultOutput(opts.input, enc.Extension())
	}

	d, err := a.buildDeck(cmd.Context(), cmd.InOrStdin(), opts.input, opts.title, th)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, d); err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}

	if err := writeOutput(cmd.OutOrStdout(), output, enc, buf.Bytes()); err != nil {
		return err
	}
	a.logger.Info("deck written", "output", output, "format", enc.Extension(), "slides", len(d.Slides))

	if opts.store {
		if err := a.storeDeck(cmd.Context(), d, enc.Extension(), buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "stored deck %s\n", d.ID)
	}

	return nil
}

func (a *app) encoder(format string) (render.Encoder, error) {
	if format == "" {
		format = a.cfg.Render.Format
	}
	return render.NewEncoder(format)
}

// buildDeck reads a script from path, or from stdin when path is "-", and
// builds its deck
func (a *app) buildDeck(ctx context.Context, stdin io.Reader, path, title string, th types.Thresholds) (*types.Deck, error) {
	script, err := readScript(stdin, path)
	if err != nil {
		return nil, err
	}

	// Unknown extensions are read as plain text
	factory := parser.NewFactory()
	p, err := factory.GetParser(filepath.Ext(path))
	if err != nil {
		if p, err = factory.GetParser("txt"); err != nil {
			return nil, err
		}
	}

	if title == "" {
		title = defaultTitle(path, a.cfg.Render.Title)
	}

	return pipeline.NewBuilder(p, a.logger).Build(ctx, title, script, th)
}

func (a *app) storeDeck(ctx context.Context, d *types.Deck, ext string, data []byte) error {
	adapter, err := storage.NewAdapter(a.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage adapter: %w", err)
	}
	defer adapter.Close()

	repo := deck.NewRepository(adapter)
	d.Formats = []string{ext}
	if err := repo.SaveDeck(ctx, d); err != nil {
		return fmt.Errorf("failed to store deck: %w", err)
	}
	if err := repo.SaveArtifact(ctx, d.ID, ext, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}
	return nil
}

func readScript(stdin io.Reader, path string) ([]byte, error) {
	if path == stdio {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return data, nil
}

// writeOutput writes data to a file, or to stdout for "-". Binary formats are
// never written to a terminal.
func writeOutput(stdout io.Writer, output string, enc render.Encoder, data []byte) error {
	if output != stdio {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if f, ok := stdout.(*os.File); ok && enc.Binary() && isTerminal(f) {
		return fmt.Errorf("refusing to write %s output to a terminal; redirect stdout or use --output", enc.Extension())
	}
	_, err := stdout.Write(data)
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func defaultOutput(input, ext string) string {
	if input == stdio {
		return stdio
	}
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	if output := stem + "." + ext; output != input {
		return output
	}
	return stem + ".deck." + ext
}

func defaultTitle(input, fallback string) string {
	if input == stdio {
		return fallback
	}
	base := filepath.Base(input)
	if title := strings.TrimSuffix(base, filepath.Ext(base)); title != "" {
		return title
	}
	return fallback
}
