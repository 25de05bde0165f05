package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unalkalkan/Prompter/internal/pipeline"
	"github.com/unalkalkan/Prompter/pkg/types"
)

type segmentOptions struct {
	json bool
	th   thresholdFlags
}

type segmentResult struct {
	Speaker    string           `json:"speaker,omitempty"`
	Fragments  []string         `json:"fragments"`
	Thresholds types.Thresholds `json:"thresholds"`
}

func newSegmentCmd(a *app) *cobra.Command {
	opts := &segmentOptions{}

	cmd := &cobra.Command{
		Use:   "segment [text]",
		Short: "Print the slide fragments of a single script line",
		Long:  "Segment one script line and print one fragment per output line. Reads the line from stdin when no text is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSegment(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the result as JSON")
	opts.th.register(cmd)

	return cmd
}

func (a *app) runSegment(cmd *cobra.Command, args []string, opts *segmentOptions) error {
	th, err := opts.th.resolve(a.cfg)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.Join(strings.Fields(string(data)), " ")
	}

	speaker, fragments, err := pipeline.SegmentText(text, th)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(segmentResult{Speaker: speaker, Fragments: fragments, Thresholds: th})
	}

	for _, fragment := range fragments {
		if speaker != "" {
			fmt.Fprintf(out, "%s: %s\n", speaker, fragment)
		} else {
			fmt.Fprintln(out, fragment)
		}
	}
	return nil
}
