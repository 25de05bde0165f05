package cli

import (
	"github.com/spf13/cobra"

	"github.com/unalkalkan/Prompter/internal/render"
)

type previewOptions struct {
	input string
	width int
	th    thresholdFlags
}

func newPreviewCmd(a *app) *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the slides of a script in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			th, err := opts.th.resolve(a.cfg)
			if err != nil {
				return err
			}
			d, err := a.buildDeck(cmd.Context(), cmd.InOrStdin(), opts.input, "", th)
			if err != nil {
				return err
			}
			return render.Preview(cmd.OutOrStdout(), d, opts.width, render.DefaultPreviewStyles())
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", `Script file ("-" for stdin)`)
	cmd.Flags().IntVarP(&opts.width, "width", "w", 60, "Slide width in columns")
	opts.th.register(cmd)
	cmd.MarkFlagRequired("input")

	return cmd
}
