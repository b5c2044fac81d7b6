package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/oligo/mdhl/codeview"
	"github.com/oligo/mdhl/scan"
)

func newScanCommand(a *app) *cobra.Command {
	var flags viewFlags
	var decorations bool

	cmd := &cobra.Command{
		Use:   "scan FILE",
		Short: "Print the code regions found in a markdown document",
		Long: `Print the worklist of one scan pass over a markdown document: the code
regions to highlight and the ones whose highlighting is removed. With
--decorations the resulting decorations are listed too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, a.cfg)
			if err != nil {
				return err
			}

			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			state := codeview.NewState(string(text), flags.selection(), cfg.LivePreview)
			items, err := scan.New(scan.Options{InlineHighlighting: cfg.InlineHighlighting}).Scan(scan.Input{
				Tree:        state.Tree,
				Source:      state.Doc,
				Selection:   state.Selection,
				LivePreview: state.LivePreview,
				DocChanged:  true,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			heading := lipgloss.NewRenderer(out).NewStyle().Bold(true)

			fmt.Fprintln(out, heading.Render(fmt.Sprintf("worklist (%d)", len(items))))
			for _, item := range items {
				fmt.Fprintln(out, "  "+item.String())
			}

			if !decorations {
				return nil
			}

			engine, err := openEngine(cmd.Context(), args[0], cfg, flags.selection())
			if err != nil {
				return err
			}
			defer engine.OnDestroy()

			all := engine.Decorations().All()
			fmt.Fprintln(out, heading.Render(fmt.Sprintf("decorations (%d)", len(all))))
			for _, d := range all {
				line := fmt.Sprintf("  %s [%d, %d)", d.Kind, d.Start, d.End)
				if d.Style.Color != "" {
					line += " " + d.Style.Color
				}
				if len(d.Style.Classes) > 0 {
					line += " " + strings.Join(d.Style.Classes, " ")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&decorations, "decorations", "d", false, "highlight and list the decorations")

	return cmd
}
