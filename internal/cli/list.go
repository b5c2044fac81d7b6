package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/oligo/mdhl/highlight"
)

func newThemesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available highlighting themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			current := lipgloss.NewRenderer(out).NewStyle().Bold(true)

			for _, name := range highlight.Themes() {
				if strings.EqualFold(name, a.cfg.Theme) {
					fmt.Fprintln(out, current.Render("* "+name))
					continue
				}
				fmt.Fprintln(out, "  "+name)
			}
			return nil
		},
	}
}

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages code can be highlighted in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range highlight.Languages() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
