package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/oligo/mdhl/codeview"
	"github.com/oligo/mdhl/document"
	"github.com/oligo/mdhl/highlight"
	"github.com/oligo/mdhl/internal/config"
	"github.com/oligo/mdhl/internal/logging"
	"github.com/oligo/mdhl/internal/watch"
	"github.com/oligo/mdhl/textstyle"
	"github.com/oligo/mdhl/textstyle/decoration"
	"github.com/oligo/mdhl/textstyle/syntax"
)

// viewFlags are the flags shared by commands that build an editor state.
type viewFlags struct {
	theme  string
	inline bool
	live   bool
	cursor int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.theme, "theme", "", "highlighting theme (default from config)")
	cmd.Flags().BoolVar(&f.inline, "inline", true, "highlight language tagged inline code")
	cmd.Flags().BoolVar(&f.live, "live", true, "live preview: hide the language tag of inline code")
	cmd.Flags().IntVar(&f.cursor, "cursor", -1, "rune offset of the cursor, negative for none")
}

// apply overrides cfg with the flags set on the command line.
func (f *viewFlags) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	if cmd.Flags().Changed("theme") {
		cfg.Theme = f.theme
	}
	if cmd.Flags().Changed("inline") {
		cfg.InlineHighlighting = f.inline
	}
	if cmd.Flags().Changed("live") {
		cfg.LivePreview = f.live
	}
	return cfg, cfg.Validate()
}

func (f *viewFlags) selection() document.Selection {
	if f.cursor < 0 {
		return document.Selection{}
	}
	return document.Cursor(f.cursor)
}

// openEngine reads path and highlights it, waiting for every fetch.
func openEngine(ctx context.Context, path string, cfg config.Config, sel document.Selection) (*codeview.Engine, error) {
	tokenizer, err := highlight.NewChromaTokenizer(cfg.ChromaOptions())
	if err != nil {
		return nil, err
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	state := codeview.NewState(string(text), sel, cfg.LivePreview)
	engine := codeview.New(tokenizer, state, codeview.Options{
		InlineHighlighting: cfg.InlineHighlighting,
	})
	if err := engine.Wait(ctx); err != nil {
		engine.OnDestroy()
		return nil, err
	}
	return engine, nil
}

func newRenderCommand(a *app) *cobra.Command {
	var flags viewFlags
	var watchFile bool

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print a markdown document with its code highlighted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd, a.cfg)
			if err != nil {
				return err
			}

			path := args[0]
			engine, err := openEngine(cmd.Context(), path, cfg, flags.selection())
			if err != nil {
				return err
			}
			defer engine.OnDestroy()

			out := cmd.OutOrStdout()
			renderer := lipgloss.NewRenderer(out)
			fmt.Fprint(out, Render(renderer, engine.State().Doc, engine.Decorations()))

			if !watchFile {
				return nil
			}
			return watchAndRender(cmd.Context(), path, engine, func() {
				fmt.Fprint(out, Render(renderer, engine.State().Doc, engine.Decorations()))
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "re-render when the file changes")

	return cmd
}

// watchAndRender feeds every change of the file through the engine as a diff
// of the old and new text, so unchanged code keeps its highlighting.
func watchAndRender(ctx context.Context, path string, engine *codeview.Engine, render func()) error {
	w, err := watch.New(path, watch.DefaultDebounce)
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer w.Stop()

	logger := logging.Default()
	logger.Info("watching for changes", logging.FieldPath, path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			logger.Warn("watch error", logging.FieldPath, path, logging.FieldError, err)
		case <-changes:
			text, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("reading changed file", logging.FieldPath, path, logging.FieldError, err)
				continue
			}

			u, err := engine.State().Replace(string(text))
			if err != nil {
				return err
			}
			if !u.DocChanged {
				continue
			}
			engine.OnChange(u)
			if err := engine.Wait(ctx); err != nil {
				return nil
			}

			logger.Debug("re-rendered",
				logging.FieldRevision, u.State.Doc.Revision(),
				logging.FieldDecorations, engine.Decorations().Len(),
			)
			render()
		}
	}
}

// Render paints doc with the decorations in decos. Text covered by replace
// decorations is left out.
func Render(r *lipgloss.Renderer, doc *document.Document, decos *decoration.DecorationTree) string {
	var sb strings.Builder
	for _, run := range decos.Split(0, doc.Len(), nil) {
		if run.Hidden {
			continue
		}

		text := doc.Slice(run.Start, run.End)
		if run.Color == "" && len(run.Classes) == 0 {
			sb.WriteString(text)
			continue
		}
		writeStyled(&sb, runStyle(r, run), text)
	}
	return sb.String()
}

// writeStyled renders line by line, as lipgloss pads multi-line blocks to a
// common width.
func writeStyled(w io.StringWriter, style lipgloss.Style, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			_, _ = w.WriteString("\n")
		}
		if line != "" {
			_, _ = w.WriteString(style.Render(line))
		}
	}
}

func runStyle(r *lipgloss.Renderer, run decoration.Run) lipgloss.Style {
	style := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if c, err := textstyle.ParseHex(run.Color); err == nil {
		style = style.Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
	}

	for _, class := range run.Classes {
		switch class {
		case syntax.ClassBold:
			style = style.Bold(true)
		case syntax.ClassItalic:
			style = style.Italic(true)
		case syntax.ClassUnderline:
			style = style.Underline(true)
		case syntax.ClassStrikethrough:
			style = style.Strikethrough(true)
		}
	}
	return style
}
