// Command example is a Gio window showing a markdown file with its code
// highlighted. The file and the config are reloaded when they change on disk.
package main

import (
	"log"
	"os"
	"slices"
	"sync/atomic"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/oligo/mdhl/codeview"
	"github.com/oligo/mdhl/document"
	"github.com/oligo/mdhl/highlight"
	"github.com/oligo/mdhl/internal/config"
	"github.com/oligo/mdhl/internal/logging"
	"github.com/oligo/mdhl/internal/watch"
	"github.com/oligo/mdhl/textstyle"
	"github.com/oligo/mdhl/textstyle/syntax"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const textSize = unit.Sp(13)

type ViewerApp struct {
	window  *app.Window
	th      *material.Theme
	path    string
	engine  *codeview.Engine
	palette textstyle.ColorPalette
	list    widget.List
	// set by the watcher goroutines, consumed on the next frame.
	reload       atomic.Bool
	reloadConfig atomic.Bool
	defaultFg    op.CallOp

	conf      *viper.Viper
	cfg       config.Config
	tokenizer *highlight.ChromaTokenizer
}

func (v *ViewerApp) run() error {
	var ops op.Ops
	for {
		e := v.window.Event()

		switch e := e.(type) {
		case app.DestroyEvent:
			v.engine.OnDestroy()
			return e.Err
		case app.FrameEvent:
			if v.reloadConfig.Swap(false) {
				v.applyConfig()
			}
			if v.reload.Swap(false) {
				v.reloadFile()
			}
			v.engine.Drain()

			gtx := app.NewContext(&ops, e)
			layout.UniformInset(unit.Dp(8)).Layout(gtx, v.layout)
			e.Frame(gtx.Ops)
		}
	}
}

func (v *ViewerApp) reloadFile() {
	text, err := os.ReadFile(v.path)
	if err != nil {
		log.Printf("reading %s: %v", v.path, err)
		return
	}

	u, err := v.engine.State().Replace(string(text))
	if err != nil {
		log.Printf("updating document: %v", err)
		return
	}
	v.engine.OnChange(u)
}

// applyConfig decodes the re-read config and rebuilds the highlighting for
// what changed. An invalid config keeps the current one.
func (v *ViewerApp) applyConfig() {
	cfg, err := config.Decode(v.conf)
	if err != nil {
		log.Printf("reloading config: %v", err)
		return
	}
	old := v.cfg
	v.cfg = cfg

	if !slices.Equal(cfg.DisabledLanguages, old.DisabledLanguages) || cfg.Cache != old.Cache {
		tokenizer, err := highlight.NewChromaTokenizer(cfg.ChromaOptions())
		if err != nil {
			log.Printf("reloading config: %v", err)
			return
		}
		v.tokenizer = tokenizer
		v.engine.SetTokenizer(tokenizer)
	} else if cfg.Theme != old.Theme {
		if err := v.tokenizer.SetTheme(cfg.Theme); err != nil {
			log.Printf("reloading config: %v", err)
			return
		}
		v.engine.ForceFullRescan()
	}

	if cfg.InlineHighlighting != old.InlineHighlighting {
		v.engine.SetInlineHighlighting(cfg.InlineHighlighting)
	}
}

func (v *ViewerApp) layout(gtx C) D {
	doc := v.engine.State().Doc
	lines := lineRanges(doc)

	return material.List(v.th, &v.list).Layout(gtx, len(lines), func(gtx C, i int) D {
		return v.layoutLine(gtx, doc, lines[i][0], lines[i][1])
	})
}

func (v *ViewerApp) layoutLine(gtx C, doc *document.Document, from, to int) D {
	runs := v.engine.Decorations().Split(from, to, &v.palette)

	children := make([]layout.FlexChild, 0, len(runs))
	for _, run := range runs {
		if run.Hidden {
			continue
		}

		txt := doc.Slice(run.Start, run.End)
		fg := run.Fg
		if fg == (op.CallOp{}) {
			fg = v.defaultFg
		}

		f := font.Font{Typeface: "monospace"}
		for _, class := range run.Classes {
			switch class {
			case syntax.ClassBold:
				f.Weight = font.Bold
			case syntax.ClassItalic:
				f.Style = font.Italic
			}
		}

		children = append(children, layout.Rigid(func(gtx C) D {
			return widget.Label{MaxLines: 1}.Layout(gtx, v.th.Shaper, f, textSize, txt, fg)
		}))
	}

	if len(children) == 0 {
		return widget.Label{MaxLines: 1}.Layout(gtx, v.th.Shaper, font.Font{Typeface: "monospace"}, textSize, " ", v.defaultFg)
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

// lineRanges returns the rune range of every line of doc, without line
// breaks.
func lineRanges(doc *document.Document) [][2]int {
	var lines [][2]int
	start, pos := 0, 0
	for _, r := range doc.Text() {
		if r == '\n' {
			lines = append(lines, [2]int{start, pos})
			start = pos + 1
		}
		pos++
	}
	return append(lines, [2]int{start, pos})
}

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)
	if len(os.Args) < 2 {
		log.Fatal("usage: example FILE.md")
	}
	path := os.Args[1]

	conf := viper.New()
	cfg, err := config.Load(conf, "")
	if err != nil {
		log.Fatal(err)
	}
	logging.Install(logging.New(cfg.LogLevel))

	tokenizer, err := highlight.NewChromaTokenizer(cfg.ChromaOptions())
	if err != nil {
		log.Fatal(err)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	viewer := &ViewerApp{
		window:    &app.Window{},
		th:        material.NewTheme(),
		path:      path,
		list:      widget.List{List: layout.List{Axis: layout.Vertical}},
		conf:      conf,
		cfg:       cfg,
		tokenizer: tokenizer,
	}
	viewer.window.Option(app.Title("mdhl - " + path))
	viewer.defaultFg = viewer.palette.Op("#24292e")

	viewer.engine = codeview.New(tokenizer, codeview.NewState(string(text), document.Selection{}, cfg.LivePreview), codeview.Options{
		InlineHighlighting: cfg.InlineHighlighting,
		Redraw:             viewer.window.Invalidate,
		Wake:               viewer.window.Invalidate,
	})

	if w, err := watch.New(path, watch.DefaultDebounce); err == nil {
		if changes, err := w.Start(); err == nil {
			go func() {
				for range changes {
					viewer.reload.Store(true)
					viewer.window.Invalidate()
				}
			}()
		}
	}

	if conf.ConfigFileUsed() != "" {
		conf.OnConfigChange(func(fsnotify.Event) {
			viewer.reloadConfig.Store(true)
			viewer.window.Invalidate()
		})
		conf.WatchConfig()
	}

	go func() {
		err := viewer.run()
		if err != nil {
			os.Exit(1)
		}

		os.Exit(0)
	}()

	app.Main()
}
