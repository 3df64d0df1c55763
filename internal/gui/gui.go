// Package gui is the fyne desktop front end with playback controls
package gui

import (
	"context"
	"fmt"
	"os"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gcodeview/pkg/analysis"
	"github.com/philipparndt/gcodeview/pkg/config"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/philipparndt/gcodeview/pkg/sim"
	"github.com/philipparndt/gcodeview/pkg/viewer"
	"github.com/philipparndt/gcodeview/pkg/watcher"
)

// App is the fyne window and its widgets
type App struct {
	window   fyne.Window
	cfg      *config.Config
	renderer *viewer.ToolpathRenderer
	ctrl     *sim.Controller
	toolpath *gcode.Toolpath
	path     string
	watcher  *watcher.FileWatcher
	cancel   context.CancelFunc
	info     *PlaybackInfo
}

// PlaybackInfo holds the labels and controls of the side panel
type PlaybackInfo struct {
	fileLabel  *widget.Label
	statsLabel *widget.Label
	frameLabel *widget.Label
	lineLabel  *widget.Label
	toolLabel  *widget.Label
	tapLabel   *widget.Label
	progress   *widget.ProgressBar
	slider     *widget.Slider
	playButton *widget.Button
	// syncing suppresses slider callbacks while a frame is applied
	syncing bool
}

// Run opens the window, optionally loading path, and blocks until it is
// closed
func Run(path string, cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default()
	}

	a := fyneapp.New()
	w := a.NewWindow("G-code Viewer")

	appInstance := New(w, cfg)
	defer appInstance.Close()

	if path != "" {
		appInstance.LoadFile(path)
	}

	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}

// New builds the main UI in window
func New(w fyne.Window, cfg *config.Config) *App {
	a := &App{
		window:   w,
		cfg:      cfg,
		toolpath: gcode.NewToolpath(),
	}
	a.renderer = viewer.NewToolpathRenderer(a.toolpath, cfg.Styles())
	a.renderer.SetOnHover(func(line int) {
		a.info.tapLabel.SetText(fmt.Sprintf("Tapped: line %d", line+1))
	})
	a.ctrl = sim.New(a.toolpath, sim.Options{
		Speed: cfg.Simulation.Speed,
		OnFrame: func(f sim.Frame) {
			fyne.Do(func() { a.applyFrame(f) })
		},
	})
	a.setupMainUI()
	return a
}

func (a *App) setupMainUI() {
	a.info = &PlaybackInfo{
		fileLabel:  widget.NewLabel("No file loaded"),
		statsLabel: widget.NewLabel(""),
		frameLabel: widget.NewLabel("Segment: -"),
		lineLabel:  widget.NewLabel("Line: -"),
		toolLabel:  widget.NewLabel("Tool: -"),
		tapLabel:   widget.NewLabel("Tapped: -"),
		progress:   widget.NewProgressBar(),
		slider:     widget.NewSlider(0, 1),
	}
	a.info.fileLabel.TextStyle = fyne.TextStyle{Bold: true}
	a.info.progress.Max = 100
	a.info.slider.Step = 1
	a.info.slider.OnChanged = func(v float64) {
		if !a.info.syncing {
			a.ctrl.Seek(int(v))
		}
	}

	a.info.playButton = widget.NewButton("Play", func() {
		if a.ctrl.State() == sim.Playing {
			a.ctrl.Pause()
		} else {
			a.ctrl.Play()
		}
	})

	openButton := widget.NewButton("Open File", func() {
		a.showFileDialog()
	})

	speedSelect := widget.NewSelect([]string{"10", "50", "200", "1000"}, func(s string) {
		var v float64
		if _, err := fmt.Sscanf(s, "%g", &v); err == nil {
			a.ctrl.SetSpeed(v)
		}
	})
	speedSelect.SetSelected(fmt.Sprintf("%g", a.cfg.Simulation.Speed))

	reverseCheck := widget.NewCheck("Reverse", func(checked bool) {
		a.ctrl.SetReverse(checked)
	})

	controls := container.NewGridWithColumns(3,
		widget.NewButton("|<", a.ctrl.Rewind),
		widget.NewButton("<", a.ctrl.StepBackward),
		a.info.playButton,
		widget.NewButton(">", a.ctrl.StepForward),
		widget.NewButton(">|", a.ctrl.FastForward),
		widget.NewButton("Stop", a.ctrl.Stop),
	)

	instructions := widget.NewLabel(
		"Instructions:\n" +
			"• Drag to rotate the view\n" +
			"• Scroll to zoom in/out\n" +
			"• Tap a move to see its line",
	)
	instructions.Wrapping = fyne.TextWrapWord

	infoPanel := container.NewVBox(
		a.info.fileLabel,
		a.info.progress,
		widget.NewSeparator(),
		a.info.statsLabel,
		widget.NewSeparator(),
		widget.NewLabel("Playback:"),
		controls,
		container.NewHBox(widget.NewLabel("Speed (seg/s)"), speedSelect),
		reverseCheck,
		a.info.frameLabel,
		a.info.lineLabel,
		a.info.toolLabel,
		a.info.tapLabel,
		widget.NewSeparator(),
		instructions,
		layout.NewSpacer(),
		openButton,
	)

	infoScroll := container.NewVScroll(infoPanel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	content := container.NewBorder(
		nil,           // top
		a.info.slider, // bottom
		nil,           // left
		infoScroll,    // right
		a.renderer,    // center
	)
	a.window.SetContent(content)
}

func (a *App) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.LoadFile(reader.URI().Path())
	}, a.window)
}

// LoadFile parses path in the background and shows it when done. The file
// is watched and reloaded on change when watching is enabled.
func (a *App) LoadFile(path string) {
	if a.path != path {
		a.path = path
		a.watch()
	}
	a.info.fileLabel.SetText(path)
	a.info.progress.SetValue(0)

	data, err := os.ReadFile(path)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to read G-code file: %w", err), a.window)
		return
	}

	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	parser := gcode.NewParser()
	parser.ArcSegments = a.cfg.Parser.ArcSegments
	start := time.Now()

	go func() {
		res := loader.Load(ctx, string(data), loader.Options{
			ChunkSize: a.cfg.Loader.ChunkSize,
			Parser:    parser,
			OnProgress: func(p loader.Progress) {
				fyne.Do(func() { a.info.progress.SetValue(p.Progress) })
			},
		})
		if res.Cancelled {
			return
		}
		fyne.Do(func() {
			if res.Err != nil {
				dialog.ShowError(fmt.Errorf("failed to load G-code file: %w", res.Err), a.window)
				return
			}
			a.showToolpath(res.Toolpath)
			fmt.Printf("Loaded %s in %.2fs\n", path, time.Since(start).Seconds())
		})
	}()
}

// showToolpath swaps in a loaded toolpath
func (a *App) showToolpath(tp *gcode.Toolpath) {
	a.toolpath = tp
	a.renderer.SetToolpath(tp)
	a.ctrl.SetToolpath(tp)
	a.ctrl.FastForward()

	stats := analysis.Analyze(tp)
	a.info.statsLabel.SetText(fmt.Sprintf(
		"Lines: %d (%d skipped)\nSegments: %d\n  G0: %d\n  G1: %d\n  G2: %d\n  G3: %d\n\nDimensions:\n  X: %.2f\n  Y: %.2f\n  Z: %.2f\n\nCutting: %s\nRapid: %s",
		stats.LineCount, stats.SkippedLines, stats.SegmentCount,
		stats.Counts[gcode.ModeG0], stats.Counts[gcode.ModeG1], stats.Counts[gcode.ModeG2], stats.Counts[gcode.ModeG3],
		stats.Dimensions.X, stats.Dimensions.Y, stats.Dimensions.Z,
		analysis.FormatMeasurement(stats.CuttingDistance, "mm"),
		analysis.FormatMeasurement(stats.RapidDistance, "mm"),
	))

	a.info.syncing = true
	a.info.slider.Max = float64(max(1, tp.Len()))
	a.info.slider.SetValue(float64(tp.Len()))
	a.info.syncing = false
}

// applyFrame shows a playback frame. It runs on the UI goroutine.
func (a *App) applyFrame(f sim.Frame) {
	a.renderer.SetRevealed(f.Index)

	a.info.frameLabel.SetText(fmt.Sprintf("Segment: %d / %d", f.Index, f.Total))
	if f.Line >= 0 {
		a.info.lineLabel.SetText(fmt.Sprintf("Line: %d", f.Line+1))
	} else {
		a.info.lineLabel.SetText("Line: -")
	}
	if f.HasTool {
		a.info.toolLabel.SetText("Tool: " + analysis.FormatVector(f.Tool))
	} else {
		a.info.toolLabel.SetText("Tool: -")
	}
	if f.State == sim.Playing {
		a.info.playButton.SetText("Pause")
	} else {
		a.info.playButton.SetText("Play")
	}

	a.info.syncing = true
	a.info.slider.SetValue(float64(f.Index))
	a.info.syncing = false
}

func (a *App) watch() {
	if !a.cfg.Watch.Enabled {
		return
	}
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}

	fw, err := watcher.NewFileWatcher(time.Duration(a.cfg.Watch.Debounce))
	if err != nil {
		fmt.Printf("Warning: Failed to set up file watching: %v\n", err)
		return
	}
	path := a.path
	if err := fw.Watch([]string{path}, func(string) {
		fyne.Do(func() { a.LoadFile(path) })
	}); err != nil {
		fw.Close()
		fmt.Printf("Warning: Failed to watch %s: %v\n", path, err)
		return
	}
	fw.Start()
	a.watcher = fw
}

// Close stops playback, loading and watching
func (a *App) Close() {
	a.ctrl.Pause()
	if a.cancel != nil {
		a.cancel()
	}
	if a.watcher != nil {
		a.watcher.Close()
	}
}
