package app

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/philipparndt/gcodeview/pkg/analysis"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/philipparndt/gcodeview/pkg/watcher"
)

// loadBudget is the time per frame spent parsing chunks
const loadBudget = 8 * time.Millisecond

// startLoad reads the source file and prepares a chunked load. The chunks
// are parsed by stepLoad between frames.
func (app *App) startLoad(refit bool) error {
	data, err := os.ReadFile(app.FileWatch.sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", app.FileWatch.sourceFile, err)
	}

	parser := gcode.NewParser()
	parser.ArcSegments = app.cfg.Parser.ArcSegments

	app.Load = LoadState{
		loader: loader.New(string(data), loader.Options{
			ChunkSize: app.cfg.Loader.ChunkSize,
			Parser:    parser,
		}),
		startTime: time.Now(),
		refit:     refit,
	}
	return nil
}

// loading reports whether chunks are still being parsed
func (app *App) loading() bool {
	return app.Load.loader != nil
}

// stepLoad parses chunks until loadBudget is used up and then syncs the
// GPU batches once with the grown toolpath. It must run on the main
// thread.
func (app *App) stepLoad() {
	l := app.Load.loader
	if l == nil {
		return
	}

	done, err := l.StepFor(loadBudget)
	if err != nil {
		log.Printf("ERROR: load %s: %+v", app.FileWatch.sourceFile, err)
		app.Load.err = err
		done = true
	}
	if total := l.TotalChunks(); total > 0 {
		app.Load.progress = float64(l.ProcessedChunks()) / float64(total) * 100
	}

	tp := l.Toolpath()
	if app.Toolpath.toolpath != tp {
		// first chunk of a (re)load: start from fresh batches
		oldCenter := app.Toolpath.toolpath.Bounds().Center()
		app.Toolpath.toolpath = tp
		app.Playback.controller.SetToolpath(nil)
		if err := app.Toolpath.meshes.Build(tp); err != nil {
			log.Printf("ERROR: build meshes: %+v", err)
		}
		if app.Load.refit {
			app.Camera.orbit.Fit(tp.Bounds())
			app.Camera.defaultDist = app.Camera.orbit.Distance
		} else if !tp.Bounds().IsEmpty() {
			app.refitCamera(oldCenter, tp.Bounds().Center())
		}
	} else if err := app.Toolpath.meshes.Sync(tp); err != nil {
		log.Printf("ERROR: sync meshes: %+v", err)
	}

	if app.Load.refit && tp.Len() > 0 {
		// keep following the toolpath while it grows
		app.Camera.orbit.Fit(tp.Bounds())
		app.Camera.defaultDist = app.Camera.orbit.Distance
	}

	if done {
		app.finishLoad()
	}
}

func (app *App) finishLoad() {
	tp := app.Toolpath.toolpath
	app.Toolpath.stats = analysis.Analyze(tp)
	app.Playback.controller.SetToolpath(tp)
	app.Playback.engaged = false

	elapsed := time.Since(app.Load.startTime)
	fmt.Printf("Loaded %d lines, %d segments in %.2fs\n", tp.LineCount, tp.Len(), elapsed.Seconds())
	app.Load.loader = nil
}

// setupFileWatcher reloads the toolpath when the source file changes
func (app *App) setupFileWatcher() error {
	fw, err := watcher.NewFileWatcher(time.Duration(app.cfg.Watch.Debounce))
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.OnError(func(err error) {
		log.Printf("ERROR: watch: %+v", err)
	})

	callback := func(changedFile string) {
		fmt.Printf("\nFile changed: %s\n", changedFile)
		app.FileWatch.needsReload.Store(true)
	}

	if err := fw.Watch([]string{app.FileWatch.sourceFile}, callback); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch files: %w", err)
	}

	fw.Start()
	app.FileWatch.fileWatcher = fw
	fmt.Printf("Watching file for changes: %s\n", app.FileWatch.sourceFile)
	return nil
}

// reload restarts loading, keeping the camera orientation
func (app *App) reload() {
	if app.loading() {
		app.Load.loader.Cancel()
	}
	fmt.Println("Reloading toolpath...")
	if err := app.startLoad(false); err != nil {
		log.Printf("ERROR: reload: %+v", err)
	}
}
