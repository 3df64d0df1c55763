// Package app is the interactive raylib toolpath viewer
package app

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gcodeview/pkg/config"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/mesh"
	"github.com/philipparndt/gcodeview/pkg/sim"
	"github.com/philipparndt/gcodeview/pkg/viewer"
)

// App is the viewer window state
type App struct {
	Camera    CameraState
	Toolpath  ToolpathData
	Load      LoadState
	Playback  PlaybackState
	FileWatch FileWatchState
	UI        UIState

	cfg    *config.Config
	styles mesh.Styles
	// drawOrder lists opaque modes before transparent ones
	drawOrder []gcode.Mode
}

// Run opens a window on a G-code file and blocks until it is closed
func Run(path string, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}

	app := &App{
		cfg:    cfg,
		styles: cfg.Styles(),
		Toolpath: ToolpathData{
			toolpath: gcode.NewToolpath(),
		},
		FileWatch: FileWatchState{sourceFile: path},
		UI: UIState{
			throttle: viewer.NewThrottle(cfg.Render.ActiveFPS, cfg.Render.IdleFPS, time.Duration(cfg.Render.IdleAfter)),
		},
	}
	app.drawOrder = drawOrder(app.styles)

	if err := app.startLoad(true); err != nil {
		return err
	}

	// Initialize window
	screenWidth := int32(1400)
	screenHeight := int32(900)
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint) // Must be before InitWindow
	rl.InitWindow(screenWidth, screenHeight, "G-code Viewer")
	rl.SetExitKey(0)
	app.UI.fps = app.UI.throttle.Target(time.Now())
	rl.SetTargetFPS(app.UI.fps)

	app.UI.font, app.UI.customFont = loadFont(cfg.Render.Font)
	app.Toolpath.backend = newRaylibBackend()
	app.Toolpath.meshes = mesh.NewManager(app.Toolpath.backend, cfg.Kind(), mesh.Options{
		Styles: app.styles,
		Radius: cfg.Render.TubeRadius,
	})
	app.Playback.controller = sim.New(nil, sim.Options{Speed: cfg.Simulation.Speed})
	app.initCamera(app.Toolpath.toolpath.Bounds())

	if cfg.Watch.Enabled {
		if err := app.setupFileWatcher(); err != nil {
			fmt.Printf("Warning: Failed to set up file watching: %v\n", err)
			fmt.Println("Auto-reload will not be available")
		} else {
			defer app.FileWatch.fileWatcher.Close()
		}
	}

	// Main loop
	for !rl.WindowShouldClose() {
		now := time.Now()

		if app.FileWatch.needsReload.CompareAndSwap(true, false) {
			app.reload()
		}
		if app.loading() {
			app.stepLoad()
			app.UI.throttle.Touch(now)
		}

		app.handleInput()
		if app.Playback.controller.State() == sim.Playing {
			app.UI.throttle.Touch(now)
		}
		if fps, changed := app.UI.throttle.Changed(now); changed {
			app.UI.fps = fps
			rl.SetTargetFPS(fps)
		}
		app.updateCamera()

		frame := app.Playback.controller.Frame()
		app.draw(frame)
	}

	// Cleanup
	app.Playback.controller.Stop()
	app.Toolpath.meshes.Dispose()
	app.Toolpath.backend.Close()
	if app.UI.customFont {
		rl.UnloadFont(app.UI.font)
	}
	rl.CloseWindow()
	return nil
}

// drawOrder sorts modes so transparent batches are drawn last
func drawOrder(styles mesh.Styles) []gcode.Mode {
	order := append([]gcode.Mode(nil), gcode.Modes...)
	sort.SliceStable(order, func(i, j int) bool {
		return !styles.Get(order[i]).Transparent() && styles.Get(order[j]).Transparent()
	})
	return order
}

func (app *App) draw(frame sim.Frame) {
	meshes := app.Toolpath.meshes
	if app.loading() || !app.Playback.engaged {
		meshes.ShowAll()
		frame.Counts = app.Toolpath.toolpath.Counts
	} else {
		meshes.SetDrawCounts(frame.Counts)
	}

	aspect := float64(rl.GetScreenWidth()) / float64(max(1, rl.GetScreenHeight()))
	frustum := viewer.NewFrustum(app.Camera.orbit, aspect)

	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(15, 18, 25, 255))

	rl.BeginMode3D(app.Camera.camera)
	rl.BeginBlendMode(rl.BlendAlpha)
	for _, mode := range app.drawOrder {
		h, ok := meshes.Handle(mode)
		if !ok || !app.visible(frustum, app.batchBounds(mode)) {
			continue
		}
		app.Toolpath.backend.draw(h)
	}
	rl.EndBlendMode()

	if app.Playback.engaged && frame.HasTool {
		radius := float32(app.Camera.orbit.Distance * 0.005)
		rl.DrawSphere(toVector3(frame.Tool), radius, rl.Red)
	}
	rl.EndMode3D()

	app.drawUI(frame)
	rl.EndDrawing()
}

func (app *App) batchBounds(mode gcode.Mode) geometry.BoundingBox {
	if b := app.Toolpath.meshes.Lines(mode); b != nil {
		return b.Bounds
	}
	if b := app.Toolpath.meshes.Instances(mode); b != nil {
		return b.Bounds
	}
	return geometry.NewBoundingBox()
}
