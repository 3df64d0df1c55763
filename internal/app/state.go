package app

import (
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gcodeview/pkg/analysis"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/philipparndt/gcodeview/pkg/mesh"
	"github.com/philipparndt/gcodeview/pkg/sim"
	"github.com/philipparndt/gcodeview/pkg/viewer"
	"github.com/philipparndt/gcodeview/pkg/watcher"
)

// CameraState holds all camera-related state
type CameraState struct {
	orbit  *viewer.Camera
	camera rl.Camera3D
	// defaults for Home
	defaultDist float64
	isPanning   bool
}

// ToolpathData holds the toolpath and its GPU batches
type ToolpathData struct {
	toolpath *gcode.Toolpath
	meshes   *mesh.Manager
	backend  *raylibBackend
	stats    *analysis.Stats
}

// LoadState tracks the chunked load of the current file
type LoadState struct {
	loader    *loader.Loader
	startTime time.Time
	progress  float64
	err       error
	// refit is false on reloads so the camera keeps its orientation
	refit bool
}

// PlaybackState holds the simulation controller
type PlaybackState struct {
	controller *sim.Controller
	// engaged is set once the user starts stepping; until then the whole
	// toolpath is shown
	engaged bool
}

// FileWatchState holds file watching and reload state
type FileWatchState struct {
	sourceFile  string
	fileWatcher *watcher.FileWatcher
	needsReload atomic.Bool
}

// UIState holds UI-related state
type UIState struct {
	font       rl.Font
	customFont bool
	showHelp   bool
	throttle   *viewer.Throttle
	fps        int32
}
