package app

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gcodeview/pkg/sim"
)

const (
	rotateSpeed = 0.005
	zoomSpeed   = 0.1
)

// handleInput processes user input. It returns true when anything changed
// so the frame rate can be raised again.
func (app *App) handleInput() bool {
	active := false
	press := func(key int32) bool {
		if rl.IsKeyPressed(key) {
			active = true
			return true
		}
		return false
	}

	// Camera view preset shortcuts
	if press(rl.KeyHome) {
		app.resetCameraView()
	}
	if press(rl.KeyT) {
		app.setCameraTopView()
	}
	if press(rl.KeyOne) {
		app.setCameraFrontView()
	}
	if press(rl.KeyTwo) {
		app.setCameraLeftView()
	}
	if press(rl.KeyThree) {
		app.setCameraRightView()
	}
	if press(rl.KeyFour) {
		app.setCameraIsoView()
	}
	if press(rl.KeyH) {
		app.UI.showHelp = !app.UI.showHelp
	}

	app.handlePlaybackKeys(press)

	// Pan with Shift + left drag or middle drag, rotate with left drag
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		shiftPressed := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
		app.Camera.isPanning = shiftPressed
	}
	delta := rl.GetMouseDelta()
	moved := delta.X != 0 || delta.Y != 0
	switch {
	case (rl.IsMouseButtonDown(rl.MouseLeftButton) && app.Camera.isPanning) || rl.IsMouseButtonDown(rl.MouseMiddleButton):
		if moved {
			app.doPan(delta)
			active = true
		}
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		if moved {
			app.Camera.orbit.Rotate(float64(delta.Y)*rotateSpeed, -float64(delta.X)*rotateSpeed)
			active = true
		}
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		app.Camera.orbit.Zoom(-float64(wheel) * zoomSpeed)
		active = true
	}

	if active {
		app.UI.throttle.Touch(time.Now())
	}
	return active
}

// handlePlaybackKeys maps keys to the simulation controller. Playback is
// only available once the file is fully loaded.
func (app *App) handlePlaybackKeys(press func(int32) bool) {
	if app.loading() {
		return
	}
	ctrl := app.Playback.controller

	switch {
	case press(rl.KeySpace):
		app.Playback.engaged = true
		if ctrl.State() == sim.Playing {
			ctrl.Pause()
		} else {
			ctrl.Play()
		}
	case press(rl.KeyRight):
		app.Playback.engaged = true
		ctrl.StepForward()
	case press(rl.KeyLeft):
		app.Playback.engaged = true
		ctrl.StepBackward()
	case press(rl.KeyR):
		app.Playback.engaged = true
		ctrl.Rewind()
	case press(rl.KeyF):
		ctrl.FastForward()
	case press(rl.KeyV):
		ctrl.SetReverse(!ctrl.Reverse())
	case press(rl.KeyEqual), press(rl.KeyKpAdd):
		ctrl.SetSpeed(ctrl.Speed() * 2)
	case press(rl.KeyMinus), press(rl.KeyKpSubtract):
		ctrl.SetSpeed(ctrl.Speed() / 2)
	case press(rl.KeyEscape):
		ctrl.Stop()
		app.Playback.engaged = false
	}
}
