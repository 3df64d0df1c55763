package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gcodeview/pkg/analysis"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/sim"
	"github.com/philipparndt/gcodeview/version"
)

const (
	fontSize16 = 16
	fontSize14 = 14
	fontSize12 = 12
	lineHeight = 20
)

// hudGlyphs are the characters baked into a loaded HUD font
var hudGlyphs = []rune("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz!@#$%^&*()_+-=[]{}|;:',.<>?/\\`~ °±×÷\"²³µ")

// loadFont loads the HUD font from a TTF or OTF file, or returns raylib's
// built-in font when path is empty or cannot be read
func loadFont(path string) (rl.Font, bool) {
	if path == "" {
		return rl.GetFontDefault(), false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("ERROR: read font: %+v", err)
		return rl.GetFontDefault(), false
	}
	// 96px base size stays crisp when drawn at 12-16px on high DPI screens
	font := rl.LoadFontFromMemory(strings.ToLower(filepath.Ext(path)), data, 96, hudGlyphs)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font, true
}

// text draws s with the HUD font
func (app *App) text(s string, x, y, size float32, col rl.Color) {
	rl.DrawTextEx(app.UI.font, s, rl.Vector2{X: x, Y: y}, size, 1, col)
}

// drawUI draws the heads-up display
func (app *App) drawUI(frame sim.Frame) {
	y := float32(10)
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	// Loading indicator
	if app.loading() {
		elapsed := time.Since(app.Load.startTime).Seconds()
		spinnerChars := []string{"|", "/", "-", "\\"}
		spinnerIdx := int(elapsed*10) % len(spinnerChars)
		loadingText := fmt.Sprintf("%s Loading %.0f%% (%.1fs)", spinnerChars[spinnerIdx], app.Load.progress, elapsed)

		boxWidth := int32(250)
		boxHeight := int32(40)
		boxX := screenWidth - boxWidth - 20
		boxY := int32(20)

		rl.DrawRectangle(boxX, boxY, boxWidth, boxHeight, rl.NewColor(0, 0, 0, 180))
		rl.DrawRectangleLines(boxX, boxY, boxWidth, boxHeight, rl.Yellow)
		barWidth := int32(float64(boxWidth-4) * app.Load.progress / 100)
		rl.DrawRectangle(boxX+2, boxY+boxHeight-6, barWidth, 4, rl.Yellow)
		app.text(loadingText, float32(boxX+10), float32(boxY+10), fontSize16, rl.Yellow)
	}

	// === TOOLPATH ===
	tp := app.Toolpath.toolpath
	app.text("Toolpath:", 10, y, fontSize16, rl.Yellow)
	y += lineHeight
	app.text(fmt.Sprintf("  File: %s", filepath.Base(app.FileWatch.sourceFile)), 10, y, fontSize14, rl.White)
	y += lineHeight
	app.text(fmt.Sprintf("  Lines: %d | Segments: %d", tp.LineCount, tp.Len()), 10, y, fontSize14, rl.White)
	y += lineHeight
	for _, mode := range gcode.Modes {
		style := app.styles.Get(mode)
		app.text(fmt.Sprintf("  %s: %d / %d", mode, frame.Counts[mode], tp.Counts[mode]), 10, y, fontSize14, toColor(style))
		y += lineHeight
	}
	if stats := app.Toolpath.stats; stats != nil {
		app.text(fmt.Sprintf("  Size: %.2f x %.2f x %.2f mm", stats.Dimensions.X, stats.Dimensions.Y, stats.Dimensions.Z), 10, y, fontSize14, rl.White)
		y += lineHeight
		app.text(fmt.Sprintf("  Cutting: %s | Rapid: %s",
			analysis.FormatMeasurement(stats.CuttingDistance, "mm"),
			analysis.FormatMeasurement(stats.RapidDistance, "mm")), 10, y, fontSize14, rl.NewColor(100, 200, 255, 255))
		y += lineHeight
		if stats.SkippedLines > 0 {
			app.text(fmt.Sprintf("  Skipped lines: %d", stats.SkippedLines), 10, y, fontSize14, rl.Orange)
			y += lineHeight
		}
	}
	if app.Load.err != nil {
		app.text(fmt.Sprintf("  Error: %v", app.Load.err), 10, y, fontSize14, rl.Red)
		y += lineHeight
	}
	y += lineHeight

	// === PLAYBACK ===
	app.text("Playback:", 10, y, fontSize16, rl.Yellow)
	y += lineHeight
	ctrl := app.Playback.controller
	direction := "forward"
	if ctrl.Reverse() {
		direction = "reverse"
	}
	app.text(fmt.Sprintf("  %s %d / %d | %.0f seg/s %s", frame.State, frame.Index, frame.Total, ctrl.Speed(), direction), 10, y, fontSize14, rl.White)
	y += lineHeight
	if frame.Line >= 0 {
		app.text(fmt.Sprintf("  Line %d | Tool %s", frame.Line+1, analysis.FormatVector(frame.Tool)), 10, y, fontSize14, rl.Green)
		y += lineHeight
	}
	y += lineHeight

	if app.UI.showHelp {
		app.text("View:", 10, y, fontSize16, rl.Yellow)
		y += lineHeight
		app.text("  Home: Reset | T: Top | 1: Front | 2: Left | 3: Right | 4: Iso", 10, y, fontSize14, rl.LightGray)
		y += lineHeight
		app.text("  Left Drag: Rotate | Shift+Drag: Pan | Wheel: Zoom", 10, y, fontSize14, rl.LightGray)
		y += lineHeight * 2
		app.text("Simulate:", 10, y, fontSize16, rl.Yellow)
		y += lineHeight
		app.text("  Space: Play/Pause | Left/Right: Step | R: Rewind | F: End", 10, y, fontSize14, rl.LightGray)
		y += lineHeight
		app.text("  +/-: Speed | V: Reverse | Esc: Show all", 10, y, fontSize14, rl.LightGray)
	} else {
		app.text("H: Help", 10, y, fontSize14, rl.LightGray)
	}

	// Version and frame rate (bottom-left corner)
	footer := fmt.Sprintf("%s | %d fps (target %d)", version.GetFullVersion(), rl.GetFPS(), app.UI.fps)
	app.text(footer, 10, float32(screenHeight-20), fontSize12, rl.Gray)
}
