package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Loader.ChunkSize)
	assert.Equal(t, 32, cfg.Parser.ArcSegments)
	assert.Equal(t, mesh.KindLines, cfg.Kind())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "viewer.yaml", `
loader:
  chunk_size: 50
render:
  mode: instanced
  tube_radius: 0.25
  colors:
    g1: "#ff0000"
watch:
  debounce: 500ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Loader.ChunkSize)
	assert.Equal(t, mesh.KindInstanced, cfg.Kind())
	assert.Equal(t, 0.25, cfg.Render.TubeRadius)
	assert.Equal(t, Duration(500*time.Millisecond), cfg.Watch.Debounce)
	// untouched sections keep their defaults
	assert.Equal(t, 32, cfg.Parser.ArcSegments)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, cfg.Styles()[gcode.ModeG1].Color)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "viewer.toml", `
[parser]
arc_segments = 64

[simulation]
speed = 200.0

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Parser.ArcSegments)
	assert.Equal(t, 200.0, cfg.Simulation.Speed)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "viewer.ini", "x=1"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "viewer.yml", "loader:\n  chunk_size: 0\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chunk_size")
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := Load(writeFile(t, "viewer.yml", "watch:\n  debounce: soon\n"))
		assert.Error(t, err)
	})
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Render.Mode = "voxels"
	cfg.Render.Colors = map[string]string{"G7": "#fff", "G2": "blue"}
	cfg.Simulation.Speed = 0

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "render.mode")
	assert.Contains(t, msg, "G7")
	assert.Contains(t, msg, "render.colors.G2")
	assert.Contains(t, msg, "simulation.speed")
}

func TestValidateFont(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "mono.ttf")
	require.NoError(t, os.WriteFile(font, []byte("not checked"), 0o644))

	cfg := Default()
	cfg.Render.Font = font
	assert.NoError(t, cfg.Validate())

	cfg.Render.Font = filepath.Join(dir, "missing.otf")
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.font")

	cfg.Render.Font = filepath.Join(dir, "mono.woff")
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".ttf or .otf")
}

func TestStyles(t *testing.T) {
	cfg := Default()
	cfg.Render.RapidAlpha = 0.5
	cfg.Render.Colors = map[string]string{"G3": "#00ff0080"}

	styles := cfg.Styles()
	assert.Equal(t, float32(0.5), styles[gcode.ModeG0].Opacity)
	assert.Equal(t, color.RGBA{G: 255, A: 128}, styles[gcode.ModeG3].Color)
	assert.Equal(t, mesh.DefaultStyles()[gcode.ModeG1], styles[gcode.ModeG1])
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#fff", color.RGBA{255, 255, 255, 255}, false},
		{"#102030", color.RGBA{16, 32, 48, 255}, false},
		{"10203040", color.RGBA{16, 32, 48, 64}, false},
		{"#12345", color.RGBA{}, true},
		{"#gggggg", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
