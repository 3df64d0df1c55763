// Package config loads viewer settings from YAML or TOML files
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/philipparndt/gcodeview/pkg/mesh"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML
// nor TOML
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds every tunable setting
type Config struct {
	Parser     ParserConfig     `yaml:"parser" toml:"parser"`
	Loader     LoaderConfig     `yaml:"loader" toml:"loader"`
	Render     RenderConfig     `yaml:"render" toml:"render"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Watch      WatchConfig      `yaml:"watch" toml:"watch"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
}

// ParserConfig configures G-code interpretation
type ParserConfig struct {
	ArcSegments int `yaml:"arc_segments" toml:"arc_segments"`
}

// LoaderConfig configures chunked loading
type LoaderConfig struct {
	ChunkSize int `yaml:"chunk_size" toml:"chunk_size"`
}

// RenderConfig configures drawing
type RenderConfig struct {
	// Mode is "lines" or "instanced"
	Mode       string  `yaml:"mode" toml:"mode"`
	TubeRadius float64 `yaml:"tube_radius" toml:"tube_radius"`
	// Colors maps a mode name (G0..G3) to a #rrggbb or #rrggbbaa color
	Colors     map[string]string `yaml:"colors" toml:"colors"`
	RapidAlpha float32           `yaml:"rapid_opacity" toml:"rapid_opacity"`
	ActiveFPS  int32             `yaml:"active_fps" toml:"active_fps"`
	IdleFPS    int32             `yaml:"idle_fps" toml:"idle_fps"`
	IdleAfter  Duration          `yaml:"idle_after" toml:"idle_after"`
	// Font is an optional .ttf or .otf file for the viewer's overlay text
	Font string `yaml:"font" toml:"font"`
}

// SimulationConfig configures playback
type SimulationConfig struct {
	Speed float64 `yaml:"speed" toml:"speed"`
}

// WatchConfig configures reloading on file changes
type WatchConfig struct {
	Enabled  bool     `yaml:"enabled" toml:"enabled"`
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Duration is a time.Duration written as "250ms", "2s", ...
type Duration time.Duration

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Parser: ParserConfig{ArcSegments: geometry.DefaultArcSegments},
		Loader: LoaderConfig{ChunkSize: loader.DefaultChunkSize},
		Render: RenderConfig{
			Mode:       "lines",
			TubeRadius: mesh.DefaultRadius,
			Colors:     map[string]string{},
			RapidAlpha: 0.35,
			ActiveFPS:  60,
			IdleFPS:    10,
			IdleAfter:  Duration(2 * time.Second),
		},
		Simulation: SimulationConfig{Speed: 50},
		Watch:      WatchConfig{Enabled: true, Debounce: Duration(200 * time.Millisecond)},
		Server:     ServerConfig{Addr: "127.0.0.1:8089"},
	}
}

// Load reads a config file on top of the defaults. An empty path returns
// the defaults. The format is chosen by extension: .yaml, .yml or .toml.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and color syntax
func (c *Config) Validate() error {
	var errs []error
	if c.Parser.ArcSegments < 1 {
		errs = append(errs, fmt.Errorf("parser.arc_segments must be at least 1, got %d", c.Parser.ArcSegments))
	}
	if c.Loader.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("loader.chunk_size must be at least 1, got %d", c.Loader.ChunkSize))
	}
	if _, err := mesh.ParseKind(c.Render.Mode); err != nil {
		errs = append(errs, fmt.Errorf("render.mode: %w", err))
	}
	if c.Render.TubeRadius <= 0 {
		errs = append(errs, fmt.Errorf("render.tube_radius must be positive, got %g", c.Render.TubeRadius))
	}
	if c.Render.RapidAlpha < 0 || c.Render.RapidAlpha > 1 {
		errs = append(errs, fmt.Errorf("render.rapid_opacity must be within [0,1], got %g", c.Render.RapidAlpha))
	}
	for name, value := range c.Render.Colors {
		if _, err := gcode.ParseMode(strings.ToUpper(name)); err != nil {
			errs = append(errs, fmt.Errorf("render.colors: %w", err))
		}
		if _, err := ParseHexColor(value); err != nil {
			errs = append(errs, fmt.Errorf("render.colors.%s: %w", name, err))
		}
	}
	if c.Render.Font != "" {
		switch strings.ToLower(filepath.Ext(c.Render.Font)) {
		case ".ttf", ".otf":
			if _, err := os.Stat(c.Render.Font); err != nil {
				errs = append(errs, fmt.Errorf("render.font: %w", err))
			}
		default:
			errs = append(errs, fmt.Errorf("render.font must be a .ttf or .otf file, got %q", c.Render.Font))
		}
	}
	if c.Simulation.Speed <= 0 {
		errs = append(errs, fmt.Errorf("simulation.speed must be positive, got %g", c.Simulation.Speed))
	}
	return errors.Join(errs...)
}

// Styles builds the per-mode draw styles, overriding the default palette
// with any configured colors
func (c *Config) Styles() mesh.Styles {
	styles := mesh.DefaultStyles()
	rapid := styles[gcode.ModeG0]
	rapid.Opacity = c.Render.RapidAlpha
	styles[gcode.ModeG0] = rapid

	for name, value := range c.Render.Colors {
		mode, err := gcode.ParseMode(strings.ToUpper(name))
		if err != nil {
			continue
		}
		col, err := ParseHexColor(value)
		if err != nil {
			continue
		}
		style := styles[mode]
		style.Color = col
		styles[mode] = style
	}
	return styles
}

// Kind returns the configured drawing kind
func (c *Config) Kind() mesh.Kind {
	kind, _ := mesh.ParseKind(c.Render.Mode)
	return kind
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
