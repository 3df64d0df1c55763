package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/gcodeview/pkg/config"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gcodeview",
	Short: "G-code toolpath viewer and simulator",
	Long: `gcodeview parses G-code programs into toolpaths, renders them and
plays them back segment by segment. It supports G0/G1 moves, G2/G3 arcs
in center (I/J) and radius (R) form, and reloads files when they change.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .toml)")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// loadFile parses a G-code file with the configured parser and chunk size.
// chunkSize overrides the config when positive.
func loadFile(ctx context.Context, path string, cfg *config.Config, chunkSize int, keepChunks bool) (*loader.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if chunkSize <= 0 {
		chunkSize = cfg.Loader.ChunkSize
	}
	parser := gcode.NewParser()
	parser.ArcSegments = cfg.Parser.ArcSegments

	res := loader.Load(ctx, string(data), loader.Options{
		ChunkSize:  chunkSize,
		KeepChunks: keepChunks,
		Parser:     parser,
	})
	if res.Err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, res.Err)
	}
	return res, nil
}
