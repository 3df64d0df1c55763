package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/spf13/cobra"
)

var (
	parseChunkSize int
	parseJSON      bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a G-code file chunk by chunk",
	Long:  "Parse a G-code file in chunks and print the result of every chunk, or the chunk results as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().IntVar(&parseChunkSize, "chunk-size", 0, "lines per chunk (default from config)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print chunk results as JSON")
	rootCmd.AddCommand(parseCmd)
}

// parseOutput is the JSON document written by parse --json
type parseOutput struct {
	LineCount  int            `json:"lineCount"`
	ChunkCount int            `json:"chunkCount"`
	Counts     gcode.Counts   `json:"counts"`
	Chunks     []loader.Chunk `json:"chunks"`
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := loadFile(cmd.Context(), args[0], cfg, parseChunkSize, true)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(parseOutput{
			LineCount:  res.LineCount,
			ChunkCount: res.ChunkCount,
			Counts:     res.Toolpath.Counts,
			Chunks:     res.Chunks,
		})
	}

	size := parseChunkSize
	if size <= 0 {
		size = cfg.Loader.ChunkSize
	}
	for _, chunk := range res.Chunks {
		r := chunk.ChunkResult
		fmt.Fprintf(out, "chunk %d: lines %d-%d, %d segments (G0 %d, G1 %d, G2 %d, G3 %d), %d skipped, start %s, end %s\n",
			chunk.Index, r.FirstLine+1, min(r.FirstLine+size, res.LineCount), len(r.Segments),
			r.Counts[gcode.ModeG0], r.Counts[gcode.ModeG1], r.Counts[gcode.ModeG2], r.Counts[gcode.ModeG3],
			len(r.Skipped), r.Initial, r.Final)
	}
	fmt.Fprintf(out, "%d lines, %d chunks, %d segments\n", res.LineCount, res.ChunkCount, res.Toolpath.Len())
	return nil
}
