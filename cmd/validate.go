package cmd

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/spf13/cobra"
)

var errDiscontinuous = errors.New("chunk continuity check failed")

var validateChunkSize int

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check that parsed chunks join without gaps",
	Long: `Parse a G-code file in chunks and check that every chunk starts at the
position and motion mode the previous chunk ended with. Exits with status 1
when an issue is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateChunkSize, "chunk-size", 0, "lines per chunk (default from config)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := loadFile(cmd.Context(), args[0], cfg, validateChunkSize, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	issues := loader.Validate(res.Chunks)
	for _, issue := range issues {
		fmt.Fprintln(out, issue)
	}
	if len(issues) > 0 {
		return fmt.Errorf("%w: %d issue(s) in %d chunks", errDiscontinuous, len(issues), res.ChunkCount)
	}

	fmt.Fprintf(out, "OK: %d chunks, %d segments\n", res.ChunkCount, res.Toolpath.Len())
	return nil
}
