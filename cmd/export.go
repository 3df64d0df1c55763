package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/stl"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportASCII  bool
	exportRadius float64
	exportModes  []string
	exportUpTo   int
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the toolpath as an STL tube mesh",
	Long: `Build a tube around every segment of a toolpath and write it as STL, e.g.
to overlay the path on the stock in a CAD program.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output STL file (default: input name with .stl)")
	exportCmd.Flags().BoolVar(&exportASCII, "ascii", false, "write ASCII instead of binary STL")
	exportCmd.Flags().Float64Var(&exportRadius, "radius", 0, "tube radius (default from config)")
	exportCmd.Flags().StringSliceVar(&exportModes, "modes", nil, "modes to export, e.g. G1,G2,G3 (default all)")
	exportCmd.Flags().IntVar(&exportUpTo, "upto", 0, "export only the first N segments (0 for all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := stl.ExportOptions{Radius: exportRadius, UpTo: exportUpTo}
	if opts.Radius <= 0 {
		opts.Radius = cfg.Render.TubeRadius
	}
	for _, name := range exportModes {
		mode, err := gcode.ParseMode(strings.ToUpper(strings.TrimSpace(name)))
		if err != nil || !mode.IsSet() {
			return fmt.Errorf("invalid mode %q", name)
		}
		opts.Modes = append(opts.Modes, mode)
	}

	res, err := loadFile(cmd.Context(), args[0], cfg, 0, false)
	if err != nil {
		return err
	}

	output := exportOutput
	if output == "" {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".stl"
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	model := stl.FromToolpath(name, res.Toolpath, opts)
	if err := model.Save(output, exportASCII); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d triangles to %s\n", model.TriangleCount(), output)
	return nil
}
