package cmd

import (
	"fmt"
	"image/png"
	"os"

	"github.com/philipparndt/gcodeview/pkg/viewer"
	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderWidth  int
	renderHeight int
	renderUpTo   int
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a toolpath to a PNG image",
	Long:  "Render the plan view of a toolpath without a window, e.g. for previews in CI.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "toolpath.png", "output PNG file")
	renderCmd.Flags().IntVar(&renderWidth, "width", 800, "image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 600, "image height in pixels")
	renderCmd.Flags().IntVar(&renderUpTo, "upto", -1, "draw only the first N segments (-1 for all)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if renderWidth <= 0 || renderHeight <= 0 {
		return fmt.Errorf("invalid image size %dx%d", renderWidth, renderHeight)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := loadFile(cmd.Context(), args[0], cfg, 0, false)
	if err != nil {
		return err
	}

	tp := res.Toolpath
	upTo := renderUpTo
	if upTo < 0 || upTo > tp.Len() {
		upTo = tp.Len()
	}
	img := viewer.RenderImage(tp, viewer.NewCamera(tp.Bounds()), renderWidth, renderHeight, cfg.Styles(), upTo)

	f, err := os.Create(renderOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", renderOutput, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", renderOutput, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d of %d segments to %s\n", upTo, tp.Len(), renderOutput)
	return nil
}
