package cmd

import (
	"fmt"
	"io"

	"github.com/philipparndt/gcodeview/pkg/analysis"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/spf13/cobra"
)

var (
	infoTop  int
	infoLine int
	infoNear []float64
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Display general information about a G-code file",
	Long:  "Show toolpath statistics including bounding box, segment counts per mode and travel distances.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().IntVar(&infoTop, "longest", 0, "list the N longest segments")
	infoCmd.Flags().IntVar(&infoLine, "line", 0, "list the segments produced by program line N")
	infoCmd.Flags().Float64SliceVar(&infoNear, "near", nil, "show the segment ending nearest to x,y,z")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(infoNear) != 0 && len(infoNear) != 3 {
		return fmt.Errorf("--near expects x,y,z, got %d values", len(infoNear))
	}

	res, err := loadFile(cmd.Context(), filename, cfg, 0, false)
	if err != nil {
		return err
	}
	tp := res.Toolpath
	stats := analysis.Analyze(tp)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "G-code File Information")
	fmt.Fprintln(out, "=======================")
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Program:")
	fmt.Fprintf(out, "  Lines: %d\n", stats.LineCount)
	fmt.Fprintf(out, "  Skipped lines: %d\n", stats.SkippedLines)
	fmt.Fprintf(out, "  Chunks: %d\n", res.ChunkCount)
	fmt.Fprintf(out, "  Segments: %d\n", stats.SegmentCount)
	fmt.Fprintf(out, "  Arc moves: %d\n\n", stats.ArcCount)

	fmt.Fprintln(out, "Segments by mode:")
	for _, mode := range gcode.Modes {
		fmt.Fprintf(out, "  %s: %d (%s)\n", mode, stats.Counts[mode], analysis.FormatMeasurement(stats.LengthByMode[mode], "mm"))
	}
	fmt.Fprintln(out)

	if stats.SegmentCount > 0 {
		fmt.Fprintln(out, "Bounding Box:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(stats.BoundingBox.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(stats.BoundingBox.Max))
		fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(stats.BoundingBox.Center()))

		fmt.Fprintln(out, "Dimensions:")
		fmt.Fprintf(out, "  Width (X): %.3f mm\n", stats.Dimensions.X)
		fmt.Fprintf(out, "  Depth (Y): %.3f mm\n", stats.Dimensions.Y)
		fmt.Fprintf(out, "  Height (Z): %.3f mm\n\n", stats.Dimensions.Z)
	}

	fmt.Fprintln(out, "Travel:")
	fmt.Fprintf(out, "  Cutting: %s\n", analysis.FormatMeasurement(stats.CuttingDistance, "mm"))
	fmt.Fprintf(out, "  Rapid: %s\n", analysis.FormatMeasurement(stats.RapidDistance, "mm"))
	fmt.Fprintf(out, "  Total: %s\n", analysis.FormatMeasurement(stats.TotalDistance(), "mm"))
	if stats.SegmentCount > 0 {
		fmt.Fprintf(out, "  Segment length: min %.3f, max %.3f, avg %.3f\n", stats.MinSegmentLength, stats.MaxSegmentLength, stats.AvgSegmentLength)
	}
	fmt.Fprintf(out, "  Zero-length segments: %d\n", stats.ZeroLength)

	if infoTop > 0 {
		fmt.Fprintf(out, "\nLongest segments:\n")
		printSegments(out, analysis.FindLongestSegments(tp, infoTop))
	}

	if infoLine > 0 {
		segments := analysis.FindSegmentsByLine(tp, infoLine-1)
		fmt.Fprintf(out, "\nLine %d: %d segments\n", infoLine, len(segments))
		printSegments(out, segments)
	}

	if len(infoNear) == 3 {
		point := geometry.NewVector3(infoNear[0], infoNear[1], infoNear[2])
		index, distance := analysis.FindNearestSegment(tp, point)
		if index < 0 {
			fmt.Fprintln(out, "\nNearest segment: none")
		} else {
			seg := tp.Segments[index]
			fmt.Fprintf(out, "\nNearest segment: #%d line %d %s, end %s (%s away)\n", index, tp.LineAt(index)+1,
				tp.Modes[index], analysis.FormatVector(seg.End), analysis.FormatMeasurement(distance, "mm"))
		}
	}
	return nil
}

func printSegments(out io.Writer, segments []analysis.SegmentInfo) {
	for _, seg := range segments {
		fmt.Fprintf(out, "  #%d line %d %s %s -> %s (%s)\n", seg.Index, seg.Line+1, seg.Mode,
			analysis.FormatVector(seg.Start), analysis.FormatVector(seg.End), analysis.FormatMeasurement(seg.Length, "mm"))
	}
}
