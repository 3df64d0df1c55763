package cmd

import (
	"github.com/philipparndt/gcodeview/internal/gui"
	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui [file]",
	Short: "Open the desktop viewer with playback controls",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		gui.Run(path, cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
