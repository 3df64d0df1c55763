package cmd

import (
	"github.com/philipparndt/gcodeview/internal/app"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Open a toolpath in the 3D viewer",
	Long: `Open a toolpath in an accelerated 3D window. The file is parsed in chunks
while the window is already responsive and reloaded when it changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(args[0], cfg)
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
