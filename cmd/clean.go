package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sitekit/sitekit/internal/build"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the build tree",
	Long: `Remove the build output directory. Idempotent; a full build always
cleans first, so this exists for freeing the tree without rebuilding.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if err := build.Clean(cmd.Context(), cfg.Dirs.Build.Base); err != nil {
			return err
		}
		log.Info("build tree removed", "dir", cfg.Dirs.Build.Base)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
