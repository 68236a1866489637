package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sitekit/sitekit/internal/build"
	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site once",
	Long: `Run the full build pipeline: clean the build tree, then compile CSS,
bundle JS, copy images and pages, and compile templates. Output is minified
when NODE_ENV=production, readable with source maps otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		return runBuild(cmd, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, cfg *config.Config, log *logging.Logger) error {
	runner, err := build.NewRunner(cfg, log)
	if err != nil {
		return err
	}
	return runner.Build(cmd.Context())
}
