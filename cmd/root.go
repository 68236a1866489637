// Package cmd provides the sitekit command-line interface.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--port, --root, ...)
//  2. SITEKIT_* environment variables (SITEKIT_SERVER_PORT, ...)
//  3. .sitekit.yml in the working directory
//
// A project-local .env file is loaded before the build mode resolves, so
// NODE_ENV can live there the way front-end toolchains expect. The mode
// gate is NODE_ENV=production; anything else builds in debug.
package cmd

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sitekit",
	Short: "Static-site build tool and dev server",
	Long: `sitekit compiles a static site's source tree (handlebars templates,
utility-first CSS, browser JS modules, static assets) into a build tree,
and serves it locally with live reload.

Running sitekit with no subcommand builds the site; in debug mode it then
starts the dev server and watches for changes. Set NODE_ENV=production
(environment or .env) for minified production output.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if cfg.Mode.IsProduction() {
			return runBuild(cmd, cfg, log)
		}
		return runServe(cmd, cfg, log)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .sitekit.yml)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("root", ".", "project root directory")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
}

func initConfig() {
	// .env first: NODE_ENV commonly lives there. Existing environment wins.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sitekit")
	}

	viper.SetEnvPrefix("SITEKIT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	return cfg, log, nil
}
