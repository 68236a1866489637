package cmd

import (
	"errors"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitekit/sitekit/internal/build"
	"github.com/sitekit/sitekit/internal/config"
	"github.com/sitekit/sitekit/internal/logging"
	"github.com/sitekit/sitekit/internal/server"
	"github.com/sitekit/sitekit/internal/watch"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the site and serve it with live reload",
	Long: `Run a full build, then start the development server and watch the
source tree. Changed files trigger their rebuild pipeline and a browser
reload. Blocks until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		return runServe(cmd, cfg, log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "port to serve on")
	serveCmd.Flags().String("host", "localhost", "host to bind to")
	serveCmd.Flags().Bool("no-open", false, "don't open the browser")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.no-open", serveCmd.Flags().Lookup("no-open"))
}

func runServe(cmd *cobra.Command, cfg *config.Config, log *logging.Logger) error {
	runner, err := build.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Build(ctx); err != nil {
		return err
	}

	srv := server.New(cfg.Dirs.Build.Base, cfg.Server.Host, cfg.Server.Port, log)

	watcher, err := watch.New(cfg.Dirs, cfg.Watch.Debounce, log)
	if err != nil {
		return err
	}
	go watcher.Run(ctx)

	dispatcher := watch.NewDispatcher(runner, srv.Hub(), log)
	go dispatcher.Run(ctx, watcher.Events())

	if !cfg.Server.NoOpen {
		openBrowser(srv.URL(), log)
	}

	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openBrowser is best effort; serving continues either way.
func openBrowser(url string, log *logging.Logger) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Debug("cannot open browser", "url", url, "error", err)
		return
	}
	go func() { _ = cmd.Wait() }()
}
