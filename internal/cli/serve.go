package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	cachebackend "github.com/matzehuels/depot/pkg/backend/cache"
	"github.com/matzehuels/depot/pkg/errors"
	"github.com/matzehuels/depot/pkg/server"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		username string
		metrics  bool
	)

	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Serve an artifact cache over HTTP",
		Long: `Serve an artifact cache directory read-only over HTTP, in the layout the url
backend reads. Defaults to the local artifact cache.

Basic authentication is enabled with --user; the password is read from
DEPOT_SERVE_PASSWORD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cachebackend.DefaultDir()
			if len(args) == 1 {
				dir = args[0]
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return errors.New(errors.ErrCodeInvalidInput, "%s is not a directory", dir)
			}
			password := os.Getenv("DEPOT_SERVE_PASSWORD")
			if username != "" && password == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "--user needs DEPOT_SERVE_PASSWORD")
			}

			opts := server.Options{Dir: dir, Logger: c.Logger, Username: username, Password: password}
			if metrics {
				reg := prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				opts.Registry = reg
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(opts),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx := cmd.Context()
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			printSuccess("Serving %s", dir)
			printKeyValue("Address", addr)

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			c.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&username, "user", "", "require basic authentication as this user")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose /metrics")

	return cmd
}
