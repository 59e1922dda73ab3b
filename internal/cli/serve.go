package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/cranestack/pkg/errors"
	"github.com/matzehuels/cranestack/pkg/httputil"
	"github.com/matzehuels/cranestack/pkg/pipeline"
)

const (
	// maxBodySize bounds a simulate request body.
	maxBodySize = 8 << 20

	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over HTTP",
		Long: `Start an HTTP server exposing the simulation pipeline.

Endpoints:
  POST /v1/simulate   body: input text; query: mode (repeatable), refresh
  GET  /healthz       liveness probe

Parse errors answer 400 and invariant violations 422, both with a
{"code", "message", "line"} body.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, out io.Writer, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("create runner: %w", err)
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(runner, c.Config.Cache.TTL, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	printInfo(out, "Listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRouter builds the HTTP routes around runner.
func newRouter(runner *pipeline.Runner, ttl time.Duration, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httputil.Observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/simulate", func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With("request_id", middleware.GetReqID(r.Context()))

		opts, err := simulateOptions(r)
		if err != nil {
			_ = httputil.WriteError(w, err)
			return
		}
		opts.CacheTTL = ttl
		opts.Logger = reqLogger

		input, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			_ = httputil.WriteError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body"))
			return
		}

		result, err := runner.Execute(r.Context(), input, opts)
		if err != nil {
			if httputil.StatusFor(err) >= http.StatusInternalServerError {
				reqLogger.Error("simulate failed", "error", err)
			}
			_ = httputil.WriteError(w, err)
			return
		}
		_ = httputil.WriteJSON(w, http.StatusOK, result)
	})

	return r
}

// simulateOptions reads the pipeline options from the query string.
func simulateOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{Modes: q["mode"]}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = refresh
	}
	return opts, nil
}
