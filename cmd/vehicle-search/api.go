// cmd/vehicle-search/api.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"vehicle-search/internal/httpapi"
)

func apiCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Serve the REST API (parse, relax, search)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.HTTP.Address
			}
			handler := httpapi.NewHandler(a.parser, a.engine, a.searchService(), a.log)
			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.NewRouter(handler, a.cfg.HTTP, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("api listening", map[string]interface{}{"address": addr})
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: http.address)")
	return cmd
}
