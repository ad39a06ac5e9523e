package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aardd/internal/app"
	"aardd/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var corsOrigins string
	var watch bool
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the lookup daemon and content server",
		Example: "  aardd serve --dict-dir ~/dictionaries --watch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("cors-origins") {
				cfg.CORSEnabled = true
				cfg.CORSOrigins = splitCSV(corsOrigins)
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := httpapi.NewHub()
			acfg, err := appConfig(cfg, opts.log)
			if err != nil {
				return err
			}
			acfg.Events = app.MultiPublisher{hub, app.LogPublisher{Logger: opts.log}}
			a, err := app.NewWithConfig(acfg)
			if err != nil {
				return err
			}
			defer a.Close()

			httpapi.SetLogger(opts.log.With().Str("component", "http").Logger())
			httpapi.SetBaseContext(ctx)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetPageSize(cfg.PageSize)
			httpapi.SetLookupLimit(cfg.LookupLimit)
			if cfg.HTTPLogLevel != "" {
				httpapi.SetDefaultLogLevel(cfg.HTTPLogLevel)
			}
			if cfg.CORSEnabled {
				methods := cfg.CORSMethods
				if len(methods) == 0 {
					methods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
				}
				headers := cfg.CORSHeaders
				if len(headers) == 0 {
					headers = []string{"Content-Type"}
				}
				httpapi.SetCORSOptions(true, cfg.CORSOrigins, methods, headers)
			}

			srv := httpapi.NewContentServer(httpapi.NewMux(a, hub))
			if err := a.Start(ctx, srv); err != nil {
				return err
			}
			opts.log.Info().Str("addr", a.Binding().Addr()).Msg("aardd listening")

			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				opts.log.Warn().Err(err).Msg("graceful shutdown")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated origins allowed by CORS (enables CORS)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Rediscover dictionaries when dictionary directories change")
	return cmd
}
