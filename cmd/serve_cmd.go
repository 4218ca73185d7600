package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dpformance-site/pkg/handlers"
	"dpformance-site/pkg/i18n"
	"dpformance-site/pkg/services"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the site, the gallery API and the contact relay via HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := serveWebsite(ctx, a); err != nil {
				a.logger.Error().Err(err).Msg("server error")
				return err
			}
			return nil
		},
	}
}

// serveWebsite wires the handlers and runs the server until ctx is done
func serveWebsite(ctx context.Context, a *app) error {
	var mailer services.Mailer = services.DisabledMailer{}
	if m, err := services.NewSMTPMailer(a.cfg); err == nil {
		mailer = m
	} else {
		a.logger.Warn().Err(err).Msg("contact relay disabled")
	}

	contact := services.NewContactService(mailer, a.cfg.ContactRecipient, a.cfg.ContactLimit, a.cfg.ContactWindow, a.logger)
	lang, _ := i18n.Parse(a.cfg.DefaultLang)

	h := handlers.New(
		a.gallery,
		contact,
		a.catalog,
		handlers.NewPugRenderer(a.cfg.ViewsDir),
		i18n.NewCookieStore(a.cfg.Environment == "prod"),
		lang,
		a.logger,
	)
	router := handlers.NewRouter(h, handlers.RouterOptions{
		StaticDir:    a.cfg.StaticDir,
		PublicPrefix: a.cfg.PublicPrefix,
		CORSOrigins:  a.cfg.CORSOrigins,
		Logger:       a.logger,
	})

	ln, err := net.Listen("tcp", a.cfg.ServerAddress())
	if err != nil {
		return err
	}

	a.cfg.PrintServerStartMessage()
	return runServer(ctx, ln, router, a.logger)
}

// runServer serves on ln until ctx is cancelled, then shuts down gracefully
func runServer(ctx context.Context, ln net.Listener, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", ln.Addr().String()).Msg("server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
