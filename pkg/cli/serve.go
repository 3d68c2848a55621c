package cli

import (
	"context"
	"errors"
	"net/http"

	"youbuildit/pkg/handlers"
	"youbuildit/pkg/services"
	"youbuildit/pkg/store"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("DATABASE_URL is not set")

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				return a.serve(cmd.Context(), addr)
			}
			return a.serve(cmd.Context(), ":"+a.cfg.Port)
		},
	}
	cmd.Flags().String("addr", "", "listen address (defaults to :PORT)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	cfg := a.cfg
	if cfg.UsesDevSessionSecret() {
		log.Warn().Msg("SESSION_SECRET is not set, using the development secret")
	}
	if cfg.OAuth.ClientID == "" {
		log.Warn().Msg("GITHUB_CLIENT_ID is not set, sign in will fail")
	}

	db, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	lib := a.library()
	deps := handlers.Deps{
		Config:   cfg,
		Library:  lib,
		Renderer: a.renderer(),
	}
	if db != nil {
		defer db.Close()
		deps.Users = store.NewUsers(db)
	} else {
		log.Warn().Msg("DATABASE_URL is not set, members are kept in the session only")
	}
	deps.Sync = func(ctx context.Context) (string, error) {
		return services.SyncContent(ctx, lib, cfg.GitRemote, cfg.GitBranch, cfg.GitToken)
	}

	// Fail at startup rather than on the first request.
	challenges, err := lib.All(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("challenges", len(challenges)).Str("content", lib.Root()).Msg("content loaded")

	r, err := handlers.NewRouter(deps)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("url", cfg.AppURL).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
