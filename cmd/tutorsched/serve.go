package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/example/tutor-scheduler/internal/http"
)

func newServeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := cctx.openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := app.Close(); cerr != nil {
					app.logger.Error("failed to close storage", "error", cerr)
				}
			}()

			router := httptransport.NewRouter(httptransport.RouterConfig{
				Students: httptransport.NewStudentHandler(app.students, app.logger),
				Lessons:  httptransport.NewLessonHandler(app.lessons, app.timeline, app.logger),
				Rules:    httptransport.NewRuleHandler(app.rules, app.timeline, app.logger),
				Timeline: httptransport.NewTimelineHandler(app.timeline, app.logger),
				Progress: httptransport.NewProgressHandler(app.progress, app.logger),
				Middleware: []func(http.Handler) http.Handler{
					httptransport.RequestLogger(app.logger),
				},
			})

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", app.cfg.HTTPPort),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					app.logger.Error("failed to shutdown server", "error", err)
				}
			}()

			app.logger.Info("tutorsched API listening", "addr", server.Addr, "database", app.cfg.DatabasePath)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server encountered error: %w", err)
			}
			return nil
		},
	}
}
