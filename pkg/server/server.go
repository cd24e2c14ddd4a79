package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/data-lens/pkg/handlers/dashboard"
	datalensmiddleware "github.com/de-tools/data-lens/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    dashboard.Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(logger, config.Dependencies)

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
}

// ConfigureRouter wires the dashboard routes onto a chi mux.
func ConfigureRouter(logger zerolog.Logger, deps dashboard.Dependencies) *chi.Mux {
	handler := dashboard.NewHandler(deps)

	router := chi.NewRouter()
	router.Use(datalensmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/datasets", handler.UploadDataset)
		r.Post("/datasets/clean", handler.CleanDataset)
		r.Get("/datasets/preview", handler.PreviewDataset)
		r.Post("/analyses/manual", handler.ManualAnalysis)
		r.Post("/analyses/auto", handler.AutoAnalysis)
		r.Post("/analyses/question", handler.AskQuestion)
		r.Get("/reports", handler.ListReports)
		r.Delete("/reports/{bucket}/{index}", handler.RemoveReport)
		r.Post("/reports/export", handler.ExportReports)
	})

	return router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
