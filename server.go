package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"mediaMetaViewer/handle"
	"mediaMetaViewer/utils"
)

func newRouter(cfg *Config, log *logrus.Logger, inspector handle.Inspector, accessLog io.Writer) http.Handler {
	r := mux.NewRouter()
	handle.InitializeRoutes(r, &handle.Controller{
		Inspector:      inspector,
		TempDir:        cfg.TempDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		PreviewSize:    cfg.PreviewSize,
		Version:        version,
		Log:            log,
	})

	cors := handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type", "Accept"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedOrigins([]string{"*"}),
	)
	return handlers.CombinedLoggingHandler(accessLog, cors(r))
}

// StartServer serves the HTTP API until SIGINT or SIGTERM.
func StartServer(cfg *Config, log *logrus.Logger, inspector handle.Inspector) error {
	accessLog := log.WriterLevel(logrus.InfoLevel)
	defer accessLog.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, log, inspector, accessLog),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go utils.Quit("HTTP API", log, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	})

	log.WithField("addr", cfg.Addr).Info("Serving HTTP API")
	return <-errCh
}
