package handle

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"mediaMetaViewer/media"
)

// Inspector reads the metadata of one staged upload.
type Inspector interface {
	Inspect(ctx context.Context, u media.Upload) (media.Result, error)
}

// Controller holds everything the handlers need for one server. It carries
// no per-request state.
type Controller struct {
	Inspector      Inspector
	TempDir        string
	MaxUploadBytes int64
	PreviewSize    int
	Version        string
	Log            logrus.FieldLogger
}

// InitializeRoutes The init function for all routes
func InitializeRoutes(router *mux.Router, c *Controller) {
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	router.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(c.Log),
		handlers.PrintRecoveryStack(true),
	))
	router.Handle("/", index()).Methods(http.MethodGet)
	router.Handle("/health_check", c.health()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/health", c.health()).Methods(http.MethodGet)
	api.Handle("/inspect", c.inspect()).Methods(http.MethodPost)
}
