package api

import (
	"net/http"
	"time"

	"github.com/angelmondragon/ecomagent-backend/pkg/config"
)

// NewServer builds the HTTP server for handler listening on addr.
func NewServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
}
