// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/uninett/connect-import-service/internal/config"
	"github.com/uninett/connect-import-service/internal/domain"
	"github.com/uninett/connect-import-service/internal/infrastructure/dataporten"
	"github.com/uninett/connect-import-service/internal/metrics"
	"github.com/uninett/connect-import-service/internal/middleware"
	"github.com/uninett/connect-import-service/pkg/constants"
)

// newRouter mounts the operational endpoints at the root and the import API
// under the configured base path.
func newRouter(server config.ServerConfig, api *ImportAPI, verifier *dataporten.Verifier) http.Handler {
	r := chi.NewRouter()

	// Note: Order matters - the request id must exist before the logger runs.
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggerMiddleware())
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			constants.RequestIDHeader,
			constants.DataportenClientIDHeader,
			constants.DataportenUserIDSecHeader,
			constants.DataportenTokenHeader,
		},
		ExposedHeaders: []string{constants.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get(constants.LivezPath, api.Livez)
	r.Get(constants.ReadyzPath, api.Readyz)
	r.Handle(constants.MetricsPath, metrics.Handler())

	r.Route(server.BasePath, func(r chi.Router) {
		r.Use(middleware.IdentityMiddleware(verifier, writeError))

		r.Get("/", api.Routes)
		r.Get("/version", api.Version)
		r.Get("/folder/{org}/nav", api.FolderNav)

		r.Group(func(r chi.Router) {
			if server.RateLimit > 0 {
				r.Use(httprate.Limit(server.RateLimit, server.RateLimitWindow,
					httprate.WithKeyFuncs(callerKey),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						writeError(w, r, domain.NewRateLimitedError("too many provisioning requests, try again later"))
					}),
				))
			}
			r.Post("/rooms/create", api.CreateRooms)
			r.Post("/users/create", api.CreateUsers)
		})
	})

	return otelhttp.NewHandler(r, "import-api")
}

// callerKey rate limits per verified user, falling back to the client IP.
func callerKey(r *http.Request) (string, error) {
	if id := dataporten.FromContext(r.Context()); id != nil {
		return id.UserID, nil
	}
	return httprate.KeyByIP(r)
}
