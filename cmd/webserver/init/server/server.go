/*
 * Server - web server initialization
 *
 * Copyright 2026 Marco Confalonieri.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"opnsense-blocklist/cmd/webserver/init/configuration"
	"opnsense-blocklist/internal/webapi"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// NewRouter registers the blocklist endpoints.
func NewRouter(a *webapi.WebAPI) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(webapi.Recover)
	r.Use(webapi.Health)
	r.Get(webapi.IndexPath, a.Index)
	r.Get(webapi.StatusPath, a.Status)
	r.Get(webapi.EnablePath, a.Enable)
	r.Get(webapi.DisablePath, a.Disable)
	r.Get(webapi.LeasesPath, a.Leases)
	return r
}

// Init server initialization function
func Init(config configuration.Config, a *webapi.WebAPI) *http.Server {
	srv := createHTTPServer(config, NewRouter(a))
	go func() {
		log.Infof("starting server on addr: '%s' ", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("can't serve on addr: '%s', error: %v", srv.Addr, err)
		}
	}()
	return srv
}

func createHTTPServer(config configuration.Config, hand http.Handler) *http.Server {
	return &http.Server{
		ReadTimeout:       config.GetReadTimeout(),
		WriteTimeout:      config.GetWriteTimeout(),
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		Addr:              config.GetAddress(),
		Handler:           hand,
	}
}

// Shutdown gracefully shuts down the http server
func Shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("error shutting down server: %v", err)
	}
}
