// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	auth "github.com/abbot/go-http-auth"
	"github.com/gorilla/mux"
	"github.com/jeffbmartinez/delay"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/negroni"

	"github.com/readium/xmlenc"
)

// newRouter wires cmd/xmlencd's handlers the way the teacher wires
// frontend/api: gorilla/mux for routing, negroni for the middleware chain
// (recovery, request logging, then rs/cors, then an optional basic-auth
// guard and chaos-latency middleware), rounded out with a Prometheus
// metrics endpoint.
func newRouter(cfg *Config, ctx *xmlenc.Context) http.Handler {
	r := mux.NewRouter()

	r.Handle("/healthz", http.HandlerFunc(handleHealthz)).Methods(http.MethodGet)

	r.Handle("/v1/encrypt", instrument("encrypt", http.HandlerFunc(handleEncrypt(ctx)))).Methods(http.MethodPost)
	r.Handle("/v1/decrypt", instrument("decrypt", http.HandlerFunc(handleDecrypt(ctx)))).Methods(http.MethodPost)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	n := negroni.New(negroni.NewRecovery(), negroni.NewLogger())

	corsOpts := cors.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}
	n.Use(cors.New(corsOpts))

	var handler http.Handler = r
	if cfg.Auth != nil {
		handler = wrapBasicAuth(cfg.Auth.Realm, cfg.Auth.Htpasswd, handler)
	}
	if cfg.ChaosLatency != nil {
		os.Setenv("DELAY_MIN_MS", strconv.Itoa(cfg.ChaosLatency.MinMillis))
		os.Setenv("DELAY_MAX_MS", strconv.Itoa(cfg.ChaosLatency.MaxMillis))
		handler = delay.Delay(handler)
	}
	n.UseHandler(handler)

	return n
}

// wrapBasicAuth guards every route behind htpasswd basic auth, the same
// collaborator (abbot/go-http-auth) the teacher declares in go.mod for
// exactly this purpose.
func wrapBasicAuth(realm, htpasswdFile string, next http.Handler) http.Handler {
	authenticator := auth.NewBasicAuthenticator(realm, auth.HtpasswdFileProvider(htpasswdFile))
	return authenticator.Wrap(func(w http.ResponseWriter, r *auth.AuthenticatedRequest) {
		next.ServeHTTP(w, &r.Request)
	})
}

func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		requestsTotal.WithLabelValues(route, statusBucket(sw.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func statusBucket(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
