package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/pandodao/zilt-wallet/handler/api"
	"github.com/pandodao/zilt-wallet/handler/hc"
	"github.com/pandodao/zilt-wallet/service/identity"
	"github.com/pandodao/zilt-wallet/service/payment"
	"github.com/pandodao/zilt-wallet/service/verification"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tsenart/nap"
)

var serverSet = wire.NewSet(
	wire.Bind(new(api.Wallet), new(*payment.Service)),
	wire.Bind(new(api.Gate), new(*verification.Gate)),
	wire.Bind(new(api.Session), new(*identity.Session)),
	api.New,
	provideServer,
)

func provideServer(apiHandler *api.Server, conn *nap.DB, reg *prometheus.Registry) *http.Server {
	m := chi.NewMux()
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Recoverer)
	m.Use(cors.AllowAll().Handler)

	m.Mount("/api", apiHandler.Handler())
	m.Mount("/hc", hc.Handler(version, map[string]hc.Check{
		"db": conn.Master().PingContext,
	}))
	m.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", opt.port),
		Handler: m,
	}
}
