package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/stridestats/stridestats/internal/activities"
	"github.com/stridestats/stridestats/internal/config"
	"github.com/stridestats/stridestats/internal/middleware"
	"github.com/stridestats/stridestats/internal/strava"
	"github.com/stridestats/stridestats/internal/telemetry/metrics"
	"github.com/stridestats/stridestats/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config          *config.Config
	activitiesStore *activities.FileStore
	stravaApi       *strava.Api

	redisClient *redis.Client

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config             *config.Config
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
	RedisPassword      string
	VersionInfo        string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	stravaBaseURL := params.Config.StravaBaseURL
	if stravaBaseURL == "" {
		stravaBaseURL = strava.DefaultBaseURL
	}

	csvExists, err := pkg.PathExists(params.Config.ActivitiesCsvPath, false)
	if err != nil {
		return nil, fmt.Errorf("check activities csv path: %w", err)
	}
	if !csvExists {
		log.Warnf("activities csv not found at %s, dashboard will fail until a refresh is done", params.Config.ActivitiesCsvPath)
	}

	s := &Server{
		config:          params.Config,
		versionInfo:     params.VersionInfo,
		activitiesStore: activities.NewFileStore(params.Config.ActivitiesCsvPath),
		stravaApi: strava.NewApi(
			stravaBaseURL,
			params.StravaClientID,
			params.StravaClientSecret,
			params.StravaRefreshToken,
			time.Duration(params.Config.FetchCacheTTLMinutes)*time.Minute,
			tracedHttpClient,
		),

		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	activitiesHandler := activities.NewHandler(s.activitiesStore, s.stravaApi, s.metricsManager)
	r.HandleFunc("/dashboard", activitiesHandler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
	r.HandleFunc("/dashboard/export", activitiesHandler.HandleExport).Methods("GET", "OPTIONS").Name("dashboard-export")

	refreshRateLimiter := redis_rate.NewLimiter(s.redisClient)
	r.Handle(
		"/dashboard/refresh",
		middleware.RateLimit(
			refreshRateLimiter,
			"dashboard-refresh",
			s.config.RefreshRateLimitAllowedPerMin,
		)(http.HandlerFunc(activitiesHandler.HandleRefresh)),
	).Methods("POST", "OPTIONS").Name("dashboard-refresh")

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteJSONResponseOK(w, `{"health":"ok"}`)
	}).Methods("GET").Name("health")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteResponse(w, pkg.ContentType.Text, s.versionInfo, http.StatusOK)
	}).Methods("GET").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to shut down main server: %s", err)
		}
	}
	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to shut down metrics server: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	log.Debugln("server shut down")
}
