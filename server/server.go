// Package server exposes the inventory and session services over HTTP. Each
// configured service gets its own router and listener.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"awsdocs/awsd"
	"awsdocs/awsd/models"
	"awsdocs/configuration"
	"awsdocs/errors"
	"awsdocs/logger"
	"awsdocs/snapshot"
)

const (
	packageName = "server"
)

// Options control request handling shared by every service.
type Options struct {
	DefaultRegion        string
	AllowedOrigins       []string
	RedactUpstreamErrors bool
	ProviderTimeout      time.Duration
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *configuration.Config) Options {
	return Options{
		DefaultRegion:        cfg.DefaultRegion,
		AllowedOrigins:       cfg.CORSAllowedOrigins,
		RedactUpstreamErrors: cfg.RedactUpstreamErrors,
		ProviderTimeout:      cfg.ProviderTimeoutDuration(),
	}
}

// Server holds the collaborators and last-listed snapshots shared by the
// per-service routers.
type Server struct {
	opts      Options
	inventory InventoryService
	sessions  SessionService
	logger    *zap.Logger

	instances      *snapshot.Store[[]models.Instance]
	buckets        *snapshot.Store[[]models.Bucket]
	securityGroups *snapshot.Store[[]models.SecurityGroup]

	now func() time.Time
}

// New creates a Server
func New(opts Options, inventory InventoryService, sessions SessionService, log *zap.Logger) *Server {
	return &Server{
		opts:           opts,
		inventory:      inventory,
		sessions:       sessions,
		logger:         log.With(zap.String("package", packageName)),
		instances:      snapshot.New[[]models.Instance](),
		buckets:        snapshot.New[[]models.Bucket](),
		securityGroups: snapshot.New[[]models.SecurityGroup](),
		now:            time.Now,
	}
}

// Router builds the routes of one service.
func (s *Server) Router(service string) (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(s.instrument(service))

	r.Path("/health").Methods(http.MethodGet).Handler(s.response(s.health(service)))
	r.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.Handler())

	switch service {
	case configuration.ServiceEC2:
		for _, path := range []string{"/", "/instances"} {
			r.Path(path).Methods(http.MethodGet).Handler(s.response(s.listInstances))
		}
	case configuration.ServiceNetwork:
		for _, path := range []string{"/", "/network"} {
			r.Path(path).Methods(http.MethodGet).Handler(s.response(s.describeNetwork))
		}
	case configuration.ServiceS3:
		for _, path := range []string{"/", "/buckets"} {
			r.Path(path).Methods(http.MethodGet).Handler(s.response(s.listBuckets))
		}
	case configuration.ServiceSecurityGroups:
		for _, prefix := range []string{"", "/security-groups"} {
			list := prefix
			if list == "" {
				list = "/"
			}
			r.Path(list).Methods(http.MethodGet).Handler(s.response(s.listSecurityGroups))
			r.Path(prefix + "/filter").Methods(http.MethodPost).Handler(s.response(s.filterSecurityGroups))
			r.Path(prefix + "/export/csv").Methods(http.MethodPost).Handler(http.HandlerFunc(s.exportSecurityGroups))
		}
	case configuration.ServiceAuth:
		r.Path("/auth/assume-role").Methods(http.MethodPost).Handler(s.response(s.assumeRole))
		r.Path("/auth/session/{session_id}").Methods(http.MethodGet).Handler(s.response(s.getSession))
	default:
		return nil, errors.New(errors.ErrConfigInvalid, "unknown service",
			map[string]interface{}{
				"service": service,
			}, nil)
	}
	return r, nil
}

// Handler is Router wrapped with CORS and panic recovery.
func (s *Server) Handler(service string) (http.Handler, error) {
	r, err := s.Router(service)
	if err != nil {
		return nil, err
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StdLog(packageName)),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(r)), nil
}

// HTTPServer builds the listener for one configured service.
func (s *Server) HTTPServer(svc configuration.ServiceConfig) (*http.Server, error) {
	h, err := s.Handler(svc.Name)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              svc.Listen,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.StdLog(packageName),
	}, nil
}

// region returns the region query parameter, or the configured default.
// Malformed names are rejected before any provider client is built.
func (s *Server) region(r *http.Request) (string, error) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = s.opts.DefaultRegion
	}
	if err := awsd.ValidateRegion(region); err != nil {
		return "", err
	}
	return region, nil
}

// providerContext bounds the provider calls made on behalf of r.
func (s *Server) providerContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.opts.ProviderTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.opts.ProviderTimeout)
}
