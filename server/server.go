package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/mentor-portal/guard"
	"github.com/jrsteele09/mentor-portal/internal/config"
	"github.com/jrsteele09/mentor-portal/internal/metrics"
	"github.com/jrsteele09/mentor-portal/internal/validation"
	"github.com/jrsteele09/mentor-portal/profile"
	"github.com/jrsteele09/mentor-portal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	registry  *session.Registry
	profiles  profile.RecordWriter
	metrics   *metrics.Recorder
	validator *validation.Validator
	paths     guard.Paths
	loadWait  time.Duration
	cookieAge time.Duration
	secure    bool
	templates *templateSet
}

func New(config config.Config, registry *session.Registry, profiles profile.RecordWriter, recorder *metrics.Recorder) (*Server, error) {
	if config == nil {
		return nil, errors.New("[server.New] config is required")
	}
	if registry == nil {
		return nil, errors.New("[server.New] session registry is required")
	}
	if profiles == nil {
		return nil, errors.New("[server.New] profile writer is required")
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("[server.New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		registry:  registry,
		profiles:  profiles,
		metrics:   recorder,
		validator: validation.NewValidator(),
		paths:     guard.Paths{Login: RouteLogin, ProfileSetup: RouteProfileSetup, DefaultLanding: RouteDashboard},
		loadWait:  config.GetLoadingWait(),
		cookieAge: config.GetSessionCookieMaxAge(),
		secure:    config.GetSecureCookies(),
		templates: templates,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != config.EnvDev {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}

func logError(method, path, error string) {
	log.Error().Msgf("[%-19s] %s %s", colourMethod(method), path, Red+error+ResetColor)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
