package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/botwire/go-wa-gateway/auth"
	"github.com/botwire/go-wa-gateway/flows"
	"github.com/botwire/go-wa-gateway/internal/config"
	"github.com/botwire/go-wa-gateway/profiles"
	"github.com/botwire/go-wa-gateway/session"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	sessions *session.Manager
	auth     *auth.Service
	profiles profiles.Repo
	flows    flows.Repo
	log      zerolog.Logger
}

func New(
	cfg config.Config,
	manager *session.Manager,
	authService *auth.Service,
	profileRepo profiles.Repo,
	flowRepo flows.Repo,
	logger zerolog.Logger,
) (*Server, error) {
	if manager == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if profileRepo == nil {
		return nil, errors.New("[Server New] profiles repo is required")
	}
	if flowRepo == nil {
		return nil, errors.New("[Server New] flows repo is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		sessions: manager,
		auth:     authService,
		profiles: profileRepo,
		flows:    flowRepo,
		log:      logger,
	}
	s.env = cfg.GetEnv()

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

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
