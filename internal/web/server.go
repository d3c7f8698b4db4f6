package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/edvart/gamers-league/internal/league"
	"github.com/edvart/gamers-league/internal/push"
	"github.com/edvart/gamers-league/internal/store"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	router *chi.Mux
	svc    *league.Service
	push   *push.Service
	store  store.Store
	log    *logrus.Logger
}

// NewServer creates the HTTP server around the league service.
func NewServer(svc *league.Service, pushSvc *push.Service, st store.Store, log *logrus.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
		push:   pushSvc,
		store:  st,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)

	r.Post("/users", s.handleCreateUser)
	r.Get("/users", s.handleListUsers)

	r.Post("/venues", s.handleCreateVenue)
	r.Get("/venues", s.handleListVenues)

	r.Post("/teams", s.handleCreateTeam)
	r.Get("/teams", s.handleListTeams)
	r.Get("/teams/{teamID}/stats", s.handleTeamStats)

	r.Post("/challenges", s.handleProposeChallenge)
	r.Get("/challenges/{challengeID}", s.handleGetChallenge)
	r.Patch("/challenges/{challengeID}", s.handleNegotiate)
	r.Post("/challenges/{challengeID}/approve", s.handleApprove)
	r.Post("/challenges/{challengeID}/book", s.handleBook)

	r.Post("/bookings/{bookingID}/confirm", s.handleConfirmBooking)

	r.Post("/matches/record", s.handleRecordResult)

	r.Get("/leaderboard", s.handleLeaderboard)

	r.Get("/push/key", s.handlePushKey)
	r.Post("/push/subscribe", s.handlePushSubscribe)
	r.Delete("/push/subscribe", s.handlePushUnsubscribe)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
