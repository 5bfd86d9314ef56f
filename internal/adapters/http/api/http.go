// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/talentflow/internal/adapters/repository"
	service "github.com/okian/talentflow/internal/app"
	"github.com/okian/talentflow/internal/domain/model"
)

const (
	defaultLimit = 10
	maxBodyBytes = 32 << 20
)

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	IngestDependencies
	RankingDependencies
	CompanyDependencies
	CareerDependencies
	GraphDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	profilesHandler *ProfilesHandler
	rankingsHandler *RankingsHandler
	companyHandler  *CompanyHandler
	careerHandler   *CareerHandler
	graphHandler    *GraphHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		profilesHandler: NewProfilesHandler(deps),
		rankingsHandler: NewRankingsHandler(deps, defaultLimit),
		companyHandler:  NewCompanyHandler(deps),
		careerHandler:   NewCareerHandler(deps),
		graphHandler:    NewGraphHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /profiles", MetricsMiddleware(s.profilesHandler.HandleIngest, "profiles"))
	mux.HandleFunc("POST /profiles:async", MetricsMiddleware(s.profilesHandler.HandleSubmit, "profiles_async"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.profilesHandler.HandleJob, "jobs"))
	mux.HandleFunc("POST /rankings", MetricsMiddleware(s.rankingsHandler.HandleRun, "rankings_run"))
	mux.HandleFunc("GET /rankings", MetricsMiddleware(s.rankingsHandler.HandleList, "rankings"))
	mux.HandleFunc("GET /rank/{urn}", MetricsMiddleware(s.rankingsHandler.HandleRank, "rank"))
	mux.HandleFunc("GET /profiles/{urn}/transitions", MetricsMiddleware(s.careerHandler.HandleTransitions, "transitions"))
	mux.HandleFunc("GET /profiles/{urn}/career", MetricsMiddleware(s.careerHandler.HandleCareer, "career"))
	mux.HandleFunc("GET /companies/{urn}", MetricsMiddleware(s.companyHandler.HandleCompany, "company"))
	mux.HandleFunc("GET /companies/{urn}/flow", MetricsMiddleware(s.companyHandler.HandleFlow, "flow"))
	mux.HandleFunc("GET /companies/{urn}/signal", MetricsMiddleware(s.companyHandler.HandleSignal, "signal"))
	mux.HandleFunc("GET /graph/projection", MetricsMiddleware(s.graphHandler.HandleProjection, "projection"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure picks the status and code for err.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidWindow),
		errors.Is(err, model.ErrUnknownRanking),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, model.ErrGraphQuery):
		return http.StatusBadGateway, "graph_query_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// window reads the optional start and end query parameters.
func window(r *http.Request) (model.Window, error) {
	q := r.URL.Query()
	return model.ParseWindow(q.Get("start"), q.Get("end"))
}

// headcount reads the optional headcount query parameter.
func headcount(r *http.Request) (*int, error) {
	s := r.URL.Query().Get("headcount")
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, errors.New("headcount must be a non-negative integer")
	}
	return &n, nil
}
