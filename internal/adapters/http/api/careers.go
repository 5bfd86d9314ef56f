package api

import (
	"context"
	"net/http"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

// CareerDependencies defines per-profile career queries.
type CareerDependencies interface {
	Transitions(ctx context.Context, profileURN string) ([]model.TransitionEvent, error)
	CareerPath(ctx context.Context, profileURN string) (graph.Career, error)
}

// CareerHandler serves a profile's moves between companies.
type CareerHandler struct {
	deps CareerDependencies
}

// NewCareerHandler creates a new career handler.
func NewCareerHandler(deps CareerDependencies) *CareerHandler {
	return &CareerHandler{deps: deps}
}

type transitionsResponse struct {
	ProfileURN  string                  `json:"profile_urn"`
	Transitions []model.TransitionEvent `json:"transitions"`
}

// HandleTransitions handles GET /profiles/{urn}/transitions, newest first.
func (h *CareerHandler) HandleTransitions(w http.ResponseWriter, r *http.Request) {
	const op = "api.profile_transitions"
	urn := r.PathValue("urn")
	events, err := h.deps.Transitions(r.Context(), urn)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if events == nil {
		events = []model.TransitionEvent{}
	}
	writeJSON(w, http.StatusOK, transitionsResponse{ProfileURN: urn, Transitions: events})
}

// HandleCareer handles GET /profiles/{urn}/career.
func (h *CareerHandler) HandleCareer(w http.ResponseWriter, r *http.Request) {
	const op = "api.profile_career"
	c, err := h.deps.CareerPath(r.Context(), r.PathValue("urn"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
