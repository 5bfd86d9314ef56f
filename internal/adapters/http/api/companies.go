package api

import (
	"context"
	"net/http"

	"github.com/okian/talentflow/internal/domain/flow"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/signal"
	"github.com/okian/talentflow/internal/domain/types"
)

// CompanyDependencies defines per-company queries.
type CompanyDependencies interface {
	Company(ctx context.Context, urn string) (model.Company, error)
	Flow(ctx context.Context, companyURN string, w model.Window, headcount *int) (flow.Metrics, error)
	Signal(ctx context.Context, companyURN string, w model.Window, headcount *int) (signal.Signal, error)
}

// GraphDependencies defines graph exports.
type GraphDependencies interface {
	Projection(ctx context.Context, w model.Window) (types.Projection, error)
}

// CompanyHandler handles flow and signal requests.
type CompanyHandler struct {
	deps CompanyDependencies
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(deps CompanyDependencies) *CompanyHandler {
	return &CompanyHandler{deps: deps}
}

// HandleCompany handles GET /companies/{urn}.
func (h *CompanyHandler) HandleCompany(w http.ResponseWriter, r *http.Request) {
	const op = "api.company"
	c, err := h.deps.Company(r.Context(), r.PathValue("urn"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleFlow handles GET /companies/{urn}/flow?start=&end=&headcount=.
func (h *CompanyHandler) HandleFlow(w http.ResponseWriter, r *http.Request) {
	const op = "api.company_flow"
	win, hc, err := companyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := h.deps.Flow(r.Context(), r.PathValue("urn"), win, hc)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleSignal handles GET /companies/{urn}/signal?start=&end=&headcount=.
func (h *CompanyHandler) HandleSignal(w http.ResponseWriter, r *http.Request) {
	const op = "api.company_signal"
	win, hc, err := companyQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sig, err := h.deps.Signal(r.Context(), r.PathValue("urn"), win, hc)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sig)
}

func companyQuery(r *http.Request) (model.Window, *int, error) {
	win, err := window(r)
	if err != nil {
		return model.Window{}, nil, err
	}
	hc, err := headcount(r)
	if err != nil {
		return model.Window{}, nil, err
	}
	return win, hc, nil
}

// GraphHandler handles graph exports.
type GraphHandler struct {
	deps GraphDependencies
}

// NewGraphHandler creates a new graph handler.
func NewGraphHandler(deps GraphDependencies) *GraphHandler {
	return &GraphHandler{deps: deps}
}

// HandleProjection handles GET /graph/projection?start=&end=.
func (h *GraphHandler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "api.projection"
	win, err := window(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Projection(r.Context(), win)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
