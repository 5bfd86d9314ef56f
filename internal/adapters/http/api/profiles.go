package api

import (
	"context"
	"io"
	"net/http"

	service "github.com/okian/talentflow/internal/app"
)

// IngestDependencies defines the ingestion operations.
type IngestDependencies interface {
	Ingest(ctx context.Context, raw []byte) (*service.IngestReport, error)
	Submit(ctx context.Context, raw []byte) (service.JobStatus, error)
	Job(ctx context.Context, id string) (service.JobStatus, error)
}

// ProfilesHandler handles profile ingestion and job lookups.
type ProfilesHandler struct {
	deps IngestDependencies
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(deps IngestDependencies) *ProfilesHandler {
	return &ProfilesHandler{deps: deps}
}

type submitResponse struct {
	JobID string           `json:"job_id"`
	State service.JobState `json:"state"`
}

// HandleIngest handles POST /profiles: the batch is ingested before replying.
func (h *ProfilesHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "api.ingest_profiles"
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	report, err := h.deps.Ingest(r.Context(), raw)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleSubmit handles POST /profiles:async.
func (h *ProfilesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_profiles"
	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	st, err := h.deps.Submit(r.Context(), raw)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: st.ID, State: st.State})
}

// HandleJob handles GET /jobs/{id}.
func (h *ProfilesHandler) HandleJob(w http.ResponseWriter, r *http.Request) {
	st, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_job", err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return raw, nil
}
