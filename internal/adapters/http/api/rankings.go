package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/talentflow/internal/adapters/repository"
	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/types"
)

// RankingDependencies defines ranking runs and snapshot reads.
type RankingDependencies interface {
	RunRanking(ctx context.Context, algorithm string, w model.Window) (repository.SnapshotInfo, error)
	Rankings(ctx context.Context, algorithm string, limit int) ([]types.Entry, repository.SnapshotInfo, error)
	Rank(ctx context.Context, algorithm, companyURN string) (types.Entry, error)
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps         RankingDependencies
	defaultLimit int
}

// NewRankingsHandler creates a new rankings handler. defaultLimit applies when
// a request carries no limit.
func NewRankingsHandler(deps RankingDependencies, defaultLimit int) *RankingsHandler {
	return &RankingsHandler{deps: deps, defaultLimit: defaultLimit}
}

type runRequest struct {
	Algorithm string `json:"algorithm"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type rankingsResponse struct {
	Snapshot repository.SnapshotInfo `json:"snapshot"`
	Entries  []types.Entry           `json:"entries"`
}

// HandleRun handles POST /rankings. An empty body runs the default algorithm
// over all time.
func (h *RankingsHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_ranking"
	var req runRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	win, err := model.ParseWindow(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	info, err := h.deps.RunRanking(r.Context(), req.Algorithm, win)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleList handles GET /rankings?algorithm=&limit=.
func (h *RankingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_rankings"
	q := r.URL.Query()
	limit := h.defaultLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	entries, info, err := h.deps.Rankings(r.Context(), q.Get("algorithm"), limit)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rankingsResponse{Snapshot: info, Entries: entries})
}

// HandleRank handles GET /rank/{urn}?algorithm=.
func (h *RankingsHandler) HandleRank(w http.ResponseWriter, r *http.Request) {
	entry, err := h.deps.Rank(r.Context(), r.URL.Query().Get("algorithm"), r.PathValue("urn"))
	if err != nil {
		writeFailure(w, Wrap("api.get_rank", err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
