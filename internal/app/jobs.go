package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/talentflow/internal/adapters/mq/queue"
	"github.com/okian/talentflow/pkg/logger"
)

// JobState is the lifecycle of an asynchronous ingest job.
type JobState string

// Job states.
const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// JobStatus is what GET /jobs/{id} returns.
type JobStatus struct {
	ID         string        `json:"id"`
	State      JobState      `json:"state"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Report     *IngestReport `json:"report,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// jobRegistry remembers the most recent jobs; the oldest are forgotten first.
type jobRegistry struct {
	mu    sync.RWMutex
	byID  map[string]*JobStatus
	order []string
	limit int
}

func newJobRegistry(limit int) *jobRegistry {
	return &jobRegistry{byID: make(map[string]*JobStatus), limit: limit}
}

func (r *jobRegistry) add(st JobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[st.ID] = &st
	r.order = append(r.order, st.ID)
	for len(r.order) > r.limit {
		delete(r.byID, r.order[0])
		r.order = r.order[1:]
	}
}

func (r *jobRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *jobRegistry) update(id string, fn func(*JobStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.byID[id]; ok {
		fn(st)
	}
}

func (r *jobRegistry) get(id string) (JobStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.byID[id]
	if !ok {
		return JobStatus{}, false
	}
	return *st, true
}

func (r *jobRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Submit enqueues raw for asynchronous ingestion. A full queue returns ErrBackpressure.
func (s *Service) Submit(ctx context.Context, raw []byte) (JobStatus, error) {
	if !s.isStarted() {
		return JobStatus{}, ErrNotStarted
	}
	st := JobStatus{ID: uuid.NewString(), State: JobQueued, EnqueuedAt: time.Now().UTC()}
	s.jobs.add(st)

	err := s.queue.Enqueue(ctx, queue.Job{ID: st.ID, Payload: raw, EnqueuedAt: st.EnqueuedAt})
	if err != nil {
		s.jobs.remove(st.ID)
		if errors.Is(err, queue.ErrFull) {
			s.logger.Warn(ctx, "ingest queue full", logger.Int("capacity", s.queue.Capacity()))
			return JobStatus{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return JobStatus{}, fmt.Errorf("enqueue ingest job: %w", err)
	}
	return st, nil
}

// Process runs one queued job. It is the worker pool's processor.
func (s *Service) Process(ctx context.Context, j queue.Job) error {
	s.jobs.update(j.ID, func(st *JobStatus) { st.State = JobRunning })

	report, err := s.Ingest(ctx, j.Payload)
	now := time.Now().UTC()
	s.jobs.update(j.ID, func(st *JobStatus) {
		st.FinishedAt = &now
		st.Report = report
		if err != nil {
			st.State = JobFailed
			st.Error = err.Error()
			return
		}
		st.State = JobDone
	})
	return err
}

// Job returns the status of a submitted job.
func (s *Service) Job(_ context.Context, id string) (JobStatus, error) {
	st, ok := s.jobs.get(id)
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return st, nil
}
