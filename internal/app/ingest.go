package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/okian/talentflow/internal/domain/model"
	"github.com/okian/talentflow/internal/domain/profile"
	"github.com/okian/talentflow/pkg/logger"
	"github.com/okian/talentflow/pkg/metrics"
)

// StoreError is a store failure reported inside an IngestReport.
type StoreError struct {
	Store   string `json:"store"`
	Message string `json:"message"`
}

// IngestReport summarizes one ingested batch.
type IngestReport struct {
	Accepted       int                      `json:"accepted"`
	Rejected       []*model.ValidationError `json:"rejected"`
	Transitions    int                      `json:"transitions"`
	NewTransitions int                      `json:"new_transitions"`
	Duplicates     int                      `json:"duplicates"`
	Published      int                      `json:"published"`
	StoreErrors    []StoreError             `json:"store_errors,omitempty"`
	Generation     uint64                   `json:"generation"`
}

// Ingest normalizes a raw JSON payload (an array of profiles or one profile)
// and ingests it. A payload that is not JSON is a validation error; malformed
// records are reported in the report and do not fail the batch.
func (s *Service) Ingest(ctx context.Context, raw []byte) (*IngestReport, error) {
	batch, err := profile.NormalizeBatch(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	return s.IngestEmployees(ctx, batch.Employees, batch.Companies...)
}

// IngestEmployees validates employees, builds their graph and transitions and
// writes the graph store and the event store concurrently. companies carries
// optional metadata merged into companies the batch references.
//
// Store failures are collected into the report and are not retried. Ids whose
// append failed are forgotten by the deduper so a later ingest can append them.
func (s *Service) IngestEmployees(ctx context.Context, employees []model.Employee, companies ...model.Company) (*IngestReport, error) {
	ctx, span := s.tracer.Start(ctx, "service.Ingest")
	defer span.End()
	start := time.Now()

	res := s.builder.Build(employees)
	for _, c := range companies {
		if _, ok := res.Graph.Company(c.URN); ok {
			res.Graph.UpsertCompany(c)
		}
	}

	fresh := make([]model.TransitionEvent, 0, len(res.Transitions))
	for _, ev := range res.Transitions {
		if !s.deduper.SeenAndRecord(ctx, ev.ID) {
			fresh = append(fresh, ev)
		}
	}

	report := &IngestReport{
		Accepted:    res.Accepted,
		Rejected:    res.Rejected,
		Transitions: len(res.Transitions),
		Duplicates:  len(res.Transitions) - len(fresh),
	}
	if report.Rejected == nil {
		report.Rejected = []*model.ValidationError{}
	}

	var (
		mu       sync.Mutex
		appended []model.TransitionEvent
		appendOK bool
	)
	fail := func(store string, err error) {
		mu.Lock()
		report.StoreErrors = append(report.StoreErrors, StoreError{Store: store, Message: err.Error()})
		mu.Unlock()
		metrics.RecordErrorByComponent("ingest", store)
		s.logger.Error(ctx, "store write failed", logger.String("store", store), logger.Error(err))
	}

	if res.Accepted > 0 {
		var g errgroup.Group
		g.Go(func() error {
			if err := s.graph.SaveGraph(ctx, res.Graph); err != nil {
				fail("graph", err)
				return err
			}
			if err := s.graph.SaveTransitions(ctx, res.Transitions); err != nil {
				fail("graph_transitions", err)
				return err
			}
			return nil
		})
		g.Go(func() error {
			added, err := s.events.Append(ctx, fresh)
			if err != nil {
				for _, ev := range fresh {
					s.deduper.Unrecord(ctx, ev.ID)
				}
				fail("events", err)
				return err
			}
			appended, appendOK = added, true
			return nil
		})
		_ = g.Wait()
	}
	report.NewTransitions = len(appended)
	// The store is the authority on what is new: the deduper forgets ids on
	// restart and eviction.
	if appendOK {
		report.Duplicates = report.Transitions - len(appended)
	}

	if len(appended) > 0 {
		n, err := s.publisher.Publish(ctx, appended)
		report.Published = n
		if err != nil {
			fail("publisher", err)
		}
	}

	if res.Accepted > 0 {
		metrics.UpdateDataGeneration(s.generation.Add(1))
	}
	report.Generation = s.generation.Load()

	metrics.RecordProfilesIngested(report.Accepted)
	metrics.RecordProfilesRejected(len(report.Rejected))
	metrics.RecordTransitionsExtracted(report.Transitions)
	metrics.RecordTransitionsDuplicate(report.Duplicates)
	metrics.RecordTransitionsPublished(report.Published)
	metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))

	span.SetAttributes(
		attribute.Int("profiles.accepted", report.Accepted),
		attribute.Int("profiles.rejected", len(report.Rejected)),
		attribute.Int("transitions.new", report.NewTransitions),
		attribute.Int("transitions.duplicate", report.Duplicates),
	)
	if len(report.StoreErrors) > 0 {
		span.SetStatus(codes.Error, "store write failed")
	}

	s.logger.Info(ctx, "batch ingested",
		logger.Int("accepted", report.Accepted),
		logger.Int("rejected", len(report.Rejected)),
		logger.Int("transitions", report.Transitions),
		logger.Int("new_transitions", report.NewTransitions),
		logger.Int("duplicates", report.Duplicates),
		logger.Int("store_errors", len(report.StoreErrors)),
	)
	return report, nil
}
