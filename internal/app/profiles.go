package service

import (
	"context"
	"errors"
	"time"

	"github.com/okian/talentflow/internal/domain/graph"
	"github.com/okian/talentflow/internal/domain/model"
)

// Company returns one company with its dashboard metadata.
func (s *Service) Company(ctx context.Context, urn string) (model.Company, error) {
	c, err := s.graph.Company(ctx, urn)
	if err != nil {
		return model.Company{}, lookupError("load company", err)
	}
	return c, nil
}

// Transitions returns the career moves of one employee, newest first. An
// unknown profile is not found; a known one without moves yields an empty list.
func (s *Service) Transitions(ctx context.Context, profileURN string) ([]model.TransitionEvent, error) {
	events, err := s.graph.Transitions(ctx, profileURN)
	if err != nil {
		return nil, lookupError("load transitions", err)
	}
	if len(events) == 0 {
		if _, _, err := s.graph.Employee(ctx, profileURN); err != nil {
			return nil, lookupError("load profile", err)
		}
		return []model.TransitionEvent{}, nil
	}
	return events, nil
}

// CareerPath returns an employee's positions, moves, skills and education
// with tenure and seniority summaries.
func (s *Service) CareerPath(ctx context.Context, profileURN string) (graph.Career, error) {
	ctx, span := s.tracer.Start(ctx, "service.CareerPath")
	defer span.End()

	node, edges, err := s.graph.Employee(ctx, profileURN)
	if err != nil {
		return graph.Career{}, lookupError("load profile", err)
	}
	events, err := s.graph.Transitions(ctx, profileURN)
	if err != nil {
		return graph.Career{}, lookupError("load transitions", err)
	}
	return graph.CareerPath(node, edges, events, time.Now().UTC()), nil
}

// lookupError passes not-found through and tags store failures.
func lookupError(op string, err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return err
	}
	return model.NewGraphQueryError(op, err)
}
