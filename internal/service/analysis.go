package service

import (
	"attendance-service/api"
	"attendance-service/internal/summary"
	"context"
	"fmt"
)

func (s *Service) Summary(ctx context.Context) ([]summary.Row, error) {
	const op = "service.Summary"

	students, events, err := s.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summary.Build(students, events), nil
}

func (s *Service) encodedSummary(ctx context.Context) ([]byte, error) {
	rows, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	return summary.Encode(rows)
}

// Analyze asks the model for a risk analysis of the current summary. Model
// failures come back as a fixed message in Text, never as an error.
func (s *Service) Analyze(ctx context.Context) (*api.AnalysisResponse, error) {
	const op = "service.Analyze"

	payload, err := s.encodedSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.AnalysisResponse{
		Text:       s.analyst.Analyze(ctx, payload),
		Configured: s.analyst.Configured(),
	}, nil
}

func (s *Service) Ask(ctx context.Context, req *api.AskRequest) (*api.AnalysisResponse, error) {
	const op = "service.Ask"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	payload, err := s.encodedSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.AnalysisResponse{
		Text:       s.analyst.Ask(ctx, req.Question, payload, req.History),
		Configured: s.analyst.Configured(),
	}, nil
}
