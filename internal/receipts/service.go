package receipts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service wraps the receipt repository with submission-id generation and
// status transitions.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Open journals a new pending submission and returns its receipt.
func (s *Service) Open(ctx context.Context, kind, documentID, actor string) (*Receipt, error) {
	rec := &Receipt{
		SubmissionID: uuid.New().String(),
		Kind:         kind,
		DocumentID:   documentID,
		Actor:        actor,
		Status:       StatusPending,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Confirm marks the submission committed.
func (s *Service) Confirm(ctx context.Context, rec *Receipt) error {
	rec.Status = StatusConfirmed
	rec.ResolvedAt = time.Now().UTC()
	return s.repo.Save(ctx, rec)
}

// Reject marks the submission rejected with the executor's reason.
func (s *Service) Reject(ctx context.Context, rec *Receipt, reason string) error {
	rec.Status = StatusRejected
	rec.Reason = reason
	rec.ResolvedAt = time.Now().UTC()
	return s.repo.Save(ctx, rec)
}

// Get returns the receipt for a submission id, or nil when unknown (expired
// or never journaled).
func (s *Service) Get(ctx context.Context, submissionID string) (*Receipt, error) {
	return s.repo.Get(ctx, submissionID)
}
