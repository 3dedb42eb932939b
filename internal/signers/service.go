package signers

import (
	"context"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
)

// Service encapsulates signer-directory logic.
type Service struct {
	repo ProfileRepository
}

func NewService(r ProfileRepository) *Service {
	return &Service{repo: r}
}

// Upsert records display metadata for an address. Empty name and email leave
// nothing to record and return nil without touching storage.
func (s *Service) Upsert(ctx context.Context, address, name, email string) (*Profile, error) {
	address = document.NormalizeIdentity(address)
	if address == "" {
		return nil, document.ErrValidation
	}
	if name == "" && email == "" {
		return nil, nil
	}
	return s.repo.UpsertByAddress(ctx, &Profile{Address: address, Name: name, Email: email})
}

// GetByAddress returns the profile for an address, or nil when unknown.
func (s *Service) GetByAddress(ctx context.Context, address string) (*Profile, error) {
	return s.repo.GetByAddress(ctx, document.NormalizeIdentity(address))
}
