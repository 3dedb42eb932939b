// Package service is the single entry point for the document workflow. Every
// mutating call has the same two-phase shape: cheap local validation first,
// then submission to the ledger executor, which re-validates preconditions
// against committed state.
package service

import (
	"context"
	"strings"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
	"github.com/securedocs/securedocs/backend/go-services/internal/ledger"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
)

// Reader is the registry read surface the facade needs.
type Reader interface {
	Get(ctx context.Context, id string) (*document.Document, error)
	ListBySigner(ctx context.Context, identity string) ([]*document.Document, error)
}

type Service struct {
	reader Reader
	exec   ledger.Executor
}

func New(reader Reader, exec ledger.Executor) *Service {
	return &Service{reader: reader, exec: exec}
}

// CreateDocument registers a new document owned by the caller. The id is
// generated here, on the client side of the executor, from a large random
// space; collisions are not centrally enforced.
func (s *Service) CreateDocument(ctx context.Context, caller, title, contentRef string) (*document.Document, *receipts.Receipt, error) {
	caller = document.NormalizeIdentity(caller)
	if caller == "" || strings.TrimSpace(title) == "" || strings.TrimSpace(contentRef) == "" {
		return nil, nil, document.ErrValidation
	}
	doc := &document.Document{
		ID:         document.NewID(),
		Title:      strings.TrimSpace(title),
		ContentRef: strings.TrimSpace(contentRef),
		Owner:      caller,
	}
	return s.exec.Submit(ctx, ledger.Operation{
		Kind:       ledger.OpCreateDocument,
		Actor:      caller,
		DocumentID: doc.ID,
		Document:   doc,
	})
}

// AddSigner authorizes an identity to sign. Owner-only; the duplicate-member
// guard is enforced again at commit time.
func (s *Service) AddSigner(ctx context.Context, caller, documentID, signer string) (*document.Document, *receipts.Receipt, error) {
	caller = document.NormalizeIdentity(caller)
	signer = document.NormalizeIdentity(signer)
	if caller == "" || signer == "" {
		return nil, nil, document.ErrValidation
	}
	if err := s.requireOwner(ctx, caller, documentID); err != nil {
		return nil, nil, err
	}
	return s.exec.Submit(ctx, ledger.Operation{
		Kind:       ledger.OpAddSigner,
		Actor:      caller,
		DocumentID: documentID,
		Signer:     signer,
	})
}

// RemoveSigner revokes an identity's authorization. Removing an absent
// identity is a no-op; any signature the identity already recorded stays.
func (s *Service) RemoveSigner(ctx context.Context, caller, documentID, signer string) (*document.Document, *receipts.Receipt, error) {
	caller = document.NormalizeIdentity(caller)
	signer = document.NormalizeIdentity(signer)
	if caller == "" || signer == "" {
		return nil, nil, document.ErrValidation
	}
	if err := s.requireOwner(ctx, caller, documentID); err != nil {
		return nil, nil, err
	}
	return s.exec.Submit(ctx, ledger.Operation{
		Kind:       ledger.OpRemoveSigner,
		Actor:      caller,
		DocumentID: documentID,
		Signer:     signer,
	})
}

// SignDocument records the caller's signature. Any identity may attempt;
// authorization and the duplicate-signature guard are enforced at commit
// time, so a retry after an uncertain outcome fails deterministically rather
// than signing twice.
func (s *Service) SignDocument(ctx context.Context, caller, documentID string) (*document.Document, *receipts.Receipt, error) {
	caller = document.NormalizeIdentity(caller)
	if caller == "" {
		return nil, nil, document.ErrValidation
	}
	return s.exec.Submit(ctx, ledger.Operation{
		Kind:       ledger.OpSignDocument,
		Actor:      caller,
		DocumentID: documentID,
		Signer:     caller,
	})
}

func (s *Service) Get(ctx context.Context, documentID string) (*document.Document, error) {
	return s.reader.Get(ctx, documentID)
}

func (s *Service) ListBySigner(ctx context.Context, identity string) ([]*document.Document, error) {
	return s.reader.ListBySigner(ctx, document.NormalizeIdentity(identity))
}

// requireOwner is a fast local check. The owner is immutable after creation,
// so a stale read cannot misattribute ownership.
func (s *Service) requireOwner(ctx context.Context, caller, documentID string) error {
	d, err := s.reader.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if document.NormalizeIdentity(d.Owner) != caller {
		return document.ErrNotOwner
	}
	return nil
}
