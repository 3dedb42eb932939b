// Package ledger defines the submission contract between the workflow layer
// and the external system of record. The executor is the sole ordering
// authority for conflicting writes to the same document; a single submitted
// operation commits atomically or is rejected.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
	"github.com/securedocs/securedocs/backend/go-services/pkg/logger"
	"github.com/securedocs/securedocs/backend/go-services/pkg/metrics"
)

// Operation kinds accepted by the executor.
const (
	OpCreateDocument = "create_document"
	OpAddSigner      = "add_signer"
	OpRemoveSigner   = "remove_signer"
	OpSignDocument   = "sign_document"
)

// Operation is one state change handed to the executor. Document is set only
// for create; Signer is the target identity for membership and signing ops.
type Operation struct {
	Kind       string
	Actor      string
	DocumentID string
	Signer     string
	Document   *document.Document
}

// Executor accepts an operation and suspends the caller until it is committed
// or rejected. Once handed over, an operation cannot be canceled; callers that
// stop waiting must reconcile through the receipt journal or a later get.
type Executor interface {
	Submit(ctx context.Context, op Operation) (*document.Document, *receipts.Receipt, error)
}

// LocalExecutor commits operations against the document repository. The
// repository's conditional updates provide single-operation atomicity, so
// preconditions are checked against committed state, never a caller snapshot.
type LocalExecutor struct {
	repo    Repository
	journal *receipts.Service
}

// Repository is the subset of registry storage the executor commits through.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) error
	AddSigner(ctx context.Context, id, identity string) (*document.Document, error)
	RemoveSigner(ctx context.Context, id, identity string) (*document.Document, error)
	Sign(ctx context.Context, id, identity string) (*document.Document, error)
}

func NewLocalExecutor(repo Repository, journal *receipts.Service) *LocalExecutor {
	return &LocalExecutor{repo: repo, journal: journal}
}

func (e *LocalExecutor) Submit(ctx context.Context, op Operation) (*document.Document, *receipts.Receipt, error) {
	rec, err := e.journal.Open(ctx, op.Kind, op.DocumentID, op.Actor)
	if err != nil {
		// the journal is an aid, not a gate; commit anyway
		logger.Warnf("receipt journal unavailable: %v", err)
		rec = nil
	}

	doc, err := e.commit(ctx, op)
	if err != nil {
		metrics.Submissions.WithLabelValues(op.Kind, "rejected").Inc()
		if rec != nil {
			if jerr := e.journal.Reject(ctx, rec, err.Error()); jerr != nil {
				logger.Warnf("failed to journal rejection for %s: %v", rec.SubmissionID, jerr)
			}
		}
		return nil, rec, err
	}

	metrics.Submissions.WithLabelValues(op.Kind, "confirmed").Inc()
	switch op.Kind {
	case OpCreateDocument:
		metrics.DocumentsCreated.Inc()
	case OpSignDocument:
		metrics.SignaturesRecorded.Inc()
	}
	if rec != nil {
		if jerr := e.journal.Confirm(ctx, rec); jerr != nil {
			logger.Warnf("failed to journal confirmation for %s: %v", rec.SubmissionID, jerr)
		}
	}
	return doc, rec, nil
}

func (e *LocalExecutor) commit(ctx context.Context, op Operation) (*document.Document, error) {
	switch op.Kind {
	case OpCreateDocument:
		if op.Document == nil {
			return nil, document.ErrValidation
		}
		if err := e.repo.Create(ctx, op.Document); err != nil {
			return nil, wrapInfra(err)
		}
		return op.Document, nil
	case OpAddSigner:
		d, err := e.repo.AddSigner(ctx, op.DocumentID, op.Signer)
		return d, wrapInfra(err)
	case OpRemoveSigner:
		d, err := e.repo.RemoveSigner(ctx, op.DocumentID, op.Signer)
		return d, wrapInfra(err)
	case OpSignDocument:
		d, err := e.repo.Sign(ctx, op.DocumentID, op.Signer)
		return d, wrapInfra(err)
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", document.ErrSubmission, op.Kind)
	}
}

// wrapInfra keeps the typed domain failures intact and folds everything else
// (driver errors, broken connections) into ErrSubmission.
func wrapInfra(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		document.ErrValidation,
		document.ErrNotFound,
		document.ErrNotAuthorized,
		document.ErrDuplicateMember,
		document.ErrDuplicateSignature,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", document.ErrSubmission, err)
}

