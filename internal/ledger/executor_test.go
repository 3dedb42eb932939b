package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/repository"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
	"github.com/stretchr/testify/require"
)

func newExecutor() (*LocalExecutor, *receipts.Service) {
	journal := receipts.NewService(receipts.NewMemoryRepository())
	return NewLocalExecutor(repository.NewMemoryRepo(), journal), journal
}

func TestLocalExecutor_CreateAndSign(t *testing.T) {
	exec, _ := newExecutor()
	ctx := context.Background()

	doc := &document.Document{ID: document.NewID(), Title: "Lease", ContentRef: "cid123", Owner: "0xowner"}
	created, rec, err := exec.Submit(ctx, Operation{Kind: OpCreateDocument, Actor: "0xowner", DocumentID: doc.ID, Document: doc})
	require.NoError(t, err)
	require.Equal(t, doc.ID, created.ID)
	require.Equal(t, receipts.StatusConfirmed, rec.Status)

	_, rec, err = exec.Submit(ctx, Operation{Kind: OpAddSigner, Actor: "0xowner", DocumentID: doc.ID, Signer: "0xa"})
	require.NoError(t, err)
	require.Equal(t, receipts.StatusConfirmed, rec.Status)

	signed, _, err := exec.Submit(ctx, Operation{Kind: OpSignDocument, Actor: "0xa", DocumentID: doc.ID, Signer: "0xa"})
	require.NoError(t, err)
	require.Equal(t, document.StatusFullySigned, signed.Status())
}

func TestLocalExecutor_RejectionJournaled(t *testing.T) {
	exec, journal := newExecutor()
	ctx := context.Background()

	doc := &document.Document{ID: document.NewID(), Title: "Lease", ContentRef: "cid123", Owner: "0xowner"}
	_, _, err := exec.Submit(ctx, Operation{Kind: OpCreateDocument, Actor: "0xowner", DocumentID: doc.ID, Document: doc})
	require.NoError(t, err)

	// signing without authorization is rejected and the receipt records why
	_, rec, err := exec.Submit(ctx, Operation{Kind: OpSignDocument, Actor: "0xb", DocumentID: doc.ID, Signer: "0xb"})
	require.ErrorIs(t, err, document.ErrNotAuthorized)
	require.NotNil(t, rec)

	got, err := journal.Get(ctx, rec.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, receipts.StatusRejected, got.Status)
	require.NotEmpty(t, got.Reason)
}

func TestLocalExecutor_DomainErrorsPassThrough(t *testing.T) {
	exec, _ := newExecutor()
	ctx := context.Background()

	doc := &document.Document{ID: document.NewID(), Title: "Lease", ContentRef: "cid123", Owner: "0xowner"}
	_, _, err := exec.Submit(ctx, Operation{Kind: OpCreateDocument, Actor: "0xowner", DocumentID: doc.ID, Document: doc})
	require.NoError(t, err)

	_, _, err = exec.Submit(ctx, Operation{Kind: OpAddSigner, Actor: "0xowner", DocumentID: doc.ID, Signer: "0xa"})
	require.NoError(t, err)
	_, _, err = exec.Submit(ctx, Operation{Kind: OpAddSigner, Actor: "0xowner", DocumentID: doc.ID, Signer: "0xa"})
	require.ErrorIs(t, err, document.ErrDuplicateMember)

	_, _, err = exec.Submit(ctx, Operation{Kind: OpSignDocument, Actor: "0xa", DocumentID: "doc_missing", Signer: "0xa"})
	require.ErrorIs(t, err, document.ErrNotFound)

	_, _, err = exec.Submit(ctx, Operation{Kind: "burn_document", Actor: "0xowner", DocumentID: doc.ID})
	require.ErrorIs(t, err, document.ErrSubmission)
	require.False(t, errors.Is(err, document.ErrNotFound))
}
