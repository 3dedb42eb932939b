package signers

import (
	"context"
	"testing"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
	"github.com/stretchr/testify/require"
)

func TestServiceUpsertAndGet(t *testing.T) {
	svc := NewService(NewMemoryProfileRepository())
	ctx := context.Background()

	p, err := svc.Upsert(ctx, "0xAbC", "Alice", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "0xabc", p.Address)

	got, err := svc.GetByAddress(ctx, "0xABC")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Alice", got.Name)
	require.Equal(t, "alice@example.com", got.Email)

	// update keeps the original creation time
	p2, err := svc.Upsert(ctx, "0xabc", "Alice B.", "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, p.CreatedAt, p2.CreatedAt)
	require.Equal(t, "Alice B.", p2.Name)
}

func TestServiceUpsertValidation(t *testing.T) {
	svc := NewService(NewMemoryProfileRepository())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "  ", "Alice", "")
	require.ErrorIs(t, err, document.ErrValidation)

	// nothing to record
	p, err := svc.Upsert(ctx, "0xabc", "", "")
	require.NoError(t, err)
	require.Nil(t, p)

	got, err := svc.GetByAddress(ctx, "0xmissing")
	require.NoError(t, err)
	require.Nil(t, got)
}
