package receipts

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_SaveGet(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:submission:", time.Hour)

	ctx := context.Background()
	rec := &Receipt{
		SubmissionID: "s1",
		Kind:         "sign_document",
		DocumentID:   "doc_1",
		Actor:        "0xa",
		Status:       StatusPending,
		SubmittedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "doc_1", got.DocumentID)
	require.Equal(t, StatusPending, got.Status)

	got2, err := repo.Get(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestRedisRepository_RetentionExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := NewRedisRepository(client, "test:submission:", time.Second)

	ctx := context.Background()
	rec := &Receipt{SubmissionID: "s2", Kind: "add_signer", Status: StatusConfirmed}
	require.NoError(t, repo.Save(ctx, rec))

	m.FastForward(2 * time.Second)

	got, err := repo.Get(ctx, "s2")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestService_OpenConfirmReject(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	rec, err := svc.Open(ctx, "create_document", "doc_1", "0xowner")
	require.NoError(t, err)
	require.NotEmpty(t, rec.SubmissionID)
	require.Equal(t, StatusPending, rec.Status)

	require.NoError(t, svc.Confirm(ctx, rec))
	got, err := svc.Get(ctx, rec.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)
	require.False(t, got.ResolvedAt.IsZero())

	rec2, err := svc.Open(ctx, "sign_document", "doc_1", "0xa")
	require.NoError(t, err)
	require.NoError(t, svc.Reject(ctx, rec2, "identity has already signed"))
	got2, err := svc.Get(ctx, rec2.SubmissionID)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, got2.Status)
	require.Equal(t, "identity has already signed", got2.Reason)
}
