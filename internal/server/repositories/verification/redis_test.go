package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secureshare/internal/common"
	"secureshare/internal/server/repositories/verification"
)

func setupRepo(t *testing.T) (*verification.RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cli := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return verification.NewRedisRepository(cli), mr
}

func TestChallengeRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ch := &verification.Challenge{UserID: "u1", Code: "123456"}
	require.NoError(t, repo.Create(ctx, "ver-1", ch, 10*time.Minute))

	got, err := repo.Get(ctx, "ver-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "123456", got.Code)
}

func TestGet_MissingMeansExpired(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "never-created")
	assert.ErrorIs(t, err, common.ErrVerificationExpired)
}

func TestChallenge_LapsesWithTTL(t *testing.T) {
	repo, mr := setupRepo(t)
	ctx := context.Background()

	ch := &verification.Challenge{UserID: "u1", Code: "123456"}
	require.NoError(t, repo.Create(ctx, "ver-1", ch, 10*time.Minute))

	mr.FastForward(11 * time.Minute)

	_, err := repo.Get(ctx, "ver-1")
	assert.ErrorIs(t, err, common.ErrVerificationExpired)
}

func TestDelete_ChallengeIsSingleUse(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ch := &verification.Challenge{UserID: "u1", Code: "123456"}
	require.NoError(t, repo.Create(ctx, "ver-1", ch, 10*time.Minute))
	require.NoError(t, repo.Delete(ctx, "ver-1"))

	_, err := repo.Get(ctx, "ver-1")
	assert.ErrorIs(t, err, common.ErrVerificationExpired)
}
