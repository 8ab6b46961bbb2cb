package sqlite

import (
	"context"
	"testing"

	"github.com/joaodperes/stardust/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyRepository_AddAndResolve(t *testing.T) {
	repo := NewAPIKeyRepository(NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "secret", "p1", "test key"))

	playerID, err := repo.ResolveTenant(ctx, "secret")
	require.NoError(t, err)
	require.Equal(t, "p1", playerID)

	_, err = repo.ResolveTenant(ctx, "other")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.Add(ctx, "secret", "p2", "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestHashToken_StableAndHex(t *testing.T) {
	require.Equal(t, HashToken("abc"), HashToken("abc"))
	require.NotEqual(t, HashToken("abc"), HashToken("abd"))
	require.Len(t, HashToken("abc"), 64)
}
