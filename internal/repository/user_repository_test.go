package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routine-planner/internal/model"
)

func TestUpsertFromTelegram(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	first, err := repo.UpsertFromTelegram(ctx, 42, "Ana", "", "ana")
	require.NoError(t, err)
	second, err := repo.UpsertFromTelegram(ctx, 42, "Anna", "K", "anna")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.FirstName)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.FindByTelegramID(ctx, 7)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
