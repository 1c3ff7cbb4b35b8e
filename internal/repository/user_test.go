package repository

import (
	"context"
	"testing"

	"kampus/internal/cache"
	"kampus/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		user := &models.User{
			Username:    "deniz",
			Email:       "deniz@example.com",
			Password:    "hashed",
			DisplayName: "Deniz",
		}
		require.NoError(t, repo.Create(ctx, user))
		assert.NotZero(t, user.ID)

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "deniz", fetched.Username)
	})

	t.Run("DuplicateUsernameConflicts", func(t *testing.T) {
		dup := &models.User{
			Username:    "deniz",
			Email:       "other@example.com",
			Password:    "hashed",
			DisplayName: "Deniz İki",
		}
		err := repo.Create(ctx, dup)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	t.Run("GetByUsernameMissingReturnsNil", func(t *testing.T) {
		user, err := repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		taken, err := repo.UsernameTaken(ctx, "deniz")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.UsernameTaken(ctx, "serbest")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("SearchByUsernamePrefix", func(t *testing.T) {
		for _, u := range []string{"demir", "defne", "ali"} {
			require.NoError(t, repo.Create(ctx, &models.User{
				Username:    u,
				Email:       u + "@example.com",
				Password:    "hashed",
				DisplayName: u,
			}))
		}

		users, err := repo.SearchByUsernamePrefix(ctx, "de", 10)
		require.NoError(t, err)
		require.Len(t, users, 3)
		assert.Equal(t, "defne", users[0].Username)
		assert.Equal(t, "demir", users[1].Username)
		assert.Equal(t, "deniz", users[2].Username)
	})

	t.Run("SearchUnderscoreMatchesLiterally", func(t *testing.T) {
		for _, u := range []string{"ali_kaya", "alikaya"} {
			require.NoError(t, repo.Create(ctx, &models.User{
				Username:    u,
				Email:       u + "@example.com",
				Password:    "hashed",
				DisplayName: u,
			}))
		}

		// "_" in the prefix must not act as a single-character wildcard.
		users, err := repo.SearchByUsernamePrefix(ctx, "ali_", 10)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "ali_kaya", users[0].Username)
	})
}

func TestUserRepositoryCache(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer cache.SetClient(nil)

	user := &models.User{
		Username:    "cached",
		Email:       "cached@example.com",
		Password:    "hashed",
		DisplayName: "Cached",
	}
	require.NoError(t, repo.Create(ctx, user))

	// First read populates the cache.
	_, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.UserKey(user.ID)))

	// A stale cache entry is served until invalidated.
	require.NoError(t, db.Model(user).Update("display_name", "Renamed").Error)
	fetched, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cached", fetched.DisplayName)

	// Update through the repository invalidates.
	user.DisplayName = "Renamed Again"
	require.NoError(t, repo.Update(ctx, user))
	assert.False(t, mr.Exists(cache.UserKey(user.ID)))

	fetched, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Again", fetched.DisplayName)
}
