package service

import (
	"context"
	"testing"

	"kampus/internal/catalog"
	"kampus/internal/models"
	"kampus/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newCommentService(t *testing.T) (*CommentService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Comment{}))

	cat, err := catalog.Open("")
	require.NoError(t, err)

	return NewCommentService(repository.NewCommentRepository(db), cat, nil), db
}

func TestCommentService_CreateAuthenticated(t *testing.T) {
	svc, _ := newCommentService(t)
	ctx := context.Background()
	user := &models.User{ID: 5, Username: "deniz", DisplayName: "Deniz"}

	t.Run("Valid", func(t *testing.T) {
		comment, err := svc.CreateAuthenticated(ctx, user, "metu", "Kampüs içindeki Erasmus ofisi gerçekten ilgili.")
		require.NoError(t, err)
		assert.Equal(t, "deniz", comment.Username)
		assert.False(t, comment.IsAnonymous())
	})

	t.Run("ContentTooShort", func(t *testing.T) {
		_, err := svc.CreateAuthenticated(ctx, user, "metu", "kısa")
		assert.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*models.AppError).Code)
	})

	t.Run("UnknownUniversity", func(t *testing.T) {
		_, err := svc.CreateAuthenticated(ctx, user, "no-such-uni", "Bu üniversite veri setinde yer almıyor.")
		assert.Error(t, err)
		assert.Equal(t, "NOT_FOUND", err.(*models.AppError).Code)
	})
}

func TestCommentService_CreateAnonymous(t *testing.T) {
	svc, _ := newCommentService(t)
	ctx := context.Background()

	t.Run("ValidWithTurkishName", func(t *testing.T) {
		comment, err := svc.CreateAnonymous(ctx, "metu", "Çağla", "Öztürk", "cagla@example.com",
			"Ders saydırma süreci bölüme göre değişiyor, erken başlayın.")
		require.NoError(t, err)
		assert.True(t, comment.IsAnonymous())
		assert.Equal(t, "Çağla", comment.Name)
	})

	t.Run("RejectsDigitsInName", func(t *testing.T) {
		_, err := svc.CreateAnonymous(ctx, "metu", "Deniz99", "Kaya", "d@example.com",
			"Yeterince uzun bir yorum içeriği burada.")
		assert.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", err.(*models.AppError).Code)
	})

	t.Run("RejectsBadEmail", func(t *testing.T) {
		_, err := svc.CreateAnonymous(ctx, "metu", "Deniz", "Kaya", "not-an-email",
			"Yeterince uzun bir yorum içeriği burada.")
		assert.Error(t, err)
	})
}

func TestCommentService_List(t *testing.T) {
	svc, db := newCommentService(t)
	ctx := context.Background()
	user := &models.User{ID: 5, Username: "deniz", DisplayName: "Deniz"}

	_, err := svc.CreateAuthenticated(ctx, user, "metu", "İlk yorum, yurt başvurusu hakkında.")
	require.NoError(t, err)
	_, err = svc.CreateAnonymous(ctx, "metu", "Ali", "Demir", "ali@example.com",
		"İkinci yorum, ulaşım hakkında bilgi.")
	require.NoError(t, err)

	t.Run("NewestFirst", func(t *testing.T) {
		comments := svc.List(ctx, "metu")
		require.Len(t, comments, 2)
		assert.True(t, comments[0].IsAnonymous())
	})

	t.Run("EmptyForOtherUniversity", func(t *testing.T) {
		comments := svc.List(ctx, "ege")
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})

	t.Run("DegradesToEmptyOnStoreFailure", func(t *testing.T) {
		// Drop the table to force a read error.
		require.NoError(t, db.Migrator().DropTable(&models.Comment{}))
		comments := svc.List(ctx, "metu")
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})
}
