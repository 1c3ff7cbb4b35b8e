package repository

import (
	"context"

	"kampus/internal/cache"
	"kampus/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByUniversity(ctx context.Context, universityID string) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateComments(ctx, comment.UniversityID)
	return nil
}

func (r *commentRepository) ListByUniversity(ctx context.Context, universityID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := cache.Aside(ctx, cache.CommentsKey(universityID), &comments, cache.CommentsTTL, func() error {
		return r.db.WithContext(ctx).
			Where("university_id = ?", universityID).
			Order("created_at DESC, id DESC").
			Find(&comments).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
