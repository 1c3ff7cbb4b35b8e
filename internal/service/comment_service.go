package service

import (
	"context"
	"log/slog"

	"kampus/internal/catalog"
	"kampus/internal/models"
	"kampus/internal/repository"
	"kampus/internal/validation"
)

// CommentService provides university comment business logic. Comments are
// append-only and come in two shapes: signed-in and anonymous.
type CommentService struct {
	commentRepo repository.CommentRepository
	catalog     *catalog.Catalog
	logger      *slog.Logger
}

// NewCommentService returns a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, cat *catalog.Catalog, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{commentRepo: commentRepo, catalog: cat, logger: logger}
}

// CreateAuthenticated stores a comment under the user's account identity.
func (s *CommentService) CreateAuthenticated(ctx context.Context, user *models.User, universityID, content string) (*models.Comment, error) {
	input := validation.AuthenticatedComment{
		UniversityID: universityID,
		Content:      content,
	}
	if err := validation.ValidateComment(input); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireUniversity(universityID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UniversityID: universityID,
		UserID:       &user.ID,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		Content:      content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateAnonymous stores a comment with contact details instead of an account.
// The email is kept for moderation and never serialized in responses.
func (s *CommentService) CreateAnonymous(ctx context.Context, universityID, name, surname, email, content string) (*models.Comment, error) {
	input := validation.AnonymousComment{
		UniversityID: universityID,
		Name:         name,
		Surname:      surname,
		Email:        email,
		Content:      content,
	}
	if err := validation.ValidateComment(input); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.requireUniversity(universityID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UniversityID: universityID,
		Name:         name,
		Surname:      surname,
		Email:        email,
		Content:      content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns a university's comments, newest first. A failing read degrades
// to an empty list so the page still renders; the error is logged.
func (s *CommentService) List(ctx context.Context, universityID string) []*models.Comment {
	comments, err := s.commentRepo.ListByUniversity(ctx, universityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "comment list failed, serving empty list",
			"university_id", universityID, "error", err)
		return []*models.Comment{}
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments
}

func (s *CommentService) requireUniversity(universityID string) error {
	if s.catalog == nil {
		return nil
	}
	if _, ok := s.catalog.UniversityByID(universityID); !ok {
		return models.NewNotFoundError("University", universityID)
	}
	return nil
}
