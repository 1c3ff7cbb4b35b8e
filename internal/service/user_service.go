package service

import (
	"context"

	"kampus/internal/models"
	"kampus/internal/repository"
	"kampus/internal/validation"
)

// UserService provides account and profile business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput is the input for creating an account.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string // already hashed by the caller
	DisplayName string
}

// UpdateProfileInput is the input for editing a profile. Username is absent:
// usernames are immutable after registration.
type UpdateProfileInput struct {
	UserID      uint
	DisplayName string
	Bio         string
	PhotoURL    string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates an account. The username is normalized to lowercase and
// checked against the format and reserved-name rules before the insert; the
// unique index is the final referee under concurrency.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := validation.NormalizeUsername(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Username already taken")
	}

	user := &models.User{
		Username:    username,
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the public profile for a username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, validation.NormalizeUsername(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	profile := user.Public()
	return &profile, nil
}

// SearchUsers returns public profiles whose username starts with the query.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]models.PublicProfile, error) {
	query = validation.NormalizeUsername(query)
	if query == "" {
		return []models.PublicProfile{}, nil
	}
	users, err := s.userRepo.SearchByUsernamePrefix(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return profiles, nil
}

// CheckUsername reports whether the username is valid and free to claim.
func (s *UserService) CheckUsername(ctx context.Context, username string) (bool, error) {
	username = validation.NormalizeUsername(username)
	if err := validation.ValidateUsername(username); err != nil {
		return false, err
	}
	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.DisplayName != "" {
		if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
			return nil, err
		}
		user.DisplayName = in.DisplayName
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.PhotoURL != "" {
		user.PhotoURL = in.PhotoURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
