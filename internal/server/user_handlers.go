// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"kampus/internal/models"
	"kampus/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	q := strings.TrimSpace(c.Query("q"))
	page := parsePagination(c, 10)

	profiles, err := s.userService.SearchUsers(ctx, q, page.Limit)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profiles)
}

// CheckUsername handles GET /api/users/check-username?username=...
// Used by the signup form to probe availability while the user types.
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("username query parameter is required"))
	}

	available, err := s.userService.CheckUsername(c.Context(), username)
	if err != nil {
		var appErr *models.AppError
		// Malformed usernames are simply unavailable, not an error.
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return c.JSON(fiber.Map{"available": false, "reason": appErr.Message})
		}
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(fiber.Map{"available": available})
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	profile, err := s.userService.GetProfile(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		DisplayName string `json:"display_name"`
		Bio         string `json:"bio"`
		PhotoURL    string `json:"photo_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	return c.JSON(user)
}
