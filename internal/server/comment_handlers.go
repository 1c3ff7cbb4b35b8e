// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"kampus/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/universities/:id/comments
func (s *Server) GetComments(c *fiber.Ctx) error {
	universityID := c.Params("id")

	if _, ok := s.catalog.UniversityByID(universityID); !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("University", universityID))
	}

	return c.JSON(s.commentService.List(c.UserContext(), universityID))
}

// CreateComment handles POST /api/universities/:id/comments.
// Signed-in users comment under their account; everyone else supplies
// name, surname and a contact email.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	universityID := c.Params("id")

	var req struct {
		Content string `json:"content"`
		Name    string `json:"name"`
		Surname string `json:"surname"`
		Email   string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if userIDVal := c.Locals("userID"); userIDVal != nil {
		userID := userIDVal.(uint)
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return models.RespondWithError(c, mapServiceError(err), err)
		}

		comment, err := s.commentService.CreateAuthenticated(ctx, user, universityID, req.Content)
		if err != nil {
			return models.RespondWithError(c, mapServiceError(err), err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	}

	comment, err := s.commentService.CreateAnonymous(
		ctx, universityID, req.Name, req.Surname, req.Email, req.Content)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
