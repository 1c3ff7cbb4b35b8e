// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"kampus/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetPartners handles GET /api/partners
func (s *Server) GetPartners(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Partners())
}

// GetPartnerBySlug handles GET /api/partners/:slug
func (s *Server) GetPartnerBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	partner, ok := s.catalog.PartnerBySlug(slug)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Partner", slug))
	}

	return c.JSON(partner)
}
