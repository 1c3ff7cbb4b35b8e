// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"strings"

	"kampus/internal/catalog"
	"kampus/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUniversities handles GET /api/universities?q=&city=
func (s *Server) GetUniversities(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	city := strings.TrimSpace(c.Query("city"))

	var universities []catalog.University
	switch {
	case q != "":
		universities = s.catalog.Search(q)
	case city != "":
		universities = s.catalog.UniversitiesByCity(city)
	default:
		universities = s.catalog.Universities()
	}

	// A q= search can still be narrowed by city.
	if q != "" && city != "" {
		filtered := make([]catalog.University, 0, len(universities))
		for _, u := range universities {
			if strings.EqualFold(u.City, city) {
				filtered = append(filtered, u)
			}
		}
		universities = filtered
	}

	return c.JSON(universities)
}

// GetUniversity handles GET /api/universities/:id
func (s *Server) GetUniversity(c *fiber.Ctx) error {
	id := c.Params("id")

	university, ok := s.catalog.UniversityByID(id)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("University", id))
	}

	comments := s.commentService.List(c.UserContext(), id)

	return c.JSON(fiber.Map{
		"university":    university,
		"comment_count": len(comments),
	})
}

// GetCities handles GET /api/universities/cities
func (s *Server) GetCities(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Cities())
}

// GetDepartments handles GET /api/universities/departments
func (s *Server) GetDepartments(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Departments())
}

// CompareUniversities handles GET /api/universities/compare?ids=a,b,c
func (s *Server) CompareUniversities(c *fiber.Ctx) error {
	idsParam := strings.TrimSpace(c.Query("ids"))
	if idsParam == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("ids query parameter is required"))
	}

	ids := strings.Split(idsParam, ",")
	stats := make([]catalog.UniversityStats, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		st, ok := s.catalog.Stats(id)
		if !ok {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("University", id))
		}
		stats = append(stats, st)
	}

	return c.JSON(stats)
}

// MapMarker is one pin on the Erasmus map: a Turkish university or one of its
// deduplicated partner institutions.
type MapMarker struct {
	Kind    string  `json:"kind"` // "university" or "partner"
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// GetMapMarkers handles GET /api/universities/map?university=&city=
// Without filters it returns every university and every aggregated partner.
// With a university filter it returns that university plus only the partners
// reachable from it.
func (s *Server) GetMapMarkers(c *fiber.Ctx) error {
	universityID := strings.TrimSpace(c.Query("university"))
	city := strings.TrimSpace(c.Query("city"))

	var universities []catalog.University
	switch {
	case universityID != "":
		u, ok := s.catalog.UniversityByID(universityID)
		if !ok {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("University", universityID))
		}
		universities = []catalog.University{u}
	case city != "":
		universities = s.catalog.UniversitiesByCity(city)
	default:
		universities = s.catalog.Universities()
	}

	selected := make(map[string]struct{}, len(universities))
	markers := make([]MapMarker, 0, len(universities))
	for _, u := range universities {
		selected[u.ID] = struct{}{}
		markers = append(markers, MapMarker{
			Kind: "university",
			ID:   u.ID,
			Name: u.Name,
			City: u.City,
			Lat:  u.Lat,
			Lng:  u.Lng,
		})
	}

	for _, p := range s.catalog.Partners() {
		if !partnerTouchesAny(p, selected) {
			continue
		}
		markers = append(markers, MapMarker{
			Kind:    "partner",
			ID:      p.ID,
			Name:    p.Name,
			Country: p.Country,
			Lat:     p.Lat,
			Lng:     p.Lng,
		})
	}

	return c.JSON(markers)
}

func partnerTouchesAny(p catalog.PartnerDetail, universityIDs map[string]struct{}) bool {
	for _, edge := range p.TurkishPartners {
		if _, ok := universityIDs[edge.UniversityID]; ok {
			return true
		}
	}
	return false
}
