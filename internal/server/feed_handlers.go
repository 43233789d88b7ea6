package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Posts from joined communities and followed users, newest first
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	posts, err := s.feedService.GetFeed(c.UserContext(), currentUserID(c), service.FeedOptions{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetRecommendations handles GET /api/recommendations
// @Summary Users followed by the people the caller follows
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserSummary
// @Router /recommendations [get]
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	users, err := s.feedService.GetRecommendations(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}
