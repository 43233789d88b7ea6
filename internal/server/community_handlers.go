package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommunityRequest is the body of POST /api/communities.
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateRoleRequest is the body of PUT /api/communities/:name/members/:username.
type UpdateRoleRequest struct {
	Role string `json:"role" example:"MODERATOR"`
}

// ListCommunities handles GET /api/communities
// @Summary Search communities by name
// @Tags communities
// @Produce json
// @Param q query string false "Name substring"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Community
// @Router /communities [get]
func (s *Server) ListCommunities(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	communities, err := s.communityService.ListCommunities(c.UserContext(), service.ListCommunitiesInput{
		Query:  c.Query("q"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(communities)
}

// CreateCommunity handles POST /api/communities
// @Summary Create a community; the caller becomes its founder
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCommunityRequest true "Community"
// @Success 201 {object} models.Community
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /communities [post]
func (s *Server) CreateCommunity(c *fiber.Ctx) error {
	var req CreateCommunityRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	community, err := s.communityService.CreateCommunity(c.UserContext(), service.CreateCommunityInput{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

// GetCommunity handles GET /api/communities/:name
// @Summary Community detail with posts and members
// @Tags communities
// @Produce json
// @Param name path string true "Community name"
// @Success 200 {object} models.CommunityDetail
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{name} [get]
func (s *Server) GetCommunity(c *fiber.Ctx) error {
	detail, err := s.communityService.GetCommunity(c.UserContext(), c.Params("name"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(detail)
}

// JoinCommunity handles POST /api/communities/:name/members
// @Summary Join a community as MEMBER
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param name path string true "Community name"
// @Success 201 {object} models.Membership
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /communities/{name}/members [post]
func (s *Server) JoinCommunity(c *fiber.Ctx) error {
	membership, err := s.membershipService.Join(c.UserContext(), c.Params("name"), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}

// LeaveCommunity handles DELETE /api/communities/:name/members
// @Summary Leave a community
// @Tags communities
// @Security BearerAuth
// @Param name path string true "Community name"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{name}/members [delete]
func (s *Server) LeaveCommunity(c *fiber.Ctx) error {
	if err := s.membershipService.Leave(c.UserContext(), c.Params("name"), currentUserID(c)); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateMemberRole handles PUT /api/communities/:name/members/:username
// @Summary Change a member's role
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Community name"
// @Param username path string true "Target member"
// @Param body body UpdateRoleRequest true "New role"
// @Success 200 {object} models.Membership
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /communities/{name}/members/{username} [put]
func (s *Server) UpdateMemberRole(c *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return models.Respond(c, models.NewValidationError(err.Error()))
	}

	membership, err := s.membershipService.UpdateRole(c.UserContext(),
		c.Params("name"), c.Params("username"), role, currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(membership)
}
