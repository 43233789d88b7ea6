package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest is the body of PUT /api/users/me. Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Email             *string `json:"email,omitempty"`
	Password          *string `json:"password,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfileVisibility *bool   `json:"profile_visibility,omitempty"`
	AllowDM           *bool   `json:"allow_dm,omitempty"`
}

// GetUser handles GET /api/users/:username
// @Summary Public profile of a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} service.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	profile, err := s.userService.GetUser(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT /api/users/me
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Changed fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:            currentUserID(c),
		Bio:               req.Bio,
		Email:             req.Email,
		Password:          req.Password,
		ProfileVisibility: req.ProfileVisibility,
		AllowDM:           req.AllowDM,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// ListMyActivities handles GET /api/users/me/activities
// @Summary The caller's engagement ledger, newest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Success 200 {array} models.Activity
// @Router /users/me/activities [get]
func (s *Server) ListMyActivities(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPaginationLimit)

	activities, err := s.engagementService.ListActivities(c.UserContext(), currentUserID(c), page.Limit)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(activities)
}

// ListMyMemberships handles GET /api/users/me/memberships
// @Summary Communities the caller belongs to, with role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Membership
// @Router /users/me/memberships [get]
func (s *Server) ListMyMemberships(c *fiber.Ctx) error {
	memberships, err := s.membershipService.ListMemberships(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(memberships)
}

// ListFollowing handles GET /api/users/me/following
// @Summary Users the caller follows
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserSummary
// @Router /users/me/following [get]
func (s *Server) ListFollowing(c *fiber.Ctx) error {
	users, err := s.userService.ListFollowing(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}

// ListFollowers handles GET /api/users/me/followers
// @Summary Users following the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserSummary
// @Router /users/me/followers [get]
func (s *Server) ListFollowers(c *fiber.Ctx) error {
	users, err := s.userService.ListFollowers(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}

// Follow handles POST /api/users/:username/follow
// @Summary Follow a user
// @Tags users
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{username}/follow [post]
func (s *Server) Follow(c *fiber.Ctx) error {
	if err := s.userService.Follow(c.UserContext(), currentUserID(c), c.Params("username")); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unfollow handles DELETE /api/users/:username/follow
// @Summary Stop following a user
// @Tags users
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{username}/follow [delete]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	if err := s.userService.Unfollow(c.UserContext(), currentUserID(c), c.Params("username")); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
