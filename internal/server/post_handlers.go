package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Community string `json:"community"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// CreateCommentRequest is the body of POST /api/posts/:slug/comments.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CreatePost handles POST /api/posts
// @Summary Create a post in a community the caller belongs to
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:        currentUserID(c),
		CommunityName: req.Community,
		Title:         req.Title,
		Content:       req.Content,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:slug
// @Summary Post with author, community and comments
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("slug"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:slug
// @Summary Delete one of the caller's posts
// @Tags posts
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: currentUserID(c),
		Slug:   c.Params("slug"),
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Upvote handles POST /api/posts/:slug/upvote
// @Summary Upvote a post once
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{slug}/upvote [post]
func (s *Server) Upvote(c *fiber.Ctx) error {
	post, err := s.engagementService.Upvote(c.UserContext(), c.Params("slug"), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// Downvote handles POST /api/posts/:slug/downvote
// @Summary Downvote a post once
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{slug}/downvote [post]
func (s *Server) Downvote(c *fiber.Ctx) error {
	post, err := s.engagementService.Downvote(c.UserContext(), c.Params("slug"), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// CreateComment handles POST /api/posts/:slug/comments
// @Summary Comment on a post
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Post slug"
// @Param body body CreateCommentRequest true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{slug}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.engagementService.Comment(c.UserContext(), c.Params("slug"), currentUserID(c), req.Content)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete one of the caller's comments
// @Tags engagement
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.engagementService.DeleteComment(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
