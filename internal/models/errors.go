package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes describe the class of failure. Reasons narrow it down.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Reason  string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code and reason so wrapped or re-messaged errors still compare
// equal to the sentinels below. An empty target reason matches any reason.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

var (
	ErrUserNotFound        = &AppError{Code: CodeNotFound, Reason: "USER_NOT_FOUND", Message: "user not found"}
	ErrCommunityNotFound   = &AppError{Code: CodeNotFound, Reason: "COMMUNITY_NOT_FOUND", Message: "community not found"}
	ErrPostNotFound        = &AppError{Code: CodeNotFound, Reason: "POST_NOT_FOUND", Message: "post not found"}
	ErrCommentNotFound     = &AppError{Code: CodeNotFound, Reason: "COMMENT_NOT_FOUND", Message: "comment not found"}
	ErrNotMember           = &AppError{Code: CodeNotFound, Reason: "NOT_MEMBER", Message: "user is not a member of this community"}
	ErrNotFollowing        = &AppError{Code: CodeNotFound, Reason: "NOT_FOLLOWING", Message: "not following this user"}
	ErrAlreadyMember       = &AppError{Code: CodeConflict, Reason: "ALREADY_MEMBER", Message: "user is already a member of this community"}
	ErrDuplicateEngagement = &AppError{Code: CodeConflict, Reason: "DUPLICATE_ENGAGEMENT", Message: "engagement already recorded"}
	ErrCommunityNameTaken  = &AppError{Code: CodeConflict, Reason: "COMMUNITY_NAME_TAKEN", Message: "community name already taken"}
	ErrAlreadyFollowing    = &AppError{Code: CodeConflict, Reason: "ALREADY_FOLLOWING", Message: "already following this user"}
	ErrUsernameTaken       = &AppError{Code: CodeConflict, Reason: "USERNAME_TAKEN", Message: "username already taken"}
	ErrEmailTaken          = &AppError{Code: CodeConflict, Reason: "EMAIL_TAKEN", Message: "email already taken"}
	ErrActorNotMember      = &AppError{Code: CodeForbidden, Reason: "ACTOR_NOT_MEMBER", Message: "acting user is not a member of this community"}
	ErrInsufficientRole    = &AppError{Code: CodeForbidden, Reason: "INSUFFICIENT_ROLE", Message: "role does not permit this action"}
	ErrMembershipRequired  = &AppError{Code: CodeForbidden, Reason: "NOT_MEMBER", Message: "only members can post in this community"}
	ErrNotAuthor           = &AppError{Code: CodeForbidden, Reason: "NOT_AUTHOR", Message: "only the author can do this"}
	ErrInvalidCredentials  = &AppError{Code: CodeUnauthorized, Reason: "INVALID_CREDENTIALS", Message: "invalid username or password"}

	// Class sentinels match any error with the same code.
	ErrNotFound   = &AppError{Code: CodeNotFound}
	ErrConflict   = &AppError{Code: CodeConflict}
	ErrForbidden  = &AppError{Code: CodeForbidden}
	ErrValidation = &AppError{Code: CodeValidation}
)

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code carried by err, or CodeInternal.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch ErrorCode(err) {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Reason: appErr.Reason,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}

// Respond writes err with the status derived from its code.
func Respond(c *fiber.Ctx, err error) error {
	return RespondWithError(c, StatusFor(err), err)
}
