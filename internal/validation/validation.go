// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits.
const (
	UsernameMinLen       = 3
	UsernameMaxLen       = 18
	PasswordMinLen       = 8
	PasswordMaxLen       = 30
	EmailMaxLen          = 254
	CommunityNameMinLen  = 1
	CommunityNameMaxLen  = 40
	DescriptionMaxLen    = 360
	TitleMaxLen          = 180
	PostContentMaxLen    = 1000
	CommentContentMaxLen = 750
	BioMaxLen            = 50
)

var (
	usernameRegex      = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	communityNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var reservedCommunityNames = map[string]struct{}{
	"admin":       {},
	"api":         {},
	"auth":        {},
	"communities": {},
	"feed":        {},
	"health":      {},
	"metrics":     {},
	"posts":       {},
	"swagger":     {},
	"users":       {},
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen {
		return fmt.Errorf("username must be at least %d characters long", UsernameMinLen)
	}
	if n > UsernameMaxLen {
		return fmt.Errorf("username must not exceed %d characters", UsernameMaxLen)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLen {
		return fmt.Errorf("password must be at least %d characters long", PasswordMinLen)
	}
	if n > PasswordMaxLen {
		return fmt.Errorf("password must not exceed %d characters", PasswordMaxLen)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > EmailMaxLen {
		return fmt.Errorf("email must not exceed %d characters", EmailMaxLen)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateCommunityName checks the display name of a community. Case is preserved;
// uniqueness is enforced elsewhere on the lowercase key.
func ValidateCommunityName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < CommunityNameMinLen || n > CommunityNameMaxLen {
		return fmt.Errorf("community name must be %d-%d characters", CommunityNameMinLen, CommunityNameMaxLen)
	}
	if !communityNameRegex.MatchString(name) {
		return fmt.Errorf("community name can only contain letters, numbers, underscores, and hyphens")
	}
	if _, reserved := reservedCommunityNames[strings.ToLower(name)]; reserved {
		return fmt.Errorf("community name is reserved")
	}
	return nil
}

// ValidateDescription bounds a community description.
func ValidateDescription(description string) error {
	return maxLen("description", description, DescriptionMaxLen)
}

// ValidatePostInput checks a post title and body. The body may be empty.
func ValidatePostInput(title, content string) error {
	if err := required("title", title, TitleMaxLen); err != nil {
		return err
	}
	return maxLen("content", content, PostContentMaxLen)
}

// ValidateComment checks a comment body.
func ValidateComment(content string) error {
	return required("comment", content, CommentContentMaxLen)
}

// ValidateBio bounds a profile bio.
func ValidateBio(bio string) error {
	return maxLen("bio", bio, BioMaxLen)
}

func required(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return maxLen(field, value, limit)
}

func maxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return fmt.Errorf("%s must not exceed %d characters", field, limit)
	}
	return nil
}
