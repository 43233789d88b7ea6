package models

import (
	"strings"
	"time"
)

// Community is a topical space that users join and post into.
// NameKey is the lowercase shadow of Name and carries the uniqueness constraint.
type Community struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"size:40;not null" json:"name"`
	NameKey         string       `gorm:"size:40;uniqueIndex;not null" json:"-"`
	Description     string       `gorm:"size:360" json:"description"`
	CreatedByUserID uint         `gorm:"index" json:"created_by_user_id"`
	Posts           []Post       `gorm:"foreignKey:CommunityID" json:"posts,omitempty"`
	Memberships     []Membership `gorm:"foreignKey:CommunityID" json:"memberships,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CommunityKey normalizes a community name for lookups and cache keys.
func CommunityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CommunityDetail is the read model served by GetCommunity and stored in the cache.
type CommunityDetail struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	PostCount   int             `json:"post_count"`
	Posts       []PostSummary   `json:"posts"`
	Members     []MemberSummary `json:"members"`
}

// MemberSummary pairs a username with the member's role.
type MemberSummary struct {
	UserID   uint           `json:"user_id"`
	Username string         `json:"username"`
	Role     MembershipRole `json:"role"`
}

// NewCommunityDetail builds the read model from a community loaded with posts, authors and memberships.
func NewCommunityDetail(c *Community) *CommunityDetail {
	d := &CommunityDetail{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		PostCount:   len(c.Posts),
		Posts:       make([]PostSummary, 0, len(c.Posts)),
		Members:     make([]MemberSummary, 0, len(c.Memberships)),
	}
	for i := range c.Posts {
		d.Posts = append(d.Posts, c.Posts[i].Summary())
	}
	for _, m := range c.Memberships {
		ms := MemberSummary{UserID: m.UserID, Role: m.Role}
		if m.User != nil {
			ms.Username = m.User.Username
		}
		d.Members = append(d.Members, ms)
	}
	return d
}
