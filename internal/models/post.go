package models

import "time"

// Post is authored by a member inside one community.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Slug        string     `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Title       string     `gorm:"size:180;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Upvotes     int64      `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int64      `gorm:"not null;default:0" json:"downvotes"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CommunityID uint       `gorm:"not null;index" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	Comments    []Comment  `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PostSummary is the compact form of a post nested in community and profile payloads.
type PostSummary struct {
	ID        uint          `json:"id"`
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Upvotes   int64         `json:"upvotes"`
	Downvotes int64         `json:"downvotes"`
	Author    AuthorSummary `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
}

// AuthorSummary identifies a post's author by its immutable fields only, so a
// cached community detail never goes stale on a profile edit.
type AuthorSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Summary returns the compact form of p.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Content:   p.Content,
		Upvotes:   p.Upvotes,
		Downvotes: p.Downvotes,
		Author:    p.author(),
		CreatedAt: p.CreatedAt,
	}
}

func (p *Post) author() AuthorSummary {
	if p.User == nil {
		return AuthorSummary{ID: p.UserID}
	}
	return AuthorSummary{ID: p.User.ID, Username: p.User.Username}
}
