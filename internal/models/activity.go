package models

import "time"

// ActivityKind tags an engagement event.
type ActivityKind string

const (
	ActivityUpvote   ActivityKind = "UPVOTE"
	ActivityDownvote ActivityKind = "DOWNVOTE"
	ActivityComment  ActivityKind = "COMMENT"
)

// IsVote reports whether k is limited to one event per user and post.
func (k ActivityKind) IsVote() bool {
	return k == ActivityUpvote || k == ActivityDownvote
}

// Valid reports whether k is a known kind.
func (k ActivityKind) Valid() bool {
	return k.IsVote() || k == ActivityComment
}

// Activity is one append-only engagement ledger entry.
// Votes are unique per (user_id, post_id, kind) through a partial index created at migration time.
type Activity struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"not null;index" json:"user_id"`
	PostID    uint         `gorm:"not null;index" json:"post_id"`
	Post      *Post        `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Kind      ActivityKind `gorm:"type:varchar(16);not null" json:"kind"`
	CommentID *uint        `gorm:"index" json:"comment_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ActivityEvent is the message published after a ledger append commits.
type ActivityEvent struct {
	ActivityID  uint         `json:"activity_id"`
	Kind        ActivityKind `json:"kind"`
	UserID      uint         `json:"user_id"`
	PostID      uint         `json:"post_id"`
	PostSlug    string       `json:"post_slug"`
	AuthorID    uint         `json:"author_id"`
	CommunityID uint         `json:"community_id"`
	CommentID   *uint        `json:"comment_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
