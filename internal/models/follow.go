package models

import "time"

// Follow is a directed edge from follower to followed.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowedID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"followed_id"`
	Followed   *User     `gorm:"foreignKey:FollowedID" json:"followed,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
