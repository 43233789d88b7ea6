package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MembershipRole is a member's rank inside a community. Higher values outrank lower ones.
type MembershipRole int

const (
	// RoleMember is the default role granted on join.
	RoleMember MembershipRole = iota + 1
	// RoleModerator may change other members' roles.
	RoleModerator
	// RoleFounder is granted to the creator of a community.
	RoleFounder
)

var roleNames = map[MembershipRole]string{
	RoleMember:    "MEMBER",
	RoleModerator: "MODERATOR",
	RoleFounder:   "FOUNDER",
}

// ParseRole resolves a role name, case-insensitively.
func ParseRole(s string) (MembershipRole, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == want {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown membership role %q", s)
}

// Valid reports whether r is one of the defined roles.
func (r MembershipRole) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Outranks reports whether r ranks strictly above other.
func (r MembershipRole) Outranks(other MembershipRole) bool {
	return r > other
}

// CanManageRoles reports whether a holder of r may change other members' roles.
func (r MembershipRole) CanManageRoles() bool {
	return r.Outranks(RoleMember)
}

func (r MembershipRole) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("MembershipRole(%d)", int(r))
}

// MarshalJSON encodes the role by name.
func (r MembershipRole) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid membership role %d", int(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a role name.
func (r *MembershipRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Membership ties one user to one community with a role.
type Membership struct {
	CommunityID uint           `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	Community   *Community     `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      uint           `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        MembershipRole `gorm:"type:smallint;not null" json:"role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
