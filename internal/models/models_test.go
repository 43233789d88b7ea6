package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipRole_Rank(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleFounder.Outranks(RoleModerator))
	assert.True(t, RoleModerator.Outranks(RoleMember))
	assert.False(t, RoleMember.Outranks(RoleMember))

	assert.False(t, RoleMember.CanManageRoles())
	assert.True(t, RoleModerator.CanManageRoles())
	assert.True(t, RoleFounder.CanManageRoles())
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want MembershipRole
		ok   bool
	}{
		{"MEMBER", RoleMember, true},
		{"moderator", RoleModerator, true},
		{" Founder ", RoleFounder, true},
		{"owner", 0, false},
		{"", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMembershipRole_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(MemberSummary{Username: "ada", Role: RoleModerator})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":0,"username":"ada","role":"MODERATOR"}`, string(b))

	var r MembershipRole
	assert.Error(t, json.Unmarshal([]byte(`"ADMIN"`), &r))

	_, err = json.Marshal(MembershipRole(9))
	assert.Error(t, err)
}

func TestAppError_Is(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("join: %w", ErrAlreadyMember)

	assert.True(t, errors.Is(wrapped, ErrAlreadyMember))
	assert.True(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(wrapped, ErrDuplicateEngagement))
	assert.False(t, errors.Is(wrapped, ErrNotFound))

	assert.Equal(t, CodeConflict, ErrorCode(wrapped))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 404, StatusFor(ErrPostNotFound))
	assert.Equal(t, 409, StatusFor(ErrDuplicateEngagement))
	assert.Equal(t, 403, StatusFor(ErrInsufficientRole))
	assert.Equal(t, 401, StatusFor(ErrInvalidCredentials))
	assert.Equal(t, 400, StatusFor(NewValidationError("bad")))
	assert.Equal(t, 500, StatusFor(errors.New("boom")))
}

func TestActivityKind(t *testing.T) {
	t.Parallel()

	assert.True(t, ActivityUpvote.IsVote())
	assert.True(t, ActivityDownvote.IsVote())
	assert.False(t, ActivityComment.IsVote())
	assert.True(t, ActivityComment.Valid())
	assert.False(t, ActivityKind("LIKE").Valid())
}

func TestCommunityKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "golang", CommunityKey("  GoLang "))
}
