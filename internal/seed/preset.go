package seed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"agora/internal/models"
	"agora/internal/service"

	"gopkg.in/yaml.v3"
)

// Preset is a hand-written scenario loaded from YAML. Users are referenced by
// username and communities by name.
type Preset struct {
	Users       []PresetUser      `yaml:"users"`
	Communities []PresetCommunity `yaml:"communities"`
	Posts       []PresetPost      `yaml:"posts"`
	Follows     []PresetFollow    `yaml:"follows"`
}

type PresetUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
}

type PresetCommunity struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Founder     string         `yaml:"founder"`
	Members     []PresetMember `yaml:"members"`
}

// PresetMember joins a community. A role above MEMBER is granted by the founder.
type PresetMember struct {
	Username string `yaml:"username"`
	Role     string `yaml:"role"`
}

type PresetPost struct {
	Community string          `yaml:"community"`
	Author    string          `yaml:"author"`
	Title     string          `yaml:"title"`
	Content   string          `yaml:"content"`
	Upvotes   []string        `yaml:"upvotes"`
	Downvotes []string        `yaml:"downvotes"`
	Comments  []PresetComment `yaml:"comments"`
}

type PresetComment struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
}

type PresetFollow struct {
	Follower string `yaml:"follower"`
	Followee string `yaml:"followee"`
}

// LoadPreset reads and parses a preset file.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset decodes YAML, rejecting unknown keys.
func ParsePreset(data []byte) (*Preset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Preset
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse preset: %w", err)
	}
	return &p, nil
}

// ApplyPreset creates everything the preset describes, in file order.
func (s *Seeder) ApplyPreset(ctx context.Context, p *Preset) (*Summary, error) {
	sum := &Summary{}
	users := make(map[string]*models.User, len(p.Users))
	lookup := func(username string) (*models.User, error) {
		u, ok := users[username]
		if !ok {
			return nil, fmt.Errorf("preset: unknown user %q", username)
		}
		return u, nil
	}

	for _, pu := range p.Users {
		email := pu.Email
		if email == "" {
			email = strings.ToLower(pu.Username) + "@example.com"
		}
		password := pu.Password
		if password == "" {
			password = DefaultPassword
		}
		res, err := s.users.Register(ctx, service.RegisterInput{
			Username: pu.Username,
			Email:    email,
			Password: password,
		})
		if err != nil {
			return sum, fmt.Errorf("register %s: %w", pu.Username, err)
		}
		user := res.User
		if pu.Bio != "" {
			bio := pu.Bio
			if user, err = s.users.UpdateProfile(ctx, service.UpdateProfileInput{UserID: user.ID, Bio: &bio}); err != nil {
				return sum, fmt.Errorf("bio for %s: %w", pu.Username, err)
			}
		}
		users[pu.Username] = user
		sum.Users++
	}

	for _, pc := range p.Communities {
		founder, err := lookup(pc.Founder)
		if err != nil {
			return sum, err
		}
		community, err := s.communities.CreateCommunity(ctx, service.CreateCommunityInput{
			UserID:      founder.ID,
			Name:        pc.Name,
			Description: pc.Description,
		})
		if err != nil {
			return sum, fmt.Errorf("create community %s: %w", pc.Name, err)
		}
		sum.Communities++
		sum.Memberships++

		for _, pm := range pc.Members {
			member, err := lookup(pm.Username)
			if err != nil {
				return sum, err
			}
			if _, err := s.memberships.Join(ctx, community.Name, member.ID); err != nil {
				return sum, fmt.Errorf("join %s: %w", community.Name, err)
			}
			sum.Memberships++

			if pm.Role == "" {
				continue
			}
			role, err := models.ParseRole(pm.Role)
			if err != nil {
				return sum, fmt.Errorf("preset: member %s: %w", pm.Username, err)
			}
			if role == models.RoleMember {
				continue
			}
			if _, err := s.memberships.UpdateRole(ctx, community.Name, member.Username, role, founder.ID); err != nil {
				return sum, fmt.Errorf("promote %s: %w", pm.Username, err)
			}
		}
	}

	for _, pp := range p.Posts {
		author, err := lookup(pp.Author)
		if err != nil {
			return sum, err
		}
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:        author.ID,
			CommunityName: pp.Community,
			Title:         pp.Title,
			Content:       pp.Content,
		})
		if err != nil {
			return sum, fmt.Errorf("create post %q: %w", pp.Title, err)
		}
		sum.Posts++

		for _, name := range pp.Upvotes {
			voter, err := lookup(name)
			if err != nil {
				return sum, err
			}
			if _, err := s.engagement.Upvote(ctx, post.Slug, voter.ID); err != nil {
				return sum, fmt.Errorf("upvote by %s: %w", name, err)
			}
			sum.Votes++
		}
		for _, name := range pp.Downvotes {
			voter, err := lookup(name)
			if err != nil {
				return sum, err
			}
			if _, err := s.engagement.Downvote(ctx, post.Slug, voter.ID); err != nil {
				return sum, fmt.Errorf("downvote by %s: %w", name, err)
			}
			sum.Votes++
		}
		for _, pc := range pp.Comments {
			commenter, err := lookup(pc.Author)
			if err != nil {
				return sum, err
			}
			if _, err := s.engagement.Comment(ctx, post.Slug, commenter.ID, pc.Content); err != nil {
				return sum, fmt.Errorf("comment by %s: %w", pc.Author, err)
			}
			sum.Comments++
		}
	}

	for _, pf := range p.Follows {
		follower, err := lookup(pf.Follower)
		if err != nil {
			return sum, err
		}
		if err := s.users.Follow(ctx, follower.ID, pf.Followee); err != nil {
			return sum, fmt.Errorf("%s follow %s: %w", pf.Follower, pf.Followee, err)
		}
		sum.Follows++
	}

	return sum, nil
}
