package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ProfilePostLimit caps the posts listed on a public profile.
const ProfilePostLimit = 50

// AccountActivityLimit caps the ledger entries returned with the current user.
const AccountActivityLimit = 100

type UserService struct {
	userRepo       repository.UserRepository
	followRepo     repository.FollowRepository
	postRepo       repository.PostRepository
	membershipRepo repository.MembershipRepository
	activityRepo   repository.ActivityRepository
	jwtSecret      string
	tokenTTL       time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Account is the signed-in user's own view of their profile.
type Account struct {
	*models.User
	Memberships []models.Membership  `json:"memberships"`
	Activities  []models.Activity    `json:"activities"`
	Following   []models.UserSummary `json:"following"`
	Followers   []models.UserSummary `json:"followers"`
}

// UpdateProfileInput changes only the fields that are set.
type UpdateProfileInput struct {
	UserID            uint
	Bio               *string
	Email             *string
	Password          *string
	ProfileVisibility *bool
	AllowDM           *bool
}

// Profile is another user's public page. Posts is omitted when the owner hides it.
type Profile struct {
	ID                uint          `json:"id"`
	Username          string        `json:"username"`
	Bio               string        `json:"bio"`
	AllowDM           bool          `json:"allow_dm"`
	ProfileVisibility bool          `json:"profile_visibility"`
	Posts             []models.Post `json:"posts,omitempty"`
	FollowersCount    int64         `json:"followers_count"`
	FollowingCount    int64         `json:"following_count"`
	CreatedAt         time.Time     `json:"created_at"`
}

// UserRepositories groups the stores UserService reads from.
type UserRepositories struct {
	Users       repository.UserRepository
	Follows     repository.FollowRepository
	Posts       repository.PostRepository
	Memberships repository.MembershipRepository
	Activities  repository.ActivityRepository
}

func NewUserService(repos UserRepositories, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		userRepo:       repos.Users,
		followRepo:     repos.Follows,
		postRepo:       repos.Posts,
		membershipRepo: repos.Memberships,
		activityRepo:   repos.Activities,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:          username,
		Email:             email,
		Password:          hashed,
		ProfileVisibility: true,
		AllowDM:           true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return s.issue(user)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := middleware.GenerateToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// GetCurrentUser returns the caller's profile with memberships, recent ledger
// entries and both sides of the follow graph.
func (s *UserService) GetCurrentUser(ctx context.Context, userID uint) (*Account, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	activities, err := s.activityRepo.ListByUser(ctx, userID, AccountActivityLimit)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.ListFollowed(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Account{
		User:        user,
		Memberships: memberships,
		Activities:  activities,
		Following:   summaries(following),
		Followers:   summaries(followers),
	}, nil
}

func summaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return out
}

// GetUser returns the public profile of username.
func (s *UserService) GetUser(ctx context.Context, username string) (*Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, err := s.followRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowed(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:                user.ID,
		Username:          user.Username,
		Bio:               user.Bio,
		AllowDM:           user.AllowDM,
		ProfileVisibility: user.ProfileVisibility,
		FollowersCount:    followers,
		FollowingCount:    following,
		CreatedAt:         user.CreatedAt,
	}
	if !user.ProfileVisibility {
		return profile, nil
	}

	posts, err := s.postRepo.ListByUser(ctx, user.ID, ProfilePostLimit)
	if err != nil {
		return nil, err
	}
	profile.Posts = posts
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	updates := map[string]any{}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.ValidateBio(bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["bio"] = bio
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["email"] = email
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if in.ProfileVisibility != nil {
		updates["profile_visibility"] = *in.ProfileVisibility
	}
	if in.AllowDM != nil {
		updates["allow_dm"] = *in.AllowDM
	}
	if len(updates) == 0 {
		return s.userRepo.GetByID(ctx, in.UserID)
	}
	return s.userRepo.Update(ctx, in.UserID, updates)
}

// Follow makes followerID follow username.
func (s *UserService) Follow(ctx context.Context, followerID uint, username string) error {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if target.ID == followerID {
		return models.NewValidationError("cannot follow yourself")
	}
	return s.followRepo.Create(ctx, followerID, target.ID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID uint, username string) error {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.followRepo.Delete(ctx, followerID, target.ID)
}

func (s *UserService) ListFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	users, err := s.followRepo.ListFollowed(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}

func (s *UserService) ListFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	users, err := s.followRepo.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summaries(users), nil
}
