package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"skillswap-server/config"
	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/models"
	"skillswap-server/repository"
	"skillswap-server/utils"
)

type UserService struct {
	store repository.Store
	cfg   *config.Config
	log   *logger.Logger
}

func NewUserService(store repository.Store, cfg *config.Config, baseLog *logger.Logger) *UserService {
	return &UserService{
		store: store,
		cfg:   cfg,
		log:   baseLog.With("service", "users"),
	}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if len(input.Password) < 6 {
		return nil, apperrors.Validation("password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsPublic:     true,
	}
	if err := s.store.Users().Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal("failed to create user", err)
	}

	token, err := utils.GenerateToken(s.cfg, user.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to generate token", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthenticated("invalid email or password")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}
	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}
	if user.IsBanned {
		return nil, apperrors.Forbidden("your account has been banned")
	}

	token, err := utils.GenerateToken(s.cfg, user.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to generate token", err)
	}

	s.log.Info("user logged in", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// GetProfile returns the actor's own full record.
func (s *UserService) GetProfile(ctx context.Context, actorID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actorID uuid.UUID, patch models.UserProfileUpdate) (*models.User, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.Validation("name cannot be empty")
	}

	user, err := s.store.Users().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Location != nil {
		user.Location = patch.Location
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = patch.AvatarURL
	}
	if patch.Availability != nil {
		user.Availability = patch.Availability
	}
	if patch.Bio != nil {
		user.Bio = patch.Bio
	}
	if patch.SkillsOffered != nil {
		user.SkillsOffered = pq.StringArray(*patch.SkillsOffered)
	}
	if patch.SkillsWanted != nil {
		user.SkillsWanted = pq.StringArray(*patch.SkillsWanted)
	}
	if patch.IsPublic != nil {
		user.IsPublic = *patch.IsPublic
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to update profile", err)
	}
	return user, nil
}

// GetByID returns another user's profile subject to visibility rules:
// banned users read as not found, private profiles are visible only to
// themselves and admins.
func (s *UserService) GetByID(ctx context.Context, viewer *Actor, userID uuid.UUID) (*models.PublicProfile, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}
	if user.IsBanned {
		return nil, apperrors.NotFound("user not found")
	}
	if !user.IsPublic {
		isSelf := viewer != nil && viewer.ID == user.ID
		isAdmin := viewer != nil && viewer.IsAdmin
		if !isSelf && !isAdmin {
			return nil, apperrors.Forbidden("this profile is private")
		}
	}
	profile := user.PublicProfile()
	return &profile, nil
}

// List returns the public user directory, filtered and paginated. Banned
// and private users are excluded at the repository level.
func (s *UserService) List(ctx context.Context, filter repository.UserListFilter) ([]models.PublicProfile, models.Pagination, error) {
	switch filter.SkillType {
	case "", "offered", "wanted":
	default:
		return nil, models.Pagination{}, apperrors.Validation("type must be \"offered\" or \"wanted\"")
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	users, total, err := s.store.Users().List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Internal("failed to fetch users", err)
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.PublicProfile())
	}
	return profiles, models.NewPagination(total, filter.Page, filter.Limit), nil
}
