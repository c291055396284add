package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/models"
	"skillswap-server/repository"
)

type AdminService struct {
	store    repository.Store
	notifier NotificationSink
	log      *logger.Logger
}

func NewAdminService(store repository.Store, notifier NotificationSink, baseLog *logger.Logger) *AdminService {
	return &AdminService{
		store:    store,
		notifier: notifier,
		log:      baseLog.With("service", "admin"),
	}
}

type DashboardStats struct {
	TotalUsers   int64                       `json:"total_users"`
	BannedUsers  int64                       `json:"banned_users"`
	SwapsByState map[models.SwapStatus]int64 `json:"swaps_by_status"`
}

func (s *AdminService) Dashboard(ctx context.Context, actor Actor) (*DashboardStats, error) {
	if !actor.IsAdmin {
		return nil, apperrors.Forbidden("admin access required")
	}

	total, banned, err := s.store.Users().Counts(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to count users", err)
	}
	swaps, err := s.store.Swaps().CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to count swaps", err)
	}

	return &DashboardStats{
		TotalUsers:   total,
		BannedUsers:  banned,
		SwapsByState: swaps,
	}, nil
}

// SetBanned bans or unbans a user. Admins cannot ban themselves.
func (s *AdminService) SetBanned(ctx context.Context, actor Actor, userID uuid.UUID, banned bool) error {
	if !actor.IsAdmin {
		return apperrors.Forbidden("admin access required")
	}
	if userID == actor.ID {
		return apperrors.Validation("you cannot ban yourself")
	}

	if err := s.store.Users().SetBanned(ctx, userID, banned); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("failed to update ban status", err)
	}

	s.log.Info("user ban status changed", "user_id", userID, "banned", banned, "admin_id", actor.ID)
	return nil
}

// Broadcast sends a platform-wide notification visible to every user.
func (s *AdminService) Broadcast(ctx context.Context, actor Actor, message string) error {
	if !actor.IsAdmin {
		return apperrors.Forbidden("admin access required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return apperrors.Validation("message is required")
	}

	s.notifier.Publish(Event{
		Type:    models.NotificationPlatformUpdate,
		Message: message,
	})
	s.log.Info("platform broadcast sent", "admin_id", actor.ID)
	return nil
}

// ListSwaps exposes the full swap table to admins.
func (s *AdminService) ListSwaps(ctx context.Context, actor Actor, status models.SwapStatus, page, limit int) ([]models.Swap, models.Pagination, error) {
	if !actor.IsAdmin {
		return nil, models.Pagination{}, apperrors.Forbidden("admin access required")
	}
	page, limit = normalizePage(page, limit)

	swaps, total, err := s.store.Swaps().ListAll(ctx, status, page, limit)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Internal("failed to fetch swaps", err)
	}
	return swaps, models.NewPagination(total, page, limit), nil
}
