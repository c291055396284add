package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/models"
	"skillswap-server/repository"
)

// FeedbackService is the ledger of post-swap ratings. Every mutation runs in
// one transaction together with the rating recomputation it triggers, so the
// aggregate on the rated user is never observably stale.
type FeedbackService struct {
	store      repository.Store
	aggregator *RatingAggregator
	notifier   NotificationSink
	log        *logger.Logger
}

func NewFeedbackService(store repository.Store, aggregator *RatingAggregator, notifier NotificationSink, baseLog *logger.Logger) *FeedbackService {
	return &FeedbackService{
		store:      store,
		aggregator: aggregator,
		notifier:   notifier,
		log:        baseLog.With("service", "feedback"),
	}
}

// UserFeedbackPage is the ListForUser result: one page of feedback plus the
// rating histogram and the rated user's current aggregate.
type UserFeedbackPage struct {
	Feedback   []models.Feedback     `json:"feedback"`
	Histogram  []models.RatingBucket `json:"rating_distribution"`
	UserRating UserRatingSummary     `json:"user_rating"`
	Pagination models.Pagination     `json:"pagination"`
}

type UserRatingSummary struct {
	Average float64 `json:"average"`
	Total   int     `json:"total"`
}

// FeedbackStats is the admin-wide ledger summary.
type FeedbackStats struct {
	Total         int64   `json:"total"`
	AverageRating float64 `json:"average_rating"`
}

// Create records the actor's rating of the other participant of a completed
// swap. The rated user is always derived, never supplied by the caller.
func (s *FeedbackService) Create(ctx context.Context, actor Actor, input models.FeedbackCreate) (*models.Feedback, error) {
	if input.SwapID == uuid.Nil {
		return nil, apperrors.Validation("swap_id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	swap, err := tx.Swaps().GetByID(ctx, input.SwapID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("swap not found")
		}
		return nil, apperrors.Internal("failed to load swap", err)
	}
	if swap.Status != models.SwapStatusCompleted {
		return nil, apperrors.Conflict("can only leave feedback for completed swaps")
	}
	if !swap.IsParticipant(actor.ID) {
		return nil, apperrors.Forbidden("you can only leave feedback for your own swaps")
	}
	ratedUserID := swap.OtherParticipant(actor.ID)

	if _, err := tx.Feedback().GetBySwapAndRater(ctx, input.SwapID, actor.ID); err == nil {
		return nil, apperrors.Conflict("feedback already exists for this swap")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal("failed to check for existing feedback", err)
	}

	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}
	feedback := &models.Feedback{
		SwapID:      input.SwapID,
		RaterID:     actor.ID,
		RatedUserID: ratedUserID,
		Rating:      input.Rating,
		Comment:     input.Comment,
		IsPublic:    isPublic,
	}
	if err := tx.Feedback().Insert(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("feedback already exists for this swap")
		}
		return nil, apperrors.Internal("failed to create feedback", err)
	}

	if err := s.aggregator.Recompute(ctx, tx, ratedUserID); err != nil {
		return nil, apperrors.Internal("failed to recompute rating", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit feedback", err)
	}

	s.log.Info("feedback created", "feedback_id", feedback.ID, "swap_id", swap.ID, "rated_user_id", ratedUserID)
	s.notifier.Publish(Event{
		Type:         models.NotificationFeedbackReceived,
		TargetUserID: ratedUserID,
		Message:      fmt.Sprintf("%s left you feedback with %d stars", actor.Name, feedback.Rating),
		RelatedID:    feedback.ID,
	})
	return feedback, nil
}

// Update lets the original rater amend their feedback. The aggregate is
// recomputed only when the rating value actually changed.
func (s *FeedbackService) Update(ctx context.Context, actor Actor, feedbackID uuid.UUID, input models.FeedbackUpdate) (*models.Feedback, error) {
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apperrors.Validation("rating must be between 1 and 5")
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	feedback, err := tx.Feedback().GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("feedback not found")
		}
		return nil, apperrors.Internal("failed to load feedback", err)
	}
	if feedback.RaterID != actor.ID {
		return nil, apperrors.Forbidden("you can only update your own feedback")
	}

	ratingChanged := false
	if input.Rating != nil && *input.Rating != feedback.Rating {
		feedback.Rating = *input.Rating
		ratingChanged = true
	}
	if input.Comment != nil {
		feedback.Comment = input.Comment
	}
	if input.IsPublic != nil {
		feedback.IsPublic = *input.IsPublic
	}

	if err := tx.Feedback().Update(ctx, feedback); err != nil {
		return nil, apperrors.Internal("failed to update feedback", err)
	}
	if ratingChanged {
		if err := s.aggregator.Recompute(ctx, tx, feedback.RatedUserID); err != nil {
			return nil, apperrors.Internal("failed to recompute rating", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit feedback update", err)
	}
	return feedback, nil
}

// Delete removes feedback on behalf of its rater or an admin and restores
// the rated user's aggregate, down to 0/0 when nothing remains.
func (s *FeedbackService) Delete(ctx context.Context, actor Actor, feedbackID uuid.UUID) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	feedback, err := tx.Feedback().GetByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("feedback not found")
		}
		return apperrors.Internal("failed to load feedback", err)
	}
	if feedback.RaterID != actor.ID && !actor.IsAdmin {
		return apperrors.Forbidden("access denied")
	}

	if err := tx.Feedback().Delete(ctx, feedbackID); err != nil {
		return apperrors.Internal("failed to delete feedback", err)
	}
	if err := s.aggregator.Recompute(ctx, tx, feedback.RatedUserID); err != nil {
		return apperrors.Internal("failed to recompute rating", err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Internal("failed to commit feedback deletion", err)
	}
	return nil
}

// ListForUser returns feedback left for userID. publicOnly is false only
// when the viewer is the user themselves or an admin.
func (s *FeedbackService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int, publicOnly bool) (*UserFeedbackPage, error) {
	page, limit = normalizePage(page, limit)

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}

	feedback, total, err := s.store.Feedback().ListByRatedUser(ctx, userID, publicOnly, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to fetch feedback", err)
	}
	histogram, err := s.store.Feedback().Histogram(ctx, userID, publicOnly)
	if err != nil {
		return nil, apperrors.Internal("failed to fetch rating distribution", err)
	}

	return &UserFeedbackPage{
		Feedback:  feedback,
		Histogram: histogram,
		UserRating: UserRatingSummary{
			Average: user.Rating,
			Total:   user.TotalRatings,
		},
		Pagination: models.NewPagination(total, page, limit),
	}, nil
}

// ListGivenBy returns feedback authored by userID; self or admin only.
func (s *FeedbackService) ListGivenBy(ctx context.Context, actor Actor, userID uuid.UUID, page, limit int) ([]models.Feedback, models.Pagination, error) {
	if actor.ID != userID && !actor.IsAdmin {
		return nil, models.Pagination{}, apperrors.Forbidden("access denied")
	}
	page, limit = normalizePage(page, limit)

	feedback, total, err := s.store.Feedback().ListByRater(ctx, userID, page, limit)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Internal("failed to fetch feedback", err)
	}
	return feedback, models.NewPagination(total, page, limit), nil
}

// Stats summarizes the whole ledger for admins.
func (s *FeedbackService) Stats(ctx context.Context, actor Actor) (*FeedbackStats, error) {
	if !actor.IsAdmin {
		return nil, apperrors.Forbidden("admin access required")
	}

	total, average, err := s.store.Feedback().Stats(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to fetch feedback stats", err)
	}
	return &FeedbackStats{
		Total:         total,
		AverageRating: math.Round(average*100) / 100,
	}, nil
}
