package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/models"
	"skillswap-server/repository"
)

// SwapService owns the swap lifecycle: it validates and executes status
// transitions and enforces actor-based authorization. Every mutation runs
// inside one transaction whose status write is conditioned on the status
// observed at read time, so of two concurrent transitions the first
// committer wins and the loser fails with a conflict.
type SwapService struct {
	store    repository.Store
	notifier NotificationSink
	log      *logger.Logger
}

func NewSwapService(store repository.Store, notifier NotificationSink, baseLog *logger.Logger) *SwapService {
	return &SwapService{
		store:    store,
		notifier: notifier,
		log:      baseLog.With("service", "swap"),
	}
}

// swapTransitions is the full state machine. Statuses missing from the map
// are terminal.
var swapTransitions = map[models.SwapStatus][]models.SwapStatus{
	models.SwapStatusPending:  {models.SwapStatusAccepted, models.SwapStatusRejected, models.SwapStatusCancelled},
	models.SwapStatusAccepted: {models.SwapStatusCompleted},
}

func canTransition(from, to models.SwapStatus) bool {
	for _, next := range swapTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Create opens a new swap request in status pending and notifies the
// recipient. A banned or missing recipient reads as not found; an identical
// pending request is a conflict, enforced both here and by the partial
// unique index on pending swaps.
func (s *SwapService) Create(ctx context.Context, actor Actor, input models.SwapCreate) (*models.Swap, error) {
	if input.RecipientID == uuid.Nil {
		return nil, apperrors.Validation("recipient_id is required")
	}
	if input.RecipientID == actor.ID {
		return nil, apperrors.Validation("cannot create a swap request with yourself")
	}
	requesterSkill := strings.TrimSpace(input.RequesterSkill)
	recipientSkill := strings.TrimSpace(input.RecipientSkill)
	if requesterSkill == "" || recipientSkill == "" {
		return nil, apperrors.Validation("requester_skill and recipient_skill are required")
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	recipient, err := tx.Users().GetByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("recipient not found")
		}
		return nil, apperrors.Internal("failed to load recipient", err)
	}
	if recipient.IsBanned {
		return nil, apperrors.NotFound("recipient not found")
	}

	if _, err := tx.Swaps().FindPendingDuplicate(ctx, actor.ID, input.RecipientID, requesterSkill, recipientSkill); err == nil {
		return nil, apperrors.Conflict("a pending swap request already exists for these skills")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal("failed to check for duplicate swap", err)
	}

	swap := &models.Swap{
		RequesterID:    actor.ID,
		RecipientID:    input.RecipientID,
		RequesterSkill: requesterSkill,
		RecipientSkill: recipientSkill,
		Status:         models.SwapStatusPending,
		Message:        input.Message,
		ScheduledDate:  input.ScheduledDate,
		Duration:       input.Duration,
	}
	if err := tx.Swaps().Insert(ctx, swap); err != nil {
		// The unique index catches the race the pre-check cannot.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("a pending swap request already exists for these skills")
		}
		return nil, apperrors.Internal("failed to create swap", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit swap", err)
	}

	s.log.Info("swap created", "swap_id", swap.ID, "requester_id", actor.ID, "recipient_id", recipient.ID)
	s.notifier.Publish(Event{
		Type:         models.NotificationSwapRequest,
		TargetUserID: recipient.ID,
		Message:      fmt.Sprintf("%s sent you a skill swap request for %s", actor.Name, recipientSkill),
		RelatedID:    swap.ID,
	})
	return swap, nil
}

// Respond lets the recipient accept or reject a pending swap.
func (s *SwapService) Respond(ctx context.Context, actor Actor, swapID uuid.UUID, input models.SwapRespond) (*models.Swap, error) {
	next := models.SwapStatus(input.Status)
	if next != models.SwapStatusAccepted && next != models.SwapStatusRejected {
		return nil, apperrors.Validation("status must be \"accepted\" or \"rejected\"")
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	swap, err := s.loadSwap(ctx, tx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RecipientID != actor.ID {
		return nil, apperrors.Forbidden("only the recipient can accept or reject this swap")
	}
	if swap.Status != models.SwapStatusPending {
		return nil, apperrors.Conflict("only pending swaps can be accepted or rejected")
	}

	if err := s.transition(ctx, tx, swap, next, input.Notes); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit swap response", err)
	}

	eventType := models.NotificationSwapAccepted
	message := fmt.Sprintf("%s accepted your skill swap request", actor.Name)
	if next == models.SwapStatusRejected {
		eventType = models.NotificationSwapRejected
		message = fmt.Sprintf("%s rejected your skill swap request", actor.Name)
	}
	s.notifier.Publish(Event{
		Type:         eventType,
		TargetUserID: swap.RequesterID,
		Message:      message,
		RelatedID:    swap.ID,
	})
	return swap, nil
}

// Cancel lets the requester withdraw their own pending swap.
func (s *SwapService) Cancel(ctx context.Context, actor Actor, swapID uuid.UUID) (*models.Swap, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	swap, err := s.loadSwap(ctx, tx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RequesterID != actor.ID {
		return nil, apperrors.Forbidden("only the requester can cancel this swap")
	}
	if swap.Status != models.SwapStatusPending {
		return nil, apperrors.Conflict("only pending swaps can be cancelled")
	}

	if err := s.transition(ctx, tx, swap, models.SwapStatusCancelled, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit cancellation", err)
	}
	return swap, nil
}

// Complete marks an accepted swap as done. Either participant may call it;
// calling it again on an already completed swap is a conflict, never a
// silent success, because feedback eligibility hangs off this transition.
func (s *SwapService) Complete(ctx context.Context, actor Actor, swapID uuid.UUID) (*models.Swap, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to open transaction", err)
	}
	defer tx.Rollback()

	swap, err := s.loadSwap(ctx, tx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actor.ID) {
		return nil, apperrors.Forbidden("access denied")
	}
	if swap.Status != models.SwapStatusAccepted {
		return nil, apperrors.Conflict("only accepted swaps can be marked as completed")
	}

	if err := s.transition(ctx, tx, swap, models.SwapStatusCompleted, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit completion", err)
	}
	return swap, nil
}

// Get returns a swap to one of its participants or an admin.
func (s *SwapService) Get(ctx context.Context, actor Actor, swapID uuid.UUID) (*models.Swap, error) {
	swap, err := s.store.Swaps().GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("swap not found")
		}
		return nil, apperrors.Internal("failed to load swap", err)
	}
	if !swap.IsParticipant(actor.ID) && !actor.IsAdmin {
		return nil, apperrors.Forbidden("access denied")
	}
	return swap, nil
}

// ListForUser returns the actor's swaps, optionally narrowed by direction
// and status. Unknown status values are ignored rather than rejected.
func (s *SwapService) ListForUser(ctx context.Context, actor Actor, filter models.SwapListFilter) ([]models.Swap, models.Pagination, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	if !validSwapStatus(filter.Status) {
		filter.Status = ""
	}

	swaps, total, err := s.store.Swaps().ListForUser(ctx, actor.ID, filter)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Internal("failed to fetch swaps", err)
	}
	return swaps, models.NewPagination(total, filter.Page, filter.Limit), nil
}

// ListAll is the admin view over every swap.
func (s *SwapService) ListAll(ctx context.Context, actor Actor, status models.SwapStatus, page, limit int) ([]models.Swap, models.Pagination, error) {
	if !actor.IsAdmin {
		return nil, models.Pagination{}, apperrors.Forbidden("admin access required")
	}
	page, limit = normalizePage(page, limit)
	if !validSwapStatus(status) {
		status = ""
	}

	swaps, total, err := s.store.Swaps().ListAll(ctx, status, page, limit)
	if err != nil {
		return nil, models.Pagination{}, apperrors.Internal("failed to fetch swaps", err)
	}
	return swaps, models.NewPagination(total, page, limit), nil
}

func (s *SwapService) loadSwap(ctx context.Context, tx repository.Tx, swapID uuid.UUID) (*models.Swap, error) {
	swap, err := tx.Swaps().GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("swap not found")
		}
		return nil, apperrors.Internal("failed to load swap", err)
	}
	return swap, nil
}

// transition performs the conditional status write and folds the result back
// into the in-memory swap. A stale write means a concurrent transition won.
func (s *SwapService) transition(ctx context.Context, tx repository.Tx, swap *models.Swap, next models.SwapStatus, notes *string) error {
	if !canTransition(swap.Status, next) {
		return apperrors.Conflict(fmt.Sprintf("cannot move swap from %s to %s", swap.Status, next))
	}
	if err := tx.Swaps().UpdateStatus(ctx, swap.ID, swap.Status, next, notes); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return apperrors.Conflict("swap status has changed, please reload")
		}
		return apperrors.Internal("failed to update swap status", err)
	}
	swap.Status = next
	if notes != nil {
		swap.Notes = notes
	}
	return nil
}

func validSwapStatus(status models.SwapStatus) bool {
	switch status {
	case models.SwapStatusPending, models.SwapStatusAccepted, models.SwapStatusRejected,
		models.SwapStatusCancelled, models.SwapStatusCompleted:
		return true
	default:
		return false
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}
