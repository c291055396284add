package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"skillswap-server/models"
	"skillswap-server/repository"
)

// memStore is an in-memory repository.Store for service tests. It enforces
// the same uniqueness and status preconditions as the Postgres schema so
// the services' conflict paths are exercised for real.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	swaps         map[uuid.UUID]*models.Swap
	feedback      map[uuid.UUID]*models.Feedback
	notifications map[uuid.UUID]*models.Notification

	// updateStatusErr, when set, is returned by the next UpdateStatus call.
	// Used to simulate losing a concurrent transition race.
	updateStatusErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*models.User),
		swaps:         make(map[uuid.UUID]*models.Swap),
		feedback:      make(map[uuid.UUID]*models.Feedback),
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

func (s *memStore) addUser(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addSwap(swap *models.Swap) *models.Swap {
	s.mu.Lock()
	defer s.mu.Unlock()
	if swap.ID == uuid.Nil {
		swap.ID = uuid.New()
	}
	s.swaps[swap.ID] = swap
	return swap
}

func (s *memStore) addFeedback(f *models.Feedback) *models.Feedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	s.feedback[f.ID] = f
	return f
}

func (s *memStore) BeginTx(ctx context.Context) (repository.Tx, error) {
	return &memTx{store: s}, nil
}

func (s *memStore) Swaps() repository.SwapRepository { return &memSwapRepo{store: s} }

func (s *memStore) Feedback() repository.FeedbackRepository { return &memFeedbackRepo{store: s} }

func (s *memStore) Users() repository.UserRepository { return &memUserRepo{store: s} }

func (s *memStore) Notifications() repository.NotificationRepository {
	return &memNotificationRepo{store: s}
}

// memTx reuses the store's repositories. The fake gives no isolation or
// rollback; tests drive the services' precondition paths, not crash
// recovery.
type memTx struct {
	store *memStore
}

func (t *memTx) Swaps() repository.SwapRepository { return &memSwapRepo{store: t.store} }

func (t *memTx) Feedback() repository.FeedbackRepository { return &memFeedbackRepo{store: t.store} }

func (t *memTx) Users() repository.UserRepository { return &memUserRepo{store: t.store} }

func (t *memTx) Notifications() repository.NotificationRepository {
	return &memNotificationRepo{store: t.store}
}

func (t *memTx) Commit() error { return nil }

func (t *memTx) Rollback() error { return nil }

type memSwapRepo struct {
	store *memStore
}

func (r *memSwapRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Swap, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	swap, ok := r.store.swaps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *swap
	return &copied, nil
}

func (r *memSwapRepo) FindPendingDuplicate(ctx context.Context, requesterID, recipientID uuid.UUID, requesterSkill, recipientSkill string) (*models.Swap, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, swap := range r.store.swaps {
		if swap.Status == models.SwapStatusPending &&
			swap.RequesterID == requesterID && swap.RecipientID == recipientID &&
			swap.RequesterSkill == requesterSkill && swap.RecipientSkill == recipientSkill {
			copied := *swap
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSwapRepo) Insert(ctx context.Context, swap *models.Swap) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.swaps {
		if existing.Status == models.SwapStatusPending &&
			existing.RequesterID == swap.RequesterID && existing.RecipientID == swap.RecipientID &&
			existing.RequesterSkill == swap.RequesterSkill && existing.RecipientSkill == swap.RecipientSkill {
			return repository.ErrDuplicate
		}
	}
	if swap.ID == uuid.Nil {
		swap.ID = uuid.New()
	}
	copied := *swap
	r.store.swaps[swap.ID] = &copied
	return nil
}

func (r *memSwapRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next models.SwapStatus, notes *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.updateStatusErr != nil {
		err := r.store.updateStatusErr
		r.store.updateStatusErr = nil
		return err
	}
	swap, ok := r.store.swaps[id]
	if !ok || swap.Status != expected {
		return repository.ErrStaleStatus
	}
	swap.Status = next
	if notes != nil {
		swap.Notes = notes
	}
	return nil
}

func (r *memSwapRepo) ListForUser(ctx context.Context, userID uuid.UUID, filter models.SwapListFilter) ([]models.Swap, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []models.Swap
	for _, swap := range r.store.swaps {
		switch filter.Type {
		case "sent":
			if swap.RequesterID != userID {
				continue
			}
		case "received":
			if swap.RecipientID != userID {
				continue
			}
		default:
			if !swap.IsParticipant(userID) {
				continue
			}
		}
		if filter.Status != "" && swap.Status != filter.Status {
			continue
		}
		matched = append(matched, *swap)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return pageSlice(matched, filter.Page, filter.Limit), total, nil
}

func (r *memSwapRepo) ListAll(ctx context.Context, status models.SwapStatus, page, limit int) ([]models.Swap, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []models.Swap
	for _, swap := range r.store.swaps {
		if status != "" && swap.Status != status {
			continue
		}
		matched = append(matched, *swap)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return pageSlice(matched, page, limit), total, nil
}

func (r *memSwapRepo) CountByStatus(ctx context.Context) (map[models.SwapStatus]int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := make(map[models.SwapStatus]int64)
	for _, swap := range r.store.swaps {
		counts[swap.Status]++
	}
	return counts, nil
}

type memFeedbackRepo struct {
	store *memStore
}

func (r *memFeedbackRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Feedback, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	f, ok := r.store.feedback[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *memFeedbackRepo) GetBySwapAndRater(ctx context.Context, swapID, raterID uuid.UUID) (*models.Feedback, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, f := range r.store.feedback {
		if f.SwapID == swapID && f.RaterID == raterID {
			copied := *f
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memFeedbackRepo) Insert(ctx context.Context, feedback *models.Feedback) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, f := range r.store.feedback {
		if f.SwapID == feedback.SwapID && f.RaterID == feedback.RaterID {
			return repository.ErrDuplicate
		}
	}
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}
	copied := *feedback
	r.store.feedback[feedback.ID] = &copied
	return nil
}

func (r *memFeedbackRepo) Update(ctx context.Context, feedback *models.Feedback) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.feedback[feedback.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *feedback
	r.store.feedback[feedback.ID] = &copied
	return nil
}

func (r *memFeedbackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.feedback[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.feedback, id)
	return nil
}

func (r *memFeedbackRepo) ListByRatedUser(ctx context.Context, userID uuid.UUID, publicOnly bool, page, limit int) ([]models.Feedback, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []models.Feedback
	for _, f := range r.store.feedback {
		if f.RatedUserID != userID {
			continue
		}
		if publicOnly && !f.IsPublic {
			continue
		}
		matched = append(matched, *f)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return pageSlice(matched, page, limit), total, nil
}

func (r *memFeedbackRepo) ListByRater(ctx context.Context, raterID uuid.UUID, page, limit int) ([]models.Feedback, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []models.Feedback
	for _, f := range r.store.feedback {
		if f.RaterID == raterID {
			matched = append(matched, *f)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return pageSlice(matched, page, limit), total, nil
}

func (r *memFeedbackRepo) CountAndSumByRatedUser(ctx context.Context, userID uuid.UUID) (int64, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count, sum int64
	for _, f := range r.store.feedback {
		if f.RatedUserID == userID {
			count++
			sum += int64(f.Rating)
		}
	}
	return count, sum, nil
}

func (r *memFeedbackRepo) Histogram(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]models.RatingBucket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := make(map[int]int64)
	for _, f := range r.store.feedback {
		if f.RatedUserID != userID {
			continue
		}
		if publicOnly && !f.IsPublic {
			continue
		}
		counts[f.Rating]++
	}
	var buckets []models.RatingBucket
	for rating := 1; rating <= 5; rating++ {
		if counts[rating] > 0 {
			buckets = append(buckets, models.RatingBucket{Rating: rating, Count: counts[rating]})
		}
	}
	return buckets, nil
}

func (r *memFeedbackRepo) Stats(ctx context.Context) (int64, float64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var total, sum int64
	for _, f := range r.store.feedback {
		total++
		sum += int64(f.Rating)
	}
	if total == 0 {
		return 0, 0, nil
	}
	return total, float64(sum) / float64(total), nil
}

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Insert(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) List(ctx context.Context, filter repository.UserListFilter) ([]models.User, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []models.User
	for _, user := range r.store.users {
		if !user.IsPublic || user.IsBanned {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Skill != "" && !containsSkill(user, filter.Skill, filter.SkillType) {
			continue
		}
		if filter.Location != "" {
			if user.Location == nil || !strings.Contains(strings.ToLower(*user.Location), strings.ToLower(filter.Location)) {
				continue
			}
		}
		matched = append(matched, *user)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return pageSlice(matched, filter.Page, filter.Limit), total, nil
}

func containsSkill(user *models.User, skill, skillType string) bool {
	if skillType == "" || skillType == "offered" {
		for _, s := range user.SkillsOffered {
			if s == skill {
				return true
			}
		}
	}
	if skillType == "" || skillType == "wanted" {
		for _, s := range user.SkillsWanted {
			if s == skill {
				return true
			}
		}
	}
	return false
}

func (r *memUserRepo) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsBanned = banned
	return nil
}

func (r *memUserRepo) UpdateRatingAggregate(ctx context.Context, id uuid.UUID, rating float64, totalRatings int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Rating = rating
	user.TotalRatings = totalRatings
	return nil
}

func (r *memUserRepo) Counts(ctx context.Context) (int64, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var total, banned int64
	for _, user := range r.store.users {
		total++
		if user.IsBanned {
			banned++
		}
	}
	return total, banned, nil
}

type memNotificationRepo struct {
	store *memStore
}

func (r *memNotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	copied := *notification
	r.store.notifications[notification.ID] = &copied
	return nil
}

func (r *memNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]models.Notification, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []models.Notification
	for _, n := range r.store.notifications {
		if n.UserID != nil && *n.UserID != userID {
			continue
		}
		// Broadcasts have no per-user read state and never count as unread.
		if unreadOnly && (n.UserID == nil || n.IsRead) {
			continue
		}
		matched = append(matched, *n)
	}
	total := int64(len(matched))
	return pageSlice(matched, page, limit), total, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.notifications[id]
	if !ok || n.UserID == nil || *n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range r.store.notifications {
		if n.UserID != nil && *n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, n := range r.store.notifications {
		if n.UserID != nil && *n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n, ok := r.store.notifications[id]
	if !ok || n.UserID == nil || *n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.store.notifications, id)
	return nil
}

func pageSlice[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// captureSink records published events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureSink) Publish(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
