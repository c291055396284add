package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/models"
)

func newFeedbackFixture(t *testing.T) (*FeedbackService, *memStore, *captureSink, Actor, Actor) {
	t.Helper()
	store := newMemStore()
	sink := &captureSink{}
	service := NewFeedbackService(store, NewRatingAggregator(logger.NewNop()), sink, logger.NewNop())

	alice := store.addUser(&models.User{Name: "Alice", Email: "alice@example.com", IsPublic: true})
	bob := store.addUser(&models.User{Name: "Bob", Email: "bob@example.com", IsPublic: true})

	return service, store, sink,
		Actor{ID: alice.ID, Name: alice.Name},
		Actor{ID: bob.ID, Name: bob.Name}
}

func completedSwap(store *memStore, requester, recipient Actor) *models.Swap {
	return store.addSwap(&models.Swap{
		RequesterID:    requester.ID,
		RecipientID:    recipient.ID,
		RequesterSkill: "Go",
		RecipientSkill: "Photography",
		Status:         models.SwapStatusCompleted,
	})
}

func userRating(t *testing.T, store *memStore, id uuid.UUID) (float64, int) {
	t.Helper()
	user, err := store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return user.Rating, user.TotalRatings
}

func TestFeedbackServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("records feedback and updates the aggregate", func(t *testing.T) {
		service, store, sink, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 4})
		require.NoError(t, err)
		assert.Equal(t, bob.ID, feedback.RatedUserID)
		assert.True(t, feedback.IsPublic)

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 4.0, rating)
		assert.Equal(t, 1, total)

		events := sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, models.NotificationFeedbackReceived, events[0].Type)
		assert.Equal(t, bob.ID, events[0].TargetUserID)
		assert.Equal(t, "Alice left you feedback with 4 stars", events[0].Message)
	})

	t.Run("both participants rate each other independently", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
		require.NoError(t, err)
		_, err = service.Create(ctx, bob, models.FeedbackCreate{SwapID: swap.ID, Rating: 3})
		require.NoError(t, err)

		bobRating, bobTotal := userRating(t, store, bob.ID)
		assert.Equal(t, 5.0, bobRating)
		assert.Equal(t, 1, bobTotal)

		aliceRating, aliceTotal := userRating(t, store, alice.ID)
		assert.Equal(t, 3.0, aliceRating)
		assert.Equal(t, 1, aliceTotal)
	})

	t.Run("mean rounds to two decimals", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)

		for _, rating := range []int{3, 4, 4} {
			swap := completedSwap(store, alice, bob)
			_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: rating})
			require.NoError(t, err)
		}

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 3.67, rating)
		assert.Equal(t, 3, total)
	})

	t.Run("rating outside 1..5 is invalid", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		for _, rating := range []int{0, 6, -1} {
			_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: rating})
			assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
		}
	})

	t.Run("non-completed swap conflicts", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)

		for _, status := range []models.SwapStatus{
			models.SwapStatusPending, models.SwapStatusAccepted,
			models.SwapStatusRejected, models.SwapStatusCancelled,
		} {
			swap := store.addSwap(&models.Swap{
				RequesterID: alice.ID, RecipientID: bob.ID,
				RequesterSkill: "Go", RecipientSkill: "Photography",
				Status: status,
			})
			_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
			assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err), "status %s", status)
		}
	})

	t.Run("non-participant is rejected", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)
		outsider := store.addUser(&models.User{Name: "Carol", Email: "carol@example.com"})

		_, err := service.Create(ctx, Actor{ID: outsider.ID, Name: outsider.Name}, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
		assert.Equal(t, apperrors.CodeAuthorization, apperrors.CodeOf(err))
	})

	t.Run("second feedback on the same swap conflicts", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
		require.NoError(t, err)

		_, err = service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 1})
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 5.0, rating)
		assert.Equal(t, 1, total)
	})

	t.Run("missing swap is not found", func(t *testing.T) {
		service, _, _, alice, _ := newFeedbackFixture(t)

		_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: uuid.New(), Rating: 5})
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}

func TestFeedbackServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("rating change recomputes the aggregate", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 2})
		require.NoError(t, err)

		newRating := 5
		updated, err := service.Update(ctx, alice, feedback.ID, models.FeedbackUpdate{Rating: &newRating})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Rating)

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 5.0, rating)
		assert.Equal(t, 1, total)
	})

	t.Run("only the rater may update", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 4})
		require.NoError(t, err)

		newRating := 1
		_, err = service.Update(ctx, bob, feedback.ID, models.FeedbackUpdate{Rating: &newRating})
		assert.Equal(t, apperrors.CodeAuthorization, apperrors.CodeOf(err))
	})

	t.Run("comment-only update leaves the aggregate alone", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 4})
		require.NoError(t, err)

		comment := "great session"
		updated, err := service.Update(ctx, alice, feedback.ID, models.FeedbackUpdate{Comment: &comment})
		require.NoError(t, err)
		require.NotNil(t, updated.Comment)
		assert.Equal(t, comment, *updated.Comment)

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 4.0, rating)
		assert.Equal(t, 1, total)
	})
}

func TestFeedbackServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the only feedback resets the aggregate to zero", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
		require.NoError(t, err)

		require.NoError(t, service.Delete(ctx, alice, feedback.ID))

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 0.0, rating)
		assert.Equal(t, 0, total)
	})

	t.Run("admin may delete someone else's feedback", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
		require.NoError(t, err)

		admin := Actor{ID: uuid.New(), Name: "Root", IsAdmin: true}
		assert.NoError(t, service.Delete(ctx, admin, feedback.ID))
	})

	t.Run("stranger may not delete", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)
		swap := completedSwap(store, alice, bob)

		feedback, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
		require.NoError(t, err)

		err = service.Delete(ctx, Actor{ID: uuid.New(), Name: "Carol"}, feedback.ID)
		assert.Equal(t, apperrors.CodeAuthorization, apperrors.CodeOf(err))
	})

	t.Run("remaining feedback keeps contributing to the mean", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)

		first := completedSwap(store, alice, bob)
		second := completedSwap(store, alice, bob)

		_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: first.ID, Rating: 5})
		require.NoError(t, err)
		removed, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: second.ID, Rating: 1})
		require.NoError(t, err)

		require.NoError(t, service.Delete(ctx, alice, removed.ID))

		rating, total := userRating(t, store, bob.ID)
		assert.Equal(t, 5.0, rating)
		assert.Equal(t, 1, total)
	})
}

func TestFeedbackServiceListForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("public view hides private feedback", func(t *testing.T) {
		service, store, _, alice, bob := newFeedbackFixture(t)

		public := completedSwap(store, alice, bob)
		private := completedSwap(store, alice, bob)

		_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: public.ID, Rating: 5})
		require.NoError(t, err)
		isPublic := false
		_, err = service.Create(ctx, alice, models.FeedbackCreate{SwapID: private.ID, Rating: 2, IsPublic: &isPublic})
		require.NoError(t, err)

		page, err := service.ListForUser(ctx, bob.ID, 1, 10, true)
		require.NoError(t, err)
		assert.Len(t, page.Feedback, 1)
		require.Len(t, page.Histogram, 1)
		assert.Equal(t, 5, page.Histogram[0].Rating)

		// The aggregate counts private feedback too.
		assert.Equal(t, 3.5, page.UserRating.Average)
		assert.Equal(t, 2, page.UserRating.Total)

		all, err := service.ListForUser(ctx, bob.ID, 1, 10, false)
		require.NoError(t, err)
		assert.Len(t, all.Feedback, 2)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		service, _, _, _, _ := newFeedbackFixture(t)

		_, err := service.ListForUser(ctx, uuid.New(), 1, 10, true)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	})
}

func TestFeedbackServiceListGivenBy(t *testing.T) {
	ctx := context.Background()
	service, store, _, alice, bob := newFeedbackFixture(t)

	swap := completedSwap(store, alice, bob)
	_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: 4})
	require.NoError(t, err)

	t.Run("self sees own given feedback", func(t *testing.T) {
		feedback, pagination, err := service.ListGivenBy(ctx, alice, alice.ID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, feedback, 1)
		assert.Equal(t, int64(1), pagination.Total)
	})

	t.Run("others are rejected, admin allowed", func(t *testing.T) {
		_, _, err := service.ListGivenBy(ctx, bob, alice.ID, 1, 10)
		assert.Equal(t, apperrors.CodeAuthorization, apperrors.CodeOf(err))

		admin := Actor{ID: uuid.New(), Name: "Root", IsAdmin: true}
		_, _, err = service.ListGivenBy(ctx, admin, alice.ID, 1, 10)
		assert.NoError(t, err)
	})
}

func TestFeedbackServiceStats(t *testing.T) {
	ctx := context.Background()
	service, store, _, alice, bob := newFeedbackFixture(t)

	for _, rating := range []int{2, 5} {
		swap := completedSwap(store, alice, bob)
		_, err := service.Create(ctx, alice, models.FeedbackCreate{SwapID: swap.ID, Rating: rating})
		require.NoError(t, err)
	}

	t.Run("admin only", func(t *testing.T) {
		_, err := service.Stats(ctx, alice)
		assert.Equal(t, apperrors.CodeAuthorization, apperrors.CodeOf(err))
	})

	t.Run("totals and rounded mean", func(t *testing.T) {
		admin := Actor{ID: uuid.New(), Name: "Root", IsAdmin: true}
		stats, err := service.Stats(ctx, admin)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Total)
		assert.Equal(t, 3.5, stats.AverageRating)
	})
}

// The full lifecycle: request, accept, complete, mutual feedback.
func TestSwapFeedbackEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sink := &captureSink{}
	log := logger.NewNop()

	swaps := NewSwapService(store, sink, log)
	feedback := NewFeedbackService(store, NewRatingAggregator(log), sink, log)

	a := store.addUser(&models.User{Name: "Ana", Email: "ana@example.com", IsPublic: true})
	b := store.addUser(&models.User{Name: "Ben", Email: "ben@example.com", IsPublic: true})
	ana := Actor{ID: a.ID, Name: a.Name}
	ben := Actor{ID: b.ID, Name: b.Name}

	swap, err := swaps.Create(ctx, ana, models.SwapCreate{
		RecipientID:    ben.ID,
		RequesterSkill: "Spanish",
		RecipientSkill: "Guitar",
	})
	require.NoError(t, err)

	_, err = swaps.Respond(ctx, ben, swap.ID, models.SwapRespond{Status: "accepted"})
	require.NoError(t, err)
	_, err = swaps.Complete(ctx, ben, swap.ID)
	require.NoError(t, err)

	_, err = feedback.Create(ctx, ana, models.FeedbackCreate{SwapID: swap.ID, Rating: 5})
	require.NoError(t, err)
	_, err = feedback.Create(ctx, ben, models.FeedbackCreate{SwapID: swap.ID, Rating: 4})
	require.NoError(t, err)

	benRating, benTotal := userRating(t, store, ben.ID)
	assert.Equal(t, 5.0, benRating)
	assert.Equal(t, 1, benTotal)

	anaRating, anaTotal := userRating(t, store, a.ID)
	assert.Equal(t, 4.0, anaRating)
	assert.Equal(t, 1, anaTotal)

	// request + accepted + two feedback events
	assert.Len(t, sink.Events(), 4)
}
