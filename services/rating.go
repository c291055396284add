package services

import (
	"context"
	"math"

	"github.com/google/uuid"

	"skillswap-server/logger"
	"skillswap-server/repository"
)

// RatingAggregator keeps a user's aggregate rating equal to the exact mean
// of the feedback currently attributed to them. Recompute always runs inside
// the transaction of the feedback mutation that invalidated the aggregate.
type RatingAggregator struct {
	log *logger.Logger
}

func NewRatingAggregator(baseLog *logger.Logger) *RatingAggregator {
	return &RatingAggregator{log: baseLog.With("component", "rating_aggregator")}
}

// Recompute reads the full feedback set for userID and writes the aggregate
// back onto the user row. The row lock taken up front serializes concurrent
// recomputations for the same user; without it two transactions could both
// read a stale feedback set and commit an inconsistent average.
func (ra *RatingAggregator) Recompute(ctx context.Context, tx repository.Tx, userID uuid.UUID) error {
	if _, err := tx.Users().GetByIDForUpdate(ctx, userID); err != nil {
		return err
	}

	count, sum, err := tx.Feedback().CountAndSumByRatedUser(ctx, userID)
	if err != nil {
		return err
	}

	average := 0.0
	if count > 0 {
		average = math.Round(float64(sum)/float64(count)*100) / 100
	}

	return tx.Users().UpdateRatingAggregate(ctx, userID, average, int(count))
}
