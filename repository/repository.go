package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"skillswap-server/logger"
)

// Sentinel errors returned by every repository implementation. Services map
// these onto the user-facing error taxonomy; storage-engine detail stays here.
var (
	ErrNotFound    = errors.New("repository: record not found")
	ErrDuplicate   = errors.New("repository: unique constraint violated")
	ErrStaleStatus = errors.New("repository: status precondition no longer holds")
)

// Store is the durable storage consumed by the services. The accessors run
// in autocommit mode; BeginTx opens an atomic multi-statement transaction.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	Swaps() SwapRepository
	Feedback() FeedbackRepository
	Users() UserRepository
	Notifications() NotificationRepository
}

// Tx exposes the same repositories bound to one database transaction.
// Rollback after Commit is a no-op, so `defer tx.Rollback()` is safe.
type Tx interface {
	Swaps() SwapRepository
	Feedback() FeedbackRepository
	Users() UserRepository
	Notifications() NotificationRepository
	Commit() error
	Rollback() error
}

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewStore wraps a gorm handle in the Store interface.
func NewStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return &gormStore{db: db, log: baseLog.With("component", "store")}
}

func (s *gormStore) BeginTx(ctx context.Context) (Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormTx{db: tx, log: s.log}, nil
}

func (s *gormStore) Swaps() SwapRepository { return &swapRepo{db: s.db} }

func (s *gormStore) Feedback() FeedbackRepository { return &feedbackRepo{db: s.db} }

func (s *gormStore) Users() UserRepository { return &userRepo{db: s.db} }

func (s *gormStore) Notifications() NotificationRepository {
	return &notificationRepo{db: s.db}
}

type gormTx struct {
	db       *gorm.DB
	log      *logger.Logger
	finished bool
}

func (t *gormTx) Swaps() SwapRepository { return &swapRepo{db: t.db} }

func (t *gormTx) Feedback() FeedbackRepository { return &feedbackRepo{db: t.db} }

func (t *gormTx) Users() UserRepository { return &userRepo{db: t.db} }

func (t *gormTx) Notifications() NotificationRepository {
	return &notificationRepo{db: t.db}
}

func (t *gormTx) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Commit().Error
}

func (t *gormTx) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.db.Rollback().Error
}

// translate maps gorm errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
