package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skillswap-server/logger"
	"skillswap-server/models"
	"skillswap-server/repository"
	ws "skillswap-server/websocket"
)

// Event is a lifecycle or feedback notification. A zero TargetUserID means
// the event is platform-wide and reaches every connected user.
type Event struct {
	Type         models.NotificationType
	TargetUserID uuid.UUID
	Message      string
	RelatedID    uuid.UUID
}

// NotificationSink receives events emitted after a successful commit.
// Delivery is best-effort: the core never blocks on or observes its outcome.
type NotificationSink interface {
	Publish(event Event)
}

// Notifier persists each event as a Notification row and pushes it to the
// target user's websocket connection when one is open.
type Notifier struct {
	store repository.Store
	hub   *ws.Hub
	log   *logger.Logger
}

func NewNotifier(store repository.Store, hub *ws.Hub, baseLog *logger.Logger) *Notifier {
	return &Notifier{store: store, hub: hub, log: baseLog.With("component", "notifier")}
}

func (n *Notifier) Publish(event Event) {
	go n.deliver(event)
}

func (n *Notifier) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	notification := &models.Notification{
		Message: event.Message,
		Type:    event.Type,
	}
	if event.TargetUserID != uuid.Nil {
		targetID := event.TargetUserID
		notification.UserID = &targetID
	}
	if event.RelatedID != uuid.Nil {
		relatedID := event.RelatedID
		notification.RelatedID = &relatedID
	}
	if err := n.store.Notifications().Insert(ctx, notification); err != nil {
		n.log.Error("failed to persist notification",
			"type", event.Type, "user_id", event.TargetUserID, "err", err)
	}

	if n.hub == nil {
		return
	}
	msg := &ws.Message{
		Type:      "notification",
		Data:      notification,
		Timestamp: time.Now(),
	}
	if event.TargetUserID == uuid.Nil {
		n.hub.Broadcast(msg)
	} else {
		n.hub.SendToUser(event.TargetUserID, msg)
	}
}
