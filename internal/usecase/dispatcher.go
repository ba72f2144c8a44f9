package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/infra/events"
)

// NotificationDispatcher persists notifications and fans out "notification
// created" events. Persistence can ride a caller's transaction (CreateInTx);
// events are only published for committed rows.
type NotificationDispatcher struct {
	Repo      entity.NotificationRepositoryInterface
	Bus       *events.Bus
	Publisher EventPublisher // optional AMQP mirror, nil on single-node setups
	Logger    *logrus.Logger
}

func NewNotificationDispatcher(
	repo entity.NotificationRepositoryInterface,
	bus *events.Bus,
	publisher EventPublisher,
	logger *logrus.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		Repo:      repo,
		Bus:       bus,
		Publisher: publisher,
		Logger:    logger,
	}
}

// CreateInTx inserts one notification using the caller's ctx, so inside a
// transaction it commits or rolls back with everything else. No event is
// published here; the caller publishes after commit.
func (d *NotificationDispatcher) CreateInTx(ctx context.Context, draft NotificationDraft) (*entity.Notification, error) {
	data, err := json.Marshal(draft.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal notification data: %w", err)
	}

	n := &entity.Notification{
		Type:          draft.Type,
		Title:         draft.Title,
		Message:       draft.Message,
		Priority:      draft.Priority,
		Data:          data,
		RecipientType: draft.RecipientType,
	}
	if err := d.Repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Create persists and immediately publishes. For callers outside the lead
// pipeline's transaction.
func (d *NotificationDispatcher) Create(ctx context.Context, draft NotificationDraft) (*entity.Notification, error) {
	n, err := d.CreateInTx(ctx, draft)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to persist notification", Err: err}
	}
	d.PublishCreated(ctx, []entity.Notification{*n})
	return n, nil
}

// PublishCreated emits one event per committed notification, to the local bus
// and to AMQP when configured. Best effort: a publish failure never fails the
// operation that created the rows.
func (d *NotificationDispatcher) PublishCreated(ctx context.Context, notifications []entity.Notification) {
	for _, n := range notifications {
		ev := events.NewNotificationEvent(n)
		if d.Publisher != nil {
			if err := d.Publisher.PublishNotification(ctx, ev); err != nil {
				d.Logger.WithError(err).WithField("notification_id", n.ID).
					Warn("AMQP publish failed, falling back to local bus only")
				d.Bus.Publish(ev)
			}
			continue
		}
		d.Bus.Publish(ev)
	}
}

func (d *NotificationDispatcher) List(ctx context.Context, filter entity.NotificationFilter, page, limit int) ([]entity.Notification, int64, error) {
	return d.Repo.List(ctx, filter, page, limit)
}

func (d *NotificationDispatcher) MarkRead(ctx context.Context, id int64) error {
	found, err := d.Repo.MarkRead(ctx, id)
	if err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to mark notification read", Err: err}
	}
	if !found {
		return &NotFoundError{Resource: "notification", ID: id}
	}
	return nil
}

func (d *NotificationDispatcher) MarkManyRead(ctx context.Context, ids []int64) (int64, error) {
	n, err := d.Repo.MarkManyRead(ctx, ids)
	if err != nil {
		return 0, &TechnicalError{Code: CodeDatabase, Message: "failed to mark notifications read", Err: err}
	}
	return n, nil
}

func (d *NotificationDispatcher) Delete(ctx context.Context, id int64) error {
	found, err := d.Repo.Delete(ctx, id)
	if err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to delete notification", Err: err}
	}
	if !found {
		return &NotFoundError{Resource: "notification", ID: id}
	}
	return nil
}

func (d *NotificationDispatcher) Stats(ctx context.Context, filter entity.NotificationFilter) (*entity.NotificationStats, error) {
	return d.Repo.Stats(ctx, filter)
}

// Cleanup removes read notifications older than the retention window.
func (d *NotificationDispatcher) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	n, err := d.Repo.DeleteReadOlderThan(ctx, cutoff)
	if err != nil {
		return 0, &TechnicalError{Code: CodeDatabase, Message: "failed to clean up notifications", Err: err}
	}
	if n > 0 {
		d.Logger.WithFields(logrus.Fields{"deleted": n, "older_than_days": olderThanDays}).
			Info("notification retention sweep")
	}
	return n, nil
}
