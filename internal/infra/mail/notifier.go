package mail

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/infra/events"
)

type AlertSender interface {
	SendAlert(to, title, message string) error
}

// AlertNotifier tails the notification bus and emails the on-call address for
// every urgent notification. Best effort: a failed send is logged and dropped.
type AlertNotifier struct {
	Sender  AlertSender
	Address string
	Logger  *logrus.Logger
}

func NewAlertNotifier(sender AlertSender, address string, logger *logrus.Logger) *AlertNotifier {
	return &AlertNotifier{Sender: sender, Address: address, Logger: logger}
}

func (n *AlertNotifier) Start(ctx context.Context, bus *events.Bus) {
	ch, unsubscribe := bus.Subscribe(64)

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev.Notification.Priority != entity.PriorityUrgent {
					continue
				}
				if err := n.Sender.SendAlert(n.Address, ev.Notification.Title, ev.Notification.Message); err != nil {
					n.Logger.WithError(err).WithField("notification_id", ev.Notification.ID).
						Warn("urgent alert email failed")
				}
			}
		}
	}()
}
