package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/usecase"
)

// RetentionWorker sweeps read notifications past the retention window.
type RetentionWorker struct {
	dispatcher    *usecase.NotificationDispatcher
	retentionDays int
	tickInterval  time.Duration
	logger        *logrus.Logger
}

func NewRetentionWorker(dispatcher *usecase.NotificationDispatcher, retentionDays int, logger *logrus.Logger) *RetentionWorker {
	return &RetentionWorker{
		dispatcher:    dispatcher,
		retentionDays: retentionDays,
		tickInterval:  1 * time.Hour,
		logger:        logger,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	w.logger.WithField("retention_days", w.retentionDays).Info("notification retention worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification retention worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *RetentionWorker) sweep(ctx context.Context) {
	if _, err := w.dispatcher.Cleanup(ctx, w.retentionDays); err != nil {
		w.logger.WithError(err).Error("notification retention sweep failed")
	}
}
