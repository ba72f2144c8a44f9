package usecase

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/entity"
)

// RescoreLeadUseCase re-runs the oracle for an existing lead. Unlike intake
// there is no fallback — an oracle failure surfaces to the caller, who retries
// explicitly — and the qualification threshold is not re-applied: status stays
// whatever an operator set it to.
type RescoreLeadUseCase struct {
	Leads      entity.LeadRepositoryInterface
	Dispatcher *NotificationDispatcher
	Scoring    ScoringService
	Tx         TransactionManager
	Logger     *logrus.Logger
}

func NewRescoreLeadUseCase(
	leads entity.LeadRepositoryInterface,
	dispatcher *NotificationDispatcher,
	scoringService ScoringService,
	tx TransactionManager,
	logger *logrus.Logger,
) *RescoreLeadUseCase {
	return &RescoreLeadUseCase{
		Leads:      leads,
		Dispatcher: dispatcher,
		Scoring:    scoringService,
		Tx:         tx,
		Logger:     logger,
	}
}

func (uc *RescoreLeadUseCase) Execute(ctx context.Context, leadID int64) (*RescoreLeadOutput, error) {
	lead, err := uc.Leads.FindByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "lead", ID: leadID}
		}
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to load lead", Err: err}
	}

	result, err := uc.Scoring.Score(ctx, leadID)
	if err != nil {
		uc.Logger.WithError(err).WithField("lead_id", leadID).Warn("rescore failed")
		return nil, &TechnicalError{
			Code:    CodeExternalService,
			Message: "scoring service failed, retry later",
			Err:     err,
		}
	}

	var created []entity.Notification
	err = uc.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.Leads.UpdateScore(txCtx, leadID, result.Score, result.Quality); err != nil {
			return err
		}
		if result.NeedsHumanIntervention {
			draft := NotificationDraft{
				Type:          entity.NotificationLeadNeedsAttention,
				Title:         "Lead needs attention",
				Message:       lead.FullName + " was rescored and needs manual review",
				Priority:      entity.PriorityUrgent,
				RecipientType: entity.RecipientAdmin,
				Data: map[string]interface{}{
					"lead_id": lead.ID,
					"score":   result.Score,
					"source":  lead.Source,
				},
			}
			n, err := uc.Dispatcher.CreateInTx(txCtx, draft)
			if err != nil {
				return err
			}
			created = append(created, *n)
		}
		return nil
	})
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to persist rescore", Err: err}
	}

	uc.Dispatcher.PublishCreated(ctx, created)

	uc.Logger.WithFields(logrus.Fields{"lead_id": leadID, "score": result.Score}).Info("lead rescored")

	return &RescoreLeadOutput{
		LeadID:                 leadID,
		Score:                  result.Score,
		NeedsHumanIntervention: result.NeedsHumanIntervention,
		NotificationsCreated:   len(created),
	}, nil
}
