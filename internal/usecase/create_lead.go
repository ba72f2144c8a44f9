package usecase

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/infra/http/middleware"
	"github.com/edumax/leads-service/internal/infra/integration/scoring"
)

// CreateLeadUseCase is the intake pipeline: record the lead and its first
// interaction, score it through the oracle, qualify, raise notifications —
// one transaction, so the lead is either fully present or fully absent.
type CreateLeadUseCase struct {
	Leads        entity.LeadRepositoryInterface
	Interactions entity.InteractionRepositoryInterface
	Dispatcher   *NotificationDispatcher
	Scoring      ScoringService
	Tx           TransactionManager
	Threshold    int
	Logger       *logrus.Logger
}

func NewCreateLeadUseCase(
	leads entity.LeadRepositoryInterface,
	interactions entity.InteractionRepositoryInterface,
	dispatcher *NotificationDispatcher,
	scoringService ScoringService,
	tx TransactionManager,
	threshold int,
	logger *logrus.Logger,
) *CreateLeadUseCase {
	if threshold <= 0 {
		threshold = DefaultQualificationThreshold
	}
	return &CreateLeadUseCase{
		Leads:        leads,
		Interactions: interactions,
		Dispatcher:   dispatcher,
		Scoring:      scoringService,
		Tx:           tx,
		Threshold:    threshold,
		Logger:       logger,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, input CreateLeadInput) (*CreateLeadOutput, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, validationDomainError(errs)
	}

	var (
		lead    *entity.Lead
		result  scoring.ScoreResult
		created []entity.Notification
	)

	err := uc.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		lead = &entity.Lead{
			FullName: input.FullName,
			Email:    input.Email,
			Phone:    input.Phone,
			Source:   entity.LeadSource(input.Source),
			Status:   entity.StatusNew,
			Score:    0,
		}
		if err := uc.Leads.Create(txCtx, lead); err != nil {
			return err
		}

		if input.Message != "" {
			interaction := &entity.Interaction{
				LeadID:  lead.ID,
				Type:    entity.InteractionFormSubmission,
				Content: input.Message,
			}
			if err := uc.Interactions.Create(txCtx, interaction); err != nil {
				return err
			}
		}

		// The oracle call runs inside the transaction: score and quality are
		// visible atomically with the lead row. The connection stays pinned
		// for up to the oracle timeout.
		result = uc.scoreWithFallback(txCtx, lead.ID)

		if err := uc.Leads.UpdateScore(txCtx, lead.ID, result.Score, result.Quality); err != nil {
			return err
		}

		decision := Decide(result, lead, uc.Threshold)
		if decision.Qualify {
			if _, err := uc.Leads.UpdateStatus(txCtx, lead.ID, entity.StatusQualified, nil); err != nil {
				return err
			}
		}

		for _, draft := range decision.Notifications {
			n, err := uc.Dispatcher.CreateInTx(txCtx, draft)
			if err != nil {
				return err
			}
			created = append(created, *n)
		}
		return nil
	})
	if err != nil {
		uc.Logger.WithError(err).Error("lead intake rolled back")
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to persist lead", Err: err}
	}

	// Events only exist for committed rows.
	uc.Dispatcher.PublishCreated(ctx, created)
	for _, n := range created {
		middleware.RecordNotificationCreated(string(n.Type))
	}

	final, err := uc.Leads.FindByID(ctx, lead.ID)
	if err != nil {
		return nil, &TechnicalError{Code: CodeDatabase, Message: "failed to reload lead", Err: err}
	}

	middleware.RecordLeadScored(string(final.Status))
	uc.Logger.WithFields(logrus.Fields{
		"lead_id":       final.ID,
		"score":         result.Score,
		"status":        final.Status,
		"notifications": len(created),
	}).Info("lead created and scored")

	return &CreateLeadOutput{
		Lead:                   final,
		Score:                  result.Score,
		NeedsHumanIntervention: result.NeedsHumanIntervention,
		NotificationsCreated:   len(created),
	}, nil
}

// scoreWithFallback never fails: if the oracle is down, slow or broken, the
// lead still lands, flagged for manual review.
func (uc *CreateLeadUseCase) scoreWithFallback(ctx context.Context, leadID int64) scoring.ScoreResult {
	res, err := uc.Scoring.Score(ctx, leadID)
	if err != nil {
		uc.Logger.WithError(err).WithField("lead_id", leadID).Warn("scoring failed, using fallback")
		middleware.RecordScoringFallback()
		return scoring.ScoreResult{
			Score:                  0,
			Quality:                "unqualified",
			NeedsHumanIntervention: true,
			Details:                []string{"AI scoring failed - manual review required"},
		}
	}
	return *res
}
