package usecase

import (
	"fmt"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/infra/integration/scoring"
)

const DefaultQualificationThreshold = 50

// NotificationDraft is a notification requested by the qualification rules but
// not yet persisted.
type NotificationDraft struct {
	Type          entity.NotificationType
	Title         string
	Message       string
	Priority      entity.NotificationPriority
	RecipientType entity.RecipientType
	Data          map[string]interface{}
}

type Decision struct {
	Qualify       bool
	Notifications []NotificationDraft
}

// Decide applies the qualification rules to one scoring result. Pure: no I/O,
// no clock, nothing but the inputs.
//
// A score strictly above the threshold qualifies the lead; a score exactly on
// the threshold does not. The human-intervention flag raises its own
// notification regardless of the qualification outcome, so both can fire for
// the same lead.
func Decide(res scoring.ScoreResult, lead *entity.Lead, threshold int) Decision {
	data := map[string]interface{}{
		"lead_id": lead.ID,
		"score":   res.Score,
		"source":  lead.Source,
	}

	var decision Decision

	if res.Score > threshold {
		decision.Qualify = true
		decision.Notifications = append(decision.Notifications, NotificationDraft{
			Type:          entity.NotificationLeadQualified,
			Title:         "New qualified lead",
			Message:       fmt.Sprintf("%s scored %d and is ready for follow-up", lead.FullName, res.Score),
			Priority:      entity.PriorityHigh,
			RecipientType: entity.RecipientAdmin,
			Data:          data,
		})
	}

	if res.NeedsHumanIntervention {
		decision.Notifications = append(decision.Notifications, NotificationDraft{
			Type:          entity.NotificationLeadNeedsAttention,
			Title:         "Lead needs attention",
			Message:       fmt.Sprintf("%s could not be auto-triaged and needs manual review", lead.FullName),
			Priority:      entity.PriorityUrgent,
			RecipientType: entity.RecipientAdmin,
			Data:          data,
		})
	}

	return decision
}
