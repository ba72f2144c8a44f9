package usecase

import (
	"context"

	"github.com/edumax/leads-service/internal/entity"
	"github.com/edumax/leads-service/internal/infra/events"
	"github.com/edumax/leads-service/internal/infra/integration/scoring"
)

type CreateLeadInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Source   string `json:"source" validate:"required,oneof=web_form chatbot phone_call email social_media referral other"`
	Message  string `json:"message" validate:"omitempty,max=5000"`
}

type CreateLeadOutput struct {
	Lead                   *entity.Lead `json:"lead"`
	Score                  int          `json:"score"`
	NeedsHumanIntervention bool         `json:"needs_human_intervention"`
	NotificationsCreated   int          `json:"notifications_created"`
}

type RescoreLeadOutput struct {
	LeadID                 int64 `json:"lead_id"`
	Score                  int   `json:"score"`
	NeedsHumanIntervention bool  `json:"needs_human_intervention"`
	NotificationsCreated   int   `json:"notifications_created"`
}

type ScoringService interface {
	Score(ctx context.Context, leadID int64) (*scoring.ScoreResult, error)
}

type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	PublishNotification(ctx context.Context, ev events.NotificationEvent) error
}
