package entity

import (
	"context"
	"encoding/json"
	"time"
)

type NotificationType string
type NotificationPriority string
type RecipientType string

const (
	NotificationLeadQualified      NotificationType = "lead_qualified"
	NotificationLeadNeedsAttention NotificationType = "lead_needs_attention"

	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"

	RecipientAdmin RecipientType = "admin"
	RecipientUser  RecipientType = "user"
	RecipientTeam  RecipientType = "team"
)

// Notification is a fire-and-forget message to a human operator. The link to a
// lead lives inside Data (data.lead_id), not as a foreign key, so notifications
// survive lead deletion.
type Notification struct {
	ID            int64                `json:"id"`
	Type          NotificationType     `json:"type"`
	Title         string               `json:"title"`
	Message       string               `json:"message"`
	Priority      NotificationPriority `json:"priority"`
	Data          json.RawMessage      `json:"data,omitempty"`
	RecipientID   *int64               `json:"recipient_id,omitempty"`
	RecipientType RecipientType        `json:"recipient_type"`
	IsRead        bool                 `json:"is_read"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type NotificationFilter struct {
	IsRead        *bool
	RecipientType RecipientType
	Priority      NotificationPriority
	Type          NotificationType
}

type NotificationStats struct {
	Total      int64            `json:"total"`
	Unread     int64            `json:"unread"`
	Read       int64            `json:"read"`
	ByPriority map[string]int64 `json:"by_priority"`
}

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, filter NotificationFilter, page, limit int) ([]Notification, int64, error)
	MarkRead(ctx context.Context, id int64) (bool, error)
	MarkManyRead(ctx context.Context, ids []int64) (int64, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Stats(ctx context.Context, filter NotificationFilter) (*NotificationStats, error)
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
