package entity

import (
	"context"
	"time"
)

type LeadSource string
type LeadStatus string

const (
	SourceWebForm     LeadSource = "web_form"
	SourceChatbot     LeadSource = "chatbot"
	SourcePhoneCall   LeadSource = "phone_call"
	SourceEmail       LeadSource = "email"
	SourceSocialMedia LeadSource = "social_media"
	SourceReferral    LeadSource = "referral"
	SourceOther       LeadSource = "other"

	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusQualified   LeadStatus = "qualified"
	StatusUnqualified LeadStatus = "unqualified"
	StatusConverted   LeadStatus = "converted"
	StatusLost        LeadStatus = "lost"
)

func (s LeadSource) Valid() bool {
	switch s {
	case SourceWebForm, SourceChatbot, SourcePhoneCall, SourceEmail,
		SourceSocialMedia, SourceReferral, SourceOther:
		return true
	}
	return false
}

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusUnqualified,
		StatusConverted, StatusLost:
		return true
	}
	return false
}

type Lead struct {
	ID        int64      `json:"id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	Source    LeadSource `json:"source"`
	Status    LeadStatus `json:"status"`
	Score     int        `json:"score"`
	Quality   *string    `json:"quality"` // nil until the lead has been scored
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Interaction is one recorded touchpoint with a lead. Rows are append-only.
type Interaction struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"lead_id"`
	Type      string    `json:"type"` // form_submission, email_open, page_view, ...
	Content   string    `json:"content,omitempty"`
	PageURL   string    `json:"page_url,omitempty"`
	Duration  int       `json:"duration,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const InteractionFormSubmission = "form_submission"

// LeadFilter carries the list filters. Zero values mean "not set";
// MinScore/MaxScore are pointers so a 0 bound still filters.
type LeadFilter struct {
	Status   LeadStatus
	Source   LeadSource
	MinScore *int
	MaxScore *int
}

type LeadSort struct {
	Field string // allow-listed by the repository
	Desc  bool
}

type LeadStats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"by_status"`
	BySource          map[string]int64 `json:"by_source"`
	RecentHighQuality []Lead           `json:"recent_high_quality"`
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	List(ctx context.Context, filter LeadFilter, sort LeadSort, page, limit int) ([]Lead, int64, error)
	ListAll(ctx context.Context) ([]Lead, error)
	UpdateScore(ctx context.Context, id int64, score int, quality string) error
	UpdateStatus(ctx context.Context, id int64, status LeadStatus, notes *string) (bool, error)
	Stats(ctx context.Context) (*LeadStats, error)
}

type InteractionRepositoryInterface interface {
	Create(ctx context.Context, interaction *Interaction) error
	ListByLeadID(ctx context.Context, leadID int64) ([]Interaction, error)
}
