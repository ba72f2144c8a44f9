package scoring

type scoreByIDRequest struct {
	LeadID string `json:"lead_id"`
}

type scoreByIDResponse struct {
	LeadID                 string   `json:"lead_id"`
	LeadScore              int      `json:"lead_score"`
	Quality                string   `json:"quality"`
	NeedsHumanIntervention bool     `json:"needs_human_intervention"`
	InteractionDetails     []string `json:"interaction_details"`
	TotalInteractions      int      `json:"total_interactions"`
	ScoredAt               string   `json:"scored_at"`
}

// ScoreResult is what callers get back. Only these fields are ever folded into
// lead/notification state; the result itself is never persisted.
type ScoreResult struct {
	Score                  int
	Quality                string
	NeedsHumanIntervention bool
	Details                []string
}
