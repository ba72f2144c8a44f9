package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edumax/leads-service/internal/entity"
)

type InteractionRepository struct {
	DB *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(ctx context.Context, interaction *entity.Interaction) error {
	query := `
		INSERT INTO interactions (lead_id, type, content, page_url, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := conn(ctx, r.DB).QueryRowContext(
		ctx,
		query,
		interaction.LeadID,
		interaction.Type,
		nullString(interaction.Content),
		nullString(interaction.PageURL),
		interaction.Duration,
	).Scan(&interaction.ID, &interaction.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) ListByLeadID(ctx context.Context, leadID int64) ([]entity.Interaction, error) {
	query := `
		SELECT id, lead_id, type, content, page_url, duration, created_at
		FROM interactions
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	interactions := []entity.Interaction{}
	for rows.Next() {
		var it entity.Interaction
		var content, pageURL sql.NullString
		var duration sql.NullInt64
		if err := rows.Scan(&it.ID, &it.LeadID, &it.Type, &content, &pageURL, &duration, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Content = content.String
		it.PageURL = pageURL.String
		it.Duration = int(duration.Int64)
		interactions = append(interactions, it)
	}
	return interactions, rows.Err()
}
