package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/edumax/leads-service/internal/entity"
)

const leadColumns = `id, full_name, email, phone, source, status, score, quality, notes, created_at, updated_at`

// leadSortFields is the allow-list for ORDER BY. Anything else falls back to
// created_at so user input never reaches the SQL string.
var leadSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"score":      "score",
	"full_name":  "full_name",
	"email":      "email",
}

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (full_name, email, phone, source, status, score, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := conn(ctx, r.DB).QueryRowContext(
		ctx,
		query,
		lead.FullName,
		lead.Email,
		nullString(lead.Phone),
		lead.Source,
		lead.Status,
		lead.Score,
		nullString(lead.Notes),
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	var lead entity.Lead
	err := scanLead(conn(ctx, r.DB).QueryRowContext(ctx, query, id), &lead)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// buildLeadWhere turns the typed filter into a WHERE clause with positional
// args. Values only ever travel as parameters.
func buildLeadWhere(f entity.LeadFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(cond string, v interface{}) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Source != "" {
		add("source = $%d", f.Source)
	}
	if f.MinScore != nil {
		add("score >= $%d", *f.MinScore)
	}
	if f.MaxScore != nil {
		add("score <= $%d", *f.MaxScore)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter, sort entity.LeadSort, page, limit int) ([]entity.Lead, int64, error) {
	where, args := buildLeadWhere(filter)

	var total int64
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	orderBy, ok := leadSortFields[sort.Field]
	if !ok {
		orderBy = "created_at"
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		`SELECT %s FROM leads%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		leadColumns, where, orderBy, direction, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *LeadRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all leads: %w", err)
	}
	defer rows.Close()

	return collectLeads(rows)
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id int64, score int, quality string) error {
	query := `UPDATE leads SET score = $1, quality = $2, updated_at = NOW() WHERE id = $3`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query, score, quality, id)
	if err != nil {
		return fmt.Errorf("update lead score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id int64, status entity.LeadStatus, notes *string) (bool, error) {
	query := `
		UPDATE leads
		SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		WHERE id = $3
	`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query, status, notes, id)
	if err != nil {
		return false, fmt.Errorf("update lead status: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *LeadRepository) Stats(ctx context.Context) (*entity.LeadStats, error) {
	stats := &entity.LeadStats{
		ByStatus: make(map[string]int64),
		BySource: make(map[string]int64),
	}

	q := conn(ctx, r.DB)

	rows, err := q.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("lead stats by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srcRows, err := q.QueryContext(ctx, `SELECT source, COUNT(*) FROM leads GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("lead stats by source: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var source string
		var count int64
		if err := srcRows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats.BySource[source] = count
	}
	if err := srcRows.Err(); err != nil {
		return nil, err
	}

	recentRows, err := q.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE score >= 70 ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("recent high quality leads: %w", err)
	}
	defer recentRows.Close()

	recent, err := collectLeads(recentRows)
	if err != nil {
		return nil, err
	}
	stats.RecentHighQuality = recent

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner, lead *entity.Lead) error {
	var phone, quality, notes sql.NullString
	err := row.Scan(
		&lead.ID,
		&lead.FullName,
		&lead.Email,
		&phone,
		&lead.Source,
		&lead.Status,
		&lead.Score,
		&quality,
		&notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return err
	}
	lead.Phone = phone.String
	lead.Notes = notes.String
	if quality.Valid {
		lead.Quality = &quality.String
	}
	return nil
}

func collectLeads(rows *sql.Rows) ([]entity.Lead, error) {
	leads := []entity.Lead{}
	for rows.Next() {
		var lead entity.Lead
		if err := scanLead(rows, &lead); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
