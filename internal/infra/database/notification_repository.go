package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/edumax/leads-service/internal/entity"
)

const notificationColumns = `id, type, title, message, priority, data, recipient_id, recipient_type, is_read, created_at, updated_at`

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (type, title, message, priority, data, recipient_id, recipient_type, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	var data interface{}
	if len(n.Data) > 0 {
		data = []byte(n.Data)
	}

	err := conn(ctx, r.DB).QueryRowContext(
		ctx,
		query,
		n.Type,
		n.Title,
		n.Message,
		n.Priority,
		data,
		n.RecipientID,
		n.RecipientType,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func buildNotificationWhere(f entity.NotificationFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(cond string, v interface{}) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(cond, len(args)))
	}

	if f.IsRead != nil {
		add("is_read = $%d", *f.IsRead)
	}
	if f.RecipientType != "" {
		add("recipient_type = $%d", f.RecipientType)
	}
	if f.Priority != "" {
		add("priority = $%d", f.Priority)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *NotificationRepository) List(ctx context.Context, filter entity.NotificationFilter, page, limit int) ([]entity.Notification, int64, error) {
	where, args := buildNotificationWhere(filter)

	var total int64
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM notifications%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		notificationColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []entity.Notification{}
	for rows.Next() {
		var n entity.Notification
		var data []byte
		var recipientID sql.NullInt64
		err := rows.Scan(
			&n.ID, &n.Type, &n.Title, &n.Message, &n.Priority, &data,
			&recipientID, &n.RecipientType, &n.IsRead, &n.CreatedAt, &n.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		n.Data = data
		if recipientID.Valid {
			n.RecipientID = &recipientID.Int64
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead is idempotent: marking an already-read notification again still
// reports true. Only a missing id reports false.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE notifications SET is_read = true, updated_at = NOW() WHERE id = $1`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *NotificationRepository) MarkManyRead(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `UPDATE notifications SET is_read = true, updated_at = NOW() WHERE id = ANY($1)`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete notification: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *NotificationRepository) Stats(ctx context.Context, filter entity.NotificationFilter) (*entity.NotificationStats, error) {
	where, args := buildNotificationWhere(filter)

	stats := &entity.NotificationStats{ByPriority: make(map[string]int64)}

	query := `SELECT priority, is_read, COUNT(*) FROM notifications` + where + ` GROUP BY priority, is_read`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("notification stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var priority string
		var isRead bool
		var count int64
		if err := rows.Scan(&priority, &isRead, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByPriority[priority] += count
		if isRead {
			stats.Read += count
		} else {
			stats.Unread += count
		}
	}
	return stats, rows.Err()
}

// DeleteReadOlderThan is the retention sweep: read notifications past the
// cutoff are removed for good.
func (r *NotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read = true AND created_at < $1`

	res, err := conn(ctx, r.DB).ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
