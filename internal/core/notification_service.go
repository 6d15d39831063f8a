package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Mailer is the outbound email boundary. Implementations live in
// internal/mail; a log-only no-op is used when SMTP is not configured.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// NotificationService keeps the write-once audit trail of outbound email
// attempts. Rows are recorded whether or not the send succeeded; sent_at is
// only set on success.
type NotificationService interface {
	Record(ctx context.Context, recipient, subject, body, kind string, sentAt *time.Time) (*Notification, error)
	List(ctx context.Context, limit int) ([]Notification, error)
	// Notify sends via the mailer and records the attempt. The send error is
	// folded into the audit row, not returned: auxiliary side effects never
	// fail the triggering operation.
	Notify(ctx context.Context, mailer Mailer, recipient, subject, body, kind string) error
}

type notificationService struct {
	pool *pgxpool.Pool
}

func NewNotificationService(pool *pgxpool.Pool) NotificationService {
	return &notificationService{pool: pool}
}

func (s *notificationService) Record(ctx context.Context, recipient, subject, body, kind string, sentAt *time.Time) (*Notification, error) {
	var n Notification
	err := s.pool.QueryRow(ctx, `
		INSERT INTO notifications (recipient, subject, body, kind, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, recipient, subject, body, kind, sent_at, created_at`,
		recipient, subject, body, kind, sentAt,
	).Scan(&n.ID, &n.Recipient, &n.Subject, &n.Body, &n.Kind, &n.SentAt, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("record notification: %w", err)
	}
	return &n, nil
}

func (s *notificationService) List(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, recipient, subject, body, kind, sent_at, created_at
		FROM notifications
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notes []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Subject, &n.Body, &n.Kind, &n.SentAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (s *notificationService) Notify(ctx context.Context, mailer Mailer, recipient, subject, body, kind string) error {
	var sentAt *time.Time
	sendErr := mailer.Send(ctx, recipient, subject, body)
	if sendErr == nil {
		now := time.Now()
		sentAt = &now
	}

	if _, err := s.Record(ctx, recipient, subject, body, kind, sentAt); err != nil {
		return err
	}
	if sendErr != nil {
		return fmt.Errorf("send notification to %s: %w", recipient, sendErr)
	}
	return nil
}
