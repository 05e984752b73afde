package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"greekgeeks/internal/platform/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create stores a notification for userID with payload marshalled as JSON.
func (r *NotificationRepository) Create(ctx context.Context, userID, kind string, payload interface{}) (*models.Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	n := &models.Notification{
		ID:        newID("ntf"),
		UserID:    userID,
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().Unix(),
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Kind, string(n.Payload), n.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

func scanNotification(s scanner) (*models.Notification, error) {
	var n models.Notification
	var payload string
	if err := s.Scan(&n.ID, &n.UserID, &n.Kind, &payload, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Payload = json.RawMessage(payload)
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, payload, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) GetByID(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, kind, payload, created_at
		FROM notifications WHERE user_id = ? AND id = ?
	`, userID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ? AND id = ?`, userID, id))
}
