// Package audit records administrative actions taken inside an organization.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"greekgeeks/internal/platform/models"
)

const (
	ActionMemberRemoved     = "member.removed"
	ActionMemberRoleChanged = "member.role_changed"
	ActionRankCreated       = "rank.created"
	ActionRankUpdated       = "rank.updated"
	ActionRankDeleted       = "rank.deleted"
	ActionRequestAccepted   = "request.accepted"
	ActionRequestRejected   = "request.rejected"
	ActionContactDeleted    = "contact.deleted"
)

// Entry is one audited action. IPAddress and UserAgent come from the HTTP request.
type Entry struct {
	OrganizationID string
	UserID         string
	Action         string
	ResourceType   string
	ResourceID     string
	Metadata       map[string]interface{}
	IPAddress      string
	UserAgent      string
}

type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

// Log stores e. Failures are logged and otherwise ignored; auditing never fails the
// action being audited.
func (l *Logger) Log(ctx context.Context, e Entry) {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO audit_logs (id, organization_id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = l.db.ExecContext(ctx, query, "audit_"+uuid.NewString(), e.OrganizationID, e.UserID, e.Action,
		e.ResourceType, e.ResourceID, string(metaJSON), e.IPAddress, e.UserAgent, time.Now().Unix())
	if err != nil {
		log.Error().Err(err).
			Str("action", e.Action).
			Str("organization_id", e.OrganizationID).
			Msg("failed to write audit log")
	}
}

// List returns the newest entries for an organization, at most limit of them.
func (l *Logger) List(ctx context.Context, orgID string, limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, organization_id, user_id, action, resource_type, resource_id, metadata, ip_address, user_agent, created_at
		FROM audit_logs WHERE organization_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.AuditLog{}
	for rows.Next() {
		var entry models.AuditLog
		var metaStr string
		if err := rows.Scan(&entry.ID, &entry.OrganizationID, &entry.UserID, &entry.Action, &entry.ResourceType,
			&entry.ResourceID, &metaStr, &entry.IPAddress, &entry.UserAgent, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metaStr), &entry.Metadata); err != nil {
			entry.Metadata = map[string]interface{}{}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
