package repositories

import (
	"context"
	"database/sql"
	"time"

	"greekgeeks/internal/platform/models"
)

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a pending request. A second request for the same user and organization
// yields ErrDuplicate.
func (r *RequestRepository) Create(ctx context.Context, req *models.MembershipRequest) error {
	req.ID = newID("req")
	req.CreatedAt = time.Now().Unix()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO membership_requests (id, organization_id, user_id, created_at)
		VALUES (?, ?, ?, ?)
	`, req.ID, req.OrganizationID, req.UserID, req.CreatedAt)
	return translate(err)
}

func scanRequest(s scanner) (*models.MembershipRequest, error) {
	var mr models.MembershipRequest
	if err := s.Scan(&mr.ID, &mr.OrganizationID, &mr.UserID, &mr.CreatedAt); err != nil {
		return nil, err
	}
	return &mr, nil
}

func (r *RequestRepository) List(ctx context.Context, orgID string) ([]*models.MembershipRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organization_id, user_id, created_at
		FROM membership_requests WHERE organization_id = ? ORDER BY created_at, id
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []*models.MembershipRequest{}
	for rows.Next() {
		mr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, mr)
	}
	return requests, rows.Err()
}

func getRequest(ctx context.Context, q queryer, orgID, id string) (*models.MembershipRequest, error) {
	mr, err := scanRequest(q.QueryRowContext(ctx, `
		SELECT id, organization_id, user_id, created_at
		FROM membership_requests WHERE organization_id = ? AND id = ?
	`, orgID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return mr, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, orgID, id string) (*models.MembershipRequest, error) {
	return getRequest(ctx, r.db, orgID, id)
}

func (r *RequestRepository) Delete(ctx context.Context, orgID, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM membership_requests WHERE organization_id = ? AND id = ?`, orgID, id))
}

// Accept adds the requesting user to the organization as a member and deletes the request,
// both in one transaction. If the request is gone by the time the transaction runs, nothing
// changes and ErrNotFound is returned.
func (r *RequestRepository) Accept(ctx context.Context, orgID, id string) (*models.MembershipRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	mr, err := getRequest(ctx, tx, orgID, id)
	if err != nil {
		return nil, err
	}
	if mr == nil {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO organization_members (organization_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
	`, mr.OrganizationID, mr.UserID, models.RoleMember, time.Now().Unix()); err != nil {
		return nil, err
	}

	if err := expectOneRow(tx.ExecContext(ctx, `DELETE FROM membership_requests WHERE id = ?`, mr.ID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return mr, nil
}
