package repositories

import (
	"context"
	"database/sql"
	"time"

	"greekgeeks/internal/platform/models"
)

type RankRepository struct {
	db *sql.DB
}

func NewRankRepository(db *sql.DB) *RankRepository {
	return &RankRepository{db: db}
}

// Create inserts rank. A name already used in the organization yields ErrDuplicate.
func (r *RankRepository) Create(ctx context.Context, rank *models.ContactRank) error {
	now := time.Now().Unix()
	rank.ID = newID("rnk")
	rank.CreatedAt = now
	rank.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_ranks (id, organization_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rank.ID, rank.OrganizationID, rank.Name, rank.Description, rank.CreatedAt, rank.UpdatedAt)
	return translate(err)
}

func scanRank(s scanner) (*models.ContactRank, error) {
	var rk models.ContactRank
	if err := s.Scan(&rk.ID, &rk.OrganizationID, &rk.Name, &rk.Description, &rk.CreatedAt, &rk.UpdatedAt); err != nil {
		return nil, err
	}
	return &rk, nil
}

func (r *RankRepository) List(ctx context.Context, orgID string) ([]*models.ContactRank, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM contact_ranks WHERE organization_id = ? ORDER BY name
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranks := []*models.ContactRank{}
	for rows.Next() {
		rk, err := scanRank(rows)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, rk)
	}
	return ranks, rows.Err()
}

// GetByID looks the rank up within orgID only, so a rank of another organization is not found.
func (r *RankRepository) GetByID(ctx context.Context, orgID, id string) (*models.ContactRank, error) {
	rk, err := scanRank(r.db.QueryRowContext(ctx, `
		SELECT id, organization_id, name, description, created_at, updated_at
		FROM contact_ranks WHERE organization_id = ? AND id = ?
	`, orgID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rk, nil
}

func (r *RankRepository) Update(ctx context.Context, rank *models.ContactRank) error {
	rank.UpdatedAt = time.Now().Unix()
	return expectOneRow(r.db.ExecContext(ctx, `
		UPDATE contact_ranks SET name = ?, description = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`, rank.Name, rank.Description, rank.UpdatedAt, rank.OrganizationID, rank.ID))
}

func (r *RankRepository) Delete(ctx context.Context, orgID, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM contact_ranks WHERE organization_id = ? AND id = ?`, orgID, id))
}
