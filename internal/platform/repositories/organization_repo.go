package repositories

import (
	"context"
	"database/sql"
	"time"

	"greekgeeks/internal/platform/models"
)

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// CreateWithAdmin inserts the organization and makes adminID its first admin in one transaction.
func (r *OrganizationRepository) CreateWithAdmin(ctx context.Context, org *models.Organization, adminID string) error {
	now := time.Now().Unix()
	if org.ID == "" {
		org.ID = newID("org")
	}
	org.CreatedAt = now
	org.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO organizations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, org.ID, org.Name, org.CreatedAt, org.UpdatedAt); err != nil {
		return translate(err)
	}

	if err := addMember(ctx, tx, org.ID, adminID, models.RoleAdmin, now); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func addMember(ctx context.Context, q queryer, orgID, userID, role string, joinedAt int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO organization_members (organization_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
	`, orgID, userID, role, joinedAt)
	return translate(err)
}

func (r *OrganizationRepository) AddMember(ctx context.Context, orgID, userID, role string) error {
	return addMember(ctx, r.db, orgID, userID, role, time.Now().Unix())
}

// GetMembership returns nil, nil when userID is not a member of orgID.
func (r *OrganizationRepository) GetMembership(ctx context.Context, orgID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, `
		SELECT organization_id, user_id, role, joined_at
		FROM organization_members WHERE organization_id = ? AND user_id = ?
	`, orgID, userID).Scan(&m.OrganizationID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

const memberColumns = `u.id, u.email, u.first_name, u.last_name, m.role, m.joined_at`

func scanMember(s scanner) (*models.Member, error) {
	var m models.Member
	if err := s.Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.Role, &m.JoinedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *OrganizationRepository) ListMembers(ctx context.Context, orgID string) ([]*models.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM organization_members m JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = ?
		ORDER BY m.joined_at, u.id
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*models.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *OrganizationRepository) GetMember(ctx context.Context, orgID, userID string) (*models.Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM organization_members m JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = ? AND m.user_id = ?
	`, orgID, userID)
	m, err := scanMember(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// UpdateMemberRole sets the member's role. Demoting the last admin yields ErrLastAdmin.
func (r *OrganizationRepository) UpdateMemberRole(ctx context.Context, orgID, userID, role string) error {
	return r.withAdminKept(ctx, orgID, userID, role != models.RoleAdmin, func(q queryer) error {
		return expectOneRow(q.ExecContext(ctx, `
			UPDATE organization_members SET role = ? WHERE organization_id = ? AND user_id = ?
		`, role, orgID, userID))
	})
}

// RemoveMember deletes only the membership row. The user account is untouched.
// Removing the last admin yields ErrLastAdmin.
func (r *OrganizationRepository) RemoveMember(ctx context.Context, orgID, userID string) error {
	return r.withAdminKept(ctx, orgID, userID, true, func(q queryer) error {
		return expectOneRow(q.ExecContext(ctx, `
			DELETE FROM organization_members WHERE organization_id = ? AND user_id = ?
		`, orgID, userID))
	})
}

// withAdminKept runs change in a transaction. When dropsAdmin is set and userID is
// the organization's only admin, change is not run.
func (r *OrganizationRepository) withAdminKept(ctx context.Context, orgID, userID string, dropsAdmin bool, change func(q queryer) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if dropsAdmin {
		var isAdmin bool
		var others int
		err := tx.QueryRowContext(ctx, `
			SELECT
				EXISTS (SELECT 1 FROM organization_members WHERE organization_id = ? AND user_id = ? AND role = ?),
				(SELECT COUNT(*) FROM organization_members WHERE organization_id = ? AND user_id != ? AND role = ?)
		`, orgID, userID, models.RoleAdmin, orgID, userID, models.RoleAdmin).Scan(&isAdmin, &others)
		if err != nil {
			return err
		}
		if isAdmin && others == 0 {
			return ErrLastAdmin
		}
	}

	if err := change(tx); err != nil {
		return err
	}
	return tx.Commit()
}
