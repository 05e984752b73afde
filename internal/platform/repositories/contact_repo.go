package repositories

import (
	"context"
	"database/sql"
	"time"

	"greekgeeks/internal/platform/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts contact. When primary is non-nil it is inserted as the contact's first
// method and set as its primary contact method in the same transaction.
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact, primary *models.ContactMethod) error {
	now := time.Now().Unix()
	contact.ID = newID("con")
	contact.CreatedAt = now
	contact.UpdatedAt = now
	contact.PrimaryContactMethodID = nil

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contacts (id, organization_id, created_by, first_name, last_name, rank_id, primary_contact_method_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
	`, contact.ID, contact.OrganizationID, contact.CreatedBy, contact.FirstName, contact.LastName, contact.RankID, contact.CreatedAt, contact.UpdatedAt); err != nil {
		return translate(err)
	}

	if primary != nil {
		primary.ContactID = contact.ID
		if err := insertMethod(ctx, tx, primary); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE contacts SET primary_contact_method_id = ? WHERE id = ?`, primary.ID, contact.ID); err != nil {
			return err
		}
		contact.PrimaryContactMethodID = &primary.ID
		contact.ContactMethods = []*models.ContactMethod{primary}
	}

	return tx.Commit()
}

const contactColumns = `id, organization_id, created_by, first_name, last_name, rank_id, primary_contact_method_id, created_at, updated_at`

func scanContact(s scanner) (*models.Contact, error) {
	var c models.Contact
	var createdBy, rankID, primaryID sql.NullString
	err := s.Scan(&c.ID, &c.OrganizationID, &createdBy, &c.FirstName, &c.LastName, &rankID, &primaryID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = nullString(createdBy)
	c.RankID = nullString(rankID)
	c.PrimaryContactMethodID = nullString(primaryID)
	return &c, nil
}

func (r *ContactRepository) List(ctx context.Context, orgID string) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE organization_id = ?
		ORDER BY last_name, first_name, id
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetByID looks the contact up within orgID only. Contacts of other organizations are not found.
func (r *ContactRepository) GetByID(ctx context.Context, orgID, id string) (*models.Contact, error) {
	c, err := scanContact(r.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+` FROM contacts WHERE organization_id = ? AND id = ?
	`, orgID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Update writes the editable fields: names, rank and primary contact method.
func (r *ContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	contact.UpdatedAt = time.Now().Unix()
	return expectOneRow(r.db.ExecContext(ctx, `
		UPDATE contacts SET first_name = ?, last_name = ?, rank_id = ?, primary_contact_method_id = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`, contact.FirstName, contact.LastName, contact.RankID, contact.PrimaryContactMethodID, contact.UpdatedAt, contact.OrganizationID, contact.ID))
}

func (r *ContactRepository) Delete(ctx context.Context, orgID, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM contacts WHERE organization_id = ? AND id = ?`, orgID, id))
}

func insertMethod(ctx context.Context, q queryer, method *models.ContactMethod) error {
	method.ID = newID("cm")
	method.CreatedAt = time.Now().Unix()
	_, err := q.ExecContext(ctx, `
		INSERT INTO contact_methods (id, contact_id, medium, value, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, method.ID, method.ContactID, method.Medium, method.Value, method.CreatedAt)
	return translate(err)
}

func (r *ContactRepository) AddMethod(ctx context.Context, method *models.ContactMethod) error {
	return insertMethod(ctx, r.db, method)
}

// GetMethod looks the method up within contactID only.
func (r *ContactRepository) GetMethod(ctx context.Context, contactID, id string) (*models.ContactMethod, error) {
	var m models.ContactMethod
	err := r.db.QueryRowContext(ctx, `
		SELECT id, contact_id, medium, value, created_at FROM contact_methods
		WHERE contact_id = ? AND id = ?
	`, contactID, id).Scan(&m.ID, &m.ContactID, &m.Medium, &m.Value, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *ContactRepository) ListMethods(ctx context.Context, contactID string) ([]*models.ContactMethod, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contact_id, medium, value, created_at FROM contact_methods
		WHERE contact_id = ? ORDER BY created_at, id
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	methods := []*models.ContactMethod{}
	for rows.Next() {
		var m models.ContactMethod
		if err := rows.Scan(&m.ID, &m.ContactID, &m.Medium, &m.Value, &m.CreatedAt); err != nil {
			return nil, err
		}
		methods = append(methods, &m)
	}
	return methods, rows.Err()
}

// DeleteMethod removes the method; a contact that used it as primary has the reference cleared.
func (r *ContactRepository) DeleteMethod(ctx context.Context, contactID, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM contact_methods WHERE contact_id = ? AND id = ?`, contactID, id))
}

func (r *ContactRepository) CreateNote(ctx context.Context, note *models.ContactNote) error {
	note.ID = newID("note")
	note.CreatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contact_notes (id, contact_id, created_by, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, note.ID, note.ContactID, note.CreatedBy, note.Body, note.CreatedAt)
	return translate(err)
}

func (r *ContactRepository) ListNotes(ctx context.Context, contactID string) ([]*models.ContactNote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, contact_id, created_by, body, created_at FROM contact_notes
		WHERE contact_id = ? ORDER BY created_at, id
	`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []*models.ContactNote{}
	for rows.Next() {
		var n models.ContactNote
		var createdBy sql.NullString
		if err := rows.Scan(&n.ID, &n.ContactID, &createdBy, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.CreatedBy = nullString(createdBy)
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (r *ContactRepository) DeleteNote(ctx context.Context, contactID, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM contact_notes WHERE contact_id = ? AND id = ?`, contactID, id))
}
