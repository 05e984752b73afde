package repositories

import (
	"context"
	"database/sql"
	"time"

	"greekgeeks/internal/platform/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().Unix()
	if user.ID == "" {
		user.ID = newID("usr")
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, is_active, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Email, user.PasswordHash, user.IsActive, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)
	return translate(err)
}

const userColumns = `id, email, password_hash, is_active, first_name, last_name, created_at, updated_at`

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// UpdateProfile writes the editable profile fields only: names and password hash.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().Unix()
	return expectOneRow(r.db.ExecContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`, user.FirstName, user.LastName, user.PasswordHash, user.UpdatedAt, user.ID))
}

// Activate flips an inactive account to active. It returns ErrNotFound when the
// account does not exist or is already active, so activation happens at most once.
func (r *UserRepository) Activate(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `
		UPDATE users SET is_active = 1, updated_at = ? WHERE id = ? AND is_active = 0
	`, time.Now().Unix(), id))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return expectOneRow(r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id))
}
