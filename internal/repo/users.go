package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BootstrapAdmin seeds the default administrative credential. It is
// idempotent: an existing row with the same username is left untouched.
// The UNIQUE constraint on users.username is the second line of defense
// against a duplicate slipping in between the check and the insert.
//
// The password is stored as a bcrypt hash. The system this replaces
// compared passwords verbatim; credential rows written under that
// scheme will no longer validate.
func (r *repository) BootstrapAdmin(ctx context.Context, username, password string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, `SELECT id FROM users WHERE username = ? LIMIT 1`, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users(username, password, role) VALUES(?, ?, 'admin')`,
		username, string(hash)); err != nil {
		return fmt.Errorf("failed to insert admin user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit admin bootstrap: %w", err)
	}

	r.log.Info().Str("username", username).Msg("default admin credential created")
	return nil
}

// ValidateCredential reports whether an admin row with the given
// username exists and the password matches its stored hash.
func (r *repository) ValidateCredential(ctx context.Context, username, password string) (bool, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash,
		`SELECT password FROM users WHERE username = ? AND role = 'admin' LIMIT 1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up credential: %w", err)
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}
