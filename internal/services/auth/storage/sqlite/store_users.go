package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/scholarflow/internal/services/auth/storage"
	"github.com/louisbranch/scholarflow/internal/services/auth/user"
)

const userColumns = `id, orcid_id, name, email, access_token, refresh_token, token_expires_at, created_at, updated_at`

// PutUser inserts or updates a user keyed by id.
func (s *Store) PutUser(ctx context.Context, u user.User) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.ORCIDID) == "" {
		return fmt.Errorf("orcid id is required")
	}

	var expiresAt sql.NullInt64
	if u.TokenExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: toMillis(*u.TokenExpiresAt), Valid: true}
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			orcid_id = excluded.orcid_id,
			name = excluded.name,
			email = excluded.email,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at,
			updated_at = excluded.updated_at`,
		u.ID, u.ORCIDID, u.Name, u.Email, u.AccessToken, u.RefreshToken, expiresAt,
		toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches a user record by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	return s.getUserBy(ctx, "id", userID)
}

// GetUserByORCID fetches a user record by ORCID iD.
func (s *Store) GetUserByORCID(ctx context.Context, orcidID string) (user.User, error) {
	return s.getUserBy(ctx, "orcid_id", orcidID)
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (user.User, error) {
	if err := s.ensure(ctx); err != nil {
		return user.User{}, err
	}
	if strings.TrimSpace(value) == "" {
		return user.User{}, fmt.Errorf("%s is required", column)
	}

	var (
		u                    user.User
		expiresAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value,
	).Scan(&u.ID, &u.ORCIDID, &u.Name, &u.Email, &u.AccessToken, &u.RefreshToken, &expiresAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if expiresAt.Valid {
		expires := fromMillis(expiresAt.Int64)
		u.TokenExpiresAt = &expires
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}
