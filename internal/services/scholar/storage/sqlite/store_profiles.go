package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
	"github.com/louisbranch/scholarflow/internal/services/scholar/storage"
)

const profileColumns = `id, user_id, username, first_name, last_name, display_name, email, bio,
	profile_photo, current_position, current_institution, current_department, orcid_id,
	last_orcid_sync, website, template, visibility, custom_domain, created_at, updated_at, published_at`

// CreateProfile inserts a profile and all of its collections atomically.
func (s *Store) CreateProfile(ctx context.Context, p profile.Profile) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("profile id is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(p.Username) == "" {
		return fmt.Errorf("username is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Username, p.FirstName, p.LastName, p.DisplayName, p.Email, p.Bio,
		p.ProfilePhoto, p.CurrentPosition, p.CurrentInstitution, p.CurrentDepartment, p.ORCIDID,
		toNullMillis(p.LastORCIDSync), p.Website, p.Template.Storage(), p.Visibility.Storage(),
		p.CustomDomain, toMillis(p.CreatedAt), toMillis(p.UpdatedAt), toNullMillis(p.PublishedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	if err := insertCollections(ctx, tx, p, storage.Replace{}.All()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}
	return nil
}

// GetProfile loads a profile by id.
func (s *Store) GetProfile(ctx context.Context, profileID string) (profile.Profile, error) {
	return s.getProfileBy(ctx, "id", profileID)
}

// GetProfileByUserID loads the profile owned by a user.
func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (profile.Profile, error) {
	return s.getProfileBy(ctx, "user_id", userID)
}

// GetProfileByUsername loads a profile by its username.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (profile.Profile, error) {
	return s.getProfileBy(ctx, "username", username)
}

func (s *Store) getProfileBy(ctx context.Context, column, value string) (profile.Profile, error) {
	if err := s.ensure(ctx); err != nil {
		return profile.Profile{}, err
	}
	if strings.TrimSpace(value) == "" {
		return profile.Profile{}, fmt.Errorf("%s is required", column)
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE `+column+` = ?`, value)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, storage.ErrNotFound
		}
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if err := loadCollections(ctx, s.sqlDB, &p); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// UsernameExists reports whether a profile already uses username.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	if err := s.ensure(ctx); err != nil {
		return false, err
	}
	var exists int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE username = ?)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists == 1, nil
}

// UpdateProfile rewrites scalar fields and the selected collections.
func (s *Store) UpdateProfile(ctx context.Context, p profile.Profile, replace storage.Replace) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("profile id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE profiles SET
			first_name = ?, last_name = ?, display_name = ?, email = ?, bio = ?,
			profile_photo = ?, current_position = ?, current_institution = ?,
			current_department = ?, orcid_id = ?, last_orcid_sync = ?, website = ?,
			template = ?, visibility = ?, custom_domain = ?, updated_at = ?, published_at = ?
		WHERE id = ?`,
		p.FirstName, p.LastName, p.DisplayName, p.Email, p.Bio,
		p.ProfilePhoto, p.CurrentPosition, p.CurrentInstitution,
		p.CurrentDepartment, p.ORCIDID, toNullMillis(p.LastORCIDSync), p.Website,
		p.Template.Storage(), p.Visibility.Storage(), p.CustomDomain, toMillis(p.UpdatedAt),
		toNullMillis(p.PublishedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if replace.Any() {
		if err := deleteCollections(ctx, tx, p.ID, replace); err != nil {
			return err
		}
		if err := insertCollections(ctx, tx, p, replace); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile update: %w", err)
	}
	return nil
}

// ReplaceORCIDPublications swaps every ORCID-sourced publication for the
// given list and records the sync time. Manually entered publications are
// kept.
func (s *Store) ReplaceORCIDPublications(ctx context.Context, profileID string, publications []profile.Publication, syncedAt time.Time) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(profileID) == "" {
		return fmt.Errorf("profile id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE profiles SET last_orcid_sync = ?, updated_at = ? WHERE id = ?`,
		toMillis(syncedAt), toMillis(syncedAt), profileID,
	)
	if err != nil {
		return fmt.Errorf("update sync time: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM publications WHERE profile_id = ? AND orcid_work_id <> ''`, profileID,
	); err != nil {
		return fmt.Errorf("delete ORCID publications: %w", err)
	}

	var offset int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM publications WHERE profile_id = ?`, profileID,
	).Scan(&offset); err != nil {
		return fmt.Errorf("read publication order: %w", err)
	}
	if err := insertPublications(ctx, tx, profileID, publications, offset); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ORCID sync: %w", err)
	}
	return nil
}

// DeleteProfile removes a profile; collections and files cascade.
func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, profileID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (profile.Profile, error) {
	var (
		p                              profile.Profile
		lastSync, publishedAt          sql.NullInt64
		templateValue, visibilityValue string
		createdAt, updatedAt           int64
	)
	if err := row.Scan(
		&p.ID, &p.UserID, &p.Username, &p.FirstName, &p.LastName, &p.DisplayName, &p.Email, &p.Bio,
		&p.ProfilePhoto, &p.CurrentPosition, &p.CurrentInstitution, &p.CurrentDepartment, &p.ORCIDID,
		&lastSync, &p.Website, &templateValue, &visibilityValue, &p.CustomDomain,
		&createdAt, &updatedAt, &publishedAt,
	); err != nil {
		return profile.Profile{}, err
	}

	template, err := profile.ParseTemplate(templateValue)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("decode template: %w", err)
	}
	visibility, err := profile.ParseVisibility(visibilityValue)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("decode visibility: %w", err)
	}
	p.Template = template
	p.Visibility = visibility
	p.LastORCIDSync = fromNullMillis(lastSync)
	p.PublishedAt = fromNullMillis(publishedAt)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}
