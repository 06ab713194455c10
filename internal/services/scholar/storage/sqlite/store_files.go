package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/scholarflow/internal/services/scholar/profile"
)

// PutFile records an uploaded file for a profile.
func (s *Store) PutFile(ctx context.Context, f profile.File) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("file id is required")
	}
	if strings.TrimSpace(f.ProfileID) == "" {
		return fmt.Errorf("profile id is required")
	}
	fileType := f.Type
	if fileType == "" {
		fileType = profile.FileOther
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO files (id, profile_id, filename, mimetype, size, url, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ProfileID, f.Filename, f.Mimetype, f.Size, f.URL, string(fileType), toMillis(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// ListFiles returns a profile's files, oldest first.
func (s *Store) ListFiles(ctx context.Context, profileID string) ([]profile.File, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, profile_id, filename, mimetype, size, url, type, created_at
		FROM files WHERE profile_id = ? ORDER BY created_at, id`, profileID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	out := []profile.File{}
	for rows.Next() {
		var (
			f         profile.File
			fileType  string
			createdAt int64
		)
		if err := rows.Scan(&f.ID, &f.ProfileID, &f.Filename, &f.Mimetype, &f.Size, &f.URL,
			&fileType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		if f.Type, err = profile.ParseFileType(fileType); err != nil {
			return nil, fmt.Errorf("decode file type: %w", err)
		}
		f.CreatedAt = fromMillis(createdAt)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return out, nil
}
