package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/scholarflow/internal/services/auth/storage"
)

// PutState stores a pending sign-in state.
func (s *Store) PutState(ctx context.Context, state storage.SignInState) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(state.State) == "" {
		return fmt.Errorf("state is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO signin_states (state, code_verifier, next_path, expires_at) VALUES (?, ?, ?, ?)`,
		state.State, state.CodeVerifier, state.Next, toMillis(state.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put sign-in state: %w", err)
	}
	return nil
}

// TakeState loads and deletes a pending sign-in state in one transaction.
func (s *Store) TakeState(ctx context.Context, state string) (storage.SignInState, error) {
	if err := s.ensure(ctx); err != nil {
		return storage.SignInState{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.SignInState{}, fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var (
		stored    storage.SignInState
		expiresAt int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT state, code_verifier, next_path, expires_at FROM signin_states WHERE state = ?`, state,
	).Scan(&stored.State, &stored.CodeVerifier, &stored.Next, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SignInState{}, storage.ErrNotFound
		}
		return storage.SignInState{}, fmt.Errorf("get sign-in state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM signin_states WHERE state = ?`, state); err != nil {
		return storage.SignInState{}, fmt.Errorf("delete sign-in state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.SignInState{}, fmt.Errorf("commit sign-in state: %w", err)
	}
	stored.ExpiresAt = fromMillis(expiresAt)
	return stored, nil
}

// DeleteExpiredStates removes states that expired at or before now.
func (s *Store) DeleteExpiredStates(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensure(ctx); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM signin_states WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sign-in states: %w", err)
	}
	return result.RowsAffected()
}
