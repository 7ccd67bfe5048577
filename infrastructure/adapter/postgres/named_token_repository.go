package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
)

// NamedTokenRepositoryAdapter stores named tokens in user_tokens, one row per
// (user_id, provider, purpose).
type NamedTokenRepositoryAdapter struct {
	db *sql.DB
}

var _ outbound.NamedTokenRepository = (*NamedTokenRepositoryAdapter)(nil)

func NewNamedTokenRepositoryAdapter(db *sql.DB) *NamedTokenRepositoryAdapter {
	return &NamedTokenRepositoryAdapter{db: db}
}

func (r *NamedTokenRepositoryAdapter) SetToken(ctx context.Context, token *entity.NamedToken) error {
	if token == nil {
		return fmt.Errorf("named token cannot be nil")
	}

	query := `
		INSERT INTO user_tokens (user_id, provider, purpose, value, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, provider, purpose)
		DO UPDATE SET value = EXCLUDED.value, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.ExecContext(ctx, query,
		token.Key.UserID,
		token.Key.Provider,
		token.Key.Purpose,
		token.Value,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set named token: %w", err)
	}
	return nil
}

func (r *NamedTokenRepositoryAdapter) GetToken(ctx context.Context, key entity.NamedTokenKey) (*entity.NamedToken, error) {
	query := `
		SELECT value, created_at, expires_at
		FROM user_tokens
		WHERE user_id = $1 AND provider = $2 AND purpose = $3
			AND (expires_at IS NULL OR expires_at > NOW())
	`

	token := entity.NamedToken{Key: key}
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, key.UserID, key.Provider, key.Purpose).Scan(
		&token.Value,
		&token.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrNamedTokenNotFound
		}
		return nil, fmt.Errorf("failed to get named token: %w", err)
	}
	if expiresAt.Valid {
		token.ExpiresAt = &expiresAt.Time
	}
	return &token, nil
}

// SwapToken is a single conditional UPDATE, so concurrent swaps of the same
// expected value serialize on the row lock and only one matches.
func (r *NamedTokenRepositoryAdapter) SwapToken(ctx context.Context, key entity.NamedTokenKey, expected string, replacement *entity.NamedToken) (bool, error) {
	query := `
		UPDATE user_tokens
		SET value = $5, created_at = $6, expires_at = $7
		WHERE user_id = $1 AND provider = $2 AND purpose = $3 AND value = $4
			AND (expires_at IS NULL OR expires_at > NOW())
	`
	result, err := r.db.ExecContext(ctx, query,
		key.UserID,
		key.Provider,
		key.Purpose,
		expected,
		replacement.Value,
		replacement.CreatedAt,
		replacement.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to swap named token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *NamedTokenRepositoryAdapter) RemoveToken(ctx context.Context, key entity.NamedTokenKey) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM user_tokens WHERE user_id = $1 AND provider = $2 AND purpose = $3`,
		key.UserID, key.Provider, key.Purpose,
	)
	if err != nil {
		return fmt.Errorf("failed to remove named token: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return outbound.ErrNamedTokenNotFound
	}
	return nil
}
