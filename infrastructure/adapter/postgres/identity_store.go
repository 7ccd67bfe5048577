package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/hotellisting/hotellisting-api/application/port/outbound"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/domain/valueobject"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"

	userNameConstraint = "users_normalized_user_name_key"
)

// IdentityStoreAdapter implements the identity store over the users, roles,
// user_roles and user_claims tables.
type IdentityStoreAdapter struct {
	db        *sql.DB
	passwords outbound.PasswordService
	policy    valueobject.PasswordPolicy
}

var _ outbound.IdentityStore = (*IdentityStoreAdapter)(nil)

func NewIdentityStoreAdapter(db *sql.DB, passwords outbound.PasswordService) *IdentityStoreAdapter {
	return &IdentityStoreAdapter{
		db:        db,
		passwords: passwords,
		policy:    valueobject.DefaultPasswordPolicy(),
	}
}

const userColumns = `id, first_name, last_name, email, user_name, password_hash, security_stamp, created_at, updated_at`

func scanUser(row *sql.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.UserName,
		&user.PasswordHash,
		&user.SecurityStamp,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *IdentityStoreAdapter) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

func (r *IdentityStoreAdapter) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE normalized_email = $1 ORDER BY created_at LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, entity.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *IdentityStoreAdapter) Create(ctx context.Context, user *entity.User, password string) ([]valueobject.IdentityError, error) {
	if errs := valueobject.CheckNewUser(user.Email, password, r.policy); len(errs) > 0 {
		return errs, nil
	}

	hash, err := r.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, normalized_email, user_name,
			normalized_user_name, password_hash, security_stamp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.NormalizedEmail(),
		user.UserName,
		strings.ToUpper(user.UserName),
		hash,
		user.SecurityStamp,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			if pqErr.Constraint == userNameConstraint {
				return []valueobject.IdentityError{valueobject.DuplicateUserName(user.UserName)}, nil
			}
			return nil, outbound.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = hash
	return nil, nil
}

func (r *IdentityStoreAdapter) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return outbound.ErrUserNotFound
	}
	return nil
}

func (r *IdentityStoreAdapter) CheckPassword(ctx context.Context, user *entity.User, password string) (bool, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = $1`, user.ID).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, outbound.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to load password hash: %w", err)
	}
	if password == "" {
		return false, nil
	}
	return r.passwords.VerifyPassword(password, hash)
}

func (r *IdentityStoreAdapter) UpdateSecurityStamp(ctx context.Context, user *entity.User) error {
	stamp := entity.NewSecurityStamp()
	now := time.Now()

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET security_stamp = $2, updated_at = $3 WHERE id = $1`,
		user.ID, stamp, now,
	)
	if err != nil {
		return fmt.Errorf("failed to update security stamp: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return outbound.ErrUserNotFound
	}

	user.SecurityStamp = stamp
	user.UpdatedAt = now
	return nil
}

func (r *IdentityStoreAdapter) AddToRole(ctx context.Context, user *entity.User, role string) error {
	var roleID string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM roles WHERE normalized_name = $1`, strings.ToUpper(role),
	).Scan(&roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return outbound.ErrRoleNotFound
		}
		return fmt.Errorf("failed to find role: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		user.ID, roleID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return outbound.ErrUserNotFound
		}
		return fmt.Errorf("failed to add user to role: %w", err)
	}
	return nil
}

func (r *IdentityStoreAdapter) GetRoles(ctx context.Context, user *entity.User) ([]string, error) {
	query := `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`
	rows, err := r.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return roles, nil
}

// AddClaim stores an extension claim for the user.
func (r *IdentityStoreAdapter) AddClaim(ctx context.Context, user *entity.User, claim entity.Claim) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_claims (user_id, claim_type, claim_value) VALUES ($1, $2, $3)`,
		user.ID, claim.Type, claim.Value,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return outbound.ErrUserNotFound
		}
		return fmt.Errorf("failed to add claim: %w", err)
	}
	return nil
}

func (r *IdentityStoreAdapter) GetClaims(ctx context.Context, user *entity.User) ([]entity.Claim, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT claim_type, claim_value FROM user_claims WHERE user_id = $1 ORDER BY id`,
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	defer rows.Close()

	claims := []entity.Claim{}
	for rows.Next() {
		var c entity.Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}
	return claims, nil
}
