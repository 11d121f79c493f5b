package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultkeeper/internal/common"
	"github.com/dmitrijs2005/vaultkeeper/internal/dbx"
)

// PostgresRepository keeps refresh tokens in the refresh_tokens table over
// dbx.DBTX (a *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, t.Token, t.UserID, t.Expires); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Consume deletes and returns the row in one statement, so two concurrent
// exchanges of the same token cannot both succeed.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (RefreshToken, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1
		RETURNING user_id, expires_at
	`
	t := RefreshToken{Token: token}
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&t.UserID, &t.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RefreshToken{}, common.ErrNotFound
		}
		return RefreshToken{}, fmt.Errorf("consume refresh token: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return res.RowsAffected()
}
