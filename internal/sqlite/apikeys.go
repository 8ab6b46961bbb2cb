package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/joaodperes/stardust/internal/repository"
	"lukechampine.com/blake3"
)

// APIKeyRepository maps bearer tokens to player ids. Only token hashes are stored.
type APIKeyRepository struct {
	db *DB
}

// NewAPIKeyRepository creates a new API key repository.
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Add registers token for playerID.
func (r *APIKeyRepository) Add(ctx context.Context, token, playerID, description string) error {
	if token == "" || playerID == "" {
		return repository.ErrInvalidInput
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, player_id, created_at, description) VALUES (?, ?, ?, ?)`,
		HashToken(token), playerID, time.Now().UTC(), description,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("api key already registered: %w", repository.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to add api key: %w", err)
	}
	return nil
}

// ResolveTenant returns the player id owning token.
func (r *APIKeyRepository) ResolveTenant(ctx context.Context, token string) (string, error) {
	hash := HashToken(token)

	var playerID string
	err := r.db.QueryRowContext(ctx, `SELECT player_id FROM api_keys WHERE key_hash = ?`, hash).Scan(&playerID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && playerID == "") {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve api key: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, time.Now().UTC(), hash,
	); err != nil {
		return "", fmt.Errorf("failed to touch api key: %w", err)
	}
	return playerID, nil
}

// HashToken returns the hex blake3 digest stored for a token.
func HashToken(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
