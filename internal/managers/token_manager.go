// Package managers contains the token manager, which owns the session token
// lifecycle: issuance, sliding-window verification, deletion and expiry.
package managers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"hoax-server/internal/schemas"
)

const (
	// TokenExpiry is the sliding validity window of a session token. A token
	// whose last use is older than this is invalid and gets purged.
	TokenExpiry = 7 * 24 * time.Hour

	// tokenBytes yields a 32 character hex token.
	tokenBytes = 16

	// createAttempts bounds the internal retry on a token collision.
	createAttempts = 3
)

// ErrTokenConflict signals a duplicate token value. It is retried internally
// by CreateToken and never surfaced to callers.
var ErrTokenConflict = errors.New("session token collision")

// TokenMgr defines the interface for session token management.
type TokenMgr interface {
	CreateToken(ctx context.Context, userID uuid.UUID) (string, error)
	VerifyToken(ctx context.Context, token string) (*schemas.User, error)
	DeleteToken(ctx context.Context, token string) error
	DeleteTokensForUser(ctx context.Context, userID uuid.UUID) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// TokenManager implements TokenMgr on top of the relational store.
// It is the sole mutator of last_used_at.
type TokenManager struct {
	databaseMgr DatabaseMgr
	now         func() time.Time
}

// NewTokenManager creates a new TokenManager backed by the given database manager.
func NewTokenManager(databaseMgr DatabaseMgr) *TokenManager {
	log.Info("Initializing token manager")
	return &TokenManager{
		databaseMgr: databaseMgr,
		now:         time.Now,
	}
}

// CreateToken generates a cryptographically random opaque token, persists it
// with the current timestamp and returns it. A duplicate-key failure is
// retried with a fresh token up to a small bound.
func (tm *TokenManager) CreateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	queryString := "INSERT INTO session_tokens (token, user_id, last_used_at) VALUES ($1, $2, $3)"

	for attempt := 0; attempt < createAttempts; attempt++ {
		token, err := generateOpaqueToken()
		if err != nil {
			return "", err
		}

		_, err = tm.databaseMgr.GetPool().Exec(ctx, queryString, token, userID, tm.now())
		if err == nil {
			return token, nil
		}

		if isUniqueViolation(err) {
			log.Warn("Session token collision, retrying with a fresh token")
			continue
		}

		return "", err
	}

	return "", ErrTokenConflict
}

// VerifyToken resolves a presented token to its owning user. An absent token
// returns (nil, nil). A token past the expiry window is deleted lazily and
// likewise returns (nil, nil). A live token has its last_used_at refreshed to
// now before the owner is returned, on every presentation regardless of route.
func (tm *TokenManager) VerifyToken(ctx context.Context, token string) (*schemas.User, error) {
	queryString := "SELECT t.user_id, t.last_used_at, u.username, u.email, u.inactive, u.image " +
		"FROM session_tokens t JOIN users u ON u.user_id = t.user_id WHERE t.token = $1"

	var userID uuid.UUID
	var lastUsedAt time.Time
	user := &schemas.User{}

	row := tm.databaseMgr.GetPool().QueryRow(ctx, queryString, token)
	if err := row.Scan(&userID, &lastUsedAt, &user.Username, &user.Email, &user.Inactive, &user.Image); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	now := tm.now()
	cutoff := now.Add(-TokenExpiry)

	if lastUsedAt.Before(cutoff) {
		// The delete is conditional on the stored timestamp so a concurrent
		// refresh of the same token is never clobbered.
		deleteString := "DELETE FROM session_tokens WHERE token = $1 AND last_used_at < $2"
		if _, err := tm.databaseMgr.GetPool().Exec(ctx, deleteString, token, cutoff); err != nil {
			return nil, err
		}
		return nil, nil
	}

	updateString := "UPDATE session_tokens SET last_used_at = $1 WHERE token = $2"
	if _, err := tm.databaseMgr.GetPool().Exec(ctx, updateString, now, token); err != nil {
		return nil, err
	}

	user.ID = &userID
	return user, nil
}

// DeleteToken removes the given token. Deleting an absent token is not an error.
func (tm *TokenManager) DeleteToken(ctx context.Context, token string) error {
	queryString := "DELETE FROM session_tokens WHERE token = $1"
	_, err := tm.databaseMgr.GetPool().Exec(ctx, queryString, token)
	return err
}

// DeleteTokensForUser removes every token owned by the given user.
func (tm *TokenManager) DeleteTokensForUser(ctx context.Context, userID uuid.UUID) error {
	queryString := "DELETE FROM session_tokens WHERE user_id = $1"
	_, err := tm.databaseMgr.GetPool().Exec(ctx, queryString, userID)
	return err
}

// CleanupExpired deletes every token past the expiry window and returns how
// many were removed. The lazy path in VerifyToken is the primary enforcement,
// this sweep collects tokens that were simply abandoned.
func (tm *TokenManager) CleanupExpired(ctx context.Context) (int64, error) {
	queryString := "DELETE FROM session_tokens WHERE last_used_at < $1"
	tag, err := tm.databaseMgr.GetPool().Exec(ctx, queryString, tm.now().Add(-TokenExpiry))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
