package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"clipline/internal/services"
)

// CreateShareToken mints a public playback token for a job. A nil expiry
// never expires; maxViews of zero is unlimited.
func (s *Store) CreateShareToken(ctx context.Context, jobID string, expiresAt *time.Time, maxViews int) (*ShareToken, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(raw)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO share_tokens (job_id, token, expires_at, max_views, views, created_at)
         VALUES (?, ?, ?, ?, 0, ?)`,
		jobID,
		token,
		nullableTime(expiresAt),
		maxViews,
		formatTimestamp(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert share token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &ShareToken{
		ID:        id,
		JobID:     jobID,
		Token:     token,
		ExpiresAt: expiresAt,
		MaxViews:  maxViews,
		CreatedAt: now,
	}, nil
}

// GetShareToken fetches a token record by its public value.
func (s *Store) GetShareToken(ctx context.Context, token string) (*ShareToken, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, job_id, token, expires_at, max_views, views, created_at
         FROM share_tokens WHERE token = ?`, token)
	record, err := scanShareToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "", "", "share token", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get share token: %w", err)
	}
	return record, nil
}

// RedeemShareToken atomically validates and consumes one view of the token.
// Expired or exhausted tokens return ErrNotFound so callers cannot
// distinguish them from tokens that never existed.
func (s *Store) RedeemShareToken(ctx context.Context, token string, now time.Time) (*ShareToken, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT id, job_id, token, expires_at, max_views, views, created_at
         FROM share_tokens WHERE token = ?`, token)
	record, err := scanShareToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "", "", "share token", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("redeem share token: %w", err)
	}
	if record.Expired(now) || record.Exhausted() {
		return nil, services.Wrap(services.ErrNotFound, "", "", "share token", nil)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE share_tokens SET views = views + 1 WHERE id = ?`, record.ID); err != nil {
		return nil, fmt.Errorf("increment views: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redeem: %w", err)
	}
	record.Views++
	return record, nil
}

func scanShareToken(scanner interface{ Scan(dest ...any) error }) (*ShareToken, error) {
	var (
		id         int64
		jobID      string
		token      string
		expiresRaw sql.NullString
		maxViews   int
		views      int
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &jobID, &token, &expiresRaw, &maxViews, &views, &createdRaw); err != nil {
		return nil, err
	}
	return &ShareToken{
		ID:        id,
		JobID:     jobID,
		Token:     token,
		ExpiresAt: parseTimestampPtr(expiresRaw),
		MaxViews:  maxViews,
		Views:     views,
		CreatedAt: parseTimestamp(createdRaw),
	}, nil
}
