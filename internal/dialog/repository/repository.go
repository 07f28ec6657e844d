// Package repository persists dialog leads. The canonical row is keyed
// by session, with the full lead kept as a JSONB document plus a few
// indexed columns for reporting queries.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/platform/apperr"
)

// Store is the persistence surface for leads; the Redis cache decorator
// wraps this same interface.
type Store interface {
	UpsertLead(ctx context.Context, sessionKey string, lead domain.Lead) error
	GetLead(ctx context.Context, sessionKey string) (domain.Lead, error)
}

// Lister is the reporting surface; only the durable repository
// implements it.
type Lister interface {
	ListByTier(ctx context.Context, tier domain.Tier, limit int) ([]string, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertLead writes the lead under its session key.
func (r *Repository) UpsertLead(ctx context.Context, sessionKey string, lead domain.Lead) error {
	payload, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO leads (session_key, lead_id, stage, tier, phone, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_key) DO UPDATE SET
			stage = EXCLUDED.stage,
			tier = EXCLUDED.tier,
			phone = EXCLUDED.phone,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, sessionKey, lead.ID, string(lead.Stage), string(lead.Tier), lead.Phone, payload, lead.CreatedAt, lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert lead %s: %w", sessionKey, err)
	}
	return nil
}

// GetLead loads the lead stored for a session key.
func (r *Repository) GetLead(ctx context.Context, sessionKey string) (domain.Lead, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT payload FROM leads WHERE session_key = $1
	`, sessionKey).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead %s: %w", sessionKey, err)
	}

	var lead domain.Lead
	if err := json.Unmarshal(payload, &lead); err != nil {
		return domain.Lead{}, fmt.Errorf("unmarshal lead %s: %w", sessionKey, err)
	}
	return lead, nil
}

// ListByTier returns session keys for leads in the given tier, most
// recently active first. Used by reporting.
func (r *Repository) ListByTier(ctx context.Context, tier domain.Tier, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT session_key FROM leads
		WHERE tier = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, string(tier), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
