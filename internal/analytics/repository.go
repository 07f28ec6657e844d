package analytics

import (
	"context"
	"encoding/json"
	"time"

	"sochi_assistant_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists dialog events into the analytics timeline table.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record appends one event to the session's timeline.
func (r *Repository) Record(ctx context.Context, rec EventRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "marshal event payload", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_events (id, session_key, lead_id, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.SessionKey, rec.LeadID, rec.EventType, payload, rec.OccurredAt,
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "insert dialog event", err)
	}
	return nil
}

// Timeline returns the session's events in chronological order.
func (r *Repository) Timeline(ctx context.Context, sessionKey string, limit int) ([]EventRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, session_key, lead_id, event_type, payload, occurred_at
		FROM dialog_events
		WHERE session_key = $1
		ORDER BY occurred_at ASC
		LIMIT $2`,
		sessionKey, limit,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "query dialog events", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var rec EventRecord
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.SessionKey, &rec.LeadID, &rec.EventType, &payload, &rec.OccurredAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan dialog event", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &rec.Payload); err != nil {
				return nil, apperr.Wrap(apperr.KindInternal, "decode event payload", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary aggregates the session's timeline into per-type counts plus
// the stage history in the order the funnel visited them.
func (r *Repository) Summary(ctx context.Context, sessionKey string) (Summary, error) {
	records, err := r.Timeline(ctx, sessionKey, 0)
	if err != nil {
		return Summary{}, err
	}
	if len(records) == 0 {
		return Summary{}, apperr.NotFound("no events recorded for session")
	}
	return summarize(sessionKey, records), nil
}

func summarize(sessionKey string, records []EventRecord) Summary {
	s := Summary{
		SessionKey:  sessionKey,
		EventCounts: make(map[string]int, 4),
		FirstEvent:  records[0].OccurredAt,
		LastEvent:   records[len(records)-1].OccurredAt,
	}

	for _, rec := range records {
		s.TotalEvents++
		s.EventCounts[rec.EventType]++

		switch rec.EventType {
		case "dialog.turn.processed":
			// The latest turn carries the current data-completeness
			// ratio of the lead.
			if ratio, ok := rec.Payload["completeness"].(float64); ok {
				s.Completeness = ratio
			}
		case "dialog.stage.changed":
			if stage, ok := rec.Payload["toStage"].(string); ok {
				s.StageHistory = append(s.StageHistory, stage)
			}
		case "dialog.qualification.changed":
			if tier, ok := rec.Payload["toTier"].(string); ok {
				s.CurrentTier = tier
			}
		case "dialog.escalation.raised":
			s.Escalated = true
			if score, ok := rec.Payload["score"].(float64); ok {
				s.EscalationScore = score
			}
		}
	}

	return s
}

// EventRecord is one row of the dialog_events timeline.
type EventRecord struct {
	ID         uuid.UUID      `json:"id"`
	SessionKey string         `json:"sessionKey"`
	LeadID     uuid.UUID      `json:"leadId"`
	EventType  string         `json:"eventType"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Summary is the aggregated view of one session's timeline.
type Summary struct {
	SessionKey      string         `json:"sessionKey"`
	TotalEvents     int            `json:"totalEvents"`
	EventCounts     map[string]int `json:"eventCounts"`
	StageHistory    []string       `json:"stageHistory,omitempty"`
	CurrentTier     string         `json:"currentTier,omitempty"`
	Completeness    float64        `json:"completeness"`
	Escalated       bool           `json:"escalated"`
	EscalationScore float64        `json:"escalationScore,omitempty"`
	FirstEvent      time.Time      `json:"firstEvent"`
	LastEvent       time.Time      `json:"lastEvent"`
}
