// Package service implements the dialog engine: one entry point per
// incoming message that extracts lead data, advances the funnel,
// re-qualifies the lead and picks the next questions to ask.
package service

import (
	"context"
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/internal/dialog/extract"
	"sochi_assistant_backend/internal/dialog/funnel"
	"sochi_assistant_backend/internal/dialog/questions"
	"sochi_assistant_backend/internal/dialog/scoring"
	"sochi_assistant_backend/internal/dialog/session"
	"sochi_assistant_backend/internal/events"
	"sochi_assistant_backend/platform/apperr"
	"sochi_assistant_backend/platform/logger"
)

// LeadStore persists leads across restarts. The in-memory registry is
// the source of truth during a session; the store is write-through.
type LeadStore interface {
	UpsertLead(ctx context.Context, sessionKey string, lead domain.Lead) error
	GetLead(ctx context.Context, sessionKey string) (domain.Lead, error)
}

// TierLister lists persisted leads by qualification tier. The durable
// repository implements it; pure in-memory stores need not.
type TierLister interface {
	ListByTier(ctx context.Context, tier domain.Tier, limit int) ([]string, error)
}

// ReminderScheduler plans follow-up nudges for a session.
type ReminderScheduler interface {
	ScheduleFollowUps(ctx context.Context, sessionKey string, lead domain.Lead) error
	ScheduleViewingReminders(ctx context.Context, sessionKey string, lead domain.Lead) error
	CancelFollowUps(ctx context.Context, sessionKey string) error
}

// Config is the narrow engine configuration surface.
type Config interface {
	GetSessionTTL() time.Duration
	GetHighValueThreshold() int64
	GetUSDRate() int64
}

// TurnInput is one incoming message from a conversation.
type TurnInput struct {
	ChatID    string
	UserID    string
	GroupChat bool
	Message   string
	// Name is the sender's profile name and Handle their messenger
	// username. Both fill the lead on first sight and are never parsed
	// out of the message text.
	Name   string
	Handle string
}

// TurnResult is everything the transport layer needs to respond.
type TurnResult struct {
	SessionKey      string
	Lead            domain.Lead
	PreviousStage   domain.Stage
	Stage           domain.Stage
	Tier            domain.Tier
	Escalate        bool
	EscalationScore float64
	Completeness    float64
	NextQuestions   []string
}

// Service is the dialog engine.
type Service struct {
	registry  *session.Registry
	extractor *extract.Extractor
	store     LeadStore
	reminders ReminderScheduler
	bus       events.Bus
	log       *logger.Logger
	threshold int64
}

// New creates the dialog engine. store and reminders may be nil in
// tests; the engine then runs purely in memory.
func New(registry *session.Registry, extractor *extract.Extractor, store LeadStore, reminders ReminderScheduler, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	return &Service{
		registry:  registry,
		extractor: extractor,
		store:     store,
		reminders: reminders,
		bus:       bus,
		log:       log,
		threshold: cfg.GetHighValueThreshold(),
	}
}

// ProcessTurn runs the full pipeline for one message.
func (s *Service) ProcessTurn(ctx context.Context, input TurnInput) (TurnResult, error) {
	if input.UserID == "" {
		return TurnResult{}, apperr.Validation("user id is required")
	}

	key := session.Key(input.ChatID, input.UserID, input.GroupChat)
	lead, existed := s.registry.GetOrCreate(key)

	// A fresh in-memory session may still have durable history from a
	// previous process lifetime.
	if !existed && s.store != nil {
		if stored, err := s.store.GetLead(ctx, key); err == nil {
			lead = stored
			s.registry.Update(key, lead)
		} else if !apperr.Is(err, apperr.KindNotFound) {
			s.log.DatabaseError("load lead", err)
		}
	}

	if input.Name != "" && lead.Name == "" {
		lead.Name = input.Name
	}
	if input.Handle != "" && lead.Handle == "" {
		lead.Handle = input.Handle
	}

	prevStage := lead.Stage
	prevTier := lead.Tier
	prevEscalate := scoring.ShouldEscalate(lead, s.threshold)

	updated := s.extractor.Apply(input.Message, lead)

	next := funnel.Next(input.Message, prevStage, updated)
	if funnel.Regressed(prevStage, next) {
		// The funnel is forward-only; a computed regression means a
		// guard bug, so keep the lead where it is and flag it.
		s.log.StageRegression(key, string(prevStage), string(next), updated.StageDataIndex())
		next = prevStage
	}
	updated.Stage = next
	updated.Tier = scoring.Tier(updated)

	escalate := scoring.ShouldEscalate(updated, s.threshold)
	nextQuestions := s.pickQuestions(key, next, &updated)

	s.registry.Update(key, updated)

	if s.store != nil {
		if err := s.store.UpsertLead(ctx, key, updated); err != nil {
			s.log.DatabaseError("upsert lead", err)
		}
	}

	s.publish(ctx, key, updated, input.Message, prevStage, prevTier, prevEscalate, escalate, nextQuestions)
	s.scheduleReminders(ctx, key, updated, escalate)

	s.log.DialogTurn(key, string(updated.Stage), string(updated.Tier), len(nextQuestions), escalate)

	return TurnResult{
		SessionKey:      key,
		Lead:            updated,
		PreviousStage:   prevStage,
		Stage:           updated.Stage,
		Tier:            updated.Tier,
		Escalate:        escalate,
		EscalationScore: scoring.EscalationScore(updated, s.threshold),
		Completeness:    scoring.Completeness(updated),
		NextQuestions:   nextQuestions,
	}, nil
}

// Session returns a snapshot of the conversation state.
func (s *Service) Session(ctx context.Context, key string) (session.Session, error) {
	if snap, ok := s.registry.Snapshot(key); ok {
		return snap, nil
	}

	// Fall back to the durable store for expired or relocated sessions.
	if s.store != nil {
		lead, err := s.store.GetLead(ctx, key)
		if err == nil {
			return session.Session{Key: key, Lead: lead, CreatedAt: lead.CreatedAt, LastActivity: lead.UpdatedAt}, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return session.Session{}, err
		}
	}
	return session.Session{}, apperr.NotFound("session not found")
}

// LeadsByTier returns session keys of persisted leads in the given
// tier, most recently active first.
func (s *Service) LeadsByTier(ctx context.Context, tier domain.Tier, limit int) ([]string, error) {
	switch tier {
	case domain.TierCold, domain.TierWarm, domain.TierHot:
	default:
		return nil, apperr.Validation("unknown tier")
	}
	lister, ok := s.store.(TierLister)
	if !ok {
		return nil, apperr.New(apperr.KindInternal, "lead listing requires the durable store")
	}
	return lister.ListByTier(ctx, tier, limit)
}

// Stats reports registry-wide session statistics.
func (s *Service) Stats() session.Stats {
	return s.registry.Stats()
}

// SweepExpired drops stale sessions, announces each eviction on the
// event bus and reports how many were removed.
func (s *Service) SweepExpired(ctx context.Context) int {
	dropped := s.registry.ExpireStale()
	for _, snap := range dropped {
		if s.bus != nil {
			s.bus.Publish(ctx, events.SessionExpired{
				BaseEvent:  events.NewBaseEvent(),
				SessionKey: snap.Key,
				LeadID:     snap.Lead.ID,
				Stage:      string(snap.Lead.Stage),
			})
		}
	}
	if len(dropped) > 0 {
		s.log.Info("expired sessions swept", "count", len(dropped))
	}
	return len(dropped)
}

// pickQuestions filters the stage's primary questions against the
// session history, falling back to alternatives when everything was
// already asked. Chosen questions are recorded immediately.
func (s *Service) pickQuestions(key string, stage domain.Stage, lead *domain.Lead) []string {
	primary := questions.ForStage(stage, *lead)
	picked := s.filterAsked(key, primary)

	if len(picked) == 0 && len(primary) > 0 {
		picked = s.filterAsked(key, questions.Alternatives(stage, *lead))
	}

	for _, q := range picked {
		s.registry.RecordQuestion(key, q)
		if !containsString(lead.AskedQuestions, q) {
			lead.AskedQuestions = append(lead.AskedQuestions, q)
		}
	}
	if len(picked) > 0 {
		lead.LastQuestion = picked[0]
	}
	return picked
}

func (s *Service) filterAsked(key string, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, q := range candidates {
		if !s.registry.WasAsked(key, q) {
			out = append(out, q)
		}
	}
	return out
}

func (s *Service) publish(ctx context.Context, key string, lead domain.Lead, message string, prevStage domain.Stage, prevTier domain.Tier, prevEscalate, escalate bool, nextQuestions []string) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(ctx, events.TurnProcessed{
		BaseEvent:    events.NewBaseEvent(),
		SessionKey:   key,
		LeadID:       lead.ID,
		Stage:        string(lead.Stage),
		Tier:         string(lead.Tier),
		Message:      message,
		Questions:    nextQuestions,
		Completeness: scoring.Completeness(lead),
	})

	if lead.Stage != prevStage {
		s.bus.Publish(ctx, events.StageChanged{
			BaseEvent:  events.NewBaseEvent(),
			SessionKey: key,
			LeadID:     lead.ID,
			FromStage:  string(prevStage),
			ToStage:    string(lead.Stage),
		})
	}

	if lead.Tier != prevTier {
		s.bus.Publish(ctx, events.QualificationChanged{
			BaseEvent:  events.NewBaseEvent(),
			SessionKey: key,
			LeadID:     lead.ID,
			FromTier:   string(prevTier),
			ToTier:     string(lead.Tier),
		})
	}

	if escalate && !prevEscalate {
		s.bus.Publish(ctx, events.EscalationRaised{
			BaseEvent:  events.NewBaseEvent(),
			SessionKey: key,
			LeadID:     lead.ID,
			Tier:       string(lead.Tier),
			Score:      scoring.EscalationScore(lead, s.threshold),
			Phone:      lead.Phone,
			Name:       lead.Name,
			Reason:     scoring.EscalationReason(lead, s.threshold),
		})
	}
}

// scheduleReminders refreshes the follow-up plan after every turn. An
// escalated conversation belongs to a human manager, so pending nudges
// are cancelled instead.
func (s *Service) scheduleReminders(ctx context.Context, key string, lead domain.Lead, escalate bool) {
	if s.reminders == nil {
		return
	}

	// Viewing reminders accompany an agreed slot regardless of
	// handover: the customer still has to show up.
	if lead.Tier == domain.TierHot && len(lead.ViewingSlots) > 0 {
		if err := s.reminders.ScheduleViewingReminders(ctx, key, lead); err != nil {
			s.log.Error("schedule viewing reminders failed", "session_key", key, "error", err)
		}
	}

	if escalate {
		if err := s.reminders.CancelFollowUps(ctx, key); err != nil {
			s.log.Error("cancel follow-ups failed", "session_key", key, "error", err)
		}
		return
	}

	// The nudge sequence is armed only once the funnel has reached the
	// action stage with a warm or hot lead; cold or early-stage
	// conversations are left alone.
	if lead.Stage != domain.StageAction || (lead.Tier != domain.TierWarm && lead.Tier != domain.TierHot) {
		return
	}

	if err := s.reminders.ScheduleFollowUps(ctx, key, lead); err != nil {
		s.log.Error("schedule follow-ups failed", "session_key", key, "error", err)
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
