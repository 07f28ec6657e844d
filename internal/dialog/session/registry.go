// Package session keeps per-conversation state in memory: the lead
// being qualified and the history of questions already asked. Sessions
// expire after a period of inactivity.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
)

// DefaultTTL is how long an inactive session survives.
const DefaultTTL = 24 * time.Hour

// Stop words ignored when comparing questions, so that small rewordings
// still count as the same question.
var questionStopWords = map[string]struct{}{
	"для": {}, "или": {}, "как": {}, "вы": {}, "сейчас": {}, "в": {}, "на": {}, "по": {},
}

// Key builds a stable session key for a conversation. Group chats get a
// per-user key inside the chat.
func Key(chatID, userID string, group bool) string {
	if group {
		return fmt.Sprintf("group:%s:user:%s", chatID, userID)
	}
	return fmt.Sprintf("user:%s", userID)
}

// Session is the state of one conversation.
type Session struct {
	Key             string
	Lead            domain.Lead
	QuestionHistory []string
	CreatedAt       time.Time
	LastActivity    time.Time

	asked map[string]struct{}
}

// Stats summarizes the registry for monitoring.
type Stats struct {
	TotalSessions          int       `json:"total_sessions"`
	AvgQuestionsPerSession float64   `json:"avg_questions_per_session"`
	OldestSession          time.Time `json:"oldest_session,omitzero"`
	NewestSession          time.Time `json:"newest_session,omitzero"`
}

// Registry is an in-memory session store, safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates a session registry. A non-positive ttl falls back
// to DefaultTTL.
func NewRegistry(ttl time.Duration, opts ...Option) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns a copy of the session's lead, creating the
// session on first contact. The second return value reports whether the
// session already existed.
func (r *Registry) GetOrCreate(key string) (domain.Lead, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if s, ok := r.sessions[key]; ok && !r.expired(s, now) {
		s.LastActivity = now
		return s.Lead.Clone(), true
	}

	lead := domain.NewLead(now)
	r.sessions[key] = &Session{
		Key:          key,
		Lead:         lead,
		CreatedAt:    now,
		LastActivity: now,
		asked:        make(map[string]struct{}),
	}
	return lead.Clone(), false
}

// Update stores the lead back into its session.
func (r *Registry) Update(key string, lead domain.Lead) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return
	}
	s.Lead = lead.Clone()
	s.LastActivity = r.now()
}

// WasAsked reports whether an equivalent question was already asked in
// this session.
func (r *Registry) WasAsked(key, question string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	_, asked := s.asked[normalizeQuestion(question)]
	return asked
}

// RecordQuestion marks a question as asked in this session.
func (r *Registry) RecordQuestion(key, question string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return
	}
	normalized := normalizeQuestion(question)
	if _, seen := s.asked[normalized]; seen {
		return
	}
	s.asked[normalized] = struct{}{}
	s.QuestionHistory = append(s.QuestionHistory, question)
	s.LastActivity = r.now()
}

// Snapshot returns a copy of the session, if it exists and is fresh.
func (r *Registry) Snapshot(key string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok || r.expired(s, r.now()) {
		return Session{}, false
	}

	out := Session{
		Key:          s.Key,
		Lead:         s.Lead.Clone(),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
	out.QuestionHistory = append(out.QuestionHistory, s.QuestionHistory...)
	return out, true
}

// ExpireStale removes sessions whose inactivity exceeded the TTL and
// returns snapshots of the dropped sessions so the caller can announce
// the evictions.
func (r *Registry) ExpireStale() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var dropped []Session
	for key, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, key)
			dropped = append(dropped, Session{
				Key:          s.Key,
				Lead:         s.Lead.Clone(),
				CreatedAt:    s.CreatedAt,
				LastActivity: s.LastActivity,
			})
		}
	}
	return dropped
}

// Stats reports aggregate numbers over live sessions.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{TotalSessions: len(r.sessions)}
	if stats.TotalSessions == 0 {
		return stats
	}

	totalQuestions := 0
	for _, s := range r.sessions {
		totalQuestions += len(s.QuestionHistory)
		if stats.OldestSession.IsZero() || s.CreatedAt.Before(stats.OldestSession) {
			stats.OldestSession = s.CreatedAt
		}
		if s.CreatedAt.After(stats.NewestSession) {
			stats.NewestSession = s.CreatedAt
		}
	}
	stats.AvgQuestionsPerSession = float64(totalQuestions) / float64(stats.TotalSessions)
	return stats
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return now.Sub(s.LastActivity) > r.ttl
}

// normalizeQuestion lowers the question, strips punctuation and drops
// stop words so reworded duplicates compare equal.
func normalizeQuestion(question string) string {
	lowered := strings.ToLower(strings.TrimSpace(question))
	words := strings.Fields(lowered)
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, "?!.,:;—-")
		if word == "" {
			continue
		}
		if _, skip := questionStopWords[word]; skip {
			continue
		}
		filtered = append(filtered, word)
	}
	return strings.Join(filtered, " ")
}
