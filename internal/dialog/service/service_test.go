package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/internal/dialog/extract"
	"sochi_assistant_backend/internal/dialog/session"
	"sochi_assistant_backend/internal/events"
	"sochi_assistant_backend/platform/apperr"
	"sochi_assistant_backend/platform/logger"
)

type testConfig struct{}

func (testConfig) GetSessionTTL() time.Duration { return 24 * time.Hour }
func (testConfig) GetHighValueThreshold() int64 { return 5_000_000 }
func (testConfig) GetUSDRate() int64            { return 90 }

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeStore struct {
	mu    sync.Mutex
	leads map[string]domain.Lead
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[string]domain.Lead)}
}

func (s *fakeStore) UpsertLead(_ context.Context, key string, lead domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[key] = lead.Clone()
	return nil
}

func (s *fakeStore) GetLead(_ context.Context, key string) (domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[key]
	if !ok {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	return lead.Clone(), nil
}

func (s *fakeStore) ListByTier(_ context.Context, tier domain.Tier, _ int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key, lead := range s.leads {
		if lead.Tier == tier {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// recordingScheduler captures reminder scheduling calls.
type recordingScheduler struct {
	followUps []string
	viewings  []string
	cancels   []string
}

func (r *recordingScheduler) ScheduleFollowUps(_ context.Context, key string, _ domain.Lead) error {
	r.followUps = append(r.followUps, key)
	return nil
}

func (r *recordingScheduler) ScheduleViewingReminders(_ context.Context, key string, _ domain.Lead) error {
	r.viewings = append(r.viewings, key)
	return nil
}

func (r *recordingScheduler) CancelFollowUps(_ context.Context, key string) error {
	r.cancels = append(r.cancels, key)
	return nil
}

func newTestService(bus events.Bus, store LeadStore) *Service {
	log := logger.New("development")
	registry := session.NewRegistry(24 * time.Hour)
	extractor := extract.New(90)
	return New(registry, extractor, store, nil, bus, testConfig{}, log)
}

func turn(t *testing.T, svc *Service, message string) TurnResult {
	t.Helper()
	result, err := svc.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: message,
	})
	if err != nil {
		t.Fatalf("ProcessTurn(%q): %v", message, err)
	}
	return result
}

func TestProcessTurnRequiresUserID(t *testing.T) {
	svc := newTestService(nil, nil)
	_, err := svc.ProcessTurn(context.Background(), TurnInput{Message: "привет"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestFullFunnelConversation(t *testing.T) {
	svc := newTestService(nil, nil)

	steps := []struct {
		message   string
		wantStage domain.Stage
	}{
		{"Привет", domain.StageGreeting},
		{"Ищу недвижимость для себя, я из Волгодонска", domain.StageLocation},
		{"Хочу купить для проживания, переезд планируем всей семьей", domain.StageGoal},
		{"Скорее всего возьму ипотеку в сбере", domain.StagePayment},
		{"Смотрю на Сириус или Адлер, хочется квартиру с видом на море", domain.StageRequirements},
		{"Бюджет до 9 млн", domain.StageBudget},
		{"Прилетаю завтра, нужно срочно", domain.StageUrgency},
		{"Покупаю в Сочи первый раз", domain.StageExperience},
		{"Готов на показ, давайте договариваемся", domain.StageAction},
	}

	var last TurnResult
	for i, step := range steps {
		last = turn(t, svc, step.message)
		if last.Stage != step.wantStage {
			t.Fatalf("step %d (%q): stage = %q, want %q", i, step.message, last.Stage, step.wantStage)
		}
	}

	if last.Lead.HomeCity == "" {
		t.Error("home city should be captured")
	}
	if last.Lead.Goal != domain.GoalResidence {
		t.Errorf("Goal = %q, want residence", last.Lead.Goal)
	}
	if last.Lead.Payment != domain.PaymentBankTransfer {
		t.Errorf("Payment = %q, want bank transfer", last.Lead.Payment)
	}
	if last.Lead.BudgetMax != 9_000_000 {
		t.Errorf("BudgetMax = %d, want 9000000", last.Lead.BudgetMax)
	}
	if last.Tier != domain.TierHot {
		t.Errorf("Tier = %q, want hot", last.Tier)
	}
	if !last.Escalate {
		t.Error("hot lead above threshold should escalate")
	}
}

func TestStageNeverRegresses(t *testing.T) {
	svc := newTestService(nil, nil)

	turn(t, svc, "я из Москвы, интересуют инвестиции")
	turn(t, svc, "цель — сдавать в аренду")
	turn(t, svc, "оплата наличными")
	result := turn(t, svc, "что дальше?")
	if result.Stage != domain.StageRequirements {
		t.Fatalf("setup stage = %q, want requirements", result.Stage)
	}

	// Greeting words must not pull the funnel backwards.
	result = turn(t, svc, "Привет! Начнем сначала")
	if result.Stage != domain.StageRequirements {
		t.Errorf("stage after greeting = %q, want requirements kept", result.Stage)
	}
}

func TestQuestionsNotRepeatedAcrossTurns(t *testing.T) {
	svc := newTestService(nil, nil)

	first := turn(t, svc, "Привет")
	if len(first.NextQuestions) == 0 {
		t.Fatal("greeting should produce questions")
	}

	second := turn(t, svc, "Ну привет")
	for _, q := range second.NextQuestions {
		for _, asked := range first.NextQuestions {
			if q == asked {
				t.Errorf("question %q repeated on second turn", q)
			}
		}
	}

	// Third greeting turn: primaries and alternatives are exhausted.
	third := turn(t, svc, "И снова привет")
	if len(third.NextQuestions) != 0 {
		t.Errorf("NextQuestions = %v, want none once exhausted", third.NextQuestions)
	}
}

func TestAskedQuestionsTrackedOnLead(t *testing.T) {
	svc := newTestService(nil, nil)
	result := turn(t, svc, "Привет")

	if len(result.Lead.AskedQuestions) != len(result.NextQuestions) {
		t.Errorf("AskedQuestions = %v, want same as NextQuestions %v", result.Lead.AskedQuestions, result.NextQuestions)
	}
	if result.Lead.LastQuestion != result.NextQuestions[0] {
		t.Errorf("LastQuestion = %q, want %q", result.Lead.LastQuestion, result.NextQuestions[0])
	}
}

func TestNameComesFromProfileNotMessage(t *testing.T) {
	svc := newTestService(nil, nil)

	result, err := svc.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: "Красная Поляна интересует",
		Name:    "Иван",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Lead.Name != "Иван" {
		t.Errorf("Name = %q, want profile name", result.Lead.Name)
	}

	// A later profile name must not overwrite the stored one.
	result, err = svc.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: "еще вопрос",
		Name:    "Ваня",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Lead.Name != "Иван" {
		t.Errorf("Name = %q, want first profile name kept", result.Lead.Name)
	}
}

func TestHandleFillsFromProfileOnce(t *testing.T) {
	svc := newTestService(nil, nil)

	result, err := svc.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: "Красная Поляна интересует",
		Handle:  "@ivan_sochi",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Lead.Handle != "@ivan_sochi" {
		t.Errorf("Handle = %q, want profile handle", result.Lead.Handle)
	}

	result, err = svc.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: "еще вопрос",
		Handle:  "@ivan_new",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Lead.Handle != "@ivan_sochi" {
		t.Errorf("Handle = %q, want first handle kept", result.Lead.Handle)
	}
}

func TestGroupChatSessionsAreIsolated(t *testing.T) {
	svc := newTestService(nil, nil)

	private, err := svc.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: "до 5 млн",
	})
	if err != nil {
		t.Fatal(err)
	}

	group, err := svc.ProcessTurn(context.Background(), TurnInput{
		ChatID:    "chat9",
		UserID:    "100",
		GroupChat: true,
		Message:   "привет",
	})
	if err != nil {
		t.Fatal(err)
	}

	if private.SessionKey == group.SessionKey {
		t.Error("group and private chats must use different session keys")
	}
	if group.Lead.BudgetMax != 0 {
		t.Error("group session should not see private session data")
	}
}

func TestEventsPublished(t *testing.T) {
	bus := &recordingBus{}
	svc := newTestService(bus, nil)

	turn(t, svc, "я из Москвы, интересуют инвестиции")

	if got := bus.named("dialog.turn.processed"); len(got) != 1 {
		t.Errorf("turn.processed events = %d, want 1", len(got))
	}
	stageEvents := bus.named("dialog.stage.changed")
	if len(stageEvents) != 1 {
		t.Fatalf("stage.changed events = %d, want 1", len(stageEvents))
	}
	sc := stageEvents[0].(events.StageChanged)
	if sc.FromStage != string(domain.StageGreeting) || sc.ToStage != string(domain.StageLocation) {
		t.Errorf("stage change %s -> %s, want greeting -> location", sc.FromStage, sc.ToStage)
	}
}

func TestEscalationRaisedOnce(t *testing.T) {
	bus := &recordingBus{}
	svc := newTestService(bus, nil)

	turn(t, svc, "бюджет до 20 млн")
	turn(t, svc, "повторю, до 20 млн")

	raised := bus.named("dialog.escalation.raised")
	if len(raised) != 1 {
		t.Fatalf("escalation.raised events = %d, want exactly 1", len(raised))
	}
	e := raised[0].(events.EscalationRaised)
	if e.Reason == "" {
		t.Error("escalation event should carry a reason")
	}
}

func TestLeadRestoredFromStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(nil, store)

	first := turn(t, svc, "я из Казани, хочу для проживания")
	if first.Lead.HomeCity == "" {
		t.Fatal("setup: home city should be captured")
	}

	// Simulate a restart: fresh registry, same durable store.
	restarted := newTestService(nil, store)
	restored, err := restarted.ProcessTurn(context.Background(), TurnInput{
		UserID:  "100",
		Message: "продолжим",
	})
	if err != nil {
		t.Fatal(err)
	}
	if restored.Lead.HomeCity != first.Lead.HomeCity {
		t.Errorf("HomeCity = %q, want restored %q", restored.Lead.HomeCity, first.Lead.HomeCity)
	}
	if restored.PreviousStage != first.Stage {
		t.Errorf("PreviousStage = %q, want %q from store", restored.PreviousStage, first.Stage)
	}
}

func TestSessionLookup(t *testing.T) {
	svc := newTestService(nil, nil)
	result := turn(t, svc, "привет")

	snap, err := svc.Session(context.Background(), result.SessionKey)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if snap.Key != result.SessionKey {
		t.Errorf("snapshot key = %q, want %q", snap.Key, result.SessionKey)
	}

	if _, err := svc.Session(context.Background(), "user:missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing session err = %v, want not found", err)
	}
}

func TestReminderSequenceArmsOnlyAtActionStage(t *testing.T) {
	sched := &recordingScheduler{}
	svc := newTestService(nil, nil)
	svc.reminders = sched

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cold := domain.NewLead(now)
	svc.scheduleReminders(ctx, "user:1", cold, false)
	if len(sched.followUps) != 0 {
		t.Fatalf("greeting/cold lead armed %d follow-up sequences, want 0", len(sched.followUps))
	}

	early := domain.NewLead(now)
	early.Stage = domain.StageBudget
	early.Tier = domain.TierWarm
	svc.scheduleReminders(ctx, "user:1", early, false)
	if len(sched.followUps) != 0 {
		t.Fatalf("pre-action warm lead armed %d follow-up sequences, want 0", len(sched.followUps))
	}

	ready := domain.NewLead(now)
	ready.Stage = domain.StageAction
	ready.Tier = domain.TierWarm
	svc.scheduleReminders(ctx, "user:1", ready, false)
	if len(sched.followUps) != 1 {
		t.Fatalf("action/warm lead armed %d follow-up sequences, want 1", len(sched.followUps))
	}
}

func TestViewingRemindersForHotLeadWithSlot(t *testing.T) {
	sched := &recordingScheduler{}
	svc := newTestService(nil, nil)
	svc.reminders = sched

	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	lead := domain.NewLead(now)
	lead.Stage = domain.StageAction
	lead.Tier = domain.TierHot
	lead.ViewingSlots = []time.Time{now.Add(3 * time.Hour)}

	svc.scheduleReminders(ctx, "user:2", lead, true)
	if len(sched.viewings) != 1 {
		t.Errorf("viewing reminders scheduled %d times, want 1", len(sched.viewings))
	}
	if len(sched.cancels) != 1 {
		t.Errorf("escalated lead cancelled follow-ups %d times, want 1", len(sched.cancels))
	}
	if len(sched.followUps) != 0 {
		t.Errorf("escalated lead armed %d follow-up sequences, want 0", len(sched.followUps))
	}

	warm := domain.NewLead(now)
	warm.Stage = domain.StageAction
	warm.Tier = domain.TierWarm
	warm.ViewingSlots = []time.Time{now.Add(3 * time.Hour)}
	svc.scheduleReminders(ctx, "user:3", warm, false)
	if len(sched.viewings) != 1 {
		t.Errorf("warm lead scheduled viewing reminders, want hot only")
	}
}

func TestSweepExpiredPublishesSessionExpired(t *testing.T) {
	bus := &recordingBus{}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	registry := session.NewRegistry(time.Minute, session.WithClock(func() time.Time { return now }))
	svc := New(registry, extract.New(90), nil, nil, bus, testConfig{}, logger.New("development"))

	registry.GetOrCreate("user:9")

	now = now.Add(2 * time.Minute)
	if got := svc.SweepExpired(context.Background()); got != 1 {
		t.Fatalf("SweepExpired = %d, want 1", got)
	}

	expired := bus.named("dialog.session.expired")
	if len(expired) != 1 {
		t.Fatalf("published %d session expiry events, want 1", len(expired))
	}
	event := expired[0].(events.SessionExpired)
	if event.SessionKey != "user:9" {
		t.Errorf("SessionKey = %q, want %q", event.SessionKey, "user:9")
	}
	if event.Stage != string(domain.StageGreeting) {
		t.Errorf("Stage = %q, want %q", event.Stage, domain.StageGreeting)
	}
}

func TestLeadsByTierQueriesDurableStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(nil, store)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	hot := domain.NewLead(now)
	hot.Tier = domain.TierHot
	if err := store.UpsertLead(ctx, "user:1", hot); err != nil {
		t.Fatal(err)
	}
	cold := domain.NewLead(now)
	cold.Tier = domain.TierCold
	if err := store.UpsertLead(ctx, "user:2", cold); err != nil {
		t.Fatal(err)
	}

	keys, err := svc.LeadsByTier(ctx, domain.TierHot, 10)
	if err != nil {
		t.Fatalf("LeadsByTier: %v", err)
	}
	if len(keys) != 1 || keys[0] != "user:1" {
		t.Errorf("LeadsByTier(hot) = %v, want [user:1]", keys)
	}

	if _, err := svc.LeadsByTier(ctx, "lukewarm", 10); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("LeadsByTier(lukewarm) err = %v, want validation error", err)
	}
}
