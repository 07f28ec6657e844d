package scoring

import (
	"math"
	"testing"
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
)

func baseLead() domain.Lead {
	return domain.NewLead(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
}

func TestTier(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Lead)
		want   domain.Tier
	}{
		{
			name:   "empty lead is cold",
			mutate: nil,
			want:   domain.TierCold,
		},
		{
			name: "one criterion is cold",
			mutate: func(l *domain.Lead) {
				l.BudgetMax = 5_000_000
			},
			want: domain.TierCold,
		},
		{
			name: "money and urgency is warm",
			mutate: func(l *domain.Lead) {
				l.BudgetMax = 5_000_000
				l.Urgency = domain.UrgencyHigh
			},
			want: domain.TierWarm,
		},
		{
			name: "all three criteria is hot",
			mutate: func(l *domain.Lead) {
				l.Payment = domain.PaymentCash
				l.UrgencyDate = "завтра"
				l.Goal = domain.GoalResidence
				l.PropertyType = domain.PropertyApartment
			},
			want: domain.TierHot,
		},
		{
			name: "goal without property or district is not clarity",
			mutate: func(l *domain.Lead) {
				l.Payment = domain.PaymentCash
				l.Urgency = domain.UrgencyMedium
				l.Goal = domain.GoalResidence
			},
			want: domain.TierWarm,
		},
		{
			name: "district preference counts for clarity",
			mutate: func(l *domain.Lead) {
				l.BudgetMin = 3_000_000
				ready := true
				l.QuickDecisionReady = &ready
				l.Goal = domain.GoalLongInvestment
				l.PreferredLocations = []string{"Сириус"}
			},
			want: domain.TierHot,
		},
		{
			name: "low urgency does not count",
			mutate: func(l *domain.Lead) {
				l.BudgetMax = 4_000_000
				l.Urgency = domain.UrgencyLow
			},
			want: domain.TierCold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := baseLead()
			if tt.mutate != nil {
				tt.mutate(&lead)
			}
			if got := Tier(lead); got != tt.want {
				t.Errorf("Tier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldEscalate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Lead)
		want   bool
	}{
		{
			name: "hot tier escalates",
			mutate: func(l *domain.Lead) {
				l.Tier = domain.TierHot
			},
			want: true,
		},
		{
			name: "phone with agreed viewing escalates",
			mutate: func(l *domain.Lead) {
				l.Phone = "+79181234567"
				l.ViewingSlots = []time.Time{time.Now()}
			},
			want: true,
		},
		{
			name: "phone alone does not escalate",
			mutate: func(l *domain.Lead) {
				l.Phone = "+79181234567"
			},
			want: false,
		},
		{
			name: "presentation request escalates",
			mutate: func(l *domain.Lead) {
				l.Comments = "Запросил презентацию."
			},
			want: true,
		},
		{
			name: "many requirements escalate",
			mutate: func(l *domain.Lead) {
				l.Requirements = []string{"CRM интеграция", "WhatsApp", "Telegram", "Воронка продаж"}
			},
			want: true,
		},
		{
			name: "three requirements do not escalate",
			mutate: func(l *domain.Lead) {
				l.Requirements = []string{"CRM интеграция", "WhatsApp", "Telegram"}
			},
			want: false,
		},
		{
			name: "budget above threshold escalates",
			mutate: func(l *domain.Lead) {
				l.BudgetMax = 6_000_000
			},
			want: true,
		},
		{
			name: "budget at threshold does not escalate",
			mutate: func(l *domain.Lead) {
				l.BudgetMax = 5_000_000
			},
			want: false,
		},
		{
			name:   "empty lead does not escalate",
			mutate: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := baseLead()
			if tt.mutate != nil {
				tt.mutate(&lead)
			}
			if got := ShouldEscalate(lead, DefaultHighValueThreshold); got != tt.want {
				t.Errorf("ShouldEscalate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldEscalateCustomThreshold(t *testing.T) {
	lead := baseLead()
	lead.BudgetMax = 2_000_000

	if ShouldEscalate(lead, DefaultHighValueThreshold) {
		t.Error("budget below default threshold should not escalate")
	}
	if !ShouldEscalate(lead, 1_000_000) {
		t.Error("budget above custom threshold should escalate")
	}
}

func TestEscalationScore(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Lead)
		want   float64
	}{
		{"empty", nil, 0},
		{
			name:   "warm only",
			mutate: func(l *domain.Lead) { l.Tier = domain.TierWarm },
			want:   0.2,
		},
		{
			name: "hot with phone",
			mutate: func(l *domain.Lead) {
				l.Tier = domain.TierHot
				l.Phone = "+79181234567"
			},
			want: 0.6,
		},
		{
			name: "everything caps at one",
			mutate: func(l *domain.Lead) {
				l.Tier = domain.TierHot
				l.Phone = "+79181234567"
				l.BudgetMax = 10_000_000
				l.Urgency = domain.UrgencyHigh
			},
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := baseLead()
			if tt.mutate != nil {
				tt.mutate(&lead)
			}
			got := EscalationScore(lead, DefaultHighValueThreshold)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EscalationScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteness(t *testing.T) {
	lead := baseLead()
	if got := Completeness(lead); got != 0 {
		t.Errorf("Completeness(empty) = %v, want 0", got)
	}

	lead.Phone = "+79181234567"
	lead.Goal = domain.GoalResidence
	lead.BudgetMax = 5_000_000
	got := Completeness(lead)
	want := 4.0 / 20.0 // phone + goal + budget counted twice
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Completeness() = %v, want %v", got, want)
	}
}

func TestCompletenessMonotonic(t *testing.T) {
	lead := baseLead()
	prev := Completeness(lead)

	lead.Name = "Иван"
	if next := Completeness(lead); next <= prev {
		t.Errorf("Completeness should grow when a field is filled: %v -> %v", prev, next)
	}
}
