// Package scoring qualifies a lead on three criteria: money, urgency,
// and clarity of the request. It also decides when a conversation must
// be handed over to a human manager.
package scoring

import (
	"strings"

	"sochi_assistant_backend/internal/dialog/domain"
)

// DefaultHighValueThreshold is the ruble budget above which a lead is
// treated as high-value for escalation purposes.
const DefaultHighValueThreshold int64 = 5_000_000

// completenessFields is the divisor for the data completeness ratio.
const completenessFields = 20

// Tier classifies the lead: all three criteria met is hot, two is warm,
// anything less is cold.
func Tier(lead domain.Lead) domain.Tier {
	score := 0

	// Money: a budget bound or a payment method.
	if lead.HasBudget() || lead.Payment != "" {
		score++
	}

	// Urgency: arrival date, quick-decision readiness, or stated urgency.
	if lead.UrgencyDate != "" || isTrue(lead.QuickDecisionReady) ||
		lead.Urgency == domain.UrgencyHigh || lead.Urgency == domain.UrgencyMedium {
		score++
	}

	// Clarity: purchase goal plus a property type or district preference.
	if lead.Goal != "" && (lead.PropertyType != "" || len(lead.PreferredLocations) > 0) {
		score++
	}

	switch score {
	case 3:
		return domain.TierHot
	case 2:
		return domain.TierWarm
	default:
		return domain.TierCold
	}
}

// Escalation reasons, reported with the handover event.
const (
	ReasonHotLead           = "hot_lead"
	ReasonPhoneAndViewing   = "phone_and_viewing"
	ReasonPresentationAsked = "presentation_requested"
	ReasonManyRequirements  = "detailed_requirements"
	ReasonHighValue         = "high_value_budget"
)

// ShouldEscalate reports whether the lead must be handed to a human
// manager. highValueThreshold is the ruble budget that qualifies as
// high-value; pass DefaultHighValueThreshold when unconfigured.
func ShouldEscalate(lead domain.Lead, highValueThreshold int64) bool {
	return EscalationReason(lead, highValueThreshold) != ""
}

// EscalationReason returns the first escalation condition the lead
// meets, or an empty string when none applies.
func EscalationReason(lead domain.Lead, highValueThreshold int64) string {
	if highValueThreshold <= 0 {
		highValueThreshold = DefaultHighValueThreshold
	}

	switch {
	case lead.Tier == domain.TierHot:
		return ReasonHotLead
	case lead.Phone != "" && len(lead.ViewingSlots) > 0:
		return ReasonPhoneAndViewing
	case strings.Contains(strings.ToLower(lead.Comments), "презентаци"):
		return ReasonPresentationAsked
	case len(lead.Requirements) > 3:
		return ReasonManyRequirements
	case lead.BudgetMin > highValueThreshold || lead.BudgetMax > highValueThreshold:
		return ReasonHighValue
	}
	return ""
}

// EscalationScore grades handover priority from 0 to 1.
func EscalationScore(lead domain.Lead, highValueThreshold int64) float64 {
	if highValueThreshold <= 0 {
		highValueThreshold = DefaultHighValueThreshold
	}

	score := 0.0

	switch lead.Tier {
	case domain.TierHot:
		score += 0.4
	case domain.TierWarm:
		score += 0.2
	}

	if lead.Phone != "" {
		score += 0.2
	}
	if lead.BudgetMax > highValueThreshold {
		score += 0.2
	}
	if lead.Urgency == domain.UrgencyHigh {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Completeness returns the share of important lead fields that have
// been filled, from 0 to 1. A known budget counts double.
func Completeness(lead domain.Lead) float64 {
	filled := 0

	if lead.Name != "" {
		filled++
	}
	if lead.Phone != "" {
		filled++
	}
	if lead.HomeCity != "" || lead.AtDestination != nil {
		filled++
	}
	if lead.Goal != "" {
		filled++
	}
	if lead.Payment != "" {
		filled++
	}
	if lead.HasBudget() {
		filled += 2
	}
	if len(lead.PreferredLocations) > 0 {
		filled++
	}
	if lead.PropertyType != "" {
		filled++
	}
	if lead.RoomsCount > 0 {
		filled++
	}
	if lead.AreaMin > 0 || lead.AreaMax > 0 {
		filled++
	}
	if lead.ViewPreference != "" {
		filled++
	}
	if len(lead.Requirements) > 0 {
		filled++
	}
	if lead.Urgency != "" {
		filled++
	}
	if lead.UrgencyDate != "" {
		filled++
	}
	if lead.MarketExperience != "" {
		filled++
	}
	if lead.DecisionMaker != "" {
		filled++
	}
	if lead.MortgageBank != "" {
		filled++
	}
	if lead.Comments != "" {
		filled++
	}
	if len(lead.ViewingSlots) > 0 {
		filled++
	}

	return float64(filled) / float64(completenessFields)
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
