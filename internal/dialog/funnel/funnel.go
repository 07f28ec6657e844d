// Package funnel advances a conversation through the qualification
// stages. Transitions are guard-gated and strictly forward: a stage is
// left only once the data it gathers is present, and the funnel never
// walks backwards on its own.
package funnel

import (
	"strings"

	"sochi_assistant_backend/internal/dialog/domain"
)

var greetingAdvance = []string{"инвестиц", "пмж", "себя", "проживан", "из ", "сочи"}

var goalKeywords = []string{
	"инвестиции", "инвестицию", "пмж", "проживание", "переезд", "аренд", "сдавать", "сбережения",
}

var paymentKeywords = []string{"ипотек", "наличн", "рассроч"}

var requirementsKeywords = []string{"красная", "сириус", "адлер", "дом", "квартир"}

var actionKeywords = []string{"показ", "демо", "встреча", "звонок", "готов", "договариваемся", "онлайн"}

// Next computes the stage after processing message with the already
// updated lead. An unknown current stage falls back to greeting rather
// than failing the turn.
func Next(message string, current domain.Stage, lead domain.Lead) domain.Stage {
	if !domain.IsKnownStage(current) {
		current = domain.StageGreeting
	}
	lower := strings.ToLower(message)

	switch current {
	case domain.StageGreeting:
		if containsAny(lower, greetingAdvance) {
			return domain.StageLocation
		}
		return domain.StageGreeting

	case domain.StageLocation:
		if lead.HomeCity != "" || lead.AtDestination != nil {
			return domain.StageGoal
		}
		if containsAny(lower, goalKeywords) {
			return domain.StageGoal
		}
		return domain.StageLocation

	case domain.StageGoal:
		if lead.Goal != "" {
			return domain.StagePayment
		}
		return domain.StageGoal

	case domain.StagePayment:
		if lead.Payment != "" || containsAny(lower, paymentKeywords) {
			return domain.StageRequirements
		}
		return domain.StagePayment

	case domain.StageRequirements:
		if lead.HasRequirementsInfo() || containsAny(lower, requirementsKeywords) {
			return domain.StageBudget
		}
		return domain.StageRequirements

	case domain.StageBudget:
		if lead.HasBudget() {
			return domain.StageUrgency
		}
		return domain.StageBudget

	case domain.StageUrgency:
		if lead.UrgencyDate != "" || lead.Urgency != "" {
			return domain.StageExperience
		}
		return domain.StageUrgency

	case domain.StageExperience:
		if containsAny(lower, actionKeywords) || lead.MarketExperience != "" {
			return domain.StageAction
		}
		return domain.StageExperience

	case domain.StageAction:
		return domain.StageAction
	}

	return current
}

// Regressed reports whether moving from one stage to another would lose
// funnel progress. The engine treats a regression as a no-op and keeps
// the lead at its current stage.
func Regressed(from, to domain.Stage) bool {
	fromIdx := domain.StageIndex(from)
	toIdx := domain.StageIndex(to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	return toIdx < fromIdx
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
