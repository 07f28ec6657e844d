// Package domain provides core business rules and types for the dialog
// bounded context: the lead record, the funnel stages and the closed
// enumerations used by the extractor and scorer.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the accumulated knowledge about one prospective buyer within one
// conversation. Most fields follow "first non-empty write wins": the
// extractor fills them once and later messages do not overwrite them.
// Budget is sticky as a pair — once both bounds are set no message changes
// either. Pointer booleans distinguish "unknown" from an explicit no.
type Lead struct {
	ID uuid.UUID `json:"id"`

	// Identity
	Name            string `json:"name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Handle          string `json:"handle,omitempty"`          // messaging handle, e.g. telegram username
	SecondaryHandle string `json:"secondaryHandle,omitempty"` // e.g. whatsapp number

	// Geography
	HomeCity        string `json:"homeCity,omitempty"`        // where the customer is from
	CurrentLocation string `json:"currentLocation,omitempty"` // where they are right now
	AtDestination   *bool  `json:"atDestination,omitempty"`   // currently in Sochi
	LocalResident   *bool  `json:"localResident,omitempty"`   // lives in Sochi permanently

	// Intent and payment
	Goal               PurchaseGoal  `json:"goal,omitempty"`
	Payment            PaymentMethod `json:"payment,omitempty"`
	MortgageBank       string        `json:"mortgageBank,omitempty"`
	NeedsToSellCurrent *bool         `json:"needsToSellCurrent,omitempty"`

	// Budget, in rubles. Either bound may be set independently.
	BudgetMin int64 `json:"budgetMin,omitempty"`
	BudgetMax int64 `json:"budgetMax,omitempty"`

	// Property preferences
	PreferredLocations []string     `json:"preferredLocations,omitempty"`
	PropertyType       PropertyType `json:"propertyType,omitempty"`
	RoomsCount         int          `json:"roomsCount,omitempty"`
	AreaMin            int          `json:"areaMin,omitempty"`
	AreaMax            int          `json:"areaMax,omitempty"`
	ViewPreference     string       `json:"viewPreference,omitempty"` // sea, mountains, park

	// Timing
	Urgency            UrgencyLevel `json:"urgency,omitempty"`
	UrgencyDate        string       `json:"urgencyDate,omitempty"` // free-text arrival date
	QuickDecisionReady *bool        `json:"quickDecisionReady,omitempty"`

	// Experience and deal format
	MarketExperience   string `json:"marketExperience,omitempty"`
	OnlineViewingReady *bool  `json:"onlineViewingReady,omitempty"`
	RemoteDealNeeded   *bool  `json:"remoteDealNeeded,omitempty"`

	// Decision process
	DecisionMaker DecisionMaker `json:"decisionMaker,omitempty"`

	// Cumulative signals
	Requirements []string `json:"requirements,omitempty"` // CRM, chat-bot, funnel, ... (dedup, insertion order)

	// Engagement bookkeeping
	AskedQuestions []string    `json:"askedQuestions,omitempty"`
	LastQuestion   string      `json:"lastQuestion,omitempty"`
	Comments       string      `json:"comments,omitempty"`
	ViewingSlots   []time.Time `json:"viewingSlots,omitempty"`

	// Funnel status
	Stage Stage `json:"stage"`
	Tier  Tier  `json:"tier,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLead creates an empty lead positioned at the start of the funnel.
func NewLead(now time.Time) Lead {
	return Lead{
		ID:        uuid.New(),
		Stage:     StageGreeting,
		Tier:      TierCold,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy. Pipeline stages operate on copies so that a
// cached snapshot can never alias the live lead.
func (l Lead) Clone() Lead {
	out := l
	out.PreferredLocations = append([]string(nil), l.PreferredLocations...)
	out.Requirements = append([]string(nil), l.Requirements...)
	out.AskedQuestions = append([]string(nil), l.AskedQuestions...)
	out.ViewingSlots = append([]time.Time(nil), l.ViewingSlots...)
	out.AtDestination = cloneBool(l.AtDestination)
	out.LocalResident = cloneBool(l.LocalResident)
	out.NeedsToSellCurrent = cloneBool(l.NeedsToSellCurrent)
	out.QuickDecisionReady = cloneBool(l.QuickDecisionReady)
	out.OnlineViewingReady = cloneBool(l.OnlineViewingReady)
	out.RemoteDealNeeded = cloneBool(l.RemoteDealNeeded)
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// HasBudget reports whether at least one budget bound is known.
func (l Lead) HasBudget() bool {
	return l.BudgetMin > 0 || l.BudgetMax > 0
}

// BudgetComplete reports whether both bounds are known; once true the
// extractor skips budget rules entirely.
func (l Lead) BudgetComplete() bool {
	return l.BudgetMin > 0 && l.BudgetMax > 0
}

// HasLocationInfo reports whether the location stage collected anything:
// either a home city or a definite answer about being in Sochi.
func (l Lead) HasLocationInfo() bool {
	return l.HomeCity != "" || l.AtDestination != nil
}

// HasRequirementsInfo reports whether the requirements stage collected a
// preferred district or a property type.
func (l Lead) HasRequirementsInfo() bool {
	return len(l.PreferredLocations) > 0 || l.PropertyType != ""
}

// HasUrgencyInfo reports whether any timing signal is known.
func (l Lead) HasUrgencyInfo() bool {
	return l.UrgencyDate != "" || l.Urgency != ""
}

// StageDataIndex returns the index of the most advanced funnel stage for
// which the lead already holds collected data, or -1 when nothing beyond the
// greeting is known. Used by the regression guard: moving backward past this
// index is anomalous.
func (l Lead) StageDataIndex() int {
	idx := -1
	mark := func(s Stage, has bool) {
		if has {
			if i := StageIndex(s); i > idx {
				idx = i
			}
		}
	}
	mark(StageLocation, l.HasLocationInfo())
	mark(StageGoal, l.Goal != "")
	mark(StagePayment, l.Payment != "")
	mark(StageRequirements, l.HasRequirementsInfo())
	mark(StageBudget, l.HasBudget())
	mark(StageUrgency, l.HasUrgencyInfo())
	mark(StageExperience, l.MarketExperience != "")
	mark(StageAction, len(l.ViewingSlots) > 0)
	return idx
}
