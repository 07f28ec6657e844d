// Package extract pulls structured lead attributes out of free-form
// Russian chat messages. Each extraction family is independent and
// fills its own slice of the lead; an empty message is a no-op beyond
// the UpdatedAt stamp.
package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sochi_assistant_backend/internal/dialog/domain"
	"sochi_assistant_backend/platform/phone"
)

// Extractor applies keyword and pattern rules to a message.
// It is stateless and safe for concurrent use.
type Extractor struct {
	usdRate int64
	now     func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New builds an Extractor. usdRate is the ruble conversion rate applied
// to dollar-denominated budgets.
func New(usdRate int64, opts ...Option) *Extractor {
	e := &Extractor{usdRate: usdRate, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var titleCaser = cases.Title(language.Russian)

// Apply runs every extraction family against message and returns an
// updated copy of lead. The input lead is never mutated.
func (e *Extractor) Apply(message string, lead domain.Lead) domain.Lead {
	out := lead.Clone()
	lower := strings.ToLower(message)

	e.extractContacts(message, &out)
	e.extractGoal(lower, &out)
	e.extractPayment(lower, &out)
	e.extractBudget(lower, &out)
	e.extractRequirements(lower, &out)
	e.extractUrgency(lower, &out)
	e.extractOrigin(message, lower, &out)
	e.extractLocations(lower, &out)
	e.extractPropertyType(lower, &out)
	e.extractRooms(lower, &out)
	e.extractArea(lower, &out)
	e.extractView(lower, &out)
	e.extractMortgageBank(lower, &out)
	e.extractReadiness(lower, &out)
	e.extractDecisionMaker(lower, &out)
	e.extractExperience(lower, &out)

	out.UpdatedAt = e.now()
	return out
}

func (e *Extractor) extractContacts(message string, lead *domain.Lead) {
	if lead.Phone == "" {
		if m := phoneRe.FindStringSubmatch(message); m != nil {
			lead.Phone = phone.NormalizeE164("+7" + m[1] + m[2] + m[3] + m[4])
		}
	}
	if m := emailRe.FindString(message); m != "" {
		lead.SecondaryHandle = m
	}
	// Name extraction is intentionally absent: location mentions such
	// as "Красная Поляна" produce false positives. The name comes from
	// the messenger profile instead.
}

func (e *Extractor) extractGoal(lower string, lead *domain.Lead) {
	if lead.Goal != "" {
		return
	}
	for _, kw := range goalKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.Goal = kw.goal
			return
		}
	}
}

func (e *Extractor) extractPayment(lower string, lead *domain.Lead) {
	if lead.Payment != "" {
		return
	}
	for _, kw := range paymentKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.Payment = kw.method
			return
		}
	}
}

// extractBudget is sticky: once both bounds are known, later messages
// cannot change them. Bounds are stored in rubles.
func (e *Extractor) extractBudget(lower string, lead *domain.Lead) {
	if lead.BudgetComplete() {
		return
	}
	for _, pattern := range budgetPatterns {
		m := pattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		switch len(m) {
		case 2:
			amount, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return
			}
			amount = e.toRubles(amount, m[0])
			if strings.Contains(m[0], "до") {
				lead.BudgetMax = amount
			} else {
				lead.BudgetMin = amount
			}
		case 3:
			lo, err1 := strconv.ParseInt(m[1], 10, 64)
			hi, err2 := strconv.ParseInt(m[2], 10, 64)
			if err1 != nil || err2 != nil {
				return
			}
			lead.BudgetMin = e.toRubles(lo, m[0])
			lead.BudgetMax = e.toRubles(hi, m[0])
		}
		return
	}
}

func (e *Extractor) toRubles(amount int64, matched string) int64 {
	switch {
	case strings.Contains(matched, "тыс") || strings.Contains(matched, "k"):
		return amount * 1_000
	case strings.Contains(matched, "млн") || strings.Contains(matched, "миллион") || strings.Contains(matched, "m"):
		return amount * 1_000_000
	case strings.Contains(matched, "$") || strings.Contains(matched, "usd") || strings.Contains(matched, "доллар"):
		return amount * e.usdRate
	default:
		return amount
	}
}

func (e *Extractor) extractRequirements(lower string, lead *domain.Lead) {
	for _, kw := range requirementKeywords {
		if !strings.Contains(lower, kw.keyword) {
			continue
		}
		if !containsString(lead.Requirements, kw.requirement) {
			lead.Requirements = append(lead.Requirements, kw.requirement)
		}
	}
}

func (e *Extractor) extractUrgency(lower string, lead *domain.Lead) {
	if lead.Urgency != "" {
		return
	}
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.Urgency = kw.level
			return
		}
	}
}

// extractOrigin reads the client's whereabouts. The original-case
// message is used for the home city so "из Волгодонска" keeps its
// capitalization after normalization.
func (e *Extractor) extractOrigin(message, lower string, lead *domain.Lead) {
	if containsAny(lower, atDestinationPhrases) {
		lead.AtDestination = boolPtr(true)
		lead.CurrentLocation = "Сочи"
		if containsAny(lower, localResidentPhrases) {
			lead.LocalResident = boolPtr(true)
		}
	} else if containsAny(lower, notAtDestinationPhrases) {
		lead.AtDestination = boolPtr(false)
	}

	if m := cityRe.FindStringSubmatch(message); m != nil {
		city := strings.TrimSpace(m[1])
		if !strings.Contains(strings.ToLower(city), "сочи") {
			lead.HomeCity = titleCaser.String(city)
		}
	}

	switch {
	case strings.Contains(lower, "послезавтра") || strings.Contains(lower, "после завтра"):
		lead.UrgencyDate = "послезавтра"
	case strings.Contains(lower, "завтра"):
		lead.UrgencyDate = "завтра"
	case strings.Contains(lower, "на неделе"):
		lead.UrgencyDate = "на этой неделе"
	}
}

// extractLocations appends recognized Sochi districts to the lead's
// preference list, deduplicated and in canonical form.
func (e *Extractor) extractLocations(lower string, lead *domain.Lead) {
	var found []string

	if containsAny(lower, krasnayaPolyanaForms) ||
		(strings.Contains(lower, "красная") && strings.Contains(lower, "поляна")) ||
		(strings.Contains(lower, "красной") && strings.Contains(lower, "поляне")) {
		found = append(found, canonicalKrasnayaPolyana)
	}

	for _, loc := range sochiLocations {
		if loc == "красная" || loc == "поляна" {
			continue
		}
		if !strings.Contains(lower, loc) {
			continue
		}
		found = append(found, canonicalLocation(loc))
	}

	for _, loc := range found {
		if !containsString(lead.PreferredLocations, loc) {
			lead.PreferredLocations = append(lead.PreferredLocations, loc)
		}
	}
}

func canonicalLocation(loc string) string {
	switch {
	case loc == "центр" || loc == "центральный":
		return "Центр"
	case loc == "адлер" || loc == "адлерский":
		return "Адлер"
	case loc == "сириус":
		return "Сириус"
	case strings.Contains(loc, "мор") || strings.Contains(loc, "пляж") || strings.Contains(loc, "побережье"):
		return "У моря"
	default:
		return titleCaser.String(loc)
	}
}

func (e *Extractor) extractPropertyType(lower string, lead *domain.Lead) {
	if lead.PropertyType != "" {
		return
	}
	for _, kw := range propertyTypeKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.PropertyType = kw.propType
			return
		}
	}
}

func (e *Extractor) extractRooms(lower string, lead *domain.Lead) {
	if lead.RoomsCount != 0 {
		return
	}
	if strings.Contains(lower, "студия") || strings.Contains(lower, "студию") {
		lead.RoomsCount = 1
		return
	}
	if m := roomsRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			lead.RoomsCount = n
		}
	}
}

func (e *Extractor) extractArea(lower string, lead *domain.Lead) {
	if lead.AreaMin != 0 || lead.AreaMax != 0 {
		return
	}
	if m := areaRangeRe.FindStringSubmatch(lower); m != nil {
		lo, err1 := strconv.Atoi(m[1])
		hi, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			lead.AreaMin, lead.AreaMax = lo, hi
		}
		return
	}
	if m := areaRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			lead.AreaMin = n
		}
	}
}

func (e *Extractor) extractView(lower string, lead *domain.Lead) {
	if lead.ViewPreference != "" {
		return
	}
	for _, kw := range viewKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.ViewPreference = kw.view
			return
		}
	}
}

func (e *Extractor) extractMortgageBank(lower string, lead *domain.Lead) {
	if lead.MortgageBank == "" {
		for _, bank := range mortgageBanks {
			if !strings.Contains(lower, bank) {
				continue
			}
			if len([]rune(bank)) <= 3 {
				lead.MortgageBank = strings.ToUpper(bank)
			} else {
				lead.MortgageBank = titleCaser.String(bank)
			}
			break
		}
	}
	if containsAny(lower, mortgageApprovedPhrases) {
		appendComment(lead, "Ипотека уже оформлена/одобрена.")
	}
}

// extractReadiness covers the deal-mechanics signals: quick decision,
// online viewings, remote deals, and needing to sell a current property.
func (e *Extractor) extractReadiness(lower string, lead *domain.Lead) {
	if containsAny(lower, quickDecisionPhrases) {
		lead.QuickDecisionReady = boolPtr(true)
	}
	if containsAny(lower, onlineViewingPhrases) {
		lead.OnlineViewingReady = boolPtr(true)
	}
	if containsAny(lower, remoteDealPhrases) {
		lead.RemoteDealNeeded = boolPtr(true)
	}
	if containsAny(lower, needToSellPhrases) {
		lead.NeedsToSellCurrent = boolPtr(true)
	}
	if containsAny(lower, presentationPhrases) {
		appendComment(lead, "Запросил презентацию.")
	}
}

func (e *Extractor) extractDecisionMaker(lower string, lead *domain.Lead) {
	if lead.DecisionMaker != "" {
		return
	}
	for _, kw := range decisionMakerKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.DecisionMaker = kw.maker
			return
		}
	}
}

func (e *Extractor) extractExperience(lower string, lead *domain.Lead) {
	if lead.MarketExperience != "" {
		return
	}
	for _, kw := range experienceKeywords {
		if strings.Contains(lower, kw.keyword) {
			lead.MarketExperience = kw.experience
			return
		}
	}
}

func appendComment(lead *domain.Lead, comment string) {
	if strings.Contains(lead.Comments, comment) {
		return
	}
	if lead.Comments == "" {
		lead.Comments = comment
		return
	}
	lead.Comments = fmt.Sprintf("%s %s", lead.Comments, comment)
}

func boolPtr(v bool) *bool {
	return &v
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
