package domain

// PurchaseGoal is the customer's reason for buying property in Sochi.
type PurchaseGoal string

const (
	GoalShortInvestment PurchaseGoal = "short_investment" // up to ~12 months
	GoalLongInvestment  PurchaseGoal = "long_investment"  // 12+ months
	GoalResidence       PurchaseGoal = "residence"        // relocation / seasonal living
	GoalSavings         PurchaseGoal = "savings"          // capital preservation
	GoalRentalBusiness  PurchaseGoal = "rental_business"
)

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCards        PaymentMethod = "cards"
	PaymentBankTransfer PaymentMethod = "bank_transfer" // includes mortgage, installments, credit
	PaymentCrypto       PaymentMethod = "crypto"
)

// PropertyType is the kind of property the customer is looking for.
type PropertyType string

const (
	PropertyHouse      PropertyType = "house" // includes cottages and townhouses
	PropertyApartment  PropertyType = "apartment"
	PropertyAparthotel PropertyType = "aparthotel" // serviced apartments
	PropertyLandPlot   PropertyType = "land_plot"
)

// UrgencyLevel classifies how soon the customer wants to act.
type UrgencyLevel string

const (
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyLow    UrgencyLevel = "low"
)

// DecisionMaker describes who is involved in the purchase decision.
type DecisionMaker string

const (
	DecisionSelf    DecisionMaker = "self"
	DecisionSpouse  DecisionMaker = "spouse"
	DecisionPartner DecisionMaker = "partner"
	DecisionFamily  DecisionMaker = "family"
)

// Tier is the qualification classification derived from the
// money / timing / clarity criteria.
type Tier string

const (
	TierCold Tier = "cold" // 0-1 of 3 criteria
	TierWarm Tier = "warm" // 2 of 3 criteria
	TierHot  Tier = "hot"  // 3 of 3 criteria
)
