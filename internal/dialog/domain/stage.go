package domain

// Stage is a step in the fixed sales funnel. Stages advance strictly one at
// a time and never move backward within a conversation.
type Stage string

const (
	StageGreeting     Stage = "greeting"     // greeting + finding out intent
	StageLocation     Stage = "location"     // where the customer is / home city
	StageGoal         Stage = "goal"         // purchase goal
	StagePayment      Stage = "payment"      // payment method
	StageRequirements Stage = "requirements" // property requirements and districts
	StageBudget       Stage = "budget"       // budget bounds
	StageUrgency      Stage = "urgency"      // how soon
	StageExperience   Stage = "experience"   // prior experience with the Sochi market
	StageAction       Stage = "action"       // viewing / meeting; terminal
)

// stageOrder fixes the funnel sequence. Transitions are only allowed to the
// immediate successor.
var stageOrder = []Stage{
	StageGreeting,
	StageLocation,
	StageGoal,
	StagePayment,
	StageRequirements,
	StageBudget,
	StageUrgency,
	StageExperience,
	StageAction,
}

var stageIndex = func() map[Stage]int {
	m := make(map[Stage]int, len(stageOrder))
	for i, s := range stageOrder {
		m[s] = i
	}
	return m
}()

// Stages returns the funnel sequence in order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// IsKnownStage reports whether s is one of the nine funnel stages.
func IsKnownStage(s Stage) bool {
	_, ok := stageIndex[s]
	return ok
}

// StageIndex returns the position of s in the funnel, or -1 for unknown stages.
func StageIndex(s Stage) int {
	if i, ok := stageIndex[s]; ok {
		return i
	}
	return -1
}

// NextStage returns the immediate successor of s. The terminal stage and
// unknown stages map to themselves.
func NextStage(s Stage) Stage {
	i, ok := stageIndex[s]
	if !ok || i == len(stageOrder)-1 {
		return s
	}
	return stageOrder[i+1]
}

// IsTerminalStage reports whether s is the absorbing final stage.
func IsTerminalStage(s Stage) bool {
	return s == StageAction
}
