package translate

// Budget threshold constants. Ceilings at or above thresholdFloor use
// a relative safety margin; tiny ceilings use an absolute margin so
// estimation rounding cannot produce false negatives.
const (
	thresholdFloor    = 0.001
	relativeThreshold = 0.95
	absoluteMargin    = 0.00001
)

// budgetState tracks accumulated cost against a ceiling. One instance
// serves a single language run, or the whole sequential loop when a
// global cost ceiling is configured. It is never shared between
// parallel language runs.
type budgetState struct {
	ceiling float64
	spent   float64
}

// newBudgetState builds a tracker. A ceiling of zero disables all
// checks.
func newBudgetState(ceiling float64) *budgetState {
	return &budgetState{ceiling: ceiling}
}

func (b *budgetState) enabled() bool {
	return b != nil && b.ceiling > 0
}

// threshold is the single safety-threshold rule used by every budget
// decision: the per-batch pre-check, the sequential-loop re-check, and
// the pre-language gate.
func (b *budgetState) threshold() float64 {
	if b.ceiling >= thresholdFloor {
		return b.ceiling * relativeThreshold
	}
	return b.ceiling - absoluteMargin
}

// allows reports whether one more batch with the given estimated cost
// fits under the ceiling.
func (b *budgetState) allows(estimate float64) bool {
	if !b.enabled() {
		return true
	}
	if b.spent >= b.ceiling {
		return false
	}
	return b.spent+estimate <= b.threshold()
}

// exhausted reports whether accumulated spend has reached the safety
// threshold.
func (b *budgetState) exhausted() bool {
	return b.enabled() && b.spent >= b.threshold()
}

// charge records spend. Called for every attempt that consumed
// tokens, including estimated dry-run spend.
func (b *budgetState) charge(cost float64) {
	if b != nil {
		b.spent += cost
	}
}

// remaining returns the budget left under the ceiling, never negative.
func (b *budgetState) remaining() float64 {
	if !b.enabled() {
		return 0
	}
	if r := b.ceiling - b.spent; r > 0 {
		return r
	}
	return 0
}
