package domain

import "strings"

// Engine walks a session through the fixed step flow and accumulates the
// answer set. Navigation is strictly linear: Next and Prev clamp at the
// ends and there is no skip logic.
type Engine struct {
	steps     []Step
	stepIndex int
	answers   Answers
}

// NewEngine creates an engine positioned at the first step.
func NewEngine(steps []Step) *Engine {
	return &Engine{steps: steps}
}

// NewEngineWithPrefill seeds the gating answer (captured from a page-level
// CTA) and starts at the second step instead of the first.
func NewEngineWithPrefill(steps []Step, gate bool) *Engine {
	e := NewEngine(steps)
	e.answers.USTaxObligations = &gate
	if len(steps) > 1 {
		e.stepIndex = 1
	}
	return e
}

// Next advances one step, clamped at the last step.
func (e *Engine) Next() {
	if e.stepIndex < len(e.steps)-1 {
		e.stepIndex++
	}
}

// Prev goes back one step, clamped at the first step.
func (e *Engine) Prev() {
	if e.stepIndex > 0 {
		e.stepIndex--
	}
}

// Step returns the current step definition.
func (e *Engine) Step() Step {
	return e.steps[e.stepIndex]
}

// StepNumber returns the 1-based current position.
func (e *Engine) StepNumber() int {
	return e.stepIndex + 1
}

// TotalSteps returns the flow length.
func (e *Engine) TotalSteps() int {
	return len(e.steps)
}

// Answers returns a copy of the collected answer set.
func (e *Engine) Answers() Answers {
	out := e.answers
	out.IncomeSources = append([]IncomeSource(nil), e.answers.IncomeSources...)
	out.Situations = append([]Situation(nil), e.answers.Situations...)
	out.FinancialBehavior = append([]Behavior(nil), e.answers.FinancialBehavior...)
	return out
}

// SetUSTaxObligations records the gating answer.
func (e *Engine) SetUSTaxObligations(value bool) {
	e.answers.USTaxObligations = &value
}

// SetResidence records the free-form domicile, trimmed and capped at the
// step's max length. The cap counts runes so multibyte input is never cut
// mid-character.
func (e *Engine) SetResidence(value string) {
	value = strings.TrimSpace(value)
	if step, ok := StepByKey(e.steps, StepKeyResidence); ok && step.MaxLength > 0 {
		value = truncateRunes(value, step.MaxLength)
	}
	e.answers.Residence = value
}

// ToggleIncomeSource toggles membership in the income-source set.
func (e *Engine) ToggleIncomeSource(value IncomeSource) {
	limit := maxSelections(e.steps, StepKeyIncome)
	e.answers.IncomeSources = toggleCapped(e.answers.IncomeSources, value, limit)
}

// ToggleSituation toggles membership in the situations set. When the step
// caps selections and the cap is reached, the earliest selection is evicted
// rather than the new one rejected.
func (e *Engine) ToggleSituation(value Situation) {
	limit := maxSelections(e.steps, StepKeySituation)
	e.answers.Situations = toggleCapped(e.answers.Situations, value, limit)
}

// ToggleBehavior toggles membership in the financial-behavior set.
func (e *Engine) ToggleBehavior(value Behavior) {
	limit := maxSelections(e.steps, StepKeyBehavior)
	e.answers.FinancialBehavior = toggleCapped(e.answers.FinancialBehavior, value, limit)
}

// SetAnnualIncome records the income-bracket slider index, clamped into the
// label range.
func (e *Engine) SetAnnualIncome(index int) {
	e.answers.AnnualIncome = clampIndex(index, len(IncomeBrackets))
}

// SetUrgency records the timeline slider index, clamped into the label range.
func (e *Engine) SetUrgency(index int) {
	e.answers.Urgency = clampIndex(index, len(UrgencyLabels))
}

// SetContact records the contact fields. The name is trimmed; email and
// phone are stored as entered and validated at submission.
func (e *Engine) SetContact(name, email, phone string) {
	e.answers.Name = strings.TrimSpace(name)
	e.answers.Email = strings.TrimSpace(email)
	e.answers.Phone = strings.TrimSpace(phone)
}

// ContactRevealed reports whether the email and phone inputs should render.
// They stay hidden until the name field has at least one non-whitespace
// character; the reveal is one-way in the UI, so this only gates the
// initial display.
func (e *Engine) ContactRevealed() bool {
	return strings.TrimSpace(e.answers.Name) != ""
}

// toggleCapped toggles membership in an ordered selection. Selecting while
// at the cap evicts the earliest selection (FIFO) instead of rejecting.
func toggleCapped[T comparable](selected []T, value T, limit int) []T {
	for i, existing := range selected {
		if existing == value {
			return append(selected[:i:i], selected[i+1:]...)
		}
	}
	if limit > 0 && len(selected) >= limit {
		selected = selected[1:]
	}
	return append(selected, value)
}

func maxSelections(steps []Step, key string) int {
	if step, ok := StepByKey(steps, key); ok {
		return step.MaxSelections
	}
	return 0
}

// truncateRunes cuts a string to at most limit runes, always on a rune
// boundary.
func truncateRunes(value string, limit int) string {
	count := 0
	for i := range value {
		if count == limit {
			return value[:i]
		}
		count++
	}
	return value
}

func clampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}
