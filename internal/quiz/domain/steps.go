package domain

// Kind identifies how a step is rendered and answered.
type Kind string

const (
	KindYesNo        Kind = "yes_no"
	KindText         Kind = "text"
	KindMultiSelect  Kind = "multi_select"
	KindSingleSelect Kind = "single_select"
	KindSlider       Kind = "slider"
	KindContact      Kind = "contact"
	KindReview       Kind = "review"
)

// Option is one selectable choice in a select-style step.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Step describes one position in the quiz flow. The engine walks an ordered
// list of steps; the client renders whatever the step says.
type Step struct {
	Key           string   `json:"key"`
	Kind          Kind     `json:"kind"`
	Prompt        string   `json:"prompt"`
	Options       []Option `json:"options,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	MaxSelections int      `json:"maxSelections,omitempty"`
	MaxLength     int      `json:"maxLength,omitempty"`
}

// Step keys. These double as the question_key column of stored responses.
const (
	StepKeyGate      = "us_tax_obligations"
	StepKeyResidence = "residence"
	StepKeyIncome    = "income_sources"
	StepKeyBracket   = "annual_income"
	StepKeySituation = "situations"
	StepKeyBehavior  = "financial_behavior"
	StepKeyUrgency   = "urgency"
	StepKeyContact   = "contact"
	StepKeyReview    = "review"
)

// DefaultFlow returns the canonical nine-step flow. Every session walks the
// same sequence; there is no branching on earlier answers.
func DefaultFlow() []Step {
	return []Step{
		{
			Key:    StepKeyGate,
			Kind:   KindYesNo,
			Prompt: "Do you have US tax obligations?",
		},
		{
			Key:       StepKeyResidence,
			Kind:      KindText,
			Prompt:    "Where do you currently live?",
			MaxLength: 120,
		},
		{
			Key:    StepKeyIncome,
			Kind:   KindMultiSelect,
			Prompt: "Where does your income come from?",
			Options: []Option{
				{Value: string(IncomeBusiness), Label: "Business owner"},
				{Value: string(IncomeFreelance), Label: "Freelance"},
				{Value: string(Income1099), Label: "1099 contractor"},
				{Value: string(IncomeW2), Label: "W-2 employment"},
				{Value: string(IncomeInvestments), Label: "Investments"},
				{Value: string(IncomeOther), Label: "Other"},
			},
		},
		{
			Key:    StepKeyBracket,
			Kind:   KindSlider,
			Prompt: "What is your annual income?",
			Labels: IncomeBrackets,
		},
		{
			Key:    StepKeySituation,
			Kind:   KindMultiSelect,
			Prompt: "Which of these describe your situation?",
			Options: []Option{
				{Value: string(SituationExpat), Label: "Living abroad as an expat"},
				{Value: string(SituationPlanningNomad), Label: "Planning the nomad life"},
				{Value: string(Situation330DaysAbroad), Label: "Abroad 330+ days a year"},
				{Value: string(SituationMultistate), Label: "Income in multiple states"},
				{Value: string(SituationForeignAccounts), Label: "Foreign bank accounts"},
				{Value: string(SituationBadPriorPreparer), Label: "Burned by a prior preparer"},
				{Value: string(SituationBehindOnTaxes), Label: "Behind on filings"},
			},
			MaxSelections: 3,
		},
		{
			Key:    StepKeyBehavior,
			Kind:   KindMultiSelect,
			Prompt: "How organized are your finances?",
			Options: []Option{
				{Value: string(BehaviorOrganized), Label: "Everything in order"},
				{Value: string(BehaviorSomewhatOrganized), Label: "Mostly organized"},
				{Value: string(BehaviorVeryUnorganized), Label: "Honestly, a mess"},
				{Value: string(BehaviorNoDocumentation), Label: "No documentation at all"},
			},
		},
		{
			Key:    StepKeyUrgency,
			Kind:   KindSlider,
			Prompt: "When do you need this handled?",
			Labels: UrgencyLabels,
		},
		{
			Key:    StepKeyContact,
			Kind:   KindContact,
			Prompt: "How do we reach you?",
		},
		{
			Key:    StepKeyReview,
			Kind:   KindReview,
			Prompt: "Ready to see your result?",
		},
	}
}

// StepByKey finds a step in the flow; ok is false for unknown keys.
func StepByKey(steps []Step, key string) (Step, bool) {
	for _, s := range steps {
		if s.Key == key {
			return s, true
		}
	}
	return Step{}, false
}
