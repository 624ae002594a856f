// Package domain holds the quiz engine: the answer model, the fixed step
// flow, navigation, and the lead-qualification scoring strategies. Everything
// here is pure; persistence and transport live in the sibling packages.
package domain

// IncomeSource tags how a prospect earns money.
type IncomeSource string

const (
	IncomeBusiness    IncomeSource = "business"
	IncomeFreelance   IncomeSource = "freelance"
	Income1099        IncomeSource = "1099"
	IncomeW2          IncomeSource = "w2"
	IncomeInvestments IncomeSource = "investments"
	IncomeOther       IncomeSource = "other"
)

// Situation tags a prospect's tax circumstances.
type Situation string

const (
	SituationExpat            Situation = "expat"
	SituationPlanningNomad    Situation = "planning"
	Situation330DaysAbroad    Situation = "330-days-abroad"
	SituationMultistate       Situation = "multistate"
	SituationForeignAccounts  Situation = "foreign-accounts"
	SituationBadPriorPreparer Situation = "bad-prior-preparer"
	SituationBehindOnTaxes    Situation = "behind-on-taxes"
	SituationTaxAverse        Situation = "tax-averse"
)

// Behavior tags how organized a prospect's financial records are.
type Behavior string

const (
	BehaviorOrganized         Behavior = "organized"
	BehaviorSomewhatOrganized Behavior = "somewhat-organized"
	BehaviorVeryUnorganized   Behavior = "very-unorganized"
	BehaviorNoDocumentation   Behavior = "no-documentation"
)

// IncomeBrackets are the ordered labels behind the annual-income slider.
// Answers store the index, not the label.
var IncomeBrackets = []string{
	"Under $50k",
	"$50k - $100k",
	"$100k - $250k",
	"$250k - $500k",
	"$500k - $1M",
	"Over $1M",
}

// UrgencyLabels are the ordered labels behind the timeline slider,
// most urgent first.
var UrgencyLabels = []string{
	"As soon as possible",
	"Within 30 days",
	"This quarter",
	"This year",
	"Just exploring",
}

// Answers is the full answer set collected over one quiz session.
// USTaxObligations is tri-state: nil means the gating question was never
// answered, which the HTTP layer rejects before scoring.
type Answers struct {
	USTaxObligations  *bool
	Residence         string
	IncomeSources     []IncomeSource
	AnnualIncome      int
	Situations        []Situation
	FinancialBehavior []Behavior
	Urgency           int
	Name              string
	Email             string
	Phone             string
}

// HasSituation reports whether any of the given situations was selected.
func (a Answers) HasSituation(wanted ...Situation) bool {
	for _, s := range a.Situations {
		for _, w := range wanted {
			if s == w {
				return true
			}
		}
	}
	return false
}

// HasIncomeSource reports whether any of the given sources was selected.
func (a Answers) HasIncomeSource(wanted ...IncomeSource) bool {
	for _, s := range a.IncomeSources {
		for _, w := range wanted {
			if s == w {
				return true
			}
		}
	}
	return false
}

// HasBehavior reports whether any of the given behaviors was selected.
func (a Answers) HasBehavior(wanted ...Behavior) bool {
	for _, b := range a.FinancialBehavior {
		for _, w := range wanted {
			if b == w {
				return true
			}
		}
	}
	return false
}

// GateAnswered reports whether the gating question has an explicit answer.
func (a Answers) GateAnswered() bool {
	return a.USTaxObligations != nil
}

// GateTrue reports the gate answer, treating unset as false. Callers that
// care about the unset case must check GateAnswered first.
func (a Answers) GateTrue() bool {
	return a.USTaxObligations != nil && *a.USTaxObligations
}
