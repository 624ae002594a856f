package domain

// Outcome is the result of scoring a completed answer set. Reasons explain
// the qualification decision in the order the signals were evaluated.
type Outcome struct {
	Qualified bool
	Score     int
	Reasons   []string
}

// Strategy scores a completed answer set. Implementations must be pure and
// safe for concurrent use.
type Strategy interface {
	Name() string
	Score(a Answers) Outcome
}

// Policy names for StrategyFor.
const (
	PolicyWeighted     = "weighted"
	PolicyDisqualifier = "disqualifier"
)

// StrategyFor returns the strategy for the configured policy name, falling
// back to the weighted strategy for anything unrecognized.
func StrategyFor(policy string) Strategy {
	if policy == PolicyDisqualifier {
		return DisqualifierStrategy{}
	}
	return WeightedStrategy{}
}

// nomadSituations are the situations that mark a prospect as living or
// planning to live abroad, the firm's core clientele.
var nomadSituations = []Situation{
	SituationExpat,
	SituationPlanningNomad,
	Situation330DaysAbroad,
}

// complexIncomeSources are the source types that usually mean quarterly
// estimates, deductions, and entity questions.
var complexIncomeSources = []IncomeSource{
	IncomeBusiness,
	IncomeFreelance,
	Income1099,
}

// WeightedStrategy sums fixed weights for qualification signals. A prospect
// qualifies when the gate is affirmative, at least one nomad situation is
// selected, and the total reaches the threshold.
type WeightedStrategy struct{}

const (
	weightGate          = 20
	weightNomad         = 30
	weightHighIncome    = 20
	weightComplexIncome = 15
	weightUrgent        = 10

	qualifyThreshold  = 50
	highIncomeBracket = 3 // $250k and up
	urgentCutoff      = 1 // ASAP or within 30 days
)

func (WeightedStrategy) Name() string { return PolicyWeighted }

func (WeightedStrategy) Score(a Answers) Outcome {
	var out Outcome
	if a.GateTrue() {
		out.Score += weightGate
		out.Reasons = append(out.Reasons, "has US tax obligations")
	}
	if a.HasSituation(nomadSituations...) {
		out.Score += weightNomad
		out.Reasons = append(out.Reasons, "lives or plans to live abroad")
	}
	if a.AnnualIncome >= highIncomeBracket {
		out.Score += weightHighIncome
		out.Reasons = append(out.Reasons, "income bracket "+IncomeBrackets[clampIndex(a.AnnualIncome, len(IncomeBrackets))])
	}
	if a.HasIncomeSource(complexIncomeSources...) {
		out.Score += weightComplexIncome
		out.Reasons = append(out.Reasons, "self-employment or business income")
	}
	if a.Urgency <= urgentCutoff {
		out.Score += weightUrgent
		out.Reasons = append(out.Reasons, "wants help within 30 days")
	}
	out.Qualified = a.GateTrue() && a.HasSituation(nomadSituations...) && out.Score >= qualifyThreshold
	return out
}

// DisqualifierStrategy is the simpler alternate policy: everyone qualifies
// unless a hard disqualifier applies. It produces no numeric score.
type DisqualifierStrategy struct{}

func (DisqualifierStrategy) Name() string { return PolicyDisqualifier }

func (DisqualifierStrategy) Score(a Answers) Outcome {
	if !a.GateTrue() {
		return Outcome{Reasons: []string{"No US tax obligations"}}
	}
	if a.HasSituation(SituationTaxAverse) && a.HasBehavior(BehaviorVeryUnorganized, BehaviorNoDocumentation) {
		return Outcome{Reasons: []string{"attitude/organization mismatch"}}
	}
	return Outcome{Qualified: true, Reasons: []string{"Good fit"}}
}
