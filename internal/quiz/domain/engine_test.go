package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEngineNavigationClampsAtBounds(t *testing.T) {
	e := NewEngine(DefaultFlow())

	e.Prev()
	if got := e.StepNumber(); got != 1 {
		t.Fatalf("Prev at first step moved to %d, want 1", got)
	}

	for i := 0; i < e.TotalSteps()+5; i++ {
		e.Next()
	}
	if got := e.StepNumber(); got != e.TotalSteps() {
		t.Fatalf("Next past last step moved to %d, want %d", got, e.TotalSteps())
	}

	e.Next()
	if got := e.StepNumber(); got != e.TotalSteps() {
		t.Fatalf("Next at last step moved to %d, want %d", got, e.TotalSteps())
	}
}

func TestEnginePrefillSeedsGateAndSkipsFirstStep(t *testing.T) {
	e := NewEngineWithPrefill(DefaultFlow(), true)

	if got := e.StepNumber(); got != 2 {
		t.Fatalf("prefilled engine started at step %d, want 2", got)
	}
	a := e.Answers()
	if !a.GateAnswered() || !a.GateTrue() {
		t.Fatalf("prefilled gate = %+v, want answered true", a.USTaxObligations)
	}

	e = NewEngineWithPrefill(DefaultFlow(), false)
	if a := e.Answers(); !a.GateAnswered() || a.GateTrue() {
		t.Fatalf("prefilled gate = %+v, want answered false", a.USTaxObligations)
	}
}

func TestEngineGateUnsetWithoutPrefill(t *testing.T) {
	e := NewEngine(DefaultFlow())
	if e.Answers().GateAnswered() {
		t.Fatal("fresh engine reported gate as answered")
	}
	e.SetUSTaxObligations(true)
	if !e.Answers().GateTrue() {
		t.Fatal("gate not recorded after SetUSTaxObligations")
	}
}

func TestEngineToggleIsIdempotentPair(t *testing.T) {
	e := NewEngine(DefaultFlow())

	e.ToggleSituation(SituationExpat)
	if !e.Answers().HasSituation(SituationExpat) {
		t.Fatal("first toggle did not select")
	}
	e.ToggleSituation(SituationExpat)
	if e.Answers().HasSituation(SituationExpat) {
		t.Fatal("second toggle did not deselect")
	}
	if got := len(e.Answers().Situations); got != 0 {
		t.Fatalf("selection count after toggle pair = %d, want 0", got)
	}
}

func TestEngineSituationCapEvictsOldest(t *testing.T) {
	e := NewEngine(DefaultFlow())

	e.ToggleSituation(SituationExpat)
	e.ToggleSituation(SituationMultistate)
	e.ToggleSituation(SituationForeignAccounts)
	e.ToggleSituation(SituationBehindOnTaxes) // fourth pick, cap is 3

	got := e.Answers().Situations
	if len(got) != 3 {
		t.Fatalf("selection count = %d, want 3", len(got))
	}
	if e.Answers().HasSituation(SituationExpat) {
		t.Fatal("oldest selection was not evicted")
	}
	want := []Situation{SituationMultistate, SituationForeignAccounts, SituationBehindOnTaxes}
	for i, s := range want {
		if got[i] != s {
			t.Fatalf("selection[%d] = %q, want %q", i, got[i], s)
		}
	}
}

func TestEngineSliderIndicesClamp(t *testing.T) {
	cases := []struct {
		name  string
		set   func(e *Engine, v int)
		get   func(a Answers) int
		limit int
	}{
		{"income", (*Engine).SetAnnualIncome, func(a Answers) int { return a.AnnualIncome }, len(IncomeBrackets)},
		{"urgency", (*Engine).SetUrgency, func(a Answers) int { return a.Urgency }, len(UrgencyLabels)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(DefaultFlow())

			tc.set(e, -5)
			if got := tc.get(e.Answers()); got != 0 {
				t.Fatalf("negative index stored as %d, want 0", got)
			}
			tc.set(e, tc.limit+10)
			if got := tc.get(e.Answers()); got != tc.limit-1 {
				t.Fatalf("overflow index stored as %d, want %d", got, tc.limit-1)
			}
			tc.set(e, 2)
			if got := tc.get(e.Answers()); got != 2 {
				t.Fatalf("in-range index stored as %d, want 2", got)
			}
		})
	}
}

func TestEngineResidenceTrimsAndCaps(t *testing.T) {
	e := NewEngine(DefaultFlow())

	e.SetResidence("  Lisbon, Portugal  ")
	if got := e.Answers().Residence; got != "Lisbon, Portugal" {
		t.Fatalf("residence = %q, want trimmed", got)
	}

	step, ok := StepByKey(DefaultFlow(), StepKeyResidence)
	if !ok || step.MaxLength == 0 {
		t.Fatal("residence step has no max length")
	}
	e.SetResidence(strings.Repeat("x", step.MaxLength+50))
	if got := len(e.Answers().Residence); got != step.MaxLength {
		t.Fatalf("residence length = %d, want capped at %d", got, step.MaxLength)
	}

	// multibyte input is cut on rune boundaries, never mid-character
	e.SetResidence("a" + strings.Repeat("ã", step.MaxLength+50))
	got := e.Answers().Residence
	if !utf8.ValidString(got) {
		t.Fatalf("residence is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != step.MaxLength {
		t.Fatalf("residence runes = %d, want capped at %d", n, step.MaxLength)
	}
}

func TestEngineContactReveal(t *testing.T) {
	e := NewEngine(DefaultFlow())

	if e.ContactRevealed() {
		t.Fatal("contact revealed with empty name")
	}
	e.SetContact("   ", "", "")
	if e.ContactRevealed() {
		t.Fatal("contact revealed with whitespace-only name")
	}
	e.SetContact("J", "", "")
	if !e.ContactRevealed() {
		t.Fatal("contact not revealed after first name character")
	}
}

func TestEngineAnswersReturnsCopy(t *testing.T) {
	e := NewEngine(DefaultFlow())
	e.ToggleSituation(SituationExpat)

	a := e.Answers()
	a.Situations[0] = SituationMultistate

	if !e.Answers().HasSituation(SituationExpat) {
		t.Fatal("mutating the returned answer set changed engine state")
	}
}
