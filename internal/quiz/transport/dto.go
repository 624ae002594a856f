// Package transport defines the wire-level request and response shapes for
// the public quiz API.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// StartSessionRequest opens a quiz session. UsTaxObligations is optional:
// when the visitor arrives through a landing-page CTA that already asked the
// gating question, the answer is carried in and the quiz starts at step two.
type StartSessionRequest struct {
	UsTaxObligations *bool  `json:"usTaxObligations"`
	Source           string `json:"source" binding:"omitempty,max=100"`
}

// StartSessionResponse returns the new session and where it starts.
type StartSessionResponse struct {
	SessionID  uuid.UUID `json:"sessionId"`
	Step       int       `json:"step"`
	TotalSteps int       `json:"totalSteps"`
}

// AnswerRequest records one step's answer. Value is kept as raw JSON-shaped
// data; the service validates it against the step definition.
type AnswerRequest struct {
	QuestionKey string `json:"questionKey" binding:"required,max=64"`
	Value       any    `json:"value" binding:"required"`
}

// ContactPayload carries the contact-step fields.
type ContactPayload struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,max=254"`
	Phone string `json:"phone" binding:"omitempty,max=32"`
}

// SubmitRequest is the full answer set posted at the review step. The
// gating answer is required here even when it was prefilled at session
// start, so a submission is self-contained.
type SubmitRequest struct {
	UsTaxObligations  *bool          `json:"usTaxObligations"`
	Residence         string         `json:"residence" binding:"omitempty,max=120"`
	IncomeSources     []string       `json:"incomeSources" binding:"omitempty,max=6,dive,max=32"`
	AnnualIncome      int            `json:"annualIncome"`
	Situations        []string       `json:"situations" binding:"omitempty,max=8,dive,max=32"`
	FinancialBehavior []string       `json:"financialBehavior" binding:"omitempty,max=4,dive,max=32"`
	Urgency           int            `json:"urgency"`
	Contact           ContactPayload `json:"contact" binding:"required"`
	Source            string         `json:"source" binding:"omitempty,max=100"`
}

// SubmitResponse reports the qualification outcome for the thank-you screen.
type SubmitResponse struct {
	LeadID    uuid.UUID `json:"leadId"`
	Qualified bool      `json:"qualified"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons"`
	CreatedAt time.Time `json:"createdAt"`
}

// StepsResponse describes the flow so the client can render without
// hardcoding the question order.
type StepsResponse struct {
	Steps []StepDTO `json:"steps"`
}

// StepDTO is one renderable step.
type StepDTO struct {
	Key           string      `json:"key"`
	Kind          string      `json:"kind"`
	Prompt        string      `json:"prompt"`
	Options       []OptionDTO `json:"options,omitempty"`
	Labels        []string    `json:"labels,omitempty"`
	MaxSelections int         `json:"maxSelections,omitempty"`
	MaxLength     int         `json:"maxLength,omitempty"`
}

// OptionDTO is one selectable choice.
type OptionDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
