// Package service orchestrates the quiz: session lifecycle, per-step answer
// recording, and the submission pipeline that scores answers, persists the
// lead, and fans the result out.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nomadtax_backend/internal/events"
	"nomadtax_backend/internal/quiz/domain"
	"nomadtax_backend/internal/quiz/repository"
	"nomadtax_backend/internal/quiz/transport"
	"nomadtax_backend/platform/apperr"
	"nomadtax_backend/platform/logger"
	"nomadtax_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Repository is the consumer-driven data access interface for the quiz.
type Repository interface {
	UpsertResponse(ctx context.Context, sessionID uuid.UUID, questionKey string, answer []byte) error
	CreateLead(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	LeadBySession(ctx context.Context, sessionID uuid.UUID) (repository.Lead, error)
}

// Forwarder ships analytics events to the configured webhook. Implementations
// must be non-blocking from the caller's point of view.
type Forwarder interface {
	Forward(ctx context.Context, eventType string, data map[string]any) string
}

type Service struct {
	repo      Repository
	strategy  domain.Strategy
	bus       events.Bus
	forwarder Forwarder
	log       *logger.Logger
}

func New(repo Repository, strategy domain.Strategy, bus events.Bus, forwarder Forwarder, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		strategy:  strategy,
		bus:       bus,
		forwarder: forwarder,
		log:       log,
	}
}

// StartSession opens a session. The session ID is minted here and never
// stored on its own; it exists once the first answer or submission lands.
func (s *Service) StartSession(ctx context.Context, req transport.StartSessionRequest) (transport.StartSessionResponse, error) {
	sessionID := uuid.New()
	flow := domain.DefaultFlow()

	step := 1
	if req.UsTaxObligations != nil {
		// The landing-page CTA already asked the gating question. Storing the
		// answer now is best effort like every per-answer write; the submit
		// payload carries the gate again, so a lost row costs nothing.
		answer, _ := json.Marshal(*req.UsTaxObligations)
		if err := s.repo.UpsertResponse(ctx, sessionID, domain.StepKeyGate, answer); err != nil {
			s.log.Error("prefill persist failed", "sessionId", sessionID, "error", err)
		}
		step = 2
	}

	s.log.QuizEvent("session_started", sessionID.String(), slog.Bool("prefilled", req.UsTaxObligations != nil))
	s.forwarder.Forward(ctx, "quiz.session.started", map[string]any{
		"sessionId": sessionID.String(),
		"prefilled": req.UsTaxObligations != nil,
		"source":    req.Source,
	})

	return transport.StartSessionResponse{
		SessionID:  sessionID,
		Step:       step,
		TotalSteps: len(flow),
	}, nil
}

// RecordAnswer stores one step's answer. Unknown question keys are rejected.
// The write itself is best effort: a failed insert is logged and reported via
// the stored flag, never as an error, so a flaky store cannot stall the quiz.
func (s *Service) RecordAnswer(ctx context.Context, sessionID uuid.UUID, req transport.AnswerRequest) (bool, error) {
	if _, ok := domain.StepByKey(domain.DefaultFlow(), req.QuestionKey); !ok {
		return false, apperr.Validation(fmt.Sprintf("unknown question %q", req.QuestionKey))
	}

	answer, err := json.Marshal(req.Value)
	if err != nil {
		return false, apperr.Validation("answer is not serializable")
	}
	if err := s.repo.UpsertResponse(ctx, sessionID, req.QuestionKey, answer); err != nil {
		s.log.Error("answer persist failed", "sessionId", sessionID, "question", req.QuestionKey, "error", err)
		return false, nil
	}
	return true, nil
}

// Submit scores the full answer set, persists the responses and the lead,
// and publishes the outcome. Response persistence is best effort: a failed
// response row is logged and skipped, only the lead insert is fatal.
func (s *Service) Submit(ctx context.Context, sessionID uuid.UUID, req transport.SubmitRequest) (transport.SubmitResponse, error) {
	answers, err := s.buildAnswers(req)
	if err != nil {
		return transport.SubmitResponse{}, err
	}

	outcome := s.strategy.Score(answers)

	s.persistResponses(ctx, sessionID, req)

	params := repository.CreateLeadParams{
		SessionID: sessionID,
		Name:      answers.Name,
		Email:     answers.Email,
		Qualified: outcome.Qualified,
		Score:     outcome.Score,
		Reasons:   outcome.Reasons,
	}
	if normalized := phone.NormalizeE164(answers.Phone); normalized != "" {
		params.Phone = &normalized
	}
	if answers.Residence != "" {
		params.Residence = &answers.Residence
	}
	if req.Source != "" {
		params.Source = &req.Source
	}

	lead, err := s.repo.CreateLead(ctx, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			return transport.SubmitResponse{}, apperr.Conflict("this session was already submitted")
		}
		return transport.SubmitResponse{}, fmt.Errorf("create lead: %w", err)
	}

	event := events.LeadSubmitted{
		LeadID:    lead.ID,
		SessionID: sessionID,
		Name:      lead.Name,
		Email:     lead.Email,
		Qualified: lead.Qualified,
		Score:     lead.Score,
		Reasons:   lead.Reasons,
	}
	if lead.Phone != nil {
		event.Phone = *lead.Phone
	}
	s.bus.Publish(ctx, event)

	s.forwarder.Forward(ctx, "quiz.lead.submitted", map[string]any{
		"leadId":    lead.ID.String(),
		"sessionId": sessionID.String(),
		"qualified": lead.Qualified,
		"score":     lead.Score,
	})

	s.log.QuizEvent("lead_submitted", sessionID.String(),
		slog.String("lead_id", lead.ID.String()),
		slog.Bool("qualified", lead.Qualified),
		slog.Int("score", lead.Score))

	return transport.SubmitResponse{
		LeadID:    lead.ID,
		Qualified: lead.Qualified,
		Score:     lead.Score,
		Reasons:   lead.Reasons,
		CreatedAt: lead.CreatedAt,
	}, nil
}

// buildAnswers maps the submit payload onto the domain model through the
// engine, so clamping and selection caps apply server-side too.
func (s *Service) buildAnswers(req transport.SubmitRequest) (domain.Answers, error) {
	if req.UsTaxObligations == nil {
		return domain.Answers{}, apperr.Validation("the US tax obligations question must be answered")
	}

	if errs := domain.ValidateContact(domain.Answers{
		Name:  req.Contact.Name,
		Email: req.Contact.Email,
		Phone: req.Contact.Phone,
	}); errs.Any() {
		details := map[string]string{}
		if errs.Name != "" {
			details["name"] = errs.Name
		}
		if errs.Email != "" {
			details["email"] = errs.Email
		}
		if errs.Phone != "" {
			details["phone"] = errs.Phone
		}
		return domain.Answers{}, apperr.Validation("contact details are invalid").WithDetails(details)
	}

	engine := domain.NewEngine(domain.DefaultFlow())
	engine.SetUSTaxObligations(*req.UsTaxObligations)
	engine.SetResidence(req.Residence)
	for _, v := range req.IncomeSources {
		engine.ToggleIncomeSource(domain.IncomeSource(v))
	}
	engine.SetAnnualIncome(req.AnnualIncome)
	for _, v := range req.Situations {
		engine.ToggleSituation(domain.Situation(v))
	}
	for _, v := range req.FinancialBehavior {
		engine.ToggleBehavior(domain.Behavior(v))
	}
	engine.SetUrgency(req.Urgency)
	engine.SetContact(req.Contact.Name, req.Contact.Email, req.Contact.Phone)

	return engine.Answers(), nil
}

// persistResponses writes every submitted step answer concurrently. Failures
// are logged per row; the submission proceeds regardless.
func (s *Service) persistResponses(ctx context.Context, sessionID uuid.UUID, req transport.SubmitRequest) {
	rows := map[string]any{
		domain.StepKeyGate:      req.UsTaxObligations,
		domain.StepKeyResidence: req.Residence,
		domain.StepKeyIncome:    req.IncomeSources,
		domain.StepKeyBracket:   req.AnnualIncome,
		domain.StepKeySituation: req.Situations,
		domain.StepKeyBehavior:  req.FinancialBehavior,
		domain.StepKeyUrgency:   req.Urgency,
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for key, value := range rows {
		answer, err := json.Marshal(value)
		if err != nil {
			s.log.Error("response not serializable", "sessionId", sessionID, "question", key)
			continue
		}
		g.Go(func() error {
			if err := s.repo.UpsertResponse(ctx, sessionID, key, answer); err != nil {
				s.log.Error("response persist failed", "sessionId", sessionID, "question", key, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
