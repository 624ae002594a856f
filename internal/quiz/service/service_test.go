package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nomadtax_backend/internal/quiz/domain"
	"nomadtax_backend/internal/quiz/repository"
	"nomadtax_backend/internal/quiz/transport"
	"nomadtax_backend/platform/apperr"
	"nomadtax_backend/platform/events"
	"nomadtax_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu        sync.Mutex
	responses map[string][]byte // sessionID/questionKey
	leads     map[uuid.UUID]repository.Lead
	failRows  bool
	failLead  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		responses: make(map[string][]byte),
		leads:     make(map[uuid.UUID]repository.Lead),
	}
}

func (f *fakeRepo) UpsertResponse(_ context.Context, sessionID uuid.UUID, questionKey string, answer []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRows {
		return errors.New("insert failed")
	}
	f.responses[sessionID.String()+"/"+questionKey] = answer
	return nil
}

func (f *fakeRepo) CreateLead(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLead != nil {
		return repository.Lead{}, f.failLead
	}
	if _, exists := f.leads[params.SessionID]; exists {
		return repository.Lead{}, repository.ErrDuplicateSubmission
	}
	lead := repository.Lead{
		ID:        uuid.New(),
		SessionID: params.SessionID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Qualified: params.Qualified,
		Score:     params.Score,
		Reasons:   params.Reasons,
		Status:    "new",
	}
	f.leads[params.SessionID] = lead
	return lead, nil
}

func (f *fakeRepo) LeadBySession(_ context.Context, sessionID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[sessionID]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

type fakeForwarder struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeForwarder) Forward(_ context.Context, eventType string, _ map[string]any) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return "accepted"
}

func (f *fakeForwarder) seen(eventType string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e == eventType {
			return true
		}
	}
	return false
}

func newTestService(repo *fakeRepo, fwd *fakeForwarder) *Service {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(repo, domain.WeightedStrategy{}, bus, fwd, log)
}

func boolPtr(v bool) *bool { return &v }

func validSubmit() transport.SubmitRequest {
	return transport.SubmitRequest{
		UsTaxObligations: boolPtr(true),
		Residence:        "Lisbon, Portugal",
		IncomeSources:    []string{"business"},
		AnnualIncome:     3,
		Situations:       []string{"expat"},
		Urgency:          0,
		Contact: transport.ContactPayload{
			Name:  "Jordan Reyes",
			Email: "jordan@example.com",
			Phone: "+1 (555) 123-4567",
		},
		Source: "landing-cta",
	}
}

func TestStartSessionPrefillRecordsGateAndSkips(t *testing.T) {
	repo := newFakeRepo()
	fwd := &fakeForwarder{}
	svc := newTestService(repo, fwd)

	resp, err := svc.StartSession(context.Background(), transport.StartSessionRequest{
		UsTaxObligations: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if resp.Step != 2 {
		t.Fatalf("step = %d, want 2", resp.Step)
	}
	if got := repo.responses[resp.SessionID.String()+"/"+domain.StepKeyGate]; string(got) != "true" {
		t.Fatalf("stored gate answer = %q, want true", got)
	}
	if !fwd.seen("quiz.session.started") {
		t.Fatal("session start was not forwarded")
	}
}

func TestStartSessionSurvivesPrefillPersistFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failRows = true
	svc := newTestService(repo, &fakeForwarder{})

	resp, err := svc.StartSession(context.Background(), transport.StartSessionRequest{
		UsTaxObligations: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if resp.Step != 2 {
		t.Fatalf("step = %d, want 2 despite failed prefill write", resp.Step)
	}
}

func TestStartSessionWithoutPrefillStartsAtOne(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeForwarder{})

	resp, err := svc.StartSession(context.Background(), transport.StartSessionRequest{})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if resp.Step != 1 {
		t.Fatalf("step = %d, want 1", resp.Step)
	}
	if resp.TotalSteps != len(domain.DefaultFlow()) {
		t.Fatalf("totalSteps = %d, want %d", resp.TotalSteps, len(domain.DefaultFlow()))
	}
}

func TestRecordAnswerRejectsUnknownQuestion(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeForwarder{})

	_, err := svc.RecordAnswer(context.Background(), uuid.New(), transport.AnswerRequest{
		QuestionKey: "favorite_color",
		Value:       "blue",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRecordAnswerSwallowsPersistFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failRows = true
	svc := newTestService(repo, &fakeForwarder{})

	stored, err := svc.RecordAnswer(context.Background(), uuid.New(), transport.AnswerRequest{
		QuestionKey: domain.StepKeyResidence,
		Value:       "Lisbon, Portugal",
	})
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if stored {
		t.Fatal("stored = true despite failing repository")
	}
}

func TestRecordAnswerStoresValue(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeForwarder{})
	sessionID := uuid.New()

	stored, err := svc.RecordAnswer(context.Background(), sessionID, transport.AnswerRequest{
		QuestionKey: domain.StepKeyResidence,
		Value:       "Lisbon, Portugal",
	})
	if err != nil || !stored {
		t.Fatalf("RecordAnswer = %v/%v, want stored", stored, err)
	}
	if got := repo.responses[sessionID.String()+"/"+domain.StepKeyResidence]; string(got) != `"Lisbon, Portugal"` {
		t.Fatalf("stored answer = %q", got)
	}
}

func TestSubmitScoresPersistsAndForwards(t *testing.T) {
	repo := newFakeRepo()
	fwd := &fakeForwarder{}
	svc := newTestService(repo, fwd)
	sessionID := uuid.New()

	resp, err := svc.Submit(context.Background(), sessionID, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Qualified {
		t.Fatal("full-signal submission did not qualify")
	}
	if resp.Score != 95 {
		t.Fatalf("score = %d, want 95", resp.Score)
	}
	if len(resp.Reasons) != 5 {
		t.Fatalf("reasons = %v, want all five", resp.Reasons)
	}

	lead, err := repo.LeadBySession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("lead not persisted: %v", err)
	}
	if lead.Phone == nil || *lead.Phone != "+15551234567" {
		t.Fatalf("phone = %v, want normalized E.164", lead.Phone)
	}
	if !fwd.seen("quiz.lead.submitted") {
		t.Fatal("submission was not forwarded")
	}
	// all seven answer rows persisted
	if got := len(repo.responses); got != 7 {
		t.Fatalf("persisted responses = %d, want 7", got)
	}
}

func TestSubmitWithoutPhoneCreatesLead(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeForwarder{})
	sessionID := uuid.New()

	req := validSubmit()
	req.Contact.Phone = ""
	resp, err := svc.Submit(context.Background(), sessionID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Qualified {
		t.Fatal("submission without phone did not qualify")
	}

	lead, err := repo.LeadBySession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("lead not persisted: %v", err)
	}
	if lead.Phone != nil {
		t.Fatalf("phone = %q, want unset", *lead.Phone)
	}
}

func TestSubmitRejectsUnansweredGate(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeForwarder{})

	req := validSubmit()
	req.UsTaxObligations = nil
	_, err := svc.Submit(context.Background(), uuid.New(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSubmitRejectsInvalidContact(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeForwarder{})

	req := validSubmit()
	req.Contact.Email = "jordan@example.con"
	_, err := svc.Submit(context.Background(), uuid.New(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details == nil {
		t.Fatal("validation error carried no field details")
	}
}

func TestSubmitDuplicateSessionConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeForwarder{})
	sessionID := uuid.New()

	if _, err := svc.Submit(context.Background(), sessionID, validSubmit()); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), sessionID, validSubmit())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestSubmitSurvivesResponsePersistFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failRows = true
	svc := newTestService(repo, &fakeForwarder{})
	sessionID := uuid.New()

	// Response rows fail but the lead must still be created. The fake only
	// fails UpsertResponse, not CreateLead.
	resp, err := svc.Submit(context.Background(), sessionID, validSubmit())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := repo.LeadBySession(context.Background(), sessionID); err != nil {
		t.Fatalf("lead missing after response failures: %v", err)
	}
	if !resp.Qualified {
		t.Fatal("qualification lost when responses failed")
	}
}
