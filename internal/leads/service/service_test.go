package service

import (
	"context"
	"sync"
	"testing"

	"nomadtax_backend/internal/events"
	"nomadtax_backend/internal/leads/repository"
	"nomadtax_backend/internal/leads/transport"
	"nomadtax_backend/platform/apperr"
	platformevents "nomadtax_backend/platform/events"
	"nomadtax_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads      map[uuid.UUID]repository.Lead
	lastParams repository.ListParams
}

func newFakeRepo(leads ...repository.Lead) *fakeRepo {
	f := &fakeRepo{leads: make(map[uuid.UUID]repository.Lead)}
	for _, l := range leads {
		f.leads[l.ID] = l
	}
	return f
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	f.lastParams = params
	out := make([]repository.Lead, 0, len(f.leads))
	for _, l := range f.leads {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) ResponsesForLead(_ context.Context, _ uuid.UUID) ([]repository.Response, error) {
	return []repository.Response{
		{QuestionKey: "us_tax_obligations", Answer: []byte("true")},
		{QuestionKey: "situations", Answer: []byte(`["expat"]`)},
	}, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) (repository.Lead, string, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, "", repository.ErrNotFound
	}
	old := lead.Status
	lead.Status = status
	f.leads[id] = lead
	return lead, old, nil
}

func (f *fakeRepo) Metrics(_ context.Context) (repository.Metrics, error) {
	m := repository.Metrics{Total: len(f.leads), ByStatus: map[string]int{}}
	for _, l := range f.leads {
		if l.Qualified {
			m.Qualified++
		}
		m.ByStatus[l.Status]++
	}
	return m, nil
}

type recordingBus struct {
	platformevents.Bus
	mu        sync.Mutex
	published []events.Event
}

func newRecordingBus() *recordingBus {
	log := logger.New("development")
	return &recordingBus{Bus: platformevents.NewInMemoryBus(log)}
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.mu.Lock()
	b.published = append(b.published, event)
	b.mu.Unlock()
	b.Bus.Publish(ctx, event)
}

func strPtr(v string) *string { return &v }

func sampleLead() repository.Lead {
	return repository.Lead{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Name:      "Jordan Reyes",
		Email:     "jordan@example.com",
		Phone:     strPtr("+15551234567"),
		Qualified: true,
		Score:     80,
		Reasons:   []string{"has US tax obligations"},
		Status:    "new",
	}
}

func TestListAppliesPagingDefaults(t *testing.T) {
	repo := newFakeRepo(sampleLead())
	svc := New(repo, newRecordingBus())

	resp, err := svc.List(context.Background(), transport.ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != defaultPageSize {
		t.Fatalf("paging = %d/%d, want 1/%d", resp.Page, resp.PageSize, defaultPageSize)
	}
	if repo.lastParams.Limit != defaultPageSize || repo.lastParams.Offset != 0 {
		t.Fatalf("repo params = %+v", repo.lastParams)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := New(newFakeRepo(), newRecordingBus())

	_, err := svc.List(context.Background(), transport.ListQuery{Status: "archived"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestGetIncludesResponses(t *testing.T) {
	lead := sampleLead()
	svc := New(newFakeRepo(lead), newRecordingBus())

	detail, err := svc.Get(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(detail.Responses) != 2 {
		t.Fatalf("responses = %d, want 2", len(detail.Responses))
	}
	if detail.Responses[0].QuestionKey != "us_tax_obligations" {
		t.Fatalf("first response = %q", detail.Responses[0].QuestionKey)
	}
}

func TestGetUnknownLeadIsNotFound(t *testing.T) {
	svc := New(newFakeRepo(), newRecordingBus())

	_, err := svc.Get(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateStatusPublishesChange(t *testing.T) {
	lead := sampleLead()
	bus := newRecordingBus()
	svc := New(newFakeRepo(lead), bus)

	resp, err := svc.UpdateStatus(context.Background(), lead.ID, transport.UpdateStatusRequest{Status: "contacted"})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if resp.Status != "contacted" {
		t.Fatalf("status = %q, want contacted", resp.Status)
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(bus.published))
	}
	change, ok := bus.published[0].(events.LeadStatusChanged)
	if !ok {
		t.Fatalf("published %T, want LeadStatusChanged", bus.published[0])
	}
	if change.OldStatus != "new" || change.NewStatus != "contacted" {
		t.Fatalf("change = %+v", change)
	}
}

func TestMetricsComputesQualifiedRate(t *testing.T) {
	qualified := sampleLead()
	unqualified := sampleLead()
	unqualified.Qualified = false
	svc := New(newFakeRepo(qualified, unqualified), newRecordingBus())

	m, err := svc.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.Total != 2 || m.Qualified != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", m.Total, m.Qualified)
	}
	if m.QualifiedRate != 0.5 {
		t.Fatalf("rate = %v, want 0.5", m.QualifiedRate)
	}
	if m.ByStatus["new"] != 2 {
		t.Fatalf("byStatus = %v", m.ByStatus)
	}
}

func TestUpdateStatusNoopDoesNotPublish(t *testing.T) {
	lead := sampleLead()
	bus := newRecordingBus()
	svc := New(newFakeRepo(lead), bus)

	if _, err := svc.UpdateStatus(context.Background(), lead.ID, transport.UpdateStatusRequest{Status: "new"}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.published) != 0 {
		t.Fatalf("published events = %d, want 0", len(bus.published))
	}
}
