package notification

import (
	"context"
	"strings"
	"testing"

	"nomadtax_backend/internal/events"
	"nomadtax_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeSender struct {
	sent []QualifiedLeadData
}

func (f *fakeSender) SendQualifiedLead(_ context.Context, data QualifiedLeadData) error {
	f.sent = append(f.sent, data)
	return nil
}

func newTestModule(sender Sender) *Module {
	return &Module{sender: sender, log: logger.New("development")}
}

func submittedEvent(qualified bool) events.LeadSubmitted {
	return events.LeadSubmitted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		SessionID: uuid.New(),
		Name:      "Jordan Reyes",
		Email:     "jordan@example.com",
		Phone:     "+15551234567",
		Qualified: qualified,
		Score:     80,
		Reasons:   []string{"has US tax obligations"},
	}
}

func TestQualifiedLeadTriggersEmail(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender)

	if err := m.onLeadSubmitted(context.Background(), submittedEvent(true)); err != nil {
		t.Fatalf("onLeadSubmitted: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(sender.sent))
	}
	if sender.sent[0].Name != "Jordan Reyes" || sender.sent[0].Score != 80 {
		t.Fatalf("email data = %+v", sender.sent[0])
	}
}

func TestUnqualifiedLeadSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModule(sender)

	if err := m.onLeadSubmitted(context.Background(), submittedEvent(false)); err != nil {
		t.Fatalf("onLeadSubmitted: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("emails sent = %d, want 0", len(sender.sent))
	}
}

func TestQualifiedLeadTemplateRenders(t *testing.T) {
	content, err := renderTemplate("qualified_lead.html", QualifiedLeadData{
		Name:    "Jordan Reyes",
		Email:   "jordan@example.com",
		Phone:   "+15551234567",
		Score:   80,
		Reasons: []string{"has US tax obligations", "lives or plans to live abroad"},
	})
	if err != nil {
		t.Fatalf("renderTemplate: %v", err)
	}
	for _, want := range []string{"Jordan Reyes", "jordan@example.com", "80", "lives or plans to live abroad"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered template missing %q", want)
		}
	}
}
