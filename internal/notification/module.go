package notification

import (
	"context"
	"log/slog"
	"time"

	"nomadtax_backend/internal/events"
	"nomadtax_backend/platform/config"
	"nomadtax_backend/platform/logger"
)

// Module subscribes to lead events and sends team notifications. It has no
// HTTP surface.
type Module struct {
	sender Sender
	cfg    config.EmailConfig
	log    *logger.Logger
}

// NewModule wires the notification module and subscribes it to the bus.
// With email disabled the module subscribes nothing and does nothing.
func NewModule(bus events.Bus, cfg config.EmailConfig, log *logger.Logger) *Module {
	m := &Module{
		sender: NewSMTPSender(cfg),
		cfg:    cfg,
		log:    log,
	}

	if cfg.GetEmailEnabled() {
		bus.Subscribe(events.LeadSubmitted{}.EventName(), events.HandlerFunc(m.onLeadSubmitted))
	}
	return m
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

func (m *Module) onLeadSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadSubmitted)
	if !ok {
		return nil
	}
	// Only qualified leads warrant a team email; the dashboard catches the
	// rest.
	if !e.Qualified {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	err := m.sender.SendQualifiedLead(ctx, QualifiedLeadData{
		Name:    e.Name,
		Email:   e.Email,
		Phone:   e.Phone,
		Score:   e.Score,
		Reasons: e.Reasons,
	})
	if err != nil {
		m.log.Error("qualified lead notification failed",
			slog.String("lead_id", e.LeadID.String()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
