package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vaahan-portal/violation-portal/internal/domain"
	"github.com/vaahan-portal/violation-portal/internal/events"
	"github.com/vaahan-portal/violation-portal/internal/observability"
)

func TestSessionAuditorLogsAndCounts(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := observability.NewMetrics()
	dispatcher := events.NewSyncDispatcher()

	StartSessionAuditor(dispatcher, zap.New(core), metrics)

	ctx := context.Background()
	identity := &domain.Identity{Subject: "alice", Role: domain.RoleAdmin}
	_ = dispatcher.Publish(ctx, events.Event{ID: "1", Type: events.EventSessionStarted, Identity: identity, Timestamp: time.Now()})
	_ = dispatcher.Publish(ctx, events.Event{ID: "2", Type: events.EventSessionEnded, Identity: identity, Reason: events.EndReasonLogout, Timestamp: time.Now()})

	entries := logs.FilterMessage("session audit").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	fields := entries[1].ContextMap()
	if fields["subject"] != "alice" || fields["role"] != "ADMIN" || fields["reason"] != "logout" {
		t.Fatalf("fields = %v", fields)
	}

	families, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, family := range families {
		if family.GetName() != "portal_session_events_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	if total != 2 {
		t.Fatalf("expected 2 counted session events, got %v", total)
	}
}

func TestSessionAuditorNilDispatcher(t *testing.T) {
	StartSessionAuditor(nil, zap.NewNop(), nil)
}
