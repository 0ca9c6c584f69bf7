package app

import (
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/domain/outing"
)

func outingFixture() outing.Outing {
	return outing.Outing{
		Name:        "Week-end test",
		DaysCount:   1,
		DivesPerDay: 2,
		StartDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplicationLifecycle(t *testing.T) {
	application, err := New(Stores{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}

	ctx := context.Background()
	if err := application.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	domain, err := application.Competency.CreateDomain(ctx, competency.Domain{Name: "Theorie"})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}
	if domain.ID == "" {
		t.Fatalf("expected a generated domain id")
	}

	_, sessions, err := application.Outings.CreateOuting(ctx, outingFixture())
	if err != nil {
		t.Fatalf("create outing: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	if err := application.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestApplicationDefaultsUnsetStoresToMemory(t *testing.T) {
	application, err := New(Stores{}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	ctx := context.Background()

	_, sessions, err := application.Outings.CreateOuting(ctx, outingFixture())
	if err != nil {
		t.Fatalf("create outing: %v", err)
	}

	rot, err := application.Palanquees.CreateRotation(ctx, sessions[0].ID, 0)
	if err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	if rot.Number != 2 {
		t.Fatalf("got rotation number %d, want 2 (rotation #1 was auto-created by outing generation)", rot.Number)
	}
}
