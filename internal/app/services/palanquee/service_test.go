package palanquee

import (
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/domain/session"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func sessionFixture() session.Session {
	return session.Session{
		Name:      "Fosse - matin",
		StartDate: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Location:  "Issoire",
	}
}

func seedParticipant(t *testing.T, store *memory.Store, sessionID, firstName, lastName string, encadrant, nitrox bool) questionnaire.Questionnaire {
	t.Helper()
	ctx := context.Background()

	p, err := store.CreatePerson(ctx, person.Person{FirstName: firstName, LastName: lastName, Email: firstName + "." + lastName + "@example.org"})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	q, err := store.CreateQuestionnaire(ctx, questionnaire.Questionnaire{
		PersonID:    p.ID,
		SessionID:   &sessionID,
		IsEncadrant: encadrant,
		WantsNitrox: nitrox,
	})
	if err != nil {
		t.Fatalf("create questionnaire: %v", err)
	}
	return q
}

func TestAddMemberDefaultsRoleAndGasFromQuestionnaire(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, sessionFixture())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	q := seedParticipant(t, store, sess.ID, "Alex", "Instructeur", true, false)

	rotation, err := svc.CreateRotation(ctx, sess.ID, 0)
	if err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	pal, err := svc.CreatePalanquee(ctx, rotation.ID, 0, nil)
	if err != nil {
		t.Fatalf("create palanquee: %v", err)
	}

	member, err := svc.AddMember(ctx, pal.ID, q.ID, "", "")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if member.Role != palanquee.RoleInstructor {
		t.Fatalf("expected instructor role default, got %v", member.Role)
	}
	if member.Gas != palanquee.GasAir {
		t.Fatalf("expected air gas default, got %v", member.Gas)
	}
}

func TestAddMemberDefaultsNitroxFromWantsFlag(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, sessionFixture())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	q := seedParticipant(t, store, sess.ID, "Bea", "Plongeuse", false, true)

	rotation, err := svc.CreateRotation(ctx, sess.ID, 0)
	if err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	pal, err := svc.CreatePalanquee(ctx, rotation.ID, 0, nil)
	if err != nil {
		t.Fatalf("create palanquee: %v", err)
	}

	member, err := svc.AddMember(ctx, pal.ID, q.ID, "", "")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if member.Role != palanquee.RoleDiver {
		t.Fatalf("expected diver role default, got %v", member.Role)
	}
	if member.Gas != palanquee.GasNitrox {
		t.Fatalf("expected nitrox gas default, got %v", member.Gas)
	}
}

func TestSessionViewListsUnassignedSortedByInstructorThenName(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, sessionFixture())
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	q1 := seedParticipant(t, store, sess.ID, "Zoe", "Aaron", false, false)
	q2 := seedParticipant(t, store, sess.ID, "Al", "Zephyr", true, false)
	q3 := seedParticipant(t, store, sess.ID, "Bo", "Aaron", false, false)

	rotation, err := svc.CreateRotation(ctx, sess.ID, 0)
	if err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	pal, err := svc.CreatePalanquee(ctx, rotation.ID, 0, nil)
	if err != nil {
		t.Fatalf("create palanquee: %v", err)
	}
	if _, err := svc.AddMember(ctx, pal.ID, q1.ID, "", ""); err != nil {
		t.Fatalf("add member: %v", err)
	}

	view, err := svc.SessionView(ctx, sess.ID)
	if err != nil {
		t.Fatalf("session view: %v", err)
	}
	if len(view.Unassigned) != 2 {
		t.Fatalf("expected 2 unassigned, got %d", len(view.Unassigned))
	}
	if view.Unassigned[0].ID != q2.ID {
		t.Fatalf("expected instructor first, got %+v", view.Unassigned[0])
	}
	if view.Unassigned[1].ID != q3.ID {
		t.Fatalf("expected Aaron/Bo second, got %+v", view.Unassigned[1])
	}

	if len(view.Rotations) != 1 || len(view.Rotations[0].Palanquees) != 1 {
		t.Fatalf("expected one rotation with one palanquee, got %+v", view.Rotations)
	}
	if len(view.Rotations[0].Palanquees[0].Members) != 1 {
		t.Fatalf("expected one assigned member, got %+v", view.Rotations[0].Palanquees[0].Members)
	}
}
