package outing

import (
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/domain/outing"
	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func TestCreateOutingPaginatesDivesAndNamesSlots(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, store, nil)
	ctx := context.Background()

	o, sessions, err := svc.CreateOuting(ctx, outing.Outing{
		Name:        "Week-end Hyères",
		DaysCount:   3,
		DivesPerDay: 2,
		StartDate:   time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create outing: %v", err)
	}

	wantEnd := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	if !o.EndDate.Equal(wantEnd) {
		t.Fatalf("got end date %v, want %v", o.EndDate, wantEnd)
	}
	if o.SummaryToken == nil || *o.SummaryToken == "" {
		t.Fatalf("expected a minted summary token")
	}
	if len(sessions) != 6 {
		t.Fatalf("got %d sessions, want 6", len(sessions))
	}

	for i, s := range sessions {
		if s.DiveNumber == nil || *s.DiveNumber != i+1 {
			t.Fatalf("session %d: got dive number %v, want %d", i, s.DiveNumber, i+1)
		}
		if s.OutingID == nil || *s.OutingID != o.ID {
			t.Fatalf("session %d: missing outing reference", i)
		}
		rotations, err := store.ListRotationsBySession(ctx, s.ID)
		if err != nil {
			t.Fatalf("list rotations: %v", err)
		}
		if len(rotations) != 1 || rotations[0].Number != 1 {
			t.Fatalf("session %d: expected exactly one rotation #1, got %+v", i, rotations)
		}
	}

	if sessions[0].Name != "Plongée 1 - Jour 1 Matin" {
		t.Fatalf("got name %q", sessions[0].Name)
	}
	if sessions[1].Name != "Plongée 2 - Jour 1 Après-midi" {
		t.Fatalf("got name %q", sessions[1].Name)
	}
	if sessions[5].Name != "Plongée 6 - Jour 3 Après-midi" {
		t.Fatalf("got name %q", sessions[5].Name)
	}
}

func TestCreateOutingRejectsOutOfRangeDaysCount(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, store, nil)
	ctx := context.Background()

	_, _, err := svc.CreateOuting(ctx, outing.Outing{DaysCount: 15, DivesPerDay: 1, StartDate: time.Now().UTC()})
	if err == nil {
		t.Fatalf("expected a validation error for days_count=15")
	}
}

func TestCopyAttendeesCountsNewAndDuplicateAssignees(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, store, nil)
	ctx := context.Background()

	o, sessions, err := svc.CreateOuting(ctx, outing.Outing{DaysCount: 1, DivesPerDay: 2, StartDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("create outing: %v", err)
	}
	source, target := sessions[0], sessions[1]

	alice, _ := store.CreatePerson(ctx, person.Person{FirstName: "Alice", LastName: "Martin", Email: "alice.martin@example.org"})
	bob, _ := store.CreatePerson(ctx, person.Person{FirstName: "Bob", LastName: "Durand", Email: "bob.durand@example.org"})
	outingID := o.ID
	qAlice, _ := store.CreateQuestionnaire(ctx, questionnaire.Questionnaire{PersonID: alice.ID, OutingID: &outingID})
	qBob, _ := store.CreateQuestionnaire(ctx, questionnaire.Questionnaire{PersonID: bob.ID, OutingID: &outingID})

	sourceRotations, _ := store.ListRotationsBySession(ctx, source.ID)
	sourcePal, err := store.CreatePalanquee(ctx, palanquee.Palanquee{RotationID: sourceRotations[0].ID, Number: 1})
	if err != nil {
		t.Fatalf("create palanquee: %v", err)
	}
	if _, err := store.AddMember(ctx, palanquee.Member{PalanqueeID: sourcePal.ID, QuestionnaireID: qAlice.ID, Role: palanquee.RoleDiver, Gas: palanquee.GasAir}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := store.AddMember(ctx, palanquee.Member{PalanqueeID: sourcePal.ID, QuestionnaireID: qBob.ID, Role: palanquee.RoleDiver, Gas: palanquee.GasAir}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	targetRotations, _ := store.ListRotationsBySession(ctx, target.ID)
	targetPal, err := store.CreatePalanquee(ctx, palanquee.Palanquee{RotationID: targetRotations[0].ID, Number: 1})
	if err != nil {
		t.Fatalf("create palanquee: %v", err)
	}
	if _, err := store.AddMember(ctx, palanquee.Member{PalanqueeID: targetPal.ID, QuestionnaireID: qBob.ID, Role: palanquee.RoleDiver, Gas: palanquee.GasAir}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	copied, skipped, err := svc.CopyAttendees(ctx, source.ID, target.ID)
	if err != nil {
		t.Fatalf("copy attendees: %v", err)
	}
	if copied != 1 || skipped != 1 {
		t.Fatalf("got copied=%d skipped=%d, want copied=1 skipped=1", copied, skipped)
	}
}

func TestDiveDirectorCapEnforced(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, store, nil)
	ctx := context.Background()

	_, sessions, err := svc.CreateOuting(ctx, outing.Outing{DaysCount: 1, DivesPerDay: 1, StartDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create outing: %v", err)
	}
	sess := sessions[0]

	for i := 0; i < 4; i++ {
		p, _ := store.CreatePerson(ctx, person.Person{FirstName: "D", LastName: "X", Email: "d" + string(rune('0'+i)) + "@example.org"})
		q, _ := store.CreateQuestionnaire(ctx, questionnaire.Questionnaire{PersonID: p.ID, SessionID: &sess.ID})
		if _, err := svc.AddDiveDirector(ctx, sess.ID, q.ID); err != nil {
			t.Fatalf("add director %d: %v", i, err)
		}
	}

	p, _ := store.CreatePerson(ctx, person.Person{FirstName: "D", LastName: "Fifth", Email: "d.fifth@example.org"})
	q, _ := store.CreateQuestionnaire(ctx, questionnaire.Questionnaire{PersonID: p.ID, SessionID: &sess.ID})
	if _, err := svc.AddDiveDirector(ctx, sess.ID, q.ID); err == nil {
		t.Fatalf("expected TooManyDirectors on the fifth assignment")
	}
}
