package safetysheet

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/domain/session"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func strPtr(s string) *string { return &s }

func TestGenerateProducesWellFormedMultiPagePDF(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	sess, err := store.CreateSession(ctx, session.Session{
		Name:      "Carriere - matin",
		StartDate: time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
		Location:  "Carriere de Champvermeil",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	dp, err := store.CreatePerson(ctx, person.Person{FirstName: "Jean", LastName: "Dupont", DivingLevel: strPtr("N4")})
	if err != nil {
		t.Fatalf("create person: %v", err)
	}
	sessID := sess.ID
	dpQ, err := store.CreateQuestionnaire(ctx, questionnaire.Questionnaire{
		PersonID: dp.ID, SessionID: &sessID, IsDirecteurPlongee: true, IsEncadrant: true,
	})
	if err != nil {
		t.Fatalf("create questionnaire: %v", err)
	}

	rot, err := store.CreateRotation(ctx, palanquee.Rotation{SessionID: sess.ID, Number: 1})
	if err != nil {
		t.Fatalf("create rotation: %v", err)
	}
	pal, err := store.CreatePalanquee(ctx, palanquee.Palanquee{RotationID: rot.ID, Number: 1})
	if err != nil {
		t.Fatalf("create palanquee: %v", err)
	}
	if _, err := store.AddMember(ctx, palanquee.Member{PalanqueeID: pal.ID, QuestionnaireID: dpQ.ID, Role: palanquee.RoleInstructor, Gas: palanquee.GasAir}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	out, err := svc.Generate(ctx, sess, Options{Club: "CSAM", Position: "46.5 3.1", SecuritySurface: "Radio VHF"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-1.5")) {
		t.Fatalf("expected a PDF header")
	}
	if !bytes.Contains(out, []byte("ROTATION 1")) {
		t.Fatalf("expected a rendered rotation header, got:\n%s", out)
	}
	if !bytes.Contains(out, []byte("DUPONT Jean")) {
		t.Fatalf("expected member name rendered, got:\n%s", out)
	}
}

func TestRotationHeightAccountsForEmptyPalanquees(t *testing.T) {
	r := rotation{number: 1, pals: []pal{{number: 1}, {number: 2, members: []member{{name: "A"}, {name: "B"}}}}}
	got := rotationHeight(r)
	want := rotationHeaderHeight + headerHeight + (1+2)*rowHeight + 15
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
