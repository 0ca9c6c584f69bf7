package questionnaire

import (
	"context"
	"testing"

	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNormalizeEncadrantUpgrade(t *testing.T) {
	p := person.Person{DivingLevel: strPtr("N4,E2")}
	q := questionnaire.Questionnaire{
		IsEncadrant: false, WantsSecondReg: false,
		WantsStab: false, StabSize: strPtr("L"),
		HasCar: true, CarSeats: intPtr(0), ComesFromIssoire: true,
	}

	out := Normalize(q, p)

	if !out.IsEncadrant {
		t.Fatalf("expected is_encadrant derived from diving level")
	}
	if !out.WantsSecondReg {
		t.Fatalf("expected wants_second_reg upgraded for an encadrant")
	}
	if out.StabSize != nil {
		t.Fatalf("expected stab_size cleared when wants_stab is false")
	}
	if out.CarSeats == nil || *out.CarSeats != 1 {
		t.Fatalf("expected car_seats floored to 1, got %v", out.CarSeats)
	}
}

func TestNormalizeNonIssoireDeniesCar(t *testing.T) {
	p := person.Person{DivingLevel: strPtr("N2")}
	q := questionnaire.Questionnaire{
		ComesFromIssoire: false, HasCar: true, CarSeats: intPtr(4),
	}

	out := Normalize(q, p)

	if out.HasCar {
		t.Fatalf("expected has_car cleared when not coming from issoire")
	}
	if out.CarSeats != nil {
		t.Fatalf("expected car_seats cleared, got %v", *out.CarSeats)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	p := person.Person{DivingLevel: strPtr("N1")}
	q := questionnaire.Questionnaire{
		HasCar: true, CarSeats: intPtr(3), ComesFromIssoire: true,
		WantsStab: true, StabSize: strPtr("M"),
	}

	once := Normalize(q, p)
	twice := Normalize(once, p)

	if once.IsEncadrant != twice.IsEncadrant ||
		once.WantsSecondReg != twice.WantsSecondReg ||
		once.HasCar != twice.HasCar ||
		(once.CarSeats == nil) != (twice.CarSeats == nil) ||
		(once.CarSeats != nil && *once.CarSeats != *twice.CarSeats) ||
		(once.StabSize == nil) != (twice.StabSize == nil) {
		t.Fatalf("expected normalize to be idempotent: %+v vs %+v", once, twice)
	}
}

func TestSubmitRejectsBothTargetsUnset(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	_, err := svc.Submit(context.Background(), questionnaire.Questionnaire{}, person.Person{ID: "p1"})
	if err == nil {
		t.Fatalf("expected validation error when neither session nor outing is set")
	}
}

func TestSubmitPersistsNormalizedQuestionnaire(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	sessionID := "session-1"
	p := person.Person{ID: "p1", DivingLevel: strPtr("N5,E2")}

	out, err := svc.Submit(context.Background(), questionnaire.Questionnaire{
		SessionID: &sessionID, WantsStab: false, StabSize: strPtr("XL"),
	}, p)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.IsEncadrant {
		t.Fatalf("expected encadrant derived from person level")
	}
	if out.StabSize != nil {
		t.Fatalf("expected stab size cleared")
	}

	listed, err := svc.ListBySession(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one questionnaire, got %d", len(listed))
	}
}
