package validation

import (
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func strPtr(s string) *string { return &s }

func seedSkill(t *testing.T, store *memory.Store, minValidatorLevel string) competency.Skill {
	t.Helper()
	ctx := context.Background()

	domain, err := store.CreateDomain(ctx, competency.Domain{Name: "N1 theory"})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}
	module, err := store.CreateModule(ctx, competency.Module{DomainID: domain.ID, Name: "Physics"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	skill := competency.NewSkill(module.ID, "Boyle's law")
	skill.MinValidatorLevel = minValidatorLevel
	skill, err = store.CreateSkill(ctx, skill)
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	return skill
}

func TestRecordValidationRejectsInsufficientValidatorLevel(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	skill := seedSkill(t, store, "E2")
	stage, err := store.CreateStage(ctx, competency.Stage{Code: "acquired", Name: "Acquired"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	subject := person.Person{ID: "subject-1"}
	validator := person.Person{ID: "validator-1", DivingLevel: strPtr("N3")}

	_, err = svc.RecordValidation(ctx, subject, validator, skill.ID, stage.ID, time.Now(), nil)
	if !apperr.Is(err, apperr.CodeInsufficientValidatorLevel) {
		t.Fatalf("expected InsufficientValidatorLevel, got %v", err)
	}
}

func TestRecordValidationAcceptsSufficientLevelAndReplaces(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	skill := seedSkill(t, store, "E2")
	stage1, err := store.CreateStage(ctx, competency.Stage{Code: "discovered", Name: "Discovered"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}
	stage2, err := store.CreateStage(ctx, competency.Stage{Code: "acquired", Name: "Acquired"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	subject := person.Person{ID: "subject-1"}
	validator := person.Person{ID: "validator-1", DivingLevel: strPtr("E2")}

	if _, err := svc.RecordValidation(ctx, subject, validator, skill.ID, stage1.ID, time.Now(), nil); err != nil {
		t.Fatalf("first validation: %v", err)
	}
	out, err := svc.RecordValidation(ctx, subject, validator, skill.ID, stage2.ID, time.Now(), nil)
	if err != nil {
		t.Fatalf("second validation: %v", err)
	}
	if out.StageID != stage2.ID {
		t.Fatalf("expected replaced stage %s, got %s", stage2.ID, out.StageID)
	}

	all, err := store.ListValidationsByPerson(ctx, subject.ID)
	if err != nil {
		t.Fatalf("list validations: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one validation row per pair, got %d", len(all))
	}
}

func TestRecordValidationRejectsSelfValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	skill := seedSkill(t, store, "N1")
	stage, err := store.CreateStage(ctx, competency.Stage{Code: "acquired", Name: "Acquired"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	same := person.Person{ID: "person-1", DivingLevel: strPtr("E2")}
	if _, err := svc.RecordValidation(ctx, same, same, skill.ID, stage.ID, time.Now(), nil); !apperr.Is(err, apperr.CodeValidation) {
		t.Fatalf("expected Validation error for self-validation, got %v", err)
	}
}

func TestProgressOfComputesDomainPercentage(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	skill := seedSkill(t, store, "N1")
	stage, err := store.CreateStage(ctx, competency.Stage{Code: "acquired", Name: "Acquired"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	subject := person.Person{ID: "subject-1"}
	validator := person.Person{ID: "validator-1", DivingLevel: strPtr("E2")}
	if _, err := svc.RecordValidation(ctx, subject, validator, skill.ID, stage.ID, time.Now(), nil); err != nil {
		t.Fatalf("record validation: %v", err)
	}

	progress, err := svc.ProgressOf(ctx, subject)
	if err != nil {
		t.Fatalf("progress of: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("expected one accessible domain, got %d", len(progress))
	}
	if progress[0].Percentage != 100 {
		t.Fatalf("expected 100%% progress, got %v", progress[0].Percentage)
	}
}
