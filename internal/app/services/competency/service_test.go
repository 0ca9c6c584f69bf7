package competency

import (
	"context"
	"testing"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/storage/memory"
)

func seedTree(t *testing.T, store *memory.Store) (competency.Domain, competency.Module, competency.Skill) {
	t.Helper()
	ctx := context.Background()

	domain, err := store.CreateDomain(ctx, competency.Domain{DivingLevel: "N1", Name: "Theory"})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}
	module, err := store.CreateModule(ctx, competency.Module{DomainID: domain.ID, Name: "Physics"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	skill, err := store.CreateSkill(ctx, competency.NewSkill(module.ID, "Boyle's law"))
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	return domain, module, skill
}

func TestDeleteStageBlockedWhileInUse(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	_, _, skill := seedTree(t, store)
	stage, err := store.CreateStage(ctx, competency.Stage{Code: "acquired", Name: "Acquired"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}
	if _, err := store.UpsertValidation(ctx, competency.Validation{
		PersonID: "person-1", SkillID: skill.ID, StageID: stage.ID, ValidatorID: "validator-1",
	}); err != nil {
		t.Fatalf("upsert validation: %v", err)
	}

	err = svc.DeleteStage(ctx, stage.ID)
	if !apperr.Is(err, apperr.CodeStageInUse) {
		t.Fatalf("expected StageInUse, got %v", err)
	}
}

func TestDeleteDomainCascadesToModulesSkillsAndValidations(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	domain, module, skill := seedTree(t, store)
	stage, err := store.CreateStage(ctx, competency.Stage{Code: "practiced", Name: "Practiced"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}
	if _, err := store.UpsertValidation(ctx, competency.Validation{
		PersonID: "person-1", SkillID: skill.ID, StageID: stage.ID, ValidatorID: "validator-1",
	}); err != nil {
		t.Fatalf("upsert validation: %v", err)
	}

	if err := svc.DeleteDomain(ctx, domain.ID); err != nil {
		t.Fatalf("delete domain: %v", err)
	}

	if _, err := store.GetModule(ctx, module.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected module gone, got %v", err)
	}
	if _, err := store.GetSkill(ctx, skill.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected skill gone, got %v", err)
	}
	if _, err := store.GetValidation(ctx, "person-1", skill.ID); !apperr.Is(err, apperr.CodeNotFound) {
		t.Fatalf("expected validation gone, got %v", err)
	}
}

func TestCreateSkillDefaultsMinValidatorLevel(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	_, module, _ := seedTree(t, store)
	skill, err := svc.CreateSkill(ctx, competency.Skill{ModuleID: module.ID, Name: "Buoyancy"})
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	if skill.MinValidatorLevel != "E2" {
		t.Fatalf("expected default min validator level E2, got %q", skill.MinValidatorLevel)
	}
}

func TestListDomainsOrderedBySortOrderThenName(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	if _, err := store.CreateDomain(ctx, competency.Domain{Name: "Zebra", SortOrder: 1}); err != nil {
		t.Fatalf("create domain: %v", err)
	}
	if _, err := store.CreateDomain(ctx, competency.Domain{Name: "Alpha", SortOrder: 0}); err != nil {
		t.Fatalf("create domain: %v", err)
	}

	domains, err := svc.ListDomains(ctx)
	if err != nil {
		t.Fatalf("list domains: %v", err)
	}
	if len(domains) != 2 || domains[0].Name != "Alpha" || domains[1].Name != "Zebra" {
		t.Fatalf("unexpected order: %+v", domains)
	}
}
