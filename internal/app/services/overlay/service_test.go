package overlay

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/domain/leveltemplate"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/storage/memory"
	"github.com/divingclub/opscore/internal/platform/pdf"
)

func fixturePDF() []byte {
	b := pdf.NewBuilder(612, 792)
	b.AddPage([]byte("BT /F1 12 Tf 50 700 Td (N1 template) Tj ET"))
	return b.Build()
}

func TestUploadTemplateCountsPages(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	tpl, err := svc.UploadTemplate(ctx, "N1", "n1.pdf", fixturePDF())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if tpl.PageCount != 1 {
		t.Fatalf("got page count %d, want 1", tpl.PageCount)
	}
}

func TestUploadTemplateRejectsMalformedData(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	if _, err := svc.UploadTemplate(ctx, "N1", "garbage.pdf", []byte("not a pdf")); err == nil {
		t.Fatalf("expected an error for malformed data")
	}
}

func TestFillOverlaysOnlyValidatedSkills(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	if _, err := svc.UploadTemplate(ctx, "N1", "n1.pdf", fixturePDF()); err != nil {
		t.Fatalf("upload: %v", err)
	}

	domain, err := store.CreateDomain(ctx, competency.Domain{Name: "Theorie"})
	if err != nil {
		t.Fatalf("create domain: %v", err)
	}
	module, err := store.CreateModule(ctx, competency.Module{DomainID: domain.ID, Name: "Physique"})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}
	validated, err := store.CreateSkill(ctx, competency.NewSkill(module.ID, "Loi de Boyle"))
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}
	unvalidated, err := store.CreateSkill(ctx, competency.NewSkill(module.ID, "Loi de Dalton"))
	if err != nil {
		t.Fatalf("create skill: %v", err)
	}

	diver, err := store.CreatePerson(ctx, person.Person{FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@example.org"})
	if err != nil {
		t.Fatalf("create diver: %v", err)
	}
	validator, err := store.CreatePerson(ctx, person.Person{FirstName: "Marie", LastName: "Martin", Email: "marie.martin@example.org"})
	if err != nil {
		t.Fatalf("create validator: %v", err)
	}
	stage, err := store.CreateStage(ctx, competency.Stage{Code: "VALIDATED", Name: "Validee"})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}

	if _, err := store.UpsertValidation(ctx, competency.Validation{
		PersonID: diver.ID, SkillID: validated.ID, StageID: stage.ID,
		ValidatorID: validator.ID, Date: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("upsert validation: %v", err)
	}

	if _, err := svc.SetSkillPosition(ctx, leveltemplate.NewSkillPosition(validated.ID, "N1", 1, 60, 700, 200, 12)); err != nil {
		t.Fatalf("set position (validated): %v", err)
	}
	if _, err := svc.SetSkillPosition(ctx, leveltemplate.NewSkillPosition(unvalidated.ID, "N1", 1, 60, 650, 200, 12)); err != nil {
		t.Fatalf("set position (unvalidated): %v", err)
	}

	out, err := svc.Fill(ctx, diver, "N1")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !bytes.Contains(out, []byte("15/06/2026 - Marie Martin")) {
		t.Fatalf("expected validated overlay text, got:\n%s", out)
	}

	count := bytes.Count(out, []byte("BT /F1"))
	if count != 1 {
		t.Fatalf("expected exactly one overlay Tj operator, got %d in:\n%s", count, out)
	}
}

func TestGetPageDimensionsReadsMediaBox(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil)
	ctx := context.Background()

	if _, err := svc.UploadTemplate(ctx, "N1", "n1.pdf", fixturePDF()); err != nil {
		t.Fatalf("upload: %v", err)
	}

	w, h, err := svc.GetPageDimensions(ctx, "N1", 1)
	if err != nil {
		t.Fatalf("get dimensions: %v", err)
	}
	if w != 612 || h != 792 {
		t.Fatalf("got %vx%v, want 612x792", w, h)
	}
}
