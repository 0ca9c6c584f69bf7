// Package overlay manages per-level PDF templates and the skill coordinate
// positions placed on them, and renders a person's filled-in document by
// overlaying each validated skill's date and validator.
package overlay

import (
	"context"
	"fmt"
	"time"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/leveltemplate"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/metrics"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/internal/platform/pdf"
	"github.com/divingclub/opscore/pkg/logger"
)

const metricKind = "overlay"

// Service manages level templates, their skill positions, and renders
// filled documents.
type Service struct {
	templates  storage.LevelTemplateStore
	competency storage.CompetencyStore
	persons    storage.PersonStore
	log        *logger.Logger
}

// New constructs a template-overlay engine.
func New(templates storage.LevelTemplateStore, competency storage.CompetencyStore, persons storage.PersonStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("overlay")
	}
	return &Service{templates: templates, competency: competency, persons: persons, log: log}
}

// UploadTemplate loads data structurally to count its pages, then replaces
// any previous template for level, cascading its skill positions away.
func (s *Service) UploadTemplate(ctx context.Context, level, fileName string, data []byte) (leveltemplate.Template, error) {
	pageCount, err := pdf.PageCount(data)
	if err != nil {
		return leveltemplate.Template{}, apperr.Validation("uploaded file is not a well-formed PDF: %v", err)
	}

	out, err := s.templates.UpsertTemplate(ctx, leveltemplate.Template{
		Level:     level,
		FileName:  fileName,
		PageCount: pageCount,
		Data:      data,
	})
	if err != nil {
		return leveltemplate.Template{}, err
	}
	if err := s.templates.DeleteSkillPositionsByLevel(ctx, level); err != nil {
		return leveltemplate.Template{}, err
	}
	s.log.WithField("level", level).WithField("page_count", pageCount).Info("level template uploaded")
	return out, nil
}

// GetPageDimensions reads level's template MediaBox for the given page, for
// operators positioning skill boxes client-side.
func (s *Service) GetPageDimensions(ctx context.Context, level string, page int) (width, height float64, err error) {
	t, err := s.templates.GetTemplateByLevel(ctx, level)
	if err != nil {
		return 0, 0, err
	}
	return pdf.GetPageDimensions(t.Data, page)
}

// SetSkillPosition places (or replaces) a skill's annotation box on level's
// template.
func (s *Service) SetSkillPosition(ctx context.Context, p leveltemplate.SkillPosition) (leveltemplate.SkillPosition, error) {
	out, err := s.templates.UpsertSkillPosition(ctx, p)
	if err != nil {
		return leveltemplate.SkillPosition{}, err
	}
	s.log.WithField("skill_id", p.SkillID).WithField("level", p.Level).Info("skill position set")
	return out, nil
}

// Fill renders level's template with one overlay per validated skill
// position: "<date> - <validator name>", skipping positions for skills the
// person has no recorded validation for.
func (s *Service) Fill(ctx context.Context, p person.Person, level string) (doc []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordPDFGeneration(metricKind, time.Since(start), len(doc), err)
	}()

	t, err := s.templates.GetTemplateByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	positions, err := s.templates.ListSkillPositionsByLevel(ctx, level)
	if err != nil {
		return nil, err
	}
	validations, err := s.competency.ListValidationsByPerson(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	validationBySkill := make(map[string]string, len(validations)) // skill id -> rendered text
	for _, v := range validations {
		validatorName := "?"
		if validator, err := s.persons.GetPerson(ctx, v.ValidatorID); err == nil {
			validatorName = validator.FullName()
		}
		validationBySkill[v.SkillID] = fmt.Sprintf("%s - %s", v.Date.Format("02/01/2006"), validatorName)
	}

	var overlays []pdf.Overlay
	for _, pos := range positions {
		text, ok := validationBySkill[pos.SkillID]
		if !ok {
			continue
		}
		overlays = append(overlays, pdf.Overlay{Page: pos.Page, X: pos.X, Y: pos.Y, FontSize: pos.FontSize, Text: text})
	}

	out, err := pdf.ApplyOverlays(t.Data, overlays)
	if err != nil {
		return nil, err
	}
	s.log.WithField("person_id", p.ID).WithField("level", level).WithField("overlay_count", len(overlays)).Info("filled document rendered")
	doc = out
	return doc, nil
}
