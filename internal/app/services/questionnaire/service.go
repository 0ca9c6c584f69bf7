// Package questionnaire enforces the cross-field invariants on a
// registration questionnaire submission and exposes CRUD over the
// questionnaire store.
package questionnaire

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/person"
	"github.com/divingclub/opscore/internal/app/domain/qualification"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/pkg/logger"
)

// Service normalizes and persists questionnaire submissions.
type Service struct {
	store storage.QuestionnaireStore
	log   *logger.Logger
}

// New constructs a questionnaire service.
func New(store storage.QuestionnaireStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("questionnaire")
	}
	return &Service{store: store, log: log}
}

// Normalize is the sole authority for the submit and update paths. It
// silently corrects cross-field invariants rather than rejecting input,
// since the submitter is the operator's own link, never an adversarial
// client.
func Normalize(q questionnaire.Questionnaire, p person.Person) questionnaire.Questionnaire {
	level := ""
	if p.DivingLevel != nil {
		level = *p.DivingLevel
	}
	q.IsEncadrant = qualification.Parse(level).IsInstructor

	if q.IsEncadrant {
		q.WantsSecondReg = true
	} else {
		q.WantsNitrox = false
		q.WantsSecondReg = false
	}

	if !q.WantsStab {
		q.StabSize = nil
	}

	if !q.ComesFromIssoire {
		q.HasCar = false
		q.CarSeats = nil
	}

	if q.HasCar {
		seats := 1
		if q.CarSeats != nil && *q.CarSeats > 1 {
			seats = *q.CarSeats
		}
		q.CarSeats = &seats
	} else {
		q.CarSeats = nil
	}

	return q
}

// Submit normalizes and creates a new questionnaire for the person against
// exactly one of session or outing.
func (s *Service) Submit(ctx context.Context, q questionnaire.Questionnaire, p person.Person) (questionnaire.Questionnaire, error) {
	if !q.Valid() {
		return questionnaire.Questionnaire{}, apperr.Validation("exactly one of session or outing must be set")
	}
	q = Normalize(q, p)
	q.PersonID = p.ID

	out, err := s.store.CreateQuestionnaire(ctx, q)
	if err != nil {
		return questionnaire.Questionnaire{}, err
	}
	s.log.WithField("questionnaire_id", out.ID).
		WithField("person_id", p.ID).
		Info("questionnaire submitted")
	return out, nil
}

// Update re-normalizes and persists a modification to an existing
// questionnaire, using the same Normalize entry point as Submit.
func (s *Service) Update(ctx context.Context, q questionnaire.Questionnaire, p person.Person) (questionnaire.Questionnaire, error) {
	if !q.Valid() {
		return questionnaire.Questionnaire{}, apperr.Validation("exactly one of session or outing must be set")
	}
	q = Normalize(q, p)

	out, err := s.store.UpdateQuestionnaire(ctx, q)
	if err != nil {
		return questionnaire.Questionnaire{}, err
	}
	s.log.WithField("questionnaire_id", out.ID).Info("questionnaire updated")
	return out, nil
}

// Get retrieves a single questionnaire by id.
func (s *Service) Get(ctx context.Context, id string) (questionnaire.Questionnaire, error) {
	return s.store.GetQuestionnaire(ctx, id)
}

// ListBySession returns every questionnaire submitted for a session.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]questionnaire.Questionnaire, error) {
	return s.store.ListQuestionnairesBySession(ctx, sessionID)
}

// ListByOuting returns every questionnaire submitted for an outing.
func (s *Service) ListByOuting(ctx context.Context, outingID string) ([]questionnaire.Questionnaire, error) {
	return s.store.ListQuestionnairesByOuting(ctx, outingID)
}
