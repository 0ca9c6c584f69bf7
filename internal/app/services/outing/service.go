// Package outing coordinates multi-day club outings: generating their
// per-dive sessions, tracking which questionnaires are assigned as dive
// director for a session, and reporting attendee overlap between dives.
package outing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/divedirector"
	"github.com/divingclub/opscore/internal/app/domain/outing"
	"github.com/divingclub/opscore/internal/app/domain/palanquee"
	"github.com/divingclub/opscore/internal/app/domain/session"
	"github.com/divingclub/opscore/internal/app/storage"
	"github.com/divingclub/opscore/pkg/logger"
)

// Service coordinates outing creation, attendee-overlap reporting, and
// dive-director assignment.
type Service struct {
	outings   storage.OutingStore
	sessions  storage.SessionStore
	rotations storage.PalanqueeStore
	directors storage.DiveDirectorStore
	log       *logger.Logger
}

// New constructs an outing coordinator.
func New(outings storage.OutingStore, sessions storage.SessionStore, rotations storage.PalanqueeStore, directors storage.DiveDirectorStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("outing")
	}
	return &Service{outings: outings, sessions: sessions, rotations: rotations, directors: directors, log: log}
}

// slotLabels maps dives-per-day to each slot's French display suffix.
var slotLabels = map[int][]string{
	1: {""},
	2: {"Matin", "Après-midi"},
	3: {"Matin", "Midi", "Après-midi"},
	4: {"Matin", "Fin de matinée", "Début d'après-midi", "Après-midi"},
}

// CreateOuting inserts the outing, then generates one session per dive
// (days_count * dives_per_day), each with an auto-created rotation #1.
func (s *Service) CreateOuting(ctx context.Context, o outing.Outing) (outing.Outing, []session.Session, error) {
	if o.DaysCount < 1 || o.DaysCount > 14 {
		return outing.Outing{}, nil, apperr.Validation("days_count must be between 1 and 14, got %d", o.DaysCount)
	}
	if o.DivesPerDay < 1 || o.DivesPerDay > 4 {
		return outing.Outing{}, nil, apperr.Validation("dives_per_day must be between 1 and 4, got %d", o.DivesPerDay)
	}

	o.EndDate = o.StartDate.AddDate(0, 0, o.DaysCount-1)
	token := uuid.NewString()
	o.SummaryToken = &token

	created, err := s.outings.CreateOuting(ctx, o)
	if err != nil {
		return outing.Outing{}, nil, err
	}

	labels := slotLabels[created.DivesPerDay]
	total := created.TotalDives()
	sessions := make([]session.Session, 0, total)
	for i := 1; i <= total; i++ {
		day := (i-1)/created.DivesPerDay + 1
		slot := (i - 1) % created.DivesPerDay

		name := fmt.Sprintf("Plongée %d - Jour %d", i, day)
		if label := labels[slot]; label != "" {
			name = fmt.Sprintf("%s %s", name, label)
		}
		dayDate := created.StartDate.AddDate(0, 0, day-1)
		endDate := dayDate
		outingID := created.ID
		diveNumber := i

		sess, err := s.sessions.CreateSession(ctx, session.Session{
			Name:       name,
			StartDate:  dayDate,
			EndDate:    &endDate,
			OutingID:   &outingID,
			DiveNumber: &diveNumber,
		})
		if err != nil {
			return outing.Outing{}, nil, err
		}
		if _, err := s.rotations.CreateRotation(ctx, palanquee.Rotation{SessionID: sess.ID, Number: 1}); err != nil {
			return outing.Outing{}, nil, err
		}
		sessions = append(sessions, sess)
	}

	s.log.WithField("outing_id", created.ID).WithField("dive_count", total).Info("outing generated")
	return created, sessions, nil
}

// attendeeSet returns the distinct questionnaire ids assigned to any
// palanquée member across sessionID's rotations.
func (s *Service) attendeeSet(ctx context.Context, sessionID string) (map[string]bool, error) {
	members, err := s.rotations.ListMembersBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m.QuestionnaireID] = true
	}
	return set, nil
}

// CopyAttendees counts how many questionnaires currently assigned in
// sourceDive are not yet assigned anywhere in targetDive. This is a
// preview/reporting operation: no record is written, since attendance is
// expressed purely through palanquée membership.
func (s *Service) CopyAttendees(ctx context.Context, sourceDiveID, targetDiveID string) (copied, skipped int, err error) {
	source, err := s.attendeeSet(ctx, sourceDiveID)
	if err != nil {
		return 0, 0, err
	}
	target, err := s.attendeeSet(ctx, targetDiveID)
	if err != nil {
		return 0, 0, err
	}
	for q := range source {
		if target[q] {
			skipped++
		} else {
			copied++
		}
	}
	return copied, skipped, nil
}

// AddDiveDirector assigns questionnaireID as a dive director for sessionID,
// rejecting a fifth assignment with TooManyDirectors.
func (s *Service) AddDiveDirector(ctx context.Context, sessionID, questionnaireID string) (divedirector.Assignment, error) {
	count, err := s.directors.CountDirectors(ctx, sessionID)
	if err != nil {
		return divedirector.Assignment{}, err
	}
	if count >= divedirector.MaxPerSession {
		return divedirector.Assignment{}, apperr.TooManyDirectors(sessionID)
	}
	out, err := s.directors.AddDirector(ctx, divedirector.Assignment{SessionID: sessionID, QuestionnaireID: questionnaireID})
	if err != nil {
		return divedirector.Assignment{}, err
	}
	s.log.WithField("session_id", sessionID).WithField("questionnaire_id", questionnaireID).Info("dive director assigned")
	return out, nil
}

// ListDiveDirectors returns sessionID's current dive-director assignments.
func (s *Service) ListDiveDirectors(ctx context.Context, sessionID string) ([]divedirector.Assignment, error) {
	return s.directors.ListDirectors(ctx, sessionID)
}

// RemoveDiveDirector lifts one dive-director assignment.
func (s *Service) RemoveDiveDirector(ctx context.Context, sessionID, questionnaireID string) error {
	if err := s.directors.RemoveDirector(ctx, sessionID, questionnaireID); err != nil {
		return err
	}
	s.log.WithField("session_id", sessionID).WithField("questionnaire_id", questionnaireID).Info("dive director removed")
	return nil
}
