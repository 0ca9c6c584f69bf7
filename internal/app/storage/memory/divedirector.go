package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/divedirector"
)

func (s *Store) CountDirectors(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, d := range s.directors {
		if d.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// AddDirector does not itself enforce the four-per-session cap; callers
// check CountDirectors first so the apperr.TooManyDirectors error carries
// service-level context.
func (s *Store) AddDirector(ctx context.Context, a divedirector.Assignment) (divedirector.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.directors {
		if existing.SessionID == a.SessionID && existing.QuestionnaireID == a.QuestionnaireID {
			return divedirector.Assignment{}, apperr.Validation("questionnaire %s is already a dive director for this session", a.QuestionnaireID)
		}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	s.directors[a.ID] = a
	return a, nil
}

func (s *Store) ListDirectors(ctx context.Context, sessionID string) ([]divedirector.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []divedirector.Assignment
	for _, d := range s.directors {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) RemoveDirector(ctx context.Context, sessionID, questionnaireID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, d := range s.directors {
		if d.SessionID == sessionID && d.QuestionnaireID == questionnaireID {
			delete(s.directors, id)
			return nil
		}
	}
	return apperr.NotFound("dive director assignment", questionnaireID)
}
