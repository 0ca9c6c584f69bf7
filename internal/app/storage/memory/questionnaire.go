package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/questionnaire"
)

func (s *Store) CreateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire) (questionnaire.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkQuestionnaireUnique(q); err != nil {
		return questionnaire.Questionnaire{}, err
	}
	if q.ID == "" {
		q.ID = newID()
	}
	s.questionnaires[q.ID] = q
	return q, nil
}

func (s *Store) UpdateQuestionnaire(ctx context.Context, q questionnaire.Questionnaire) (questionnaire.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questionnaires[q.ID]; !ok {
		return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", q.ID)
	}
	s.questionnaires[q.ID] = q
	return q, nil
}

func (s *Store) checkQuestionnaireUnique(q questionnaire.Questionnaire) error {
	for id, existing := range s.questionnaires {
		if id == q.ID {
			continue
		}
		if q.SessionID != nil && existing.SessionID != nil &&
			*existing.SessionID == *q.SessionID && existing.PersonID == q.PersonID {
			return apperr.Validation("questionnaire already exists for this person and session")
		}
		if q.OutingID != nil && existing.OutingID != nil &&
			*existing.OutingID == *q.OutingID && existing.PersonID == q.PersonID {
			return apperr.Validation("questionnaire already exists for this person and outing")
		}
	}
	return nil
}

func (s *Store) GetQuestionnaire(ctx context.Context, id string) (questionnaire.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questionnaires[id]
	if !ok {
		return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", id)
	}
	return q, nil
}

func (s *Store) GetQuestionnaireBySession(ctx context.Context, sessionID, personID string) (questionnaire.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.questionnaires {
		if q.SessionID != nil && *q.SessionID == sessionID && q.PersonID == personID {
			return q, nil
		}
	}
	return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", personID)
}

func (s *Store) GetQuestionnaireByOuting(ctx context.Context, outingID, personID string) (questionnaire.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.questionnaires {
		if q.OutingID != nil && *q.OutingID == outingID && q.PersonID == personID {
			return q, nil
		}
	}
	return questionnaire.Questionnaire{}, apperr.NotFound("questionnaire", personID)
}

func (s *Store) ListQuestionnairesBySession(ctx context.Context, sessionID string) ([]questionnaire.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []questionnaire.Questionnaire
	for _, q := range s.questionnaires {
		if q.SessionID != nil && *q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) ListQuestionnairesByOuting(ctx context.Context, outingID string) ([]questionnaire.Questionnaire, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []questionnaire.Questionnaire
	for _, q := range s.questionnaires {
		if q.OutingID != nil && *q.OutingID == outingID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) DeleteQuestionnaire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questionnaires[id]; !ok {
		return apperr.NotFound("questionnaire", id)
	}
	delete(s.questionnaires, id)

	for mid, m := range s.members {
		if m.QuestionnaireID == id {
			delete(s.members, mid)
		}
	}
	for did, d := range s.directors {
		if d.QuestionnaireID == id {
			delete(s.directors, did)
		}
	}
	return nil
}
