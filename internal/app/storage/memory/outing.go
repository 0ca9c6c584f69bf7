package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/outing"
)

func (s *Store) CreateOuting(ctx context.Context, o outing.Outing) (outing.Outing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = newID()
	}
	s.outings[o.ID] = o
	return o, nil
}

func (s *Store) GetOuting(ctx context.Context, id string) (outing.Outing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.outings[id]
	if !ok {
		return outing.Outing{}, apperr.NotFound("outing", id)
	}
	return o, nil
}

func (s *Store) ListOutings(ctx context.Context) ([]outing.Outing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]outing.Outing, 0, len(s.outings))
	for _, o := range s.outings {
		out = append(out, o)
	}
	return out, nil
}

// DeleteOuting removes the outing and cascades to every session it owns
// (which in turn cascades per session.DeleteSession semantics).
func (s *Store) DeleteOuting(ctx context.Context, id string) error {
	s.mu.Lock()

	if _, ok := s.outings[id]; !ok {
		s.mu.Unlock()
		return apperr.NotFound("outing", id)
	}
	delete(s.outings, id)

	var sessionIDs []string
	for sid, sess := range s.sessions {
		if sess.OutingID != nil && *sess.OutingID == id {
			sessionIDs = append(sessionIDs, sid)
		}
	}
	for qid, q := range s.questionnaires {
		if q.OutingID != nil && *q.OutingID == id {
			delete(s.questionnaires, qid)
		}
	}
	for jid, j := range s.emailJobs {
		if j.OutingID != nil && *j.OutingID == id {
			delete(s.emailJobs, jid)
		}
	}
	s.mu.Unlock()

	for _, sid := range sessionIDs {
		if err := s.DeleteSession(ctx, sid); err != nil {
			return err
		}
	}
	return nil
}
