package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/session"
)

func (s *Store) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.ID == "" {
		sess.ID = newID()
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) UpdateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return session.Session{}, apperr.NotFound("session", sess.ID)
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return session.Session{}, apperr.NotFound("session", id)
	}
	return sess, nil
}

func (s *Store) GetSessionBySummaryToken(ctx context.Context, token string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.SummaryToken != nil && *sess.SummaryToken == token {
			return sess, nil
		}
	}
	return session.Session{}, apperr.NotFound("session", token)
}

func (s *Store) ListSessions(ctx context.Context) ([]session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out, nil
}

func (s *Store) ListSessionsByOuting(ctx context.Context, outingID string) ([]session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []session.Session
	for _, sess := range s.sessions {
		if sess.OutingID != nil && *sess.OutingID == outingID {
			out = append(out, sess)
		}
	}
	return out, nil
}

// DeleteSession removes the session and cascades to its questionnaires,
// email jobs, rotations (and transitively palanquées/members), and dive
// director assignments, per the §3 per-session aggregate lifecycle.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return apperr.NotFound("session", id)
	}
	delete(s.sessions, id)

	for qid, q := range s.questionnaires {
		if q.SessionID != nil && *q.SessionID == id {
			delete(s.questionnaires, qid)
		}
	}
	for jid, j := range s.emailJobs {
		if j.SessionID != nil && *j.SessionID == id {
			delete(s.emailJobs, jid)
		}
	}
	for rid, r := range s.rotations {
		if r.SessionID != id {
			continue
		}
		delete(s.rotations, rid)
		for plid, pl := range s.palanquees {
			if pl.RotationID != rid {
				continue
			}
			delete(s.palanquees, plid)
			for mid, m := range s.members {
				if m.PalanqueeID == plid {
					delete(s.members, mid)
				}
			}
		}
	}
	for did, d := range s.directors {
		if d.SessionID == id {
			delete(s.directors, did)
		}
	}
	return nil
}
