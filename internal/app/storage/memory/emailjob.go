package memory

import (
	"context"
	"time"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/emailjob"
)

func (s *Store) CreateEmailJob(ctx context.Context, j emailjob.Job) (emailjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ID == "" {
		j.ID = newID()
	}
	s.emailJobs[j.ID] = j
	return j, nil
}

func (s *Store) GetEmailJobByToken(ctx context.Context, token string) (emailjob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.emailJobs {
		if j.Token == token {
			return j, nil
		}
	}
	return emailjob.Job{}, apperr.InvalidToken(token)
}

func (s *Store) GetEmailJobByPersonAndSession(ctx context.Context, personID, sessionID string) (emailjob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.emailJobs {
		if j.PersonID == personID && j.SessionID != nil && *j.SessionID == sessionID {
			return j, nil
		}
	}
	return emailjob.Job{}, apperr.NotFound("email job", personID)
}

func (s *Store) GetEmailJobByPersonAndOuting(ctx context.Context, personID, outingID string) (emailjob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.emailJobs {
		if j.PersonID == personID && j.OutingID != nil && *j.OutingID == outingID {
			return j, nil
		}
	}
	return emailjob.Job{}, apperr.NotFound("email job", personID)
}

func (s *Store) ListEmailJobsBySession(ctx context.Context, sessionID string) ([]emailjob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []emailjob.Job
	for _, j := range s.emailJobs {
		if j.SessionID != nil && *j.SessionID == sessionID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *Store) ListEmailJobsByOuting(ctx context.Context, outingID string) ([]emailjob.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []emailjob.Job
	for _, j := range s.emailJobs {
		if j.OutingID != nil && *j.OutingID == outingID {
			out = append(out, j)
		}
	}
	return out, nil
}

// ConsumeIfNotConsumed atomically flips consumed from false to true under the
// store's single lock, so concurrent resolvers of the same token can never
// both observe success.
func (s *Store) ConsumeIfNotConsumed(ctx context.Context, token string) (emailjob.Job, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, j := range s.emailJobs {
		if j.Token != token {
			continue
		}
		if j.Consumed {
			return j, false, nil
		}
		j.Consumed = true
		s.emailJobs[id] = j
		return j, true, nil
	}
	return emailjob.Job{}, false, apperr.InvalidToken(token)
}

func (s *Store) MarkSent(ctx context.Context, id string, sentAt time.Time) (emailjob.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.emailJobs[id]
	if !ok {
		return emailjob.Job{}, apperr.NotFound("email job", id)
	}
	j.Status = emailjob.StatusSent
	j.SentAt = &sentAt
	s.emailJobs[id] = j
	return j, nil
}
