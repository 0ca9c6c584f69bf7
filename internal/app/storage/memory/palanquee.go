package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/palanquee"
)

func (s *Store) CreateRotation(ctx context.Context, r palanquee.Rotation) (palanquee.Rotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = newID()
	}
	s.rotations[r.ID] = r
	return r, nil
}

func (s *Store) GetRotation(ctx context.Context, id string) (palanquee.Rotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rotations[id]
	if !ok {
		return palanquee.Rotation{}, apperr.NotFound("rotation", id)
	}
	return r, nil
}

func (s *Store) ListRotationsBySession(ctx context.Context, sessionID string) ([]palanquee.Rotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []palanquee.Rotation
	for _, r := range s.rotations {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) MaxRotationNumber(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for _, r := range s.rotations {
		if r.SessionID == sessionID && r.Number > max {
			max = r.Number
		}
	}
	return max, nil
}

func (s *Store) DeleteRotation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rotations[id]; !ok {
		return apperr.NotFound("rotation", id)
	}
	delete(s.rotations, id)

	for plid, pl := range s.palanquees {
		if pl.RotationID != id {
			continue
		}
		delete(s.palanquees, plid)
		for mid, m := range s.members {
			if m.PalanqueeID == plid {
				delete(s.members, mid)
			}
		}
	}
	return nil
}

func (s *Store) CreatePalanquee(ctx context.Context, p palanquee.Palanquee) (palanquee.Palanquee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	s.palanquees[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePalanquee(ctx context.Context, p palanquee.Palanquee) (palanquee.Palanquee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.palanquees[p.ID]; !ok {
		return palanquee.Palanquee{}, apperr.NotFound("palanquee", p.ID)
	}
	s.palanquees[p.ID] = p
	return p, nil
}

func (s *Store) GetPalanquee(ctx context.Context, id string) (palanquee.Palanquee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.palanquees[id]
	if !ok {
		return palanquee.Palanquee{}, apperr.NotFound("palanquee", id)
	}
	return p, nil
}

func (s *Store) ListPalanqueesByRotation(ctx context.Context, rotationID string) ([]palanquee.Palanquee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []palanquee.Palanquee
	for _, p := range s.palanquees {
		if p.RotationID == rotationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) MaxPalanqueeNumber(ctx context.Context, rotationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for _, p := range s.palanquees {
		if p.RotationID == rotationID && p.Number > max {
			max = p.Number
		}
	}
	return max, nil
}

func (s *Store) DeletePalanquee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.palanquees[id]; !ok {
		return apperr.NotFound("palanquee", id)
	}
	delete(s.palanquees, id)

	for mid, m := range s.members {
		if m.PalanqueeID == id {
			delete(s.members, mid)
		}
	}
	return nil
}

// AddMember errors on a duplicate (palanquee,questionnaire) pair.
func (s *Store) AddMember(ctx context.Context, m palanquee.Member) (palanquee.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.members {
		if existing.PalanqueeID == m.PalanqueeID && existing.QuestionnaireID == m.QuestionnaireID {
			return palanquee.Member{}, apperr.Validation("questionnaire %s is already a member of this palanquee", m.QuestionnaireID)
		}
	}
	if m.ID == "" {
		m.ID = newID()
	}
	s.members[m.ID] = m
	return m, nil
}

func (s *Store) RemoveMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return apperr.NotFound("palanquee member", id)
	}
	delete(s.members, id)
	return nil
}

func (s *Store) ListMembersByPalanquee(ctx context.Context, palanqueeID string) ([]palanquee.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []palanquee.Member
	for _, m := range s.members {
		if m.PalanqueeID == palanqueeID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListMembersBySession walks every rotation of the session to collect its
// members, used to derive unassigned participants.
func (s *Store) ListMembersBySession(ctx context.Context, sessionID string) ([]palanquee.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rotationIDs := make(map[string]bool)
	for rid, r := range s.rotations {
		if r.SessionID == sessionID {
			rotationIDs[rid] = true
		}
	}
	palanqueeIDs := make(map[string]bool)
	for plid, pl := range s.palanquees {
		if rotationIDs[pl.RotationID] {
			palanqueeIDs[plid] = true
		}
	}

	var out []palanquee.Member
	for _, m := range s.members {
		if palanqueeIDs[m.PalanqueeID] {
			out = append(out, m)
		}
	}
	return out, nil
}
