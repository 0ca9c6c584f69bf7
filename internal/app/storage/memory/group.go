package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/group"
)

func (s *Store) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = newID()
	}
	s.groups[g.ID] = g
	return g, nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return group.Group{}, apperr.NotFound("group", id)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]group.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]group.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, nil
}

// DeleteGroup removes the group and sets group_id to nil on every member,
// per the §3 set-null lifecycle.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return apperr.NotFound("group", id)
	}
	delete(s.groups, id)

	for pid, p := range s.persons {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			s.persons[pid] = p
		}
	}
	return nil
}
