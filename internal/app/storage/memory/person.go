package memory

import (
	"context"
	"strings"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/person"
)

func (s *Store) CreatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.persons {
		if strings.EqualFold(existing.Email, p.Email) {
			return person.Person{}, apperr.Validation("email %s already in use", p.Email)
		}
	}
	if p.ID == "" {
		p.ID = newID()
	}
	s.persons[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[p.ID]; !ok {
		return person.Person{}, apperr.NotFound("person", p.ID)
	}
	for id, existing := range s.persons {
		if id != p.ID && strings.EqualFold(existing.Email, p.Email) {
			return person.Person{}, apperr.Validation("email %s already in use", p.Email)
		}
	}
	s.persons[p.ID] = p
	return p, nil
}

func (s *Store) GetPerson(ctx context.Context, id string) (person.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[id]
	if !ok {
		return person.Person{}, apperr.NotFound("person", id)
	}
	return p, nil
}

func (s *Store) GetPersonByEmail(ctx context.Context, email string) (person.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.persons {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return person.Person{}, apperr.NotFound("person", email)
}

func (s *Store) ListPersons(ctx context.Context) ([]person.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]person.Person, 0, len(s.persons))
	for _, p := range s.persons {
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[id]; !ok {
		return apperr.NotFound("person", id)
	}
	for _, v := range s.validations {
		if v.ValidatorID == id {
			return apperr.Validation("person %s is referenced as a validator and cannot be deleted", id)
		}
	}
	delete(s.persons, id)

	// Skill validations cascade with the person when it is the subject.
	for vid, v := range s.validations {
		if v.PersonID == id {
			delete(s.validations, vid)
		}
	}
	return nil
}
