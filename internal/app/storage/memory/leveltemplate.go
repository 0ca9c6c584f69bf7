package memory

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/leveltemplate"
)

// UpsertTemplate replaces the previous template for the level. Skill
// positions are keyed by level, not template id, and are left untouched
// here; they are removed through DeleteSkillPositionsByLevel.
func (s *Store) UpsertTemplate(ctx context.Context, t leveltemplate.Template) (leveltemplate.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		if existing, ok := s.templates[t.Level]; ok {
			t.ID = existing.ID
		} else {
			t.ID = newID()
		}
	}
	s.templates[t.Level] = t
	return t, nil
}

func (s *Store) GetTemplateByLevel(ctx context.Context, level string) (leveltemplate.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[level]
	if !ok {
		return leveltemplate.Template{}, apperr.NotFound("level template", level)
	}
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]leveltemplate.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leveltemplate.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) UpsertSkillPosition(ctx context.Context, p leveltemplate.SkillPosition) (leveltemplate.SkillPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.skillPositions {
		if existing.SkillID == p.SkillID && existing.Level == p.Level {
			p.ID = id
			s.skillPositions[id] = p
			return p, nil
		}
	}
	if p.ID == "" {
		p.ID = newID()
	}
	s.skillPositions[p.ID] = p
	return p, nil
}

func (s *Store) ListSkillPositionsByLevel(ctx context.Context, level string) ([]leveltemplate.SkillPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leveltemplate.SkillPosition
	for _, p := range s.skillPositions {
		if p.Level == level {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) DeleteSkillPositionsByLevel(ctx context.Context, level string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.skillPositions {
		if p.Level == level {
			delete(s.skillPositions, id)
		}
	}
	return nil
}
