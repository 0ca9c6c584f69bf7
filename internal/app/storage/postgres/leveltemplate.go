package postgres

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/leveltemplate"
)

const templateColumns = `id, level, file_name, page_count, data, created_at, updated_at`

func scanTemplate(row interface{ Scan(dest ...interface{}) error }) (leveltemplate.Template, error) {
	var t leveltemplate.Template
	if err := row.Scan(&t.ID, &t.Level, &t.FileName, &t.PageCount, &t.Data, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return leveltemplate.Template{}, apperr.Database("scan level template", err)
	}
	return t, nil
}

func (s *Store) UpsertTemplate(ctx context.Context, t leveltemplate.Template) (leveltemplate.Template, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO level_templates (level, file_name, page_count, data)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (level) DO UPDATE SET
			file_name = excluded.file_name, page_count = excluded.page_count,
			data = excluded.data, updated_at = now()
		RETURNING `+templateColumns,
		t.Level, t.FileName, t.PageCount, t.Data)
	return scanTemplate(row)
}

func (s *Store) GetTemplateByLevel(ctx context.Context, level string) (leveltemplate.Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM level_templates WHERE level = $1`, level)
	out, err := scanTemplate(row)
	if err != nil {
		return leveltemplate.Template{}, apperr.NotFound("level template", level)
	}
	return out, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]leveltemplate.Template, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM level_templates ORDER BY level`)
	if err != nil {
		return nil, apperr.Database("list level templates", err)
	}
	defer rows.Close()

	var out []leveltemplate.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const skillPositionColumns = `id, skill_id, level, page, x, y, width, height, font_size, created_at, updated_at`

func scanSkillPosition(row interface{ Scan(dest ...interface{}) error }) (leveltemplate.SkillPosition, error) {
	var p leveltemplate.SkillPosition
	err := row.Scan(&p.ID, &p.SkillID, &p.Level, &p.Page, &p.X, &p.Y, &p.Width, &p.Height, &p.FontSize, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return leveltemplate.SkillPosition{}, apperr.Database("scan skill position", err)
	}
	return p, nil
}

func (s *Store) UpsertSkillPosition(ctx context.Context, p leveltemplate.SkillPosition) (leveltemplate.SkillPosition, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO skill_positions (skill_id, level, page, x, y, width, height, font_size)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (skill_id, level) DO UPDATE SET
			page = excluded.page, x = excluded.x, y = excluded.y,
			width = excluded.width, height = excluded.height, font_size = excluded.font_size,
			updated_at = now()
		RETURNING `+skillPositionColumns,
		p.SkillID, p.Level, p.Page, p.X, p.Y, p.Width, p.Height, p.FontSize)
	return scanSkillPosition(row)
}

func (s *Store) ListSkillPositionsByLevel(ctx context.Context, level string) ([]leveltemplate.SkillPosition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+skillPositionColumns+` FROM skill_positions WHERE level = $1`, level)
	if err != nil {
		return nil, apperr.Database("list skill positions", err)
	}
	defer rows.Close()

	var out []leveltemplate.SkillPosition
	for rows.Next() {
		p, err := scanSkillPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeleteSkillPositionsByLevel(ctx context.Context, level string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM skill_positions WHERE level = $1`, level)
	if err != nil {
		return apperr.Database("delete skill positions", err)
	}
	return nil
}
