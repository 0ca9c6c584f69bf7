package postgres

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/group"
)

const groupColumns = `id, name, created_at, updated_at`

func scanGroup(row interface{ Scan(dest ...interface{}) error }) (group.Group, error) {
	var g group.Group
	if err := row.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return group.Group{}, apperr.Database("scan group", err)
	}
	return g, nil
}

func (s *Store) CreateGroup(ctx context.Context, g group.Group) (group.Group, error) {
	row := s.db.QueryRowContext(ctx, `INSERT INTO groups (name) VALUES ($1) RETURNING `+groupColumns, g.Name)
	return scanGroup(row)
}

func (s *Store) GetGroup(ctx context.Context, id string) (group.Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	g, err := scanGroup(row)
	if err != nil {
		return group.Group{}, apperr.NotFound("group", id)
	}
	return g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]group.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY name`)
	if err != nil {
		return nil, apperr.Database("list groups", err)
	}
	defer rows.Close()

	var out []group.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGroup relies on the ON DELETE SET NULL foreign key to clear
// persons.group_id.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete group", err)
	}
	return mustAffectOne(res, "group", id)
}
