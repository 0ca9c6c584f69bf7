package postgres

import (
	"context"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/outing"
)

const outingColumns = `id, name, location, type, start_date, (start_date + (days_count - 1) * interval '1 day')::date,
	days_count, dives_per_day, nitrox_compatible, summary_token, created_at, updated_at`

func scanOuting(row interface{ Scan(dest ...interface{}) error }) (outing.Outing, error) {
	var o outing.Outing
	err := row.Scan(
		&o.ID, &o.Name, &o.Location, &o.Type, &o.StartDate, &o.EndDate,
		&o.DaysCount, &o.DivesPerDay, &o.NitroxCompatible, &o.SummaryToken,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return outing.Outing{}, apperr.Database("scan outing", err)
	}
	return o, nil
}

func (s *Store) CreateOuting(ctx context.Context, o outing.Outing) (outing.Outing, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO outings (name, location, type, start_date, days_count, dives_per_day, nitrox_compatible, summary_token)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+outingColumns,
		o.Name, o.Location, o.Type, o.StartDate, o.DaysCount, o.DivesPerDay, o.NitroxCompatible, o.SummaryToken,
	)
	return scanOuting(row)
}

func (s *Store) GetOuting(ctx context.Context, id string) (outing.Outing, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+outingColumns+` FROM outings WHERE id = $1`, id)
	o, err := scanOuting(row)
	if err != nil {
		return outing.Outing{}, apperr.NotFound("outing", id)
	}
	return o, nil
}

func (s *Store) ListOutings(ctx context.Context) ([]outing.Outing, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+outingColumns+` FROM outings ORDER BY start_date`)
	if err != nil {
		return nil, apperr.Database("list outings", err)
	}
	defer rows.Close()

	var out []outing.Outing
	for rows.Next() {
		o, err := scanOuting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteOuting relies on ON DELETE CASCADE to remove every session it owns.
func (s *Store) DeleteOuting(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM outings WHERE id = $1`, id)
	if err != nil {
		return apperr.Database("delete outing", err)
	}
	return mustAffectOne(res, "outing", id)
}
