package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/divingclub/opscore/internal/app/apperr"
	"github.com/divingclub/opscore/internal/app/domain/person"
)

func scanPerson(row interface {
	Scan(dest ...interface{}) error
}) (person.Person, error) {
	var p person.Person
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&p.WantsRegulator, &p.WantsNitrox, &p.WantsSecondReg, &p.WantsStab, &p.StabSize,
		&p.HasCar, &p.CarSeats,
		&p.NitroxTrainingBase, &p.NitroxConfirmed, &p.NitroxLegacy,
		&p.GroupID, &p.PasswordHash, &p.TemporaryPasswordHash, &p.TemporaryPasswordExpiry, &p.MustChangePassword,
		&p.DivingLevel, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return person.Person{}, apperr.NotFound("person", "")
	}
	if err != nil {
		return person.Person{}, apperr.Database("scan person", err)
	}
	return p, nil
}

const personColumns = `id, first_name, last_name, email, phone,
	wants_regulator, wants_nitrox, wants_second_regulator, wants_stab, stab_size,
	has_car, car_seats,
	nitrox_base_training, nitrox_confirmed_training, nitrox_legacy_training,
	group_id, password_hash, temporary_password_hash, temporary_password_expires, must_change_password,
	diving_level, created_at, updated_at`

func (s *Store) CreatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO persons (
			first_name, last_name, email, phone,
			wants_regulator, wants_nitrox, wants_second_regulator, wants_stab, stab_size,
			has_car, car_seats,
			nitrox_base_training, nitrox_confirmed_training, nitrox_legacy_training,
			group_id,
			password_hash, temporary_password_hash, temporary_password_expires, must_change_password,
			diving_level
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		RETURNING `+personColumns,
		p.FirstName, p.LastName, p.Email, p.Phone,
		p.WantsRegulator, p.WantsNitrox, p.WantsSecondReg, p.WantsStab, p.StabSize,
		p.HasCar, p.CarSeats,
		p.NitroxTrainingBase, p.NitroxConfirmed, p.NitroxLegacy,
		p.GroupID,
		p.PasswordHash, p.TemporaryPasswordHash, p.TemporaryPasswordExpiry, p.MustChangePassword,
		p.DivingLevel,
	)
	out, err := scanPerson(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return person.Person{}, apperr.Validation("email %s already in use", p.Email)
		}
		return person.Person{}, err
	}
	return out, nil
}

func (s *Store) UpdatePerson(ctx context.Context, p person.Person) (person.Person, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE persons SET
			first_name = $2, last_name = $3, email = $4, phone = $5,
			wants_regulator = $6, wants_nitrox = $7, wants_second_regulator = $8, wants_stab = $9, stab_size = $10,
			has_car = $11, car_seats = $12,
			nitrox_base_training = $13, nitrox_confirmed_training = $14, nitrox_legacy_training = $15,
			group_id = $16,
			password_hash = $17, temporary_password_hash = $18, temporary_password_expires = $19, must_change_password = $20,
			diving_level = $21, updated_at = now()
		WHERE id = $1
		RETURNING `+personColumns,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.WantsRegulator, p.WantsNitrox, p.WantsSecondReg, p.WantsStab, p.StabSize,
		p.HasCar, p.CarSeats,
		p.NitroxTrainingBase, p.NitroxConfirmed, p.NitroxLegacy,
		p.GroupID,
		p.PasswordHash, p.TemporaryPasswordHash, p.TemporaryPasswordExpiry, p.MustChangePassword,
		p.DivingLevel,
	)
	return scanPerson(row)
}

func (s *Store) GetPerson(ctx context.Context, id string) (person.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE id = $1`, id)
	return scanPerson(row)
}

func (s *Store) GetPersonByEmail(ctx context.Context, email string) (person.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM persons WHERE lower(email) = lower($1)`, email)
	return scanPerson(row)
}

func (s *Store) ListPersons(ctx context.Context) ([]person.Person, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+personColumns+` FROM persons ORDER BY last_name, first_name`)
	if err != nil {
		return nil, apperr.Database("list persons", err)
	}
	defer rows.Close()

	var out []person.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "foreign_key_violation" {
			return apperr.Validation("person %s is referenced as a validator and cannot be deleted", id)
		}
		return apperr.Database("delete person", err)
	}
	return mustAffectOne(res, "person", id)
}

func mustAffectOne(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Database("check rows affected", err)
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
