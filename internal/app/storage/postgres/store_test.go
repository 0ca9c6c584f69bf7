package postgres

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/divingclub/opscore/internal/app/domain/competency"
	"github.com/divingclub/opscore/internal/app/domain/person"
)

func TestCreatePersonReturnsScannedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "phone",
		"wants_regulator", "wants_nitrox", "wants_second_regulator", "wants_stab", "stab_size",
		"has_car", "car_seats",
		"nitrox_base_training", "nitrox_confirmed_training", "nitrox_legacy_training",
		"group_id", "password_hash", "temporary_password_hash", "temporary_password_expires", "must_change_password",
		"diving_level", "created_at", "updated_at",
	}).AddRow(
		"p-1", "Ada", "Lovelace", "ada@example.com", "",
		false, false, false, false, "",
		false, 0,
		false, false, false,
		nil, "", "", nil, false,
		"N1", now, now,
	)

	mock.ExpectQuery(`INSERT INTO persons`).WillReturnRows(rows)

	store := New(db)
	level := "N1"
	out, err := store.CreatePerson(context.Background(), person.Person{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", DivingLevel: &level,
	})
	if err != nil {
		t.Fatalf("CreatePerson: %v", err)
	}
	if out.ID != "p-1" || out.Email != "ada@example.com" {
		t.Fatalf("unexpected person: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsertValidationReplacesExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "person_id", "skill_id", "stage_id", "validator_id", "validated_at", "notes", "created_at", "updated_at",
	}).AddRow("v-1", "person-1", "skill-1", "stage-1", "validator-1", now, nil, now, now)

	mock.ExpectQuery(`INSERT INTO skill_validations`).
		WithArgs("person-1", "skill-1", "stage-1", "validator-1", now, (*string)(nil)).
		WillReturnRows(rows)

	store := New(db)
	out, err := store.UpsertValidation(context.Background(), competency.Validation{
		PersonID: "person-1", SkillID: "skill-1", StageID: "stage-1",
		ValidatorID: "validator-1", Date: now,
	})
	if err != nil {
		t.Fatalf("UpsertValidation: %v", err)
	}
	if out.ID != "v-1" {
		t.Fatalf("unexpected validation: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
