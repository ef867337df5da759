package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/glucotrack/internal/domain/doctor"
)

func TestGetByUsername_Found(t *testing.T) {
	mock, db := setupMockDB(t)
	repo := NewDoctorRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
		AddRow(1, "drA", "a@x.com", "$2a$10$hash")

	mock.ExpectQuery(`SELECT \* FROM "doctors" WHERE username = \$1`).
		WithArgs("drA", 1).
		WillReturnRows(rows)

	d, err := repo.GetByUsername(context.Background(), "drA")
	require.NoError(t, err)

	assert.Equal(t, uint(1), d.ID)
	assert.Equal(t, "a@x.com", d.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsername_NotFound(t *testing.T) {
	mock, db := setupMockDB(t)
	repo := NewDoctorRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "doctors" WHERE username = \$1`).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, doctor.ErrDoctorNotFound)
}

func TestExistsByUsername(t *testing.T) {
	mock, db := setupMockDB(t)
	repo := NewDoctorRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "doctors" WHERE username = \$1`).
		WithArgs("drA").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByUsername(context.Background(), "drA")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreate_MapsUniqueViolations(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{
			name:    "username constraint",
			dbErr:   errors.New(`ERROR: duplicate key value violates unique constraint "idx_doctors_username" (SQLSTATE 23505)`),
			wantErr: doctor.ErrDuplicateUsername,
		},
		{
			name:    "email constraint",
			dbErr:   errors.New(`ERROR: duplicate key value violates unique constraint "idx_doctors_email" (SQLSTATE 23505)`),
			wantErr: doctor.ErrDuplicateEmail,
		},
		{
			name:    "email constraint with postgres default name",
			dbErr:   errors.New(`ERROR: duplicate key value violates unique constraint "doctors_email_key" (SQLSTATE 23505)`),
			wantErr: doctor.ErrDuplicateEmail,
		},
		{
			name:    "username constraint with postgres default name",
			dbErr:   errors.New(`ERROR: duplicate key value violates unique constraint "doctors_username_key" (SQLSTATE 23505)`),
			wantErr: doctor.ErrDuplicateUsername,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, db := setupMockDB(t)
			repo := NewDoctorRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(`INSERT INTO "doctors"`).
				WillReturnError(tt.dbErr)
			mock.ExpectRollback()

			err := repo.Create(context.Background(), &doctor.Doctor{
				Username: "drA", Email: "a@x.com", PasswordHash: "h",
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
