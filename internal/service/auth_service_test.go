package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/domain/doctor"
	"github.com/glucotrack/glucotrack/pkg/auth"
)

type fakeDoctorRepo struct {
	byUsername map[string]*doctor.Doctor
	byEmail    map[string]*doctor.Doctor
	created    *doctor.Doctor
	nextID     uint
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{
		byUsername: map[string]*doctor.Doctor{},
		byEmail:    map[string]*doctor.Doctor{},
		nextID:     1,
	}
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	if _, ok := f.byUsername[d.Username]; ok {
		return doctor.ErrDuplicateUsername
	}
	if _, ok := f.byEmail[d.Email]; ok {
		return doctor.ErrDuplicateEmail
	}
	d.ID = f.nextID
	f.nextID++
	f.byUsername[d.Username] = d
	f.byEmail[d.Email] = d
	f.created = d
	return nil
}

func (f *fakeDoctorRepo) GetByUsername(_ context.Context, username string) (*doctor.Doctor, error) {
	d, ok := f.byUsername[username]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	return d, nil
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id uint) (*doctor.Doctor, error) {
	for _, d := range f.byUsername {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (f *fakeDoctorRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := f.byUsername[username]
	return ok, nil
}

func (f *fakeDoctorRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewAuthService(repo, zap.NewNop())

	d, err := svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: "drA",
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, "drA", d.Username)
	assert.NotEmpty(t, d.PasswordHash)
	assert.NotEqual(t, "secret1", d.PasswordHash, "plaintext must never be stored")
	assert.True(t, auth.CheckPassword("secret1", d.PasswordHash))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewAuthService(repo, zap.NewNop())

	_, err := svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: "drA", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: "drA", Email: "b@x.com", Password: "secret2",
	})
	assert.ErrorIs(t, err, doctor.ErrDuplicateUsername)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewAuthService(repo, zap.NewNop())

	_, err := svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: "drA", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: "drB", Email: "a@x.com", Password: "secret2",
	})
	assert.ErrorIs(t, err, doctor.ErrDuplicateEmail)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		cmd  doctor.RegisterCommand
	}{
		{"username too short", doctor.RegisterCommand{Username: "ab", Email: "a@x.com", Password: "secret1"}},
		{"username too long in runes", doctor.RegisterCommand{Username: strings.Repeat("é", 51), Email: "a@x.com", Password: "secret1"}},
		{"bad email", doctor.RegisterCommand{Username: "drA", Email: "not-an-email", Password: "secret1"}},
		{"password too short", doctor.RegisterCommand{Username: "drA", Email: "a@x.com", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeDoctorRepo()
			svc := NewAuthService(repo, zap.NewNop())

			_, err := svc.Register(context.Background(), &tt.cmd)

			var validErr *ValidationError
			require.ErrorAs(t, err, &validErr)
			assert.Nil(t, repo.created)
		})
	}
}

func TestRegister_UsernameLengthCountsCharactersNotBytes(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewAuthService(repo, zap.NewNop())

	// 50 two-byte runes: at the character limit, twice it in bytes.
	_, err := svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: strings.Repeat("é", 50), Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotNil(t, repo.created)
}

func TestLogin_Scenario(t *testing.T) {
	repo := newFakeDoctorRepo()
	svc := NewAuthService(repo, zap.NewNop())

	registered, err := svc.Register(context.Background(), &doctor.RegisterCommand{
		Username: "drA", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "drA", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown username and wrong password must be indistinguishable")

	d, err := svc.Login(context.Background(), "drA", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, d.ID)
}
