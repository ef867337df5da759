package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/domain/doctor"
	"github.com/glucotrack/glucotrack/pkg/auth"
)

type AuthService struct {
	repo doctor.Repository
	log  *zap.Logger
}

func NewAuthService(repo doctor.Repository, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, log: log}
}

// Register creates a new doctor account. Uniqueness is checked up front for
// a precise error, with the database unique constraints as the backstop
// against concurrent registrations racing past the check.
func (s *AuthService) Register(ctx context.Context, cmd *doctor.RegisterCommand) (*doctor.Doctor, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.TrimSpace(cmd.Email)

	if err := validateRegisterCommand(cmd); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByUsername(ctx, cmd.Username)
	if err != nil {
		s.log.Error("failed to check username uniqueness", zap.Error(err))
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return nil, doctor.ErrDuplicateUsername
	}

	taken, err = s.repo.ExistsByEmail(ctx, cmd.Email)
	if err != nil {
		s.log.Error("failed to check email uniqueness", zap.Error(err))
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return nil, doctor.ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	d := &doctor.Doctor{
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: hash,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.log.Info("doctor registered",
		zap.Uint("doctor_id", d.ID),
		zap.String("username", d.Username),
	)

	return d, nil
}

// Login verifies credentials by exact username match. Unknown usernames and
// wrong passwords both collapse to ErrInvalidCredentials, and the unknown
// path burns a dummy hash so the two are not timing-distinguishable either.
func (s *AuthService) Login(ctx context.Context, username, password string) (*doctor.Doctor, error) {
	d, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		auth.DummyCompare(password)
		return nil, ErrInvalidCredentials
	}

	if !auth.CheckPassword(password, d.PasswordHash) {
		s.log.Warn("failed login attempt", zap.String("username", d.Username))
		return nil, ErrInvalidCredentials
	}

	s.log.Info("doctor logged in", zap.Uint("doctor_id", d.ID))
	return d, nil
}

func validateRegisterCommand(cmd *doctor.RegisterCommand) error {
	var errs []string

	if l := utf8.RuneCountInString(cmd.Username); l < doctor.UsernameMinLen || l > doctor.UsernameMaxLen {
		errs = append(errs, fmt.Sprintf("username must be %d-%d characters", doctor.UsernameMinLen, doctor.UsernameMaxLen))
	}
	if !doctor.ValidEmail(cmd.Email) {
		errs = append(errs, "email is not a valid address")
	}
	if utf8.RuneCountInString(cmd.Password) < doctor.PasswordMinLen {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", doctor.PasswordMinLen))
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
