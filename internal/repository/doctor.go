package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/glucotrack/glucotrack/internal/domain/doctor"
)

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

func (r *DoctorRepository) Create(ctx context.Context, d *doctor.Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		// The unique constraints are the backstop for the check-then-insert
		// race between two concurrent registrations.
		if isUniqueViolation(err) {
			return duplicateError(err)
		}
		return err
	}
	return nil
}

func (r *DoctorRepository) GetByUsername(ctx context.Context, username string) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uint) (*doctor.Doctor, error) {
	var d doctor.Doctor
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DoctorRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (r *DoctorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&doctor.Doctor{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// duplicateError tells which unique constraint fired. It matches the
// migration's index names first, then falls back to the column name so
// constraints created outside the migration (doctors_email_key) still map
// correctly.
func duplicateError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "idx_doctors_email"):
		return doctor.ErrDuplicateEmail
	case strings.Contains(msg, "idx_doctors_username"):
		return doctor.ErrDuplicateUsername
	case strings.Contains(msg, "email"):
		return doctor.ErrDuplicateEmail
	default:
		return doctor.ErrDuplicateUsername
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// pgx surfaces SQLSTATE 23505 for unique constraint violations.
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
