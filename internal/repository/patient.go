package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/glucotrack/glucotrack/internal/domain/patient"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// CreateWithPrediction inserts the patient and, when pred is non-nil, its
// prediction inside one transaction. A failure on either insert leaves no row
// behind.
func (r *PatientRepository) CreateWithPrediction(ctx context.Context, p *patient.Patient, pred *patient.Prediction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if pred == nil {
			return nil
		}
		pred.PatientID = p.ID
		return tx.Create(pred).Error
	})
}

func (r *PatientRepository) ListForDoctor(ctx context.Context, doctorID uint) ([]*patient.Patient, error) {
	var patients []*patient.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// Delete filters on both ids so a patient owned by another doctor is
// indistinguishable from a nonexistent one. Predictions go with the patient
// in the same transaction.
func (r *PatientRepository) Delete(ctx context.Context, patientID, doctorID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND doctor_id = ?", patientID, doctorID).
			Delete(&patient.Patient{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return patient.ErrPatientNotFound
		}
		return tx.Where("patient_id = ?", patientID).
			Delete(&patient.Prediction{}).Error
	})
}

func (r *PatientRepository) GetPredictions(ctx context.Context, patientID, doctorID uint) ([]*patient.Prediction, error) {
	// Ownership check before disclosure.
	var count int64
	err := r.db.WithContext(ctx).Model(&patient.Patient{}).
		Where("id = ? AND doctor_id = ?", patientID, doctorID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, patient.ErrPatientNotFound
	}

	var preds []*patient.Prediction
	err = r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Find(&preds).Error
	if err != nil {
		return nil, err
	}
	return preds, nil
}
