package patient

import "context"

type Repository interface {
	// CreateWithPrediction persists a patient and, when pred is non-nil, its
	// prediction in a single transaction. On any failure neither row remains.
	CreateWithPrediction(ctx context.Context, p *Patient, pred *Prediction) error

	// ListForDoctor returns the doctor's patients ordered newest first.
	ListForDoctor(ctx context.Context, doctorID uint) ([]*Patient, error)

	// Delete removes a patient and its predictions. The query filters on both
	// patient id and doctor id; a row owned by another doctor yields
	// ErrPatientNotFound, indistinguishable from a nonexistent id.
	Delete(ctx context.Context, patientID, doctorID uint) error

	// GetPredictions returns a patient's predictions, oldest first, after the
	// same ownership check as Delete.
	GetPredictions(ctx context.Context, patientID, doctorID uint) ([]*Prediction, error)
}
