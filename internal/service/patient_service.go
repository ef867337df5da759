package service

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/domain/patient"
)

// DashboardStats are the per-doctor aggregates shown with the patient list.
// They are recomputed on every read, never persisted.
type DashboardStats struct {
	Total              int     `json:"total"`
	Diabetic           int     `json:"diabetic"`
	NonDiabetic        int     `json:"non_diabetic"`
	DiabeticPercentage float64 `json:"diabetic_percentage"`
}

type PatientService struct {
	repo patient.Repository
	log  *zap.Logger
}

func NewPatientService(repo patient.Repository, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, log: log}
}

// ListPatients returns the doctor's patients, newest first, with dashboard
// aggregates computed over the same slice.
func (s *PatientService) ListPatients(ctx context.Context, doctorID uint) ([]*patient.Patient, DashboardStats, error) {
	patients, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		s.log.Error("failed to list patients", zap.Uint("doctor_id", doctorID), zap.Error(err))
		return nil, DashboardStats{}, err
	}
	return patients, ComputeStats(patients), nil
}

func (s *PatientService) DeletePatient(ctx context.Context, patientID, doctorID uint) error {
	if err := s.repo.Delete(ctx, patientID, doctorID); err != nil {
		return err
	}
	s.log.Info("patient deleted",
		zap.Uint("patient_id", patientID),
		zap.Uint("doctor_id", doctorID),
	)
	return nil
}

func (s *PatientService) GetPredictions(ctx context.Context, patientID, doctorID uint) ([]*patient.Prediction, error) {
	return s.repo.GetPredictions(ctx, patientID, doctorID)
}

// ComputeStats derives the dashboard aggregates. A patient counts as
// diabetic when its result text contains the diabetic marker; the
// lowercase d in "Non-diabetic" keeps it from matching. Percentage is
// rounded to 1 decimal place, 0 for an empty set.
func ComputeStats(patients []*patient.Patient) DashboardStats {
	stats := DashboardStats{Total: len(patients)}
	for _, p := range patients {
		if strings.Contains(p.Result, patient.ResultDiabetic) {
			stats.Diabetic++
		}
	}
	stats.NonDiabetic = stats.Total - stats.Diabetic
	if stats.Total > 0 {
		pct := float64(stats.Diabetic) / float64(stats.Total) * 100
		stats.DiabeticPercentage = math.Round(pct*10) / 10
	}
	return stats
}
