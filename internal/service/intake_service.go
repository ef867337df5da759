package service

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/classifier"
	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/pkg/metrics"
)

// Classifier is the slice of the classifier adapter the pipeline needs.
// ok=false is the single degraded outcome: the patient is still persisted,
// with a sentinel result text and no prediction row.
type Classifier interface {
	Classify(f classifier.Features) (classifier.Outcome, bool)
}

// IntakeResult is what the intake pipeline hands back to the caller: the
// persisted patient plus the prediction row, which is nil when the
// classifier was unavailable.
type IntakeResult struct {
	Patient    *patient.Patient
	Prediction *patient.Prediction
}

// IntakeService runs the patient intake pipeline: validate, classify,
// persist patient and prediction as one unit.
type IntakeService struct {
	repo    patient.Repository
	clf     Classifier
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewIntakeService(repo patient.Repository, clf Classifier, m *metrics.Collector, log *zap.Logger) *IntakeService {
	return &IntakeService{repo: repo, clf: clf, metrics: m, log: log}
}

// Submit validates the submission, classifies it, and persists the patient
// row together with its prediction. Invalid input is rejected before any
// side effect. A persistence failure on either row rolls back both.
func (s *IntakeService) Submit(ctx context.Context, cmd *patient.IntakeCommand) (*IntakeResult, error) {
	if err := validateIntakeCommand(cmd); err != nil {
		return nil, err
	}

	sex := patient.NormalizeSex(cmd.Sex)

	outcome, ok := s.clf.Classify(classifier.Features{
		Glucose:       cmd.Glucose,
		BloodPressure: cmd.BloodPressure,
		BMI:           cmd.BMI,
		Pedigree:      cmd.Pedigree,
		Age:           float64(cmd.Age),
	})

	p := &patient.Patient{
		DoctorID:      cmd.DoctorID,
		Name:          cmd.Name,
		Age:           cmd.Age,
		Sex:           sex,
		Glucose:       cmd.Glucose,
		BMI:           cmd.BMI,
		BloodPressure: cmd.BloodPressure,
		Pedigree:      cmd.Pedigree,
	}

	var pred *patient.Prediction
	if ok {
		if outcome.Label == 1 {
			p.Result = patient.ResultDiabetic
		} else {
			p.Result = patient.ResultNonDiabetic
		}
		pred = &patient.Prediction{
			Result:     outcome.Label,
			Confidence: outcome.Confidence,
		}
	} else {
		p.Result = patient.ResultError
	}

	if err := s.repo.CreateWithPrediction(ctx, p, pred); err != nil {
		s.log.Error("failed to persist intake",
			zap.Uint("doctor_id", cmd.DoctorID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("persisting patient: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PatientsCreatedTotal.Inc()
		if ok {
			s.metrics.PredictionsTotal.WithLabelValues(strconv.Itoa(outcome.Label)).Inc()
		} else {
			s.metrics.ClassifierUnavailableTotal.Inc()
		}
	}

	s.log.Info("patient intake complete",
		zap.Uint("patient_id", p.ID),
		zap.Uint("doctor_id", cmd.DoctorID),
		zap.String("result", p.Result),
	)

	return &IntakeResult{Patient: p, Prediction: pred}, nil
}

// Predict classifies without persisting anything. It backs the stateless
// prediction endpoint.
func (s *IntakeService) Predict(f classifier.Features) (classifier.Outcome, string, bool) {
	outcome, ok := s.clf.Classify(f)
	if !ok {
		return classifier.Outcome{}, patient.ResultError, false
	}
	text := patient.ResultNonDiabetic
	if outcome.Label == 1 {
		text = patient.ResultDiabetic
	}
	return outcome, text, true
}

func validateIntakeCommand(cmd *patient.IntakeCommand) error {
	var errs []string

	if l := utf8.RuneCountInString(cmd.Name); l < patient.NameMinLen || l > patient.NameMaxLen {
		errs = append(errs, fmt.Sprintf("name must be %d-%d characters", patient.NameMinLen, patient.NameMaxLen))
	}
	if cmd.Age < patient.AgeMin || cmd.Age > patient.AgeMax {
		errs = append(errs, fmt.Sprintf("age must be between %d and %d", patient.AgeMin, patient.AgeMax))
	}
	if !patient.NormalizeSex(cmd.Sex).IsValid() {
		errs = append(errs, "sex must be M or F")
	}
	if cmd.Glucose < patient.GlucoseMin || cmd.Glucose > patient.GlucoseMax {
		errs = append(errs, fmt.Sprintf("glucose must be between %g and %g", patient.GlucoseMin, patient.GlucoseMax))
	}
	if cmd.BMI < patient.BMIMin || cmd.BMI > patient.BMIMax {
		errs = append(errs, fmt.Sprintf("bmi must be between %g and %g", patient.BMIMin, patient.BMIMax))
	}
	if cmd.BloodPressure < patient.BloodPressureMin || cmd.BloodPressure > patient.BloodPressureMax {
		errs = append(errs, fmt.Sprintf("bloodpressure must be between %g and %g", patient.BloodPressureMin, patient.BloodPressureMax))
	}
	if cmd.Pedigree < patient.PedigreeMin || cmd.Pedigree > patient.PedigreeMax {
		errs = append(errs, fmt.Sprintf("pedigree must be between %g and %g", patient.PedigreeMin, patient.PedigreeMax))
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
