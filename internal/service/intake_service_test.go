package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/classifier"
	"github.com/glucotrack/glucotrack/internal/domain/patient"
)

type fakePatientRepo struct {
	created     *patient.Patient
	createdPred *patient.Prediction
	createErr   error
	createCalls int

	listOut []*patient.Patient
	listErr error

	deleteErr error

	predsOut []*patient.Prediction
	predsErr error
}

func (f *fakePatientRepo) CreateWithPrediction(_ context.Context, p *patient.Patient, pred *patient.Prediction) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = 1
	if pred != nil {
		pred.ID = 1
		pred.PatientID = p.ID
	}
	f.created = p
	f.createdPred = pred
	return nil
}

func (f *fakePatientRepo) ListForDoctor(_ context.Context, _ uint) ([]*patient.Patient, error) {
	return f.listOut, f.listErr
}

func (f *fakePatientRepo) Delete(_ context.Context, _, _ uint) error {
	return f.deleteErr
}

func (f *fakePatientRepo) GetPredictions(_ context.Context, _, _ uint) ([]*patient.Prediction, error) {
	return f.predsOut, f.predsErr
}

type fakeClassifier struct {
	outcome classifier.Outcome
	ok      bool
	gotF    classifier.Features
}

func (f *fakeClassifier) Classify(features classifier.Features) (classifier.Outcome, bool) {
	f.gotF = features
	return f.outcome, f.ok
}

func validCommand() *patient.IntakeCommand {
	return &patient.IntakeCommand{
		DoctorID:      7,
		Name:          "Alice Moreau",
		Age:           45,
		Sex:           "f",
		Glucose:       140,
		BMI:           28.5,
		BloodPressure: 80,
		Pedigree:      0.5,
	}
}

func TestSubmit_PersistsPatientAndPrediction(t *testing.T) {
	repo := &fakePatientRepo{}
	clf := &fakeClassifier{outcome: classifier.Outcome{Label: 1, Confidence: 82.3}, ok: true}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	res, err := svc.Submit(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, patient.SexFemale, res.Patient.Sex, "sex should be normalized to uppercase")
	assert.Equal(t, patient.ResultDiabetic, res.Patient.Result)
	assert.Equal(t, uint(7), res.Patient.DoctorID)

	require.NotNil(t, res.Prediction)
	assert.Equal(t, 1, res.Prediction.Result)
	assert.Equal(t, 82.3, res.Prediction.Confidence)

	assert.Equal(t, 1, repo.createCalls)
	assert.Same(t, res.Patient, repo.created)
	assert.Same(t, res.Prediction, repo.createdPred)
}

func TestSubmit_FeatureOrderReachesClassifier(t *testing.T) {
	repo := &fakePatientRepo{}
	clf := &fakeClassifier{outcome: classifier.Outcome{Label: 0, Confidence: 61.2}, ok: true}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, classifier.Features{
		Glucose:       140,
		BloodPressure: 80,
		BMI:           28.5,
		Pedigree:      0.5,
		Age:           45,
	}, clf.gotF)
}

func TestSubmit_NonDiabeticLabel(t *testing.T) {
	repo := &fakePatientRepo{}
	clf := &fakeClassifier{outcome: classifier.Outcome{Label: 0, Confidence: 91.07}, ok: true}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	res, err := svc.Submit(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, patient.ResultNonDiabetic, res.Patient.Result)
	require.NotNil(t, res.Prediction)
	assert.Equal(t, 0, res.Prediction.Result)
}

func TestSubmit_ClassifierUnavailable(t *testing.T) {
	repo := &fakePatientRepo{}
	clf := &fakeClassifier{ok: false}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	res, err := svc.Submit(context.Background(), validCommand())
	require.NoError(t, err)

	assert.Equal(t, patient.ResultError, res.Patient.Result)
	assert.Nil(t, res.Prediction, "no prediction row when the classifier is unavailable")
	assert.Nil(t, repo.createdPred)
	assert.Equal(t, 1, repo.createCalls, "the patient row is still persisted")
}

func TestSubmit_ValidationRejectsBeforeAnySideEffect(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cmd *patient.IntakeCommand)
		wantField string
	}{
		{"age too high", func(c *patient.IntakeCommand) { c.Age = 130 }, "age"},
		{"age negative", func(c *patient.IntakeCommand) { c.Age = -1 }, "age"},
		{"bmi too low", func(c *patient.IntakeCommand) { c.BMI = 5 }, "bmi"},
		{"glucose too high", func(c *patient.IntakeCommand) { c.Glucose = 301 }, "glucose"},
		{"bloodpressure too low", func(c *patient.IntakeCommand) { c.BloodPressure = 30 }, "bloodpressure"},
		{"pedigree too high", func(c *patient.IntakeCommand) { c.Pedigree = 2.5 }, "pedigree"},
		{"name too short", func(c *patient.IntakeCommand) { c.Name = "A" }, "name"},
		{"single accented rune name too short", func(c *patient.IntakeCommand) { c.Name = "É" }, "name"},
		{"name too long in runes", func(c *patient.IntakeCommand) { c.Name = strings.Repeat("É", 101) }, "name"},
		{"sex invalid", func(c *patient.IntakeCommand) { c.Sex = "X" }, "sex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakePatientRepo{}
			clf := &fakeClassifier{ok: true}
			svc := NewIntakeService(repo, clf, nil, zap.NewNop())

			cmd := validCommand()
			tt.mutate(cmd)

			_, err := svc.Submit(context.Background(), cmd)

			var validErr *ValidationError
			require.ErrorAs(t, err, &validErr)
			require.NotEmpty(t, validErr.Fields)
			assert.Contains(t, validErr.Fields[0], tt.wantField)
			assert.Equal(t, 0, repo.createCalls, "nothing may be persisted on invalid input")
		})
	}
}

func TestSubmit_NameLengthCountsCharactersNotBytes(t *testing.T) {
	repo := &fakePatientRepo{}
	clf := &fakeClassifier{outcome: classifier.Outcome{Label: 0, Confidence: 88.5}, ok: true}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	// 100 two-byte runes: at the character limit, well past it in bytes.
	cmd := validCommand()
	cmd.Name = strings.Repeat("É", 100)

	_, err := svc.Submit(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, repo.createCalls)
}

func TestSubmit_PersistenceFailureSurfacesGenerically(t *testing.T) {
	repo := &fakePatientRepo{createErr: errors.New("connection reset")}
	clf := &fakeClassifier{outcome: classifier.Outcome{Label: 1, Confidence: 70}, ok: true}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	_, err := svc.Submit(context.Background(), validCommand())
	require.Error(t, err)

	var validErr *ValidationError
	assert.False(t, errors.As(err, &validErr), "persistence errors are not validation errors")
}

func TestPredict_DoesNotPersist(t *testing.T) {
	repo := &fakePatientRepo{}
	clf := &fakeClassifier{outcome: classifier.Outcome{Label: 1, Confidence: 82.3}, ok: true}
	svc := NewIntakeService(repo, clf, nil, zap.NewNop())

	outcome, text, ok := svc.Predict(classifier.Features{Glucose: 140, BloodPressure: 80, BMI: 28.5, Pedigree: 0.5, Age: 45})

	require.True(t, ok)
	assert.Equal(t, 1, outcome.Label)
	assert.Equal(t, patient.ResultDiabetic, text)
	assert.Equal(t, 0, repo.createCalls)
}

func TestPredict_Unavailable(t *testing.T) {
	svc := NewIntakeService(&fakePatientRepo{}, &fakeClassifier{ok: false}, nil, zap.NewNop())

	_, text, ok := svc.Predict(classifier.Features{})

	assert.False(t, ok)
	assert.Equal(t, patient.ResultError, text)
}
