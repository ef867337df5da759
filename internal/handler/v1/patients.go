package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/glucotrack/glucotrack/internal/classifier"
	"github.com/glucotrack/glucotrack/internal/domain/patient"
	"github.com/glucotrack/glucotrack/internal/handler/middleware"
	"github.com/glucotrack/glucotrack/internal/service"
)

type PatientHandler struct {
	intake   *service.IntakeService
	patients *service.PatientService
	log      *zap.Logger
}

func NewPatientHandler(intake *service.IntakeService, patients *service.PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{intake: intake, patients: patients, log: log}
}

type createPatientRequest struct {
	Name          string  `json:"name" binding:"required"`
	Age           int     `json:"age" binding:"min=0,max=120"`
	Sex           string  `json:"sex" binding:"required"`
	Glucose       float64 `json:"glucose" binding:"min=0,max=300"`
	BMI           float64 `json:"bmi" binding:"min=10,max=50"`
	BloodPressure float64 `json:"bloodpressure" binding:"min=40,max=200"`
	Pedigree      float64 `json:"pedigree" binding:"min=0,max=2"`
}

type predictRequest struct {
	Glucose       float64 `json:"glucose" binding:"min=0,max=300"`
	BloodPressure float64 `json:"bloodpressure" binding:"min=40,max=200"`
	BMI           float64 `json:"bmi" binding:"min=10,max=50"`
	Pedigree      float64 `json:"pedigree" binding:"min=0,max=2"`
	Age           float64 `json:"age" binding:"min=0,max=120"`
}

type predictResponse struct {
	Label      *int    `json:"label"`
	Confidence float64 `json:"confidence"`
	Text       string  `json:"text"`
}

type dashboardResponse struct {
	Username string                 `json:"username"`
	Patients []*patient.Patient     `json:"patients"`
	Stats    service.DashboardStats `json:"stats"`
}

// SubmitWeb handles the intake form. The redirect carries a short summary
// with the dashboard's 1-decimal confidence, matching what the patient list
// page displays.
func (h *PatientHandler) SubmitWeb(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	cmd, err := bindIntakeForm(c, doctorID)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/add?error="+url.QueryEscape(err.Error()))
		return
	}

	res, err := h.intake.Submit(c.Request.Context(), cmd)
	if err != nil {
		redirectWithError(c, "/add", err)
		return
	}

	summary := "Patient added: " + res.Patient.Result
	if res.Prediction != nil {
		summary = fmt.Sprintf("Patient added: %s (confidence: %.1f%%)", res.Patient.Result, res.Prediction.Confidence)
	}
	c.Redirect(http.StatusSeeOther, "/patients?success="+url.QueryEscape(summary))
}

// DashboardWeb returns the doctor's patient list with the aggregates the
// dashboard page renders.
func (h *PatientHandler) DashboardWeb(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	patients, stats, err := h.patients.ListPatients(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, dashboardResponse{
		Username: middleware.Username(c),
		Patients: patients,
		Stats:    stats,
	})
}

// DeleteWeb removes one of the doctor's patients.
func (h *PatientHandler) DeleteWeb(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	patientID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/patients?error="+url.QueryEscape("invalid patient id"))
		return
	}

	if err := h.patients.DeletePatient(c.Request.Context(), uint(patientID), doctorID); err != nil {
		redirectWithError(c, "/patients", err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/patients?success="+url.QueryEscape("Patient deleted"))
}

// CreateAPI is the JSON variant of intake.
func (h *PatientHandler) CreateAPI(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	var req createPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.intake.Submit(c.Request.Context(), &patient.IntakeCommand{
		DoctorID:      doctorID,
		Name:          req.Name,
		Age:           req.Age,
		Sex:           req.Sex,
		Glucose:       req.Glucose,
		BMI:           req.BMI,
		BloodPressure: req.BloodPressure,
		Pedigree:      req.Pedigree,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, gin.H{
		"patient":    res.Patient,
		"prediction": res.Prediction,
	})
}

// ListAPI returns the doctor's patients plus dashboard stats.
func (h *PatientHandler) ListAPI(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	patients, stats, err := h.patients.ListPatients(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{
		"patients": patients,
		"stats":    stats,
	})
}

// DeleteAPI is the JSON variant of patient deletion.
func (h *PatientHandler) DeleteAPI(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	patientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.patients.DeletePatient(c.Request.Context(), patientID, doctorID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, gin.H{"deleted": patientID})
}

// PredictionsAPI returns the prediction history of one of the doctor's
// patients. Another doctor's patient id 404s exactly like a missing one.
func (h *PatientHandler) PredictionsAPI(c *gin.Context) {
	doctorID, ok := middleware.DoctorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}

	patientID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	preds, err := h.patients.GetPredictions(c.Request.Context(), patientID, doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, preds)
}

// PredictAPI classifies a measurement set without persisting anything.
func (h *PatientHandler) PredictAPI(c *gin.Context) {
	var req predictRequest
	if !bindJSON(c, &req) {
		return
	}

	outcome, text, ok := h.intake.Predict(classifier.Features{
		Glucose:       req.Glucose,
		BloodPressure: req.BloodPressure,
		BMI:           req.BMI,
		Pedigree:      req.Pedigree,
		Age:           req.Age,
	})

	resp := predictResponse{Text: text}
	if ok {
		label := outcome.Label
		resp.Label = &label
		resp.Confidence = outcome.Confidence
	}

	respondOK(c, resp)
}

func bindIntakeForm(c *gin.Context, doctorID uint) (*patient.IntakeCommand, error) {
	age, err := strconv.Atoi(c.PostForm("age"))
	if err != nil {
		return nil, fmt.Errorf("age must be a whole number")
	}

	numeric := func(field string) (float64, error) {
		v, err := strconv.ParseFloat(c.PostForm(field), 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", field)
		}
		return v, nil
	}

	glucose, err := numeric("glucose")
	if err != nil {
		return nil, err
	}
	bmi, err := numeric("bmi")
	if err != nil {
		return nil, err
	}
	bloodpressure, err := numeric("bloodpressure")
	if err != nil {
		return nil, err
	}
	pedigree, err := numeric("pedigree")
	if err != nil {
		return nil, err
	}

	return &patient.IntakeCommand{
		DoctorID:      doctorID,
		Name:          c.PostForm("name"),
		Age:           age,
		Sex:           c.PostForm("sex"),
		Glucose:       glucose,
		BMI:           bmi,
		BloodPressure: bloodpressure,
		Pedigree:      pedigree,
	}, nil
}
