package patient

import (
	"strings"
	"time"
)

// Sex is the patient's recorded sex, normalized to uppercase on input.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// NormalizeSex uppercases the raw form value before validation.
func NormalizeSex(raw string) Sex {
	return Sex(strings.ToUpper(strings.TrimSpace(raw)))
}

// Result labels persisted on the patient row. ResultError marks records
// for which the classifier was unavailable at intake time.
const (
	ResultDiabetic    = "Diabetic"
	ResultNonDiabetic = "Non-diabetic"
	ResultError       = "Prediction error"
)

// Measurement ranges accepted at intake.
const (
	NameMinLen = 2
	NameMaxLen = 100

	AgeMin = 0
	AgeMax = 120

	GlucoseMin = 0.0
	GlucoseMax = 300.0

	BMIMin = 10.0
	BMIMax = 50.0

	BloodPressureMin = 40.0
	BloodPressureMax = 200.0

	PedigreeMin = 0.0
	PedigreeMax = 2.0
)

// Patient is a clinical record with measurements and a derived risk label.
// Every read, update, and delete is scoped to the owning doctor.
type Patient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	DoctorID uint `gorm:"column:doctor_id;not null;index" json:"doctor_id"`

	Name          string  `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Age           int     `gorm:"column:age;not null" json:"age"`
	Sex           Sex     `gorm:"column:sex;type:varchar(1);not null" json:"sex"`
	Glucose       float64 `gorm:"column:glucose;not null" json:"glucose"`
	BMI           float64 `gorm:"column:bmi;not null" json:"bmi"`
	BloodPressure float64 `gorm:"column:bloodpressure;not null" json:"bloodpressure"`
	Pedigree      float64 `gorm:"column:pedigree;not null" json:"pedigree"`

	Result string `gorm:"column:result;type:varchar(50)" json:"result"`

	Predictions []Prediction `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"predictions,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// Prediction is the persisted output of one classifier invocation.
// Rows are never mutated; they only disappear via cascade from their patient.
type Prediction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	PatientID uint `gorm:"column:patient_id;not null;index" json:"patient_id"`

	// Result is the binary class label, 0 or 1.
	Result int `gorm:"column:result;not null" json:"result"`
	// Confidence is the max class probability as a percentage, 0-100.
	Confidence float64 `gorm:"column:confidence;not null" json:"confidence"`
}

func (Prediction) TableName() string {
	return "predictions"
}

// IntakeCommand carries one patient submission through the intake pipeline.
type IntakeCommand struct {
	DoctorID      uint
	Name          string
	Age           int
	Sex           string
	Glucose       float64
	BMI           float64
	BloodPressure float64
	Pedigree      float64
}
