// Package classifier wraps the pre-trained diabetes risk model. The model is
// trained offline and its parameters exported to a JSON file; this package
// only scores. It is loaded once at process start and never mutated, so a
// single Classifier is safe for concurrent use without synchronization.
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
)

// featureOrder is the exact order the model was trained with. Scoring with
// features in any other order produces silently wrong predictions, so the
// order is part of the adapter contract, not a convention.
var featureOrder = [5]string{"glucose", "bloodpressure", "bmi", "pedigree", "age"}

// Features holds one observation in named form; the adapter assembles the
// ordered vector itself so callers cannot get the order wrong.
type Features struct {
	Glucose       float64
	BloodPressure float64
	BMI           float64
	Pedigree      float64
	Age           float64
}

// Outcome is a usable classification: a binary label and the max class
// probability as a percentage rounded to 2 decimal places.
type Outcome struct {
	Label      int
	Confidence float64
}

type modelParams struct {
	Model        string    `json:"model"`
	Version      string    `json:"version"`
	Features     []string  `json:"features"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

type Classifier struct {
	params *modelParams
	log    *zap.Logger
}

// New loads the model parameter file. A missing or malformed file does not
// fail the process: the classifier comes up unavailable and every Classify
// call reports that, matching the degraded-intake behavior upstream.
func New(path string, log *zap.Logger) *Classifier {
	c := &Classifier{log: log}

	params, err := loadParams(path)
	if err != nil {
		log.Warn("classifier model unavailable, intake will persist without predictions",
			zap.String("path", path),
			zap.Error(err),
		)
		return c
	}

	c.params = params
	log.Info("classifier model loaded",
		zap.String("model", params.Model),
		zap.String("version", params.Version),
	)
	return c
}

func loadParams(path string) (*modelParams, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	var params modelParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("parsing model file: %w", err)
	}

	if len(params.Features) != len(featureOrder) {
		return nil, fmt.Errorf("model expects %d features, file declares %d", len(featureOrder), len(params.Features))
	}
	for i, name := range featureOrder {
		if params.Features[i] != name {
			return nil, fmt.Errorf("feature %d is %q, trained order requires %q", i, params.Features[i], name)
		}
	}
	if len(params.Coefficients) != len(featureOrder) {
		return nil, fmt.Errorf("model has %d coefficients for %d features", len(params.Coefficients), len(featureOrder))
	}
	for i, c := range params.Coefficients {
		if !isFinite(c) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	if !isFinite(params.Intercept) {
		return nil, fmt.Errorf("intercept is not finite")
	}

	return &params, nil
}

// Available reports whether the model loaded at startup.
func (c *Classifier) Available() bool {
	return c.params != nil
}

// Classify scores one observation. ok is false when the model never loaded
// or the input cannot be scored; there is no error to branch on, callers
// get exactly one fallback path.
func (c *Classifier) Classify(f Features) (Outcome, bool) {
	if c.params == nil {
		return Outcome{}, false
	}

	vector := [5]float64{f.Glucose, f.BloodPressure, f.BMI, f.Pedigree, f.Age}
	for _, v := range vector {
		if !isFinite(v) {
			c.log.Warn("classifier input not scorable, dropping prediction")
			return Outcome{}, false
		}
	}

	z := c.params.Intercept
	for i, v := range vector {
		z += c.params.Coefficients[i] * v
	}

	p := sigmoid(z)
	if !isFinite(p) {
		return Outcome{}, false
	}

	label := 0
	if p >= 0.5 {
		label = 1
	}

	confidence := math.Max(p, 1-p) * 100

	return Outcome{
		Label:      label,
		Confidence: roundTo(confidence, 2),
	}, true
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func roundTo(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
