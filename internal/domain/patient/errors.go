package patient

import "errors"

// ErrPatientNotFound covers both genuinely missing rows and rows owned by a
// different doctor. Callers must not be able to tell the two apart.
var ErrPatientNotFound = errors.New("patient not found")
