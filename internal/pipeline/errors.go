package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the part of a run that failed.
type Stage string

const (
	StageLoad        Stage = "load"
	StageRecognition Stage = "recognition"
	StageExtraction  Stage = "extraction"
)

// ErrNotLoaded is returned when an extraction starts before any vocabulary
// has been loaded.
var ErrNotLoaded = errors.New("vocabulary not loaded")

// StageError tags an error with the stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage of the first StageError in err's chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
