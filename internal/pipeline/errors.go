package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the step of the per-file flow an error came from.
type Stage string

const (
	StageDiscover   Stage = "discover"
	StageProbe      Stage = "probe"
	StageConvert    Stage = "convert"
	StageSplit      Stage = "split"
	StageTranscribe Stage = "transcribe"
	StageAdjust     Stage = "adjust"
	StageMerge      Stage = "merge"
	StagePersist    Stage = "persist"
	StageCleanup    Stage = "cleanup"
)

var (
	ErrNoInputs        = errors.New("no supported audio files found")
	ErrEmptySource     = errors.New("source has no audio duration")
	ErrNothingProduced = errors.New("no segment was transcribed")
)

// StageError wraps the error that ended or degraded a file at stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage recorded in err, or "" if there is none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
