package pipeline

import "fmt"

// Stage names the pipeline phase an error originated from.
type Stage string

const (
	StageValidate Stage = "validate"
	StageClip     Stage = "clip"
	StageGrid     Stage = "grid"
	StageMask     Stage = "mask"
	StageSample   Stage = "sample"
	StageWrite    Stage = "write"
)

// Error is the structured fatal error a run aborts with. Recoverable
// problems never surface here; they go through the feedback sink.
type Error struct {
	Stage Stage
	Msg   string
	Err   error
}

// Error renders the stage and message, with the cause when present.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Err }

func fatal(stage Stage, msg string, err error) *Error {
	return &Error{Stage: stage, Msg: msg, Err: err}
}
