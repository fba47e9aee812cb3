package boot

import (
	"errors"
	"fmt"
	"time"

	"inkwell/internal/diag"
)

// Kind classifies how a stage ended.
type Kind int

const (
	KindSuccess Kind = iota
	KindRecoverable
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRecoverable:
		return "recoverable"
	case KindFatal:
		return "fatal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one stage. Recoverable outcomes carry the
// findings to report; fatal outcomes carry the error that stops the boot.
type Outcome struct {
	Stage    string
	Kind     Kind
	Err      error
	Report   diag.Report
	Help     string
	Duration time.Duration
}

// Succeeded is a successful outcome.
func Succeeded() Outcome { return Outcome{Kind: KindSuccess} }

// Recovered wraps findings that should be logged without stopping the boot.
func Recovered(report diag.Report) Outcome {
	if report.Empty() {
		return Succeeded()
	}
	return Outcome{Kind: KindRecoverable, Report: report}
}

func fatal(err error) Outcome {
	if err == nil {
		return Succeeded()
	}
	return Outcome{Kind: KindFatal, Err: err}
}

// ErrorClassifier lets errors declare their boot classification.
type ErrorClassifier interface {
	BootKind() Kind
}

// Classify returns the kind an error declares, defaulting to fatal.
func Classify(err error) Kind {
	if err == nil {
		return KindSuccess
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.BootKind()
	}
	return KindFatal
}

// StageError is returned by Boot when a stage fails fatally.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("boot stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) BootKind() Kind { return KindFatal }

// FailedStage returns the stage name carried by a StageError in err's chain.
func FailedStage(err error) (string, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}
