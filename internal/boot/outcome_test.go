package boot

import (
	"errors"
	"fmt"
	"testing"

	"inkwell/internal/diag"
)

func TestRecoveredEmptyReportIsSuccess(t *testing.T) {
	if got := Recovered(diag.Report{}).Kind; got != KindSuccess {
		t.Fatalf("unexpected kind: got %s want %s", got, KindSuccess)
	}
	var report diag.Report
	report.AddWarning("old key", "config", "")
	if got := Recovered(report).Kind; got != KindRecoverable {
		t.Fatalf("unexpected kind: got %s want %s", got, KindRecoverable)
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != KindSuccess {
		t.Fatal("nil error should classify as success")
	}
	if Classify(errors.New("x")) != KindFatal {
		t.Fatal("plain errors should classify as fatal")
	}
	wrapped := fmt.Errorf("outer: %w", &StageError{Stage: StageMigrations, Err: errors.New("x")})
	if Classify(wrapped) != KindFatal {
		t.Fatal("stage errors are fatal")
	}
	stage, ok := FailedStage(wrapped)
	if !ok || stage != StageMigrations {
		t.Fatalf("unexpected stage: got %q want %q", stage, StageMigrations)
	}
}

func TestSettleFatalReturnsStageError(t *testing.T) {
	o := New(Deps{})
	err := o.settle(Outcome{Stage: StageServer, Kind: KindFatal, Err: errors.New("x")})
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageServer {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKindString(t *testing.T) {
	if KindRecoverable.String() != "recoverable" {
		t.Fatalf("unexpected string: %q", KindRecoverable.String())
	}
	if Kind(9).String() != "kind(9)" {
		t.Fatalf("unexpected string: %q", Kind(9).String())
	}
}
