package boot

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/i18n"
)

// launchThemeValidation starts theme validation detached from the boot
// context's cancellation. The ReadyServer owns the task: Close cancels it.
// Whatever happens, the outcome is logged and never returned.
func (o *Orchestrator) launchThemeValidation(ctx context.Context, ready *ReadyServer, themePath string) {
	done := make(chan struct{})
	ready.themeDone = done
	if o.deps.Themes == nil {
		close(done)
		return
	}

	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ready.themeCancel = cancel
	o.observer.StageStarted(StageThemeValidation)

	go func() {
		defer close(done)
		defer cancel()
		start := time.Now()
		outcome := o.validateThemes(bgCtx, themePath)
		outcome.Stage = StageThemeValidation
		outcome.Duration = time.Since(start)
		o.observer.StageFinished(outcome)
		_ = o.settle(outcome)
	}()
}

func (o *Orchestrator) validateThemes(ctx context.Context, themePath string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{
				Kind: KindRecoverable,
				Err:  fmt.Errorf("theme validation panicked: %v", r),
				Help: i18n.T("theme.validation_panicked.help"),
			}
		}
	}()

	report, err := o.deps.Themes.Validate(ctx, themePath)
	if err != nil {
		return Outcome{
			Kind: KindRecoverable,
			Err:  fmt.Errorf("theme validation failed for %s: %w", themePath, err),
			Help: i18n.T("theme.validation_failed.help"),
		}
	}
	return Recovered(report)
}
