package boot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/diag"
	"inkwell/internal/logging"
)

// Options are fixed for one boot attempt.
type Options struct {
	// ConfigPath is handed to the config loader; empty means the default
	// search path.
	ConfigPath string
	// Timeout bounds every stage up to and including the server build.
	// Zero falls back to boot.timeout from the loaded config; both zero means
	// no deadline.
	Timeout time.Duration
}

// Orchestrator runs the boot sequence.
type Orchestrator struct {
	deps     Deps
	logger   *slog.Logger
	observer Observer
}

// New returns an orchestrator over deps.
func New(deps Deps) *Orchestrator {
	logger := logging.NewComponentLogger(deps.Logger, "boot")
	observer := deps.Observer
	if observer == nil {
		observer = logObserver{logger: logger}
	}
	return &Orchestrator{deps: deps, logger: logger, observer: observer}
}

type stage struct {
	name string
	run  func(ctx context.Context) Outcome
}

// Boot brings the server to a ready state. On a fatal stage it returns a
// *StageError naming the stage, and no later stage runs. Nothing is rolled
// back; callers own cleanup of collaborators they constructed.
func (o *Orchestrator) Boot(ctx context.Context, opts Options) (*ReadyServer, error) {
	if err := o.deps.validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	bootCtx := ctx
	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		bootCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer func() { cancel() }()

	var (
		cfg     *config.Config
		hash    string
		handler http.Handler
	)

	stages := []stage{
		{StageConfig, func(ctx context.Context) Outcome {
			loaded, err := o.deps.Config.Load(ctx, opts.ConfigPath)
			if err == nil && loaded == nil {
				err = fmt.Errorf("config loader returned no configuration")
			}
			cfg = loaded
			return fatal(err)
		}},
		{StageDeprecations, func(context.Context) Outcome {
			var report diag.Report
			report.Warnings = o.deps.Config.CheckDeprecated(cfg)
			return Recovered(report)
		}},
		{StagePersistence, func(ctx context.Context) Outcome {
			return fatal(o.deps.Persistence.Init(ctx, cfg))
		}},
		{StageMigrations, func(ctx context.Context) Outcome {
			return fatal(o.deps.Migrations.Init(ctx))
		}},
		{StageDefaults, func(ctx context.Context) Outcome {
			return fatal(o.deps.Settings.PopulateDefaults(ctx))
		}},
		{StageSettingsCache, func(ctx context.Context) Outcome {
			return fatal(o.deps.Settings.Init(ctx))
		}},
		{StagePermissions, func(ctx context.Context) Outcome {
			return fatal(o.deps.Permissions.Init(ctx))
		}},
		{StageServices, func(ctx context.Context) Outcome {
			var err error
			hash, err = o.startServices(ctx)
			return fatal(err)
		}},
		{StageServer, func(ctx context.Context) Outcome {
			var err error
			handler, err = o.deps.Server.Build(ctx, cfg)
			if err == nil && handler == nil {
				err = fmt.Errorf("server builder returned no handler")
			}
			return fatal(err)
		}},
	}

	if o.deps.Locale != nil {
		stages = append([]stage{{StageLocale, func(ctx context.Context) Outcome {
			return fatal(o.deps.Locale.Init(ctx))
		}}}, stages...)
	}

	for _, st := range stages {
		if err := o.runStage(bootCtx, st); err != nil {
			o.logger.Error("boot failed",
				logging.String(logging.FieldEventType, "boot_failed"),
				logging.String(logging.FieldStage, st.name),
				logging.Duration("elapsed", time.Since(started)),
				logging.Error(err),
			)
			return nil, err
		}
		if st.name == StageConfig && opts.Timeout == 0 && cfg.BootTimeout() > 0 {
			cancel()
			bootCtx, cancel = context.WithTimeout(ctx, cfg.BootTimeout()-time.Since(started))
		}
	}

	ready := newReadyServer(cfg, hash, handler, o.logger)
	o.launchThemeValidation(ctx, ready, cfg.Paths.ThemePath)

	o.logger.Info("boot complete",
		logging.String(logging.FieldEventType, "boot_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return ready, nil
}

func (o *Orchestrator) runStage(ctx context.Context, st stage) error {
	if err := ctx.Err(); err != nil {
		return o.settle(Outcome{Stage: st.name, Kind: KindFatal, Err: err})
	}
	o.observer.StageStarted(st.name)
	start := time.Now()
	outcome := st.run(logging.WithStage(ctx, st.name))
	outcome.Stage = st.name
	outcome.Duration = time.Since(start)
	if outcome.Kind == KindFatal && outcome.Err == nil {
		outcome.Err = fmt.Errorf("stage %s failed", st.name)
	}
	o.observer.StageFinished(outcome)
	return o.settle(outcome)
}

// settle is the only place a stage outcome is interpreted: success passes,
// recoverable findings are logged, fatal errors are returned.
func (o *Orchestrator) settle(outcome Outcome) error {
	switch outcome.Kind {
	case KindSuccess:
		return nil
	case KindRecoverable:
		for _, issue := range outcome.Report.Errors {
			o.deps.Reporter.LogError(issue.Message, issue.Context, issue.Help)
		}
		for _, issue := range outcome.Report.Warnings {
			o.deps.Reporter.LogWarn(issue.Message, issue.Context, issue.Help)
		}
		if outcome.Err != nil {
			o.deps.Reporter.LogError(outcome.Err.Error(), outcome.Stage, outcome.Help)
		}
		return nil
	default:
		return &StageError{Stage: outcome.Stage, Err: outcome.Err}
	}
}

type logObserver struct {
	logger *slog.Logger
}

func (l logObserver) StageStarted(stage string) {
	l.logger.Debug("stage started",
		logging.String(logging.FieldStage, stage),
		logging.String(logging.FieldEventType, "stage_start"),
	)
}

func (l logObserver) StageFinished(outcome Outcome) {
	attrs := []logging.Attr{
		logging.String(logging.FieldStage, outcome.Stage),
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("outcome", outcome.Kind.String()),
		logging.Duration("stage_duration", outcome.Duration),
	}
	if outcome.Kind == KindSuccess {
		l.logger.Debug("stage completed", logging.Args(attrs...)...)
		return
	}
	l.logger.Info("stage completed", logging.Args(attrs...)...)
}
