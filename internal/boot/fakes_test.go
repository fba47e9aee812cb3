package boot_test

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"inkwell/internal/boot"
	"inkwell/internal/config"
	"inkwell/internal/diag"
	"inkwell/internal/settings"
)

// recorder captures collaborator calls in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) index(name string) int {
	for i, c := range r.list() {
		if c == name {
			return i
		}
	}
	return -1
}

type fakeConfig struct {
	rec        *recorder
	cfg        *config.Config
	err        error
	deprecated []diag.Issue
	sawPath    string
}

func (f *fakeConfig) Load(_ context.Context, source string) (*config.Config, error) {
	f.rec.add("config.load")
	f.sawPath = source
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

func (f *fakeConfig) CheckDeprecated(*config.Config) []diag.Issue {
	f.rec.add("config.deprecated")
	return f.deprecated
}

// step is a generic Init collaborator.
type step struct {
	rec  *recorder
	name string
	err  error
	fn   func(ctx context.Context) error
}

func (s *step) Init(ctx context.Context) error {
	s.rec.add(s.name)
	if s.fn != nil {
		return s.fn(ctx)
	}
	return s.err
}

type fakePersistence struct {
	rec *recorder
	err error
}

func (f *fakePersistence) Init(context.Context, *config.Config) error {
	f.rec.add("persistence")
	return f.err
}

// fakeSettings stores values in memory and treats dbHash as write-once.
type fakeSettings struct {
	rec         *recorder
	defaultsErr error
	initErr     error

	mu     sync.Mutex
	values map[string]*string
	writes int
}

func newFakeSettings(rec *recorder) *fakeSettings {
	return &fakeSettings{rec: rec, values: map[string]*string{settings.KeyDBHash: nil}}
}

func (f *fakeSettings) PopulateDefaults(context.Context) error {
	f.rec.add("settings.defaults")
	return f.defaultsErr
}

func (f *fakeSettings) Init(context.Context) error {
	f.rec.add("settings.init")
	return f.initErr
}

func (f *fakeSettings) Read(_ context.Context, key string, access settings.Access) (settings.Setting, error) {
	if !access.Internal {
		return settings.Setting{}, settings.ErrNotPermitted
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	if !ok {
		return settings.Setting{}, settings.ErrNotFound
	}
	return settings.Setting{Key: key, Value: v}, nil
}

func (f *fakeSettings) Write(_ context.Context, key, value string, access settings.Access) (settings.Setting, error) {
	if !access.Internal {
		return settings.Setting{}, settings.ErrNotPermitted
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if existing := f.values[key]; key == settings.KeyDBHash && existing != nil {
		return settings.Setting{Key: key, Value: existing}, nil
	}
	v := value
	f.values[key] = &v
	return settings.Setting{Key: key, Value: &v}, nil
}

func (f *fakeSettings) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

type failingFirstRun struct{}

func (failingFirstRun) Ensure(context.Context) (string, error) {
	return "", errBoom
}

type fakeServer struct {
	rec *recorder
	err error
	cfg *config.Config
}

func (f *fakeServer) Build(_ context.Context, cfg *config.Config) (http.Handler, error) {
	f.rec.add("server.build")
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return http.NotFoundHandler(), nil
}

type fakeThemes struct {
	report diag.Report
	err    error
	panic  bool
	block  bool
	path   string
}

func (f *fakeThemes) Validate(ctx context.Context, themePath string) (diag.Report, error) {
	f.path = themePath
	if f.block {
		<-ctx.Done()
		return diag.Report{}, ctx.Err()
	}
	if f.panic {
		panic("bad theme")
	}
	return f.report, f.err
}

type reported struct {
	level, message, context, help string
}

type fakeReporter struct {
	mu      sync.Mutex
	entries []reported
}

func (f *fakeReporter) LogError(message, context, help string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, reported{"error", message, context, help})
}

func (f *fakeReporter) LogWarn(message, context, help string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, reported{"warn", message, context, help})
}

func (f *fakeReporter) byLevel(level string) []reported {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []reported
	for _, e := range f.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []boot.Outcome
}

func (o *recordingObserver) StageStarted(stage string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, stage)
}

func (o *recordingObserver) StageFinished(outcome boot.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, outcome)
}

func (o *recordingObserver) startedStages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.started...)
}

func (o *recordingObserver) outcome(stage string) (boot.Outcome, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, out := range o.finished {
		if out.Stage == stage {
			return out, true
		}
	}
	return boot.Outcome{}, false
}

// harness wires a full set of fakes that succeed by default.
type harness struct {
	rec         *recorder
	locale      *step
	config      *fakeConfig
	persistence *fakePersistence
	migrations  *step
	settings    *fakeSettings
	permissions *step
	apps        *step
	sitemap     *step
	ping        *step
	server      *fakeServer
	themes      *fakeThemes
	reporter    *fakeReporter
	observer    *recordingObserver
}

func newHarness() *harness {
	rec := &recorder{}
	cfg := config.Default()
	cfg.Paths.ThemePath = "/srv/themes"
	return &harness{
		rec:         rec,
		locale:      &step{rec: rec, name: "i18n"},
		config:      &fakeConfig{rec: rec, cfg: &cfg},
		persistence: &fakePersistence{rec: rec},
		migrations:  &step{rec: rec, name: "migrations"},
		settings:    newFakeSettings(rec),
		permissions: &step{rec: rec, name: "permissions"},
		apps:        &step{rec: rec, name: "apps"},
		sitemap:     &step{rec: rec, name: "sitemap"},
		ping:        &step{rec: rec, name: "ping"},
		server:      &fakeServer{rec: rec},
		themes:      &fakeThemes{},
		reporter:    &fakeReporter{},
		observer:    &recordingObserver{},
	}
}

func (h *harness) deps() boot.Deps {
	return boot.Deps{
		Locale:      h.locale,
		Config:      h.config,
		Persistence: h.persistence,
		Migrations:  h.migrations,
		Settings:    h.settings,
		Permissions: h.permissions,
		Apps:        h.apps,
		Sitemap:     h.sitemap,
		Ping:        h.ping,
		Server:      h.server,
		Themes:      h.themes,
		Reporter:    h.reporter,
		Observer:    h.observer,
	}
}

var errBoom = errors.New("boom")
