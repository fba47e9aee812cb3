package boot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/logging"
)

// ReadyServer is the result of a successful boot.
type ReadyServer struct {
	cfg     *config.Config
	hash    string
	handler http.Handler
	logger  *slog.Logger

	themeCancel context.CancelFunc
	themeDone   <-chan struct{}
}

func newReadyServer(cfg *config.Config, hash string, handler http.Handler, logger *slog.Logger) *ReadyServer {
	return &ReadyServer{cfg: cfg, hash: hash, handler: handler, logger: logger}
}

// InstallationHash is the persisted dbHash for this database.
func (r *ReadyServer) InstallationHash() string { return r.hash }

// Config is the configuration the server was booted with.
func (r *ReadyServer) Config() *config.Config { return r.cfg }

// Handler serves the blog, admin, and API routes.
func (r *ReadyServer) Handler() http.Handler { return r.handler }

// ThemeValidationDone is closed once background theme validation finishes.
func (r *ReadyServer) ThemeValidationDone() <-chan struct{} { return r.themeDone }

// Close cancels background work and waits for it to stop.
func (r *ReadyServer) Close() error {
	if r.themeCancel != nil {
		r.themeCancel()
	}
	if r.themeDone != nil {
		<-r.themeDone
	}
	return nil
}

// ListenAndServe binds server.bind and serves until ctx is cancelled.
func (r *ReadyServer) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", r.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.cfg.Server.Bind, err)
	}
	return r.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled, then shuts down within
// server.shutdown_timeout.
func (r *ReadyServer) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()
	r.logger.Info("server listening",
		logging.String("address", listener.Addr().String()),
		logging.String(logging.FieldEventType, "server_listening"),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	r.logger.Info("server stopped", logging.String(logging.FieldEventType, "server_stopped"))
	return nil
}
