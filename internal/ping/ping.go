// Package ping notifies weblog update services when content is published.
//
// Each service gets its own circuit breaker so an unreachable endpoint stops
// costing a request timeout on every publish.
package ping

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"inkwell/internal/logging"
)

// ErrSkipped is reported for pings suppressed because the site is local.
var ErrSkipped = errors.New("ping: skipped for local site")

// Options configure a Pinger.
type Options struct {
	Enabled   bool
	Services  []string
	Timeout   time.Duration
	SiteTitle string
	SiteURL   string
	Client    *http.Client
}

// Result is the outcome of pinging one service.
type Result struct {
	Service  string
	Err      error
	Duration time.Duration
}

// Pinger sends weblogUpdates.ping calls.
type Pinger struct {
	opts   Options
	client *http.Client
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	ready    bool
}

// New returns a pinger. Init must run before Notify sends anything.
func New(opts Options, logger *slog.Logger) *Pinger {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Pinger{
		opts:     opts,
		client:   client,
		logger:   logging.NewComponentLogger(logger, "ping"),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Init validates the configured services and prepares their breakers.
func (p *Pinger) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.opts.Enabled {
		p.logger.Debug("ping disabled")
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, service := range p.opts.Services {
		parsed, err := url.Parse(service)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return fmt.Errorf("invalid ping service %q", service)
		}
		p.breakers[service] = newBreaker(service)
	}
	p.ready = true
	p.logger.Info("ping services ready",
		logging.String(logging.FieldEventType, "ping_ready"),
		logging.Int("services", len(p.breakers)),
	)
	return nil
}

// Enabled reports whether Notify will contact any service.
func (p *Pinger) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready && len(p.breakers) > 0
}

// Notify pings every service about postURL. Failures are logged and
// returned per service; Notify itself never fails.
func (p *Pinger) Notify(ctx context.Context, postURL string) []Result {
	if !p.Enabled() {
		return nil
	}
	if isLocal(p.opts.SiteURL) {
		p.logger.Debug("ping skipped for local site", logging.String("site_url", p.opts.SiteURL))
		results := make([]Result, 0, len(p.opts.Services))
		for _, service := range p.opts.Services {
			results = append(results, Result{Service: service, Err: ErrSkipped})
		}
		return results
	}

	body, err := encodeCall(p.opts.SiteTitle, postURL)
	if err != nil {
		return []Result{{Err: err}}
	}

	results := make([]Result, len(p.opts.Services))
	var wg sync.WaitGroup
	for i, service := range p.opts.Services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			_, err := p.breaker(service).Execute(func() (any, error) {
				return nil, p.send(ctx, service, body)
			})
			results[i] = Result{Service: service, Err: err, Duration: time.Since(start)}
			if err != nil {
				logging.WarnWithContext(p.logger, "ping failed", "ping_failed",
					logging.String("service", service),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the ping service URL or disable ping"),
					logging.String(logging.FieldImpact, "search engines are not notified"),
				)
				return
			}
			p.logger.Info("ping sent",
				logging.String(logging.FieldEventType, "ping_sent"),
				logging.String("service", service),
			)
		}()
	}
	wg.Wait()
	return results
}

func (p *Pinger) breaker(service string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()
	cb, ok := p.breakers[service]
	if !ok {
		cb = newBreaker(service)
		p.breakers[service] = cb
	}
	return cb
}

func (p *Pinger) send(ctx context.Context, service string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, service, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/xml")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return decodeResponse(data)
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func isLocal(siteURL string) bool {
	parsed, err := url.Parse(siteURL)
	if err != nil {
		return true
	}
	host := parsed.Hostname()
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified())
}
