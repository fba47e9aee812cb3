package logs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/logging"
)

// ErrUnavailable reports that no daemon answered at the configured address.
var ErrUnavailable = errors.New("log API unavailable")

// ErrUnauthorized reports a missing or wrong API token.
var ErrUnauthorized = errors.New("log API rejected the token")

// Response mirrors the /api/logs payload.
type Response struct {
	Events []logging.LogEvent `json:"events"`
	Next   uint64             `json:"next"`
}

// Query filters a fetch.
type Query struct {
	Since     uint64
	Limit     int
	Level     string
	Component string
}

// Client talks to a running inkwelld.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// NewClient targets the daemon listening on bind. A host-less bind such as
// ":2368" is dialed on loopback.
func NewClient(bind, token string) (*Client, error) {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return nil, ErrUnavailable
	}
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	}
	if !strings.Contains(bind, "://") {
		bind = "http://" + bind
	}
	base, err := url.Parse(bind)
	if err != nil {
		return nil, fmt.Errorf("parse bind address: %w", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	return &Client{
		base:  base,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Fetch returns events newer than q.Since.
func (c *Client) Fetch(ctx context.Context, q Query) (Response, error) {
	if c == nil {
		return Response{}, ErrUnavailable
	}

	values := url.Values{}
	if q.Since > 0 {
		values.Set("since", strconv.FormatUint(q.Since, 10))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if level := strings.TrimSpace(q.Level); level != "" {
		values.Set("level", level)
	}
	if component := strings.TrimSpace(q.Component); component != "" {
		values.Set("component", component)
	}

	endpoint := c.base.ResolveReference(&url.URL{Path: "/api/logs", RawQuery: values.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Response{}, ErrUnauthorized
	case resp.StatusCode >= 400:
		return Response{}, fmt.Errorf("api logs returned status %d", resp.StatusCode)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Response{}, fmt.Errorf("decode log events: %w", err)
	}
	return payload, nil
}

// Follow polls Fetch every interval and hands each batch to fn until ctx ends.
func (c *Client) Follow(ctx context.Context, q Query, interval time.Duration, fn func([]logging.LogEvent) error) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := c.Fetch(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if len(resp.Events) > 0 {
			if err := fn(resp.Events); err != nil {
				return err
			}
		}
		q.Since = resp.Next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// IsUnavailable reports whether err means nothing is listening.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		err = urlErr.Err
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
