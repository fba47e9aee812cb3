package boot

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// startServices runs first-run and the auxiliary services concurrently and
// waits for all of them. Siblings are not cancelled when one fails; every
// failure is reported in the joined error.
func (o *Orchestrator) startServices(ctx context.Context) (string, error) {
	var (
		g    errgroup.Group
		hash string
		errs [4]error
	)

	g.Go(func() error {
		h, err := o.firstRun().Ensure(ctx)
		if err != nil {
			errs[0] = fmt.Errorf("first run: %w", err)
			return errs[0]
		}
		hash = h
		return nil
	})
	for i, svc := range []struct {
		name string
		svc  Service
	}{
		{"apps", o.deps.Apps},
		{"sitemap", o.deps.Sitemap},
		{"ping", o.deps.Ping},
	} {
		g.Go(func() error {
			if err := svc.svc.Init(ctx); err != nil {
				errs[i+1] = fmt.Errorf("%s: %w", svc.name, err)
				return errs[i+1]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", errors.Join(errs[:]...)
	}
	return hash, nil
}

func (o *Orchestrator) firstRun() FirstRunner {
	if o.deps.FirstRun != nil {
		return o.deps.FirstRun
	}
	return &FirstRun{Settings: o.deps.Settings, Logger: o.logger}
}
