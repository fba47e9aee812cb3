package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/logging"
	"inkwell/internal/ping"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping <post-url>",
		Short: "Notify the configured update services about a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			pinger := ping.New(ping.Options{
				Enabled:   cfg.Ping.Enabled,
				Services:  cfg.Ping.Services,
				Timeout:   cfg.PingTimeout(),
				SiteTitle: cfg.Site.Title,
				SiteURL:   cfg.Site.URL,
			}, logging.NewNop())
			if err := pinger.Init(cmd.Context()); err != nil {
				return err
			}
			if !pinger.Enabled() {
				fmt.Fprintln(out, "Ping is disabled; set ping.enabled and ping.services to use it")
				return nil
			}

			results := pinger.Notify(cmd.Context(), args[0])
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, r := range results {
				outcome := "sent"
				switch {
				case errors.Is(r.Err, ping.ErrSkipped):
					outcome = "skipped (local site)"
				case r.Err != nil:
					outcome = r.Err.Error()
					failed++
				}
				rows = append(rows, []string{r.Service, outcome, r.Duration.Round(time.Millisecond).String()})
			}
			fmt.Fprint(out, renderTable([]string{"Service", "Result", "Took"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			if failed > 0 {
				return fmt.Errorf("%d of %d pings failed", failed, len(results))
			}
			return nil
		},
	}
}
