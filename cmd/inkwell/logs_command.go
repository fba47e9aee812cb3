package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/logging"
	"inkwell/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		follow    bool
		level     string
		component string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			client, err := logs.NewClient(cfg.Server.Bind, cfg.Server.APIToken)
			if err != nil {
				return err
			}
			query := logs.Query{Limit: lines, Level: level, Component: component}
			resp, err := client.Fetch(cmd.Context(), query)
			if logs.IsUnavailable(err) {
				if follow {
					return errors.New("daemon is not running; --follow needs a live daemon")
				}
				fmt.Fprintf(out, "Daemon not reachable at %s; reading %s\n", cfg.Server.Bind, logs.FileName)
				fileLines, ferr := logs.LastLines(cfg.Paths.LogDir, lines)
				if ferr != nil {
					return ferr
				}
				for _, line := range fileLines {
					fmt.Fprintln(out, line)
				}
				return nil
			}
			if err != nil {
				return err
			}
			printEvents(out, resp.Events)
			if !follow {
				return nil
			}
			query.Since = resp.Next
			return client.Follow(cmd.Context(), query, time.Second, func(events []logging.LogEvent) error {
				printEvents(out, events)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of events to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep polling for new events")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVar(&component, "component", "", "Only show events from this component")
	return cmd
}

func printEvents(out io.Writer, events []logging.LogEvent) {
	for _, evt := range events {
		var b strings.Builder
		b.WriteString(evt.Timestamp.Local().Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
		fmt.Fprintf(&b, "%-5s", strings.ToUpper(evt.Level))
		if evt.Component != "" {
			b.WriteString(" [" + evt.Component + "]")
		}
		b.WriteString(" " + evt.Message)
		keys := make([]string, 0, len(evt.Fields))
		for key := range evt.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, " %s=%s", key, evt.Fields[key])
		}
		fmt.Fprintln(out, b.String())
	}
}
