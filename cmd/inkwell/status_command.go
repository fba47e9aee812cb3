package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"inkwell/internal/config"
	"inkwell/internal/daemon"
	"inkwell/internal/i18n"
	"inkwell/internal/preflight"
	"inkwell/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, database, and directory status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			newStatusPrinter(cmd.OutOrStdout()).print(
				daemonSection(cfg),
				databaseSection(cmd.Context(), cfg),
				pathsSection(cmd.Context(), cfg),
			)
			return nil
		},
	}
}

func daemonSection(cfg *config.Config) statusSection {
	section := statusSection{title: "Daemon"}
	status := daemon.Probe(cfg)
	if !status.Running {
		section.rows = []statusRow{
			{"Daemon", stateWarn, i18n.T("cli.daemon_not_running")},
			{"Bind", stateInfo, cfg.Server.Bind},
		}
		return section
	}
	detail := "running"
	if status.PID > 0 {
		detail = "running (pid " + strconv.Itoa(status.PID) + ")"
	}
	if info, err := os.Stat(status.PIDPath); err == nil {
		detail += ", started " + humanize.Time(info.ModTime())
	}
	section.rows = []statusRow{
		{"Daemon", stateOK, detail},
		{"Bind", stateInfo, cfg.Server.Bind},
		{"Compression", stateInfo, yesNo(cfg.Server.CompressEnabled())},
	}
	return section
}

func databaseSection(ctx context.Context, cfg *config.Config) statusSection {
	section := statusSection{title: "Database"}
	info, err := os.Stat(cfg.Database.Path)
	if err != nil {
		section.rows = []statusRow{{"Database", stateWarn, i18n.T("cli.database_missing", cfg.Database.Path)}}
		return section
	}
	section.rows = []statusRow{
		{"Database", stateInfo, fmt.Sprintf("%s (%s)", cfg.Database.Path, humanize.Bytes(uint64(info.Size())))},
	}

	st := store.New()
	if err := st.Init(ctx, cfg); err != nil {
		section.rows = append(section.rows, statusRow{"Connection", stateError, err.Error()})
		return section
	}
	defer st.Close()

	health, err := st.CheckHealth(ctx)
	if err != nil {
		section.rows = append(section.rows, statusRow{"Health", stateError, err.Error()})
		return section
	}
	section.rows = append(section.rows,
		statusRow{"Integrity", passFail(health.IntegrityCheck), yesNo(health.IntegrityCheck)},
		statusRow{"Migrations", stateInfo, fmt.Sprintf("%d applied", len(health.AppliedMigrations))},
	)
	if len(health.PendingMigrations) > 0 {
		section.rows = append(section.rows, statusRow{"Pending", stateWarn, strings.Join(health.PendingMigrations, ", ")})
	}
	section.rows = append(section.rows, statusRow{"Settings", stateInfo, humanize.Comma(int64(health.SettingsCount)) + " keys"})
	return section
}

func pathsSection(ctx context.Context, cfg *config.Config) statusSection {
	section := statusSection{title: "Paths"}
	for _, result := range preflight.RunAll(ctx, cfg) {
		section.rows = append(section.rows, statusRow{result.Name, passFail(result.Passed), result.Detail})
	}
	return section
}
