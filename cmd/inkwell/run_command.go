package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var bootTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Boot inkwell and serve in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				BootTimeout: bootTimeout,
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level")
	cmd.Flags().DurationVar(&bootTimeout, "boot-timeout", 0, "Abort startup if it takes longer than this (0 uses boot.timeout)")
	return cmd
}
