// Command inkwelld boots the inkwell blog server and serves until it receives
// SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/boot"
	"inkwell/internal/config"
	"inkwell/internal/daemonrun"
	"inkwell/internal/i18n"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, describe(err))
		}
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var (
		configPath  string
		logLevel    string
		bootTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:           "inkwelld",
		Short:         "inkwell blog server daemon",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(configPath))
			if err != nil {
				return &boot.StageError{Stage: boot.StageConfig, Err: err}
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				BootTimeout: bootTimeout,
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level")
	cmd.Flags().DurationVar(&bootTimeout, "boot-timeout", 0, "Abort startup if it takes longer than this (0 uses boot.timeout)")
	return cmd
}

// describe prefixes boot failures with the stage that stopped startup.
func describe(err error) string {
	if stage, ok := boot.FailedStage(err); ok {
		return i18n.T("boot.failed", stage, err)
	}
	return "inkwelld: " + err.Error()
}
