package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"inkwell/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	var role string
	var internal bool

	access := func() settings.Access {
		if internal {
			return settings.Internal
		}
		return settings.AsRole(role)
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect stored settings",
	}
	settingsCmd.PersistentFlags().StringVar(&role, "role", "Administrator", "Role to read settings as")
	settingsCmd.PersistentFlags().BoolVar(&internal, "internal", false, "Bypass role checks and include internal keys")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List settings visible to the role",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := ctx.openSettings(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			list, err := svc.List(cmd.Context(), access())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No settings stored")
				return nil
			}
			title := cases.Title(language.English)
			rows := make([][]string, 0, len(list))
			for _, s := range list {
				value := "(unset)"
				if s.Value != nil {
					value = *s.Value
				}
				updated := ""
				if !s.UpdatedAt.IsZero() {
					updated = humanize.Time(s.UpdatedAt)
				}
				rows = append(rows, []string{s.Key, value, title.String(s.Type), updated})
			}
			fmt.Fprint(out, renderTable([]string{"Key", "Value", "Group", "Updated"}, rows, nil))
			return nil
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := ctx.openSettings(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			setting, err := svc.Read(cmd.Context(), strings.TrimSpace(args[0]), access())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), setting.String())
			return nil
		},
	}

	settingsCmd.AddCommand(listCmd, getCmd)
	return settingsCmd
}
