package config

import (
	"strings"

	"inkwell/internal/diag"
	"inkwell/internal/i18n"
)

// Deprecations lists keys that are still honoured but should be migrated.
// It never fails; callers decide how loudly to report the result.
func (c *Config) Deprecations() []diag.Issue {
	if c == nil {
		return nil
	}
	var issues []diag.Issue
	if c.Server.Gzip != nil {
		issues = append(issues, diag.Issue{
			Message: i18n.T("config.deprecated.server_gzip"),
			Context: "server.gzip",
			Help:    i18n.T("config.deprecated.server_gzip.help"),
		})
	}
	if strings.TrimSpace(c.Paths.ThemesDir) != "" {
		issues = append(issues, diag.Issue{
			Message: i18n.T("config.deprecated.themes_dir"),
			Context: "paths.themes_dir",
			Help:    i18n.T("config.deprecated.themes_dir.help"),
		})
	}
	if strings.TrimSpace(c.Database.Filename) != "" {
		issues = append(issues, diag.Issue{
			Message: i18n.T("config.deprecated.database_filename"),
			Context: "database.filename",
			Help:    i18n.T("config.deprecated.database_filename.help"),
		})
	}
	if c.UpdateCheck != nil {
		issues = append(issues, diag.Issue{
			Message: i18n.T("config.deprecated.update_check"),
			Context: "update_check",
			Help:    i18n.T("config.deprecated.update_check.help"),
		})
	}
	return issues
}
