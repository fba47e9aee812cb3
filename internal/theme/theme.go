// Package theme inspects the theme directories served by the view engine.
//
// A theme is a directory under paths.theme_path holding html/template files
// and a package.json manifest. Validation never fails the boot; findings are
// returned as a diag.Report for the caller to log.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inkwell/internal/diag"
	"inkwell/internal/i18n"
	"inkwell/internal/logging"
)

// RequiredTemplates must exist in every theme.
var RequiredTemplates = []string{"index.html", "post.html"}

// ManifestName is the theme manifest file.
const ManifestName = "package.json"

// Manifest is the subset of package.json that inkwell reads.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// ReadManifest decodes dir/package.json.
func ReadManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode %s: %w", ManifestName, err)
	}
	return m, nil
}

// List returns the theme directory names under themePath, sorted. Hidden
// entries and plain files are skipped.
func List(themePath string) ([]string, error) {
	entries, err := os.ReadDir(themePath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			names = append(names, name)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(themePath, name)); err == nil && info.IsDir() {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Validator checks every installed theme.
type Validator struct {
	logger *slog.Logger
}

// NewValidator returns a validator logging through logger.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logging.NewComponentLogger(logger, "theme")}
}

// Validate inspects each theme under themePath. Missing templates are errors;
// manifest problems are warnings. An unreadable themePath fails the call.
func (v *Validator) Validate(ctx context.Context, themePath string) (diag.Report, error) {
	var report diag.Report
	names, err := List(themePath)
	if err != nil {
		return report, fmt.Errorf("list themes: %w", err)
	}
	if len(names) == 0 {
		report.AddWarning(i18n.T("theme.none_installed"), themePath, i18n.T("theme.none_installed.help"))
		return report, nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Merge(validateTheme(filepath.Join(themePath, name), name))
	}

	v.logger.Debug("themes validated",
		logging.Int("themes", len(names)),
		logging.Int("errors", len(report.Errors)),
		logging.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func validateTheme(dir, name string) diag.Report {
	var report diag.Report
	for _, tmpl := range RequiredTemplates {
		info, err := os.Stat(filepath.Join(dir, tmpl))
		switch {
		case err != nil:
			report.AddError(i18n.T("theme.template_missing", tmpl), name, i18n.T("theme.template_missing.help", tmpl))
		case info.IsDir():
			report.AddError(i18n.T("theme.template_is_dir", tmpl), name, i18n.T("theme.template_is_dir.help"))
		}
	}

	manifest, err := ReadManifest(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		report.AddWarning(i18n.T("theme.manifest_missing"), name, i18n.T("theme.manifest_missing.help"))
		return report
	case err != nil:
		report.AddWarning(i18n.T("theme.manifest_unreadable", err), name, i18n.T("theme.manifest_unreadable.help"))
		return report
	}
	if strings.TrimSpace(manifest.Name) == "" {
		report.AddWarning(i18n.T("theme.manifest_no_name"), name, i18n.T("theme.manifest_no_name.help"))
	}
	if strings.TrimSpace(manifest.Version) == "" {
		report.AddWarning(i18n.T("theme.manifest_no_version"), name, i18n.T("theme.manifest_no_version.help"))
	}
	return report
}
