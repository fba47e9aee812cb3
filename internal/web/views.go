package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/logging"
	"inkwell/internal/settings"
	"inkwell/internal/theme"
)

//go:embed assets
var embedded embed.FS

const builtinTheme = "default"

type views struct {
	theme  string
	site   *template.Template
	admin  *template.Template
	assets http.FileSystem
}

var templateFuncs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2 January 2006")
	},
}

func loadViews(ctx context.Context, st Settings, themePath string, logger *slog.Logger) (*views, error) {
	admin, err := template.New("admin").Funcs(templateFuncs).ParseFS(embedded, "assets/admin/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse admin views: %w", err)
	}
	v := &views{admin: admin}

	active, err := readSetting(ctx, st, settings.KeyActiveTheme)
	if err != nil {
		return nil, err
	}
	if active != "" && themePath != "" {
		dir := filepath.Join(themePath, active)
		if hasTemplates(dir) {
			site, err := template.New(active).Funcs(templateFuncs).ParseGlob(filepath.Join(dir, "*.html"))
			if err != nil {
				return nil, fmt.Errorf("parse theme %s: %w", active, err)
			}
			v.theme = active
			v.site = site
			v.assets = gin.Dir(filepath.Join(dir, "assets"), false)
			return v, nil
		}
		logging.WarnWithContext(logger, "active theme not installed, using built-in theme", "theme_fallback",
			logging.String("theme", active),
			logging.String("theme_dir", dir),
			logging.String(logging.FieldErrorHint, "install the theme or change the activeTheme setting"),
			logging.String(logging.FieldImpact, "the built-in theme is served"),
		)
	}

	root, err := fs.Sub(embedded, "assets/themes/"+builtinTheme)
	if err != nil {
		return nil, err
	}
	site, err := template.New(builtinTheme).Funcs(templateFuncs).ParseFS(root, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse built-in theme: %w", err)
	}
	static, err := fs.Sub(root, "assets")
	if err != nil {
		return nil, err
	}
	v.theme = builtinTheme
	v.site = site
	v.assets = http.FS(static)
	return v, nil
}

func hasTemplates(dir string) bool {
	for _, name := range theme.RequiredTemplates {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

func readSetting(ctx context.Context, st Settings, key string) (string, error) {
	setting, err := st.Read(ctx, key, settings.Internal)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if setting.Value == nil {
		return "", nil
	}
	return strings.TrimSpace(*setting.Value), nil
}
