package config

const (
	defaultBind            = "127.0.0.1:2368"
	defaultShutdownTimeout = 10
	defaultSiteURL         = "http://127.0.0.1:2368"
	defaultSiteTitle       = "inkwell"
	defaultSiteLocale      = "en"
	defaultContentDir      = "~/.local/share/inkwell/content"
	defaultDataDir         = "~/.local/share/inkwell"
	defaultLogDir          = "~/.local/share/inkwell/logs"
	defaultDatabaseFile    = "inkwell.db"
	defaultBusyTimeoutMS   = 5000
	defaultPingTimeout     = 10
	defaultBootTimeout     = 0
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

var defaultPingServices = []string{"http://rpc.pingomatic.com"}

// Default returns a Config populated with repository defaults. Paths derived
// from other paths (theme_path, apps_dir, database.path) are filled in by
// normalization so deprecated keys still get a chance to supply them.
func Default() Config {
	return Config{
		Server: Server{
			Bind:            defaultBind,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Site: Site{
			URL:    defaultSiteURL,
			Title:  defaultSiteTitle,
			Locale: defaultSiteLocale,
		},
		Paths: Paths{
			ContentDir: defaultContentDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Database: Database{
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Sitemap: Sitemap{
			Enabled: true,
		},
		Ping: Ping{
			Enabled:  false,
			Services: append([]string(nil), defaultPingServices...),
			Timeout:  defaultPingTimeout,
		},
		Boot: Boot{
			Timeout: defaultBootTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
