package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode      Mode
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string // illustrations served under /assets
	CatalogDir   string // optional directory of extra *.yaml definitions
	CacheSize    int    // definitions kept in the LRU

	EnableLocalAuth bool
	AuthHMACSecret  string

	AdminUser     string
	AdminPassHash string // bcrypt

	// Google sign-in for members; disabled when GoogleClientID is empty.
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleAllowedHD    string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	LogLevel  string // debug|info|warn|error
	LogFormat string // text|json

	RequestTimeout time.Duration
}

// CORSOrigins picks the origin list for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

// Load layers environment variables over an optional config file (yaml/json/toml).
// With file == "" only the environment and defaults are used.
// Keys in the file use the env names in lower case, e.g. http_addr.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	mode := Mode(strings.ToLower(v.GetString("mode")))
	if mode != ModeOnline {
		mode = ModeOffline
	}
	local := v.GetBool("enable_local_auth")
	if !v.IsSet("enable_local_auth") {
		local = mode == ModeOffline
	}
	return Config{
		Mode:               mode,
		HTTPAddr:           v.GetString("http_addr"),
		PublicURL:          strings.TrimSuffix(v.GetString("public_url"), "/"),
		DBDriver:           v.GetString("db_driver"),
		DBDSN:              v.GetString("db_dsn"),
		BlobBasePath:       v.GetString("blob_base_path"),
		CatalogDir:         v.GetString("catalog_dir"),
		CacheSize:          v.GetInt("definition_cache_size"),
		EnableLocalAuth:    local,
		AuthHMACSecret:     v.GetString("auth_hmac_secret"),
		AdminUser:          v.GetString("admin_user"),
		AdminPassHash:      v.GetString("admin_pass_hash"),
		GoogleClientID:     v.GetString("google_client_id"),
		GoogleClientSecret: v.GetString("google_client_secret"),
		GoogleRedirectURI:  v.GetString("google_redirect_uri"),
		GoogleAllowedHD:    v.GetString("google_allowed_hd"),
		CORSOriginsOnline:  csv(v.GetString("cors_origins_online")),
		CORSOriginsOffline: csv(v.GetString("cors_origins_offline")),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		RequestTimeout:     v.GetDuration("request_timeout"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeOffline))
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("public_url", "")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("blob_base_path", "./data")
	v.SetDefault("catalog_dir", "")
	v.SetDefault("definition_cache_size", 128)
	v.SetDefault("auth_hmac_secret", "supersecret-dev-key")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("admin_pass_hash", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji")
	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")
	v.SetDefault("google_redirect_uri", "")
	v.SetDefault("google_allowed_hd", "")
	v.SetDefault("cors_origins_online", "https://selfcheck.mindengage.ai")
	v.SetDefault("cors_origins_offline", "http://localhost:3000,http://localhost:8081,http://localhost:19006")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("request_timeout", "30s")
}

func csv(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
