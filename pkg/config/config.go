package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const devSessionSecret = "youbuildit-dev-session-secret"

type Config struct {
	AppURL string
	Port   string

	ContentPath string
	ShowDrafts  bool

	// Cache settings
	CacheConcurrency int

	SessionSecret     string
	AdminLogins       []string
	AuthLookupTimeout time.Duration
	GithubAPIURL      string
	OAuth             *oauth2.Config

	DatabaseURL    string
	PlantUMLServer string

	LogLevel  string
	LogFormat string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Git settings
	GitRemote string
	GitBranch string
	GitToken  string
}

// Load reads the configuration from the environment, after loading the first
// .env found in the working directory or its parents.
func Load() *Config {
	loadDotEnvUp(6)

	appURL := strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/")
	redirectURL := getEnv("GITHUB_REDIRECT_URL", appURL+"/auth/callback")

	cfg := &Config{
		AppURL: appURL,
		Port:   getEnv("PORT", "8080"),

		ContentPath: getEnv("CONTENT_PATH", "./content"),
		ShowDrafts:  getBool("SHOW_DRAFTS", false),

		CacheConcurrency: getInt("CACHE_CONCURRENCY", 20),

		SessionSecret:     getEnv("SESSION_SECRET", devSessionSecret),
		AdminLogins:       getList("ADMIN_LOGINS"),
		AuthLookupTimeout: getDuration("AUTH_LOOKUP_TIMEOUT", 2*time.Second),
		GithubAPIURL:      strings.TrimRight(getEnv("GITHUB_API_URL", "https://api.github.com"), "/"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		PlantUMLServer: strings.TrimRight(getEnv("PLANTUML_SERVER", "https://www.plantuml.com/plantuml"), "/"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),

		GitRemote: getEnv("GIT_REMOTE", "origin"),
		GitBranch: getEnv("GIT_BRANCH", "main"),
		GitToken:  getEnv("GIT_TOKEN", ""),
	}

	cfg.OAuth = &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		Scopes:       []string{"read:user", "user:email"},
		Endpoint:     github.Endpoint,
		RedirectURL:  redirectURL,
	}
	return cfg
}

// UsesDevSessionSecret reports whether SESSION_SECRET was left unset.
func (c *Config) UsesDevSessionSecret() bool {
	return c.SessionSecret == devSessionSecret
}

// IsAdmin reports whether the GitHub login may trigger content syncs.
func (c *Config) IsAdmin(login string) bool {
	for _, l := range c.AdminLogins {
		if strings.EqualFold(l, login) {
			return true
		}
	}
	return false
}

func loadDotEnvUp(maxDepth int) {
	dir, err := os.Getwd()
	if err != nil {
		_ = godotenv.Load()
		return
	}
	for i := 0; i <= maxDepth; i++ {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
