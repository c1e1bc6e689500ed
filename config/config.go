package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Config holds application configuration.
type Config struct {
	Env           Environment
	Port          string
	LogLevel      string
	LogFormat     string
	LogOutput     string
	LogFilePath   string
	DefaultLocale string
	CoCPath       string
	CORS          CORSConfig
	Slack         SlackConfig
	InvitesPerMin int
	TrustProxy    bool
}

// CORSConfig holds CORS-specific configuration. The badge endpoint is meant
// to be embedded cross-origin, so origins default to "*".
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// SlackConfig holds Slack Web API settings.
type SlackConfig struct {
	Token            string
	Team             string
	APIURL           string
	Channels         []string
	CountsTTLSeconds int
}

// SettingsFile mirrors the optional settings.json layout.
type SettingsFile struct {
	App    AppSettings    `json:"app"`
	Slack  SlackSettings  `json:"slack"`
	CORS   CORSSettings   `json:"cors"`
	Invite InviteSettings `json:"invite"`
}

type AppSettings struct {
	Env           string          `json:"env"`
	Logging       LoggingSettings `json:"logging"`
	Port          int             `json:"port"`
	DefaultLocale string          `json:"default_locale"`
	CoCPath       string          `json:"coc_path"`
	TrustProxy    bool            `json:"trust_proxy"`
}

type LoggingSettings struct {
	Level    string `json:"level"`
	Format   string `json:"format"`
	Output   string `json:"output"`
	FilePath string `json:"file_path"`
}

type SlackSettings struct {
	Token            string   `json:"token"`
	Team             string   `json:"team"`
	APIURL           string   `json:"api_url"`
	Channels         []string `json:"channels"`
	CountsTTLSeconds int      `json:"counts_ttl_seconds"`
}

type CORSSettings struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

type InviteSettings struct {
	MaxPerMinute int `json:"max_per_minute"`
}

const (
	defaultPort          = "3000"
	defaultCountsTTL     = 10
	defaultInvitesPerMin = 5
	defaultAPIURL        = "https://slack.com/api/"
)

// Load reads configuration from a settings file when one is present, else
// from environment variables. A .env file is honored either way.
func Load() (Config, error) {
	_ = godotenv.Load()

	settings, settingsPath, settingsErr := loadSettingsFile()
	if settingsErr != nil && strings.TrimSpace(os.Getenv("SETTINGS_PATH")) != "" {
		// An explicitly named settings file must be readable; only the
		// conventional candidates fall back to the environment silently.
		return Config{}, fmt.Errorf("settings file %s: %w", settingsPath, settingsErr)
	}
	if settingsErr == nil && settings != nil {
		cfg, err := buildConfigFromSettings(*settings)
		if err != nil {
			return Config{}, fmt.Errorf("invalid settings file %s: %w", settingsPath, err)
		}
		applySecretEnv(&cfg)
		return cfg, nil
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	cfg := Config{
		Env:           env,
		Port:          getEnv("PORT", defaultPort),
		LogLevel:      getEnv("LOG_LEVEL", defaultLogLevel(env)),
		LogFormat:     getEnv("LOG_FORMAT", defaultLogFormat(env)),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
		LogFilePath:   getEnv("LOG_FILE_PATH", ""),
		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		CoCPath:       getEnv("COC_PATH", ""),
		CORS:          loadCORSConfig(),
		Slack:         loadSlackConfig(),
		InvitesPerMin: getEnvInt("INVITES_PER_MINUTE", defaultInvitesPerMin),
		TrustProxy:    getEnvBool("TRUST_PROXY", false),
	}
	return cfg, nil
}

func loadSettingsFile() (*SettingsFile, string, error) {
	settingsPath := strings.TrimSpace(getEnv("SETTINGS_PATH", ""))
	if settingsPath != "" {
		return readSettings(settingsPath)
	}

	envName := strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "dev")))
	candidates := []string{fmt.Sprintf("settings.%s.json", envName), "settings.json", "/etc/slackin/settings.json"}
	for _, candidate := range candidates {
		absPath, absErr := filepath.Abs(candidate)
		if absErr != nil {
			continue
		}
		if _, statErr := os.Stat(absPath); statErr != nil {
			continue
		}
		return readSettings(absPath)
	}
	return nil, "", os.ErrNotExist
}

func readSettings(path string) (*SettingsFile, string, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, path, readErr
	}
	var settings SettingsFile
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, path, err
	}
	return &settings, path, nil
}

func buildConfigFromSettings(settings SettingsFile) (Config, error) {
	env := parseEnv(valueOr(settings.App.Env, "dev"))

	port := defaultPort
	if settings.App.Port > 0 {
		port = strconv.Itoa(settings.App.Port)
	}

	cfg := Config{
		Env:           env,
		Port:          port,
		LogLevel:      valueOr(settings.App.Logging.Level, defaultLogLevel(env)),
		LogFormat:     valueOr(settings.App.Logging.Format, defaultLogFormat(env)),
		LogOutput:     valueOr(settings.App.Logging.Output, "stdout"),
		LogFilePath:   strings.TrimSpace(settings.App.Logging.FilePath),
		DefaultLocale: valueOr(settings.App.DefaultLocale, "en"),
		CoCPath:       strings.TrimSpace(settings.App.CoCPath),
		TrustProxy:    settings.App.TrustProxy,
		CORS:          loadCORSConfig(),
		InvitesPerMin: defaultInvitesPerMin,
		Slack: SlackConfig{
			Token:            strings.TrimSpace(settings.Slack.Token),
			Team:             strings.TrimSpace(settings.Slack.Team),
			APIURL:           valueOr(settings.Slack.APIURL, defaultAPIURL),
			Channels:         trimAll(settings.Slack.Channels),
			CountsTTLSeconds: defaultCountsTTL,
		},
	}
	if settings.Slack.CountsTTLSeconds > 0 {
		cfg.Slack.CountsTTLSeconds = settings.Slack.CountsTTLSeconds
	}
	if settings.Invite.MaxPerMinute > 0 {
		cfg.InvitesPerMin = settings.Invite.MaxPerMinute
	}
	if len(settings.CORS.AllowedOrigins) > 0 {
		cfg.CORS.AllowedOrigins = settings.CORS.AllowedOrigins
		cfg.CORS.AllowCredentials = settings.CORS.AllowCredentials
	}
	return cfg, nil
}

// applySecretEnv lets the Slack token come from the environment even when a
// settings file is used, so the secret can stay out of the file.
func applySecretEnv(cfg *Config) {
	if token := strings.TrimSpace(os.Getenv("SLACK_TOKEN")); token != "" {
		cfg.Slack.Token = token
	}
}

func loadSlackConfig() SlackConfig {
	channels := trimAll(strings.Split(getEnv("SLACK_CHANNELS", ""), ","))
	return SlackConfig{
		Token:            strings.TrimSpace(os.Getenv("SLACK_TOKEN")),
		Team:             strings.TrimSpace(os.Getenv("SLACK_TEAM")),
		APIURL:           getEnv("SLACK_API_URL", defaultAPIURL),
		Channels:         channels,
		CountsTTLSeconds: getEnvInt("SLACK_COUNTS_TTL_SECONDS", defaultCountsTTL),
	}
}

func loadCORSConfig() CORSConfig {
	origins := trimAll(strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","))
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return CORSConfig{
		AllowedOrigins:   origins,
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
	}
}

func parseEnv(value string) Environment {
	if strings.EqualFold(strings.TrimSpace(value), string(EnvProd)) {
		return EnvProd
	}
	return EnvDev
}

func defaultLogLevel(env Environment) string {
	if env == EnvProd {
		return "info"
	}
	return "debug"
}

func defaultLogFormat(env Environment) string {
	if env == EnvProd {
		return "json"
	}
	return "console"
}

func valueOr(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
