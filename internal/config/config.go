package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the configuration surface of the API server.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	MQTT      MQTTConfig
	Identity  IdentityConfig
	Auth      AuthConfig
	Telemetry TelemetryConfig
	WhatsApp  WhatsAppConfig
	Push      PushConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
	// CommandsPerMinute bounds command and alert requests per client IP.
	CommandsPerMinute int
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// MQTTConfig holds broker settings shared by the server and the simulator.
type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topics    []string
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool { return c.BrokerURL != "" }

// IdentityConfig points at the identity toolkit REST API.
type IdentityConfig struct {
	BaseURL string
	APIKey  string
}

// AuthConfig controls bearer token checks on the fleet API.
type AuthConfig struct {
	Required bool
	CacheTTL time.Duration
}

// TelemetryConfig holds the thresholds used by the status rules.
type TelemetryConfig struct {
	MinLat           float64
	MaxLat           float64
	MinLon           float64
	MaxLon           float64
	BatteryThreshold float64
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	VerifyToken    string
	BaseURL        string
	APIVersion     string
	AlertRecipient string
}

// Enabled reports whether WhatsApp delivery is configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// PushConfig configures delivery through the Expo push service.
type PushConfig struct {
	URL string
	Env string
	// DeviceToken is the Expo token of the operator's own device (client only).
	DeviceToken string
}

// Enabled reports whether push delivery is turned on.
func (c PushConfig) Enabled() bool { return c.Env != "off" }

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet export is configured.
func (c SheetsConfig) Enabled() bool { return c.CredentialsPath != "" && c.SpreadsheetID != "" }

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// ClientConfig is the configuration of the fleetctl operator client.
type ClientConfig struct {
	FleetAPIURL string
	IoTAPIURL   string
	Identity    IdentityConfig
	Push        PushConfig
	SessionFile string
	Lang        string
	Timeout     time.Duration
}

// SimulatorConfig configures the telemetry simulator.
type SimulatorConfig struct {
	MQTT     MQTTConfig
	MotoIDs  []string
	Interval time.Duration
}

const defaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"

// LoadServer reads environment variables (optionally from the provided file) and
// materializes the server Config.
func LoadServer(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	r := &reader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:              getenvWithDefault("APP_PORT", "8000"),
			LogLevel:          getenvWithDefault("LOG_LEVEL", "info"),
			CommandsPerMinute: r.int("COMMAND_RATE_LIMIT", 30),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "mottu_iot"),
		},
		MQTT: MQTTConfig{
			BrokerURL: os.Getenv("MQTT_BROKER_URL"),
			ClientID:  getenvWithDefault("MQTT_CLIENT_ID", "backend_sub"),
			Username:  os.Getenv("MQTT_USERNAME"),
			Password:  os.Getenv("MQTT_PASSWORD"),
			Topics:    getenvList("MQTT_TOPICS", []string{"sensors/#", "parking/#", "cv/#"}),
		},
		Identity: IdentityConfig{
			BaseURL: getenvWithDefault("IDENTITY_BASE_URL", defaultIdentityURL),
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
		},
		Auth: AuthConfig{
			Required: r.bool("AUTH_REQUIRED", false),
			CacheTTL: r.duration("AUTH_CACHE_TTL", 5*time.Minute),
		},
		Telemetry: TelemetryConfig{
			MinLat:           r.float("GEOFENCE_MIN_LAT", -23.57),
			MaxLat:           r.float("GEOFENCE_MAX_LAT", -23.53),
			MinLon:           r.float("GEOFENCE_MIN_LON", -46.65),
			MaxLon:           r.float("GEOFENCE_MAX_LON", -46.61),
			BatteryThreshold: r.float("BATTERY_THRESHOLD", 20),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:    os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertRecipient: os.Getenv("ALERT_RECIPIENT"),
		},
		Push: PushConfig{
			URL: getenvWithDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			Env: getenvWithDefault("PUSH_ENV", "dev"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Sao_Paulo"),
		},
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and coherent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Server.CommandsPerMinute <= 0 {
		return errors.New("COMMAND_RATE_LIMIT must be positive")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.MQTT.Enabled() && len(c.MQTT.Topics) == 0 {
		return errors.New("MQTT_TOPICS must list at least one topic")
	}

	if c.Auth.Required && c.Identity.APIKey == "" {
		return errors.New("IDENTITY_API_KEY must be provided when AUTH_REQUIRED is set")
	}

	t := c.Telemetry
	if t.MinLat >= t.MaxLat || t.MinLon >= t.MaxLon {
		return errors.New("geofence bounds must satisfy MIN < MAX")
	}
	if t.BatteryThreshold < 0 || t.BatteryThreshold > 100 {
		return errors.New("BATTERY_THRESHOLD must be between 0 and 100")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	return nil
}

// LoadClient materializes the operator client configuration.
func LoadClient(envFile string) (*ClientConfig, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	r := &reader{}
	cfg := &ClientConfig{
		FleetAPIURL: getenvWithDefault("FLEET_API_URL", "http://0.0.0.0:8000"),
		IoTAPIURL:   os.Getenv("IOT_API_URL"),
		Identity: IdentityConfig{
			BaseURL: getenvWithDefault("IDENTITY_BASE_URL", defaultIdentityURL),
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
		},
		Push: PushConfig{
			URL:         getenvWithDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			Env:         getenvWithDefault("PUSH_ENV", "dev"),
			DeviceToken: os.Getenv("EXPO_PUSH_TOKEN"),
		},
		SessionFile: getenvWithDefault("SESSION_FILE", defaultSessionFile()),
		Lang:        os.Getenv("APP_LANG"),
		Timeout:     r.duration("HTTP_TIMEOUT", 15*time.Second),
	}
	if r.err != nil {
		return nil, r.err
	}

	if cfg.IoTAPIURL == "" {
		cfg.IoTAPIURL = cfg.FleetAPIURL
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("HTTP_TIMEOUT must be positive")
	}

	return cfg, nil
}

// LoadSimulator materializes the simulator configuration.
func LoadSimulator(envFile string) (*SimulatorConfig, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	r := &reader{}
	cfg := &SimulatorConfig{
		MQTT: MQTTConfig{
			BrokerURL: getenvWithDefault("MQTT_BROKER_URL", "tcp://127.0.0.1:1883"),
			ClientID:  getenvWithDefault("MQTT_CLIENT_ID", "sim"),
			Username:  os.Getenv("MQTT_USERNAME"),
			Password:  os.Getenv("MQTT_PASSWORD"),
		},
		MotoIDs:  getenvList("SIM_MOTO_IDS", []string{"MOTO1", "MOTO2", "MOTO3"}),
		Interval: r.duration("SIM_INTERVAL", 2*time.Second),
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(cfg.MotoIDs) == 0 {
		return nil, errors.New("SIM_MOTO_IDS must list at least one moto")
	}
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
		return nil
	}
	// Missing .env files are fine when configuration comes from the environment directly.
	_ = godotenv.Load()
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fleetctl-session.json"
	}
	return dir + string(os.PathSeparator) + "fleetctl" + string(os.PathSeparator) + "session.json"
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// reader parses typed variables and keeps the first parse error.
type reader struct {
	err error
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (r *reader) int(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return v
}

func (r *reader) float(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return v
}

func (r *reader) bool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return v
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	v, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, err)
		return fallback
	}
	return v
}
