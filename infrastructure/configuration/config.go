package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"agent-hub/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Engine      Engine      `json:"engine"`
	Unipile     Unipile     `json:"unipile"`
	Twilio      Twilio      `json:"twilio"`
	Google      Google      `json:"google"`
	Storage     Storage     `json:"storage"`
	Security    Security    `json:"security"`
	Dispatch    Dispatch    `json:"dispatch"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port        int    `json:"port"`
	PublicURL   string `json:"publicURL"`
	Env         string `json:"env"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

// Engine holds the workflow engine webhook endpoints plus the shared
// secrets protecting the callback surface.
type Engine struct {
	WhatsAppWebhookURL  string `json:"whatsappWebhookURL"`
	InstagramWebhookURL string `json:"instagramWebhookURL"`
	EmailWebhookURL     string `json:"emailWebhookURL"`
	ProspectWebhookURL  string `json:"prospectWebhookURL"`
	VideoWebhookURL     string `json:"videoWebhookURL"`
	WebhookSecret       string `json:"webhookSecret"`
	CronSecret          string `json:"cronSecret"`
}

type Unipile struct {
	APIURL string `json:"apiURL"`
	APIKey string `json:"apiKey"`
}

type Twilio struct {
	AccountSID         string `json:"accountSID"`
	AuthToken          string `json:"authToken"`
	WhatsAppWebhookURL string `json:"whatsappWebhookURL"`
}

type Google struct {
	APIKey string `json:"apiKey"`
}

type Storage struct {
	VideoDir string `json:"videoDir"`
}

// Security carries the key for encrypting tenant credentials at rest.
// EncryptionKey must be 32 bytes once hex-decoded.
type Security struct {
	EncryptionKey string `json:"encryptionKey"`
}

// Dispatch tunes the inbound pipeline windows, in seconds.
type Dispatch struct {
	DedupTTLSeconds     int `json:"dedupTTLSeconds"`
	StalenessSeconds    int `json:"stalenessSeconds"`
	ForwardIntervalSecs int `json:"forwardIntervalSecs"`
	ForwardBatchSize    int `json:"forwardBatchSize"`
}

type Logger struct {
	Format string `json:"format"`
}

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initIntegrations(&C)
	initDispatch(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = "5432"
	}

	if C.RedisClient.Host == "" {
		C.RedisClient.Host = getEnv("REDIS_HOST", "localhost")
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = getEnv("REDIS_PORT", "6379")
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		C.App.Env = v
	}
	if C.App.Env == "" {
		C.App.Env = "local"
	}
	if v := os.Getenv("APP_PUBLIC_URL"); v != "" {
		C.App.PublicURL = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if C.App.PublicURL == "" {
		C.App.PublicURL = fmt.Sprintf("http://localhost:%d", C.App.Port)
	}
	C.App.PublicURL = strings.TrimRight(C.App.PublicURL, "/")
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
	// The logger package reads LOG_FORMAT on its own during init; the
	// config copy exists so /healthz-style introspection reports the
	// effective value.
	C.Logger.Format = getConfigValue(C.Logger.Format, "LOG_FORMAT", "json")
}

func initIntegrations(C *Config) {
	C.Engine.WhatsAppWebhookURL = getConfigValue(C.Engine.WhatsAppWebhookURL, "ENGINE_WHATSAPP_WEBHOOK_URL", "")
	C.Engine.InstagramWebhookURL = getConfigValue(C.Engine.InstagramWebhookURL, "ENGINE_INSTAGRAM_WEBHOOK_URL", "")
	C.Engine.EmailWebhookURL = getConfigValue(C.Engine.EmailWebhookURL, "ENGINE_EMAIL_WEBHOOK_URL", "")
	C.Engine.ProspectWebhookURL = getConfigValue(C.Engine.ProspectWebhookURL, "ENGINE_PROSPECT_WEBHOOK_URL", "")
	C.Engine.VideoWebhookURL = getConfigValue(C.Engine.VideoWebhookURL, "ENGINE_VIDEO_WEBHOOK_URL", "")
	C.Engine.WebhookSecret = getConfigValue(C.Engine.WebhookSecret, "ENGINE_WEBHOOK_SECRET", "")
	C.Engine.CronSecret = getConfigValue(C.Engine.CronSecret, "CRON_SECRET", "")

	C.Unipile.APIURL = getConfigValue(C.Unipile.APIURL, "UNIPILE_API_URL", "")
	C.Unipile.APIKey = getConfigValue(C.Unipile.APIKey, "UNIPILE_API_KEY", "")

	C.Twilio.AccountSID = getConfigValue(C.Twilio.AccountSID, "TWILIO_ACCOUNT_SID", "")
	C.Twilio.AuthToken = getConfigValue(C.Twilio.AuthToken, "TWILIO_AUTH_TOKEN", "")
	C.Twilio.WhatsAppWebhookURL = getConfigValue(C.Twilio.WhatsAppWebhookURL, "TWILIO_WHATSAPP_WEBHOOK_URL",
		C.App.PublicURL+"/api/webhooks/whatsapp")

	C.Google.APIKey = getConfigValue(C.Google.APIKey, "GOOGLE_API_KEY", "")

	C.Storage.VideoDir = getConfigValue(C.Storage.VideoDir, "VIDEO_STORAGE_DIR", "storage/videos")
	C.Security.EncryptionKey = getConfigValue(C.Security.EncryptionKey, "ENCRYPTION_KEY", "")
	if C.Security.EncryptionKey == "" {
		logger.GetLogger().Warn("Security.EncryptionKey not set; tenant credentials will be stored unencrypted")
	}
}

func initDispatch(C *Config) {
	if C.Dispatch.DedupTTLSeconds == 0 {
		C.Dispatch.DedupTTLSeconds = 60
	}
	if C.Dispatch.StalenessSeconds == 0 {
		C.Dispatch.StalenessSeconds = 300
	}
	if C.Dispatch.ForwardIntervalSecs == 0 {
		C.Dispatch.ForwardIntervalSecs = 10
	}
	if C.Dispatch.ForwardBatchSize == 0 {
		C.Dispatch.ForwardBatchSize = 10
	}
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
