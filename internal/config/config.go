package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBHost        string `yaml:"db_host"`
	DBPort        string `yaml:"db_port"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBSSLMode     string `yaml:"db_sslmode"`
	DBAutoMigrate bool   `yaml:"db_auto_migrate"`

	ServerPort string `yaml:"server_port"`
	GinMode    string `yaml:"gin_mode"`

	JWTSecret      string `yaml:"jwt_secret"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours"`

	ReminderEnabled         bool `yaml:"reminder_enabled"`
	ReminderIntervalSeconds int  `yaml:"reminder_interval_seconds"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	SMTPFrom     string `yaml:"smtp_from"`

	TelegramBotToken string `yaml:"telegram_bot_token"`

	PDFFontPath string `yaml:"pdf_font_path"`
}

func defaults() Config {
	return Config{
		DBHost:                  "localhost",
		DBPort:                  "5432",
		DBUser:                  "blitzit_user",
		DBPassword:              "blitzit_pass",
		DBName:                  "blitzit_db",
		DBSSLMode:               "disable",
		ServerPort:              "8080",
		GinMode:                 "debug",
		JWTSecret:               "supersecretkey",
		JWTExpiryHours:          24,
		ReminderEnabled:         true,
		ReminderIntervalSeconds: 60,
		SMTPPort:                587,
	}
}

// Load reads .env, then the optional YAML file named by CONFIG_FILE, then
// the environment. Later sources win.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			log.Printf("⚠️  %v, ignoring config file", err)
		}
	}

	return &Config{
		DBHost:        getEnv("DB_HOST", cfg.DBHost),
		DBPort:        getEnv("DB_PORT", cfg.DBPort),
		DBUser:        getEnv("DB_USER", cfg.DBUser),
		DBPassword:    getEnv("DB_PASSWORD", cfg.DBPassword),
		DBName:        getEnv("DB_NAME", cfg.DBName),
		DBSSLMode:     getEnv("DB_SSLMODE", cfg.DBSSLMode),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", cfg.DBAutoMigrate),

		ServerPort: getEnv("SERVER_PORT", cfg.ServerPort),
		GinMode:    getEnv("GIN_MODE", cfg.GinMode),

		JWTSecret:      getEnv("JWT_SECRET", cfg.JWTSecret),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", cfg.JWTExpiryHours),

		ReminderEnabled:         getEnvBool("REMINDER_ENABLED", cfg.ReminderEnabled),
		ReminderIntervalSeconds: getEnvInt("REMINDER_INTERVAL_SECONDS", cfg.ReminderIntervalSeconds),

		SMTPHost:     getEnv("SMTP_HOST", cfg.SMTPHost),
		SMTPPort:     getEnvInt("SMTP_PORT", cfg.SMTPPort),
		SMTPUser:     getEnv("SMTP_USER", cfg.SMTPUser),
		SMTPPassword: getEnv("SMTP_PASSWORD", cfg.SMTPPassword),
		SMTPFrom:     getEnv("SMTP_FROM", cfg.SMTPFrom),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken),

		PDFFontPath: getEnv("PDF_FONT_PATH", cfg.PDFFontPath),
	}
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// DSN is the Postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.ReminderIntervalSeconds) * time.Second
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using %d", key, value, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a boolean, using %t", key, value, defaultVal)
		return defaultVal
	}
	return b
}
