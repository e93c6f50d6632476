package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	MongoURI      string
	MongoDatabase string

	JWTSecret      string
	AccessTokenTTL string

	Log      string
	LogLevel string
	Env      string // dev|prod

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	FrontendURL         string
	PasswordResetTTLMin string
	SessionTTLHours     string
	CronSecret          string
	EmailWorkers        string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		MongoURI:      def(os.Getenv("MONGO_URI"), "mongodb://localhost:27017"),
		MongoDatabase: def(os.Getenv("MONGO_DB"), "fitcenter"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "15m"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     def(os.Getenv("SMTP_PORT"), "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     def(os.Getenv("SMTP_FROM"), os.Getenv("SMTP_USER")),

		FrontendURL:         def(os.Getenv("FRONTEND_URL"), "http://localhost:3000"),
		PasswordResetTTLMin: def(os.Getenv("PASSWORD_RESET_TTL_MIN"), "30"),
		SessionTTLHours:     def(os.Getenv("SESSION_TTL_HOURS"), "24"),
		CronSecret:          os.Getenv("CRON_SECRET"),
		EmailWorkers:        def(os.Getenv("EMAIL_WORKERS"), "3"),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		warnings = append(warnings, "JWT_SECRET is empty")
	}

	if c.SMTPHost == "" || c.SMTPUser == "" {
		warnings = append(warnings, "SMTP is not fully configured")
	}

	if c.CronSecret == "" {
		warnings = append(warnings, "CRON_SECRET is empty, cleanup endpoint requires admin JWT")
	}

	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 8080")
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// PasswordResetTTL — срок жизни токена сброса пароля.
func (c *Config) PasswordResetTTL() time.Duration {
	m, err := strconv.Atoi(c.PasswordResetTTLMin)
	if err != nil || m <= 0 {
		m = 30
	}
	return time.Duration(m) * time.Minute
}

// SessionTTL — срок жизни сессии.
func (c *Config) SessionTTL() time.Duration {
	h, err := strconv.Atoi(c.SessionTTLHours)
	if err != nil || h <= 0 {
		h = 24
	}
	return time.Duration(h) * time.Hour
}

// EmailWorkerCount — количество воркеров очереди писем.
func (c *Config) EmailWorkerCount() int {
	n, err := strconv.Atoi(c.EmailWorkers)
	if err != nil || n <= 0 {
		return 3
	}
	return n
}
