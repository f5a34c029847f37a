package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultServerPort = 8080
	defaultBackupCron = "0 3 * * *"
	defaultBackupDir  = "backups"

	defaultBackupRetention = 14
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string `yaml:"database_driver"`
	DatabaseURL    string `yaml:"database_url"`
	JWTSecretKey   string `yaml:"jwt_secret_key"`
	ServerPort     int    `yaml:"server_port"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	BackupCron string `yaml:"backup_cron"`
	BackupDir  string `yaml:"backup_dir"`
	// BackupRetention is the number of scheduled backups kept per tenant; 0 keeps all.
	BackupRetention int `yaml:"backup_retention"`

	R2AccountID       string `yaml:"r2_account_id"`
	R2AccessKeyID     string `yaml:"r2_access_key_id"`
	R2SecretAccessKey string `yaml:"r2_secret_access_key"`
	R2BucketName      string `yaml:"r2_bucket_name"`
	R2PublicBaseURL   string `yaml:"r2_public_base_url"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// Load загружает конфигурацию: значения из файла CONFIG_FILE (если задан)
// перекрываются переменными окружения.
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver: DriverPostgres,
		ServerPort:     defaultServerPort,
		BackupCron:     defaultBackupCron,
		BackupDir:      defaultBackupDir,

		BackupRetention: defaultBackupRetention,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	setString("DATABASE_DRIVER", &c.DatabaseDriver)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("JWT_SECRET_KEY", &c.JWTSecretKey)
	setString("ADMIN_EMAIL", &c.AdminEmail)
	setString("ADMIN_PASSWORD", &c.AdminPassword)
	setString("BACKUP_CRON", &c.BackupCron)
	setString("BACKUP_DIR", &c.BackupDir)
	setString("R2_ACCOUNT_ID", &c.R2AccountID)
	setString("R2_ACCESS_KEY_ID", &c.R2AccessKeyID)
	setString("R2_SECRET_ACCESS_KEY", &c.R2SecretAccessKey)
	setString("R2_BUCKET_NAME", &c.R2BucketName)
	setString("R2_PUBLIC_BASE_URL", &c.R2PublicBaseURL)

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		c.ServerPort = port
	}

	if retentionStr := os.Getenv("BACKUP_RETENTION"); retentionStr != "" {
		retention, err := strconv.Atoi(retentionStr)
		if err != nil {
			return fmt.Errorf("invalid BACKUP_RETENTION environment variable: %w", err)
		}
		c.BackupRetention = retention
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORSAllowedOrigins = splitList(origins)
	}
	return nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate проверяет обязательные параметры и их допустимые значения.
func (c *Config) Validate() error {
	c.DatabaseDriver = strings.ToLower(c.DatabaseDriver)
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if _, err := cron.ParseStandard(c.BackupCron); err != nil {
		return fmt.Errorf("invalid BACKUP_CRON %q: %w", c.BackupCron, err)
	}
	if c.BackupRetention < 0 {
		return fmt.Errorf("BACKUP_RETENTION must not be negative, got %d", c.BackupRetention)
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	return nil
}
