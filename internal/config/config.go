// Package config assembles the application configuration from defaults,
// command-line flags, a .env file and environment variables, in that order
// of precedence. The resulting Config is built once in app.New and injected
// into the components that need it.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the application.
type Config struct {
	RunAddr                 string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel                string        `env:"LOG_LEVEL" validate:"loglevel"`
	DatabaseDSN             string        `env:"DATABASE_DSN"`
	DBConnectionTimeout     time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	DBFileName              string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	MigrationsDir           string        `env:"MIGRATIONS_DIR"`
	SessionCookieName       string        `env:"SESSION_COOKIE_NAME" validate:"required"`
	SessionSigningSecretKey string        `env:"SESSION_SECRET_KEY" validate:"required,base64url"`
	SessionTTL              time.Duration `env:"SESSION_TTL"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	DBFileName:          "",
	MigrationsDir:       "cmd/blog/migrations",
	SessionCookieName:   "artcls_session",
	// "secret123" in base64url, the development fallback.
	SessionSigningSecretKey: "c2VjcmV0MTIz",
	SessionTTL:              24 * time.Hour,
}

func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}

	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}

	if values.DatabaseDSN == "" {
		values.DatabaseDSN = defaults.DatabaseDSN
	}

	if values.DBConnectionTimeout == 0 {
		values.DBConnectionTimeout = defaults.DBConnectionTimeout
	}

	if values.DBFileName == "" {
		values.DBFileName = defaults.DBFileName
	}

	if values.MigrationsDir == "" {
		values.MigrationsDir = defaults.MigrationsDir
	}

	if values.SessionCookieName == "" {
		values.SessionCookieName = defaults.SessionCookieName
	}

	if values.SessionSigningSecretKey == "" {
		values.SessionSigningSecretKey = defaults.SessionSigningSecretKey
	}

	if values.SessionTTL == 0 {
		values.SessionTTL = defaults.SessionTTL
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption is a functional option for New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing.
// It is intended for tests, where the flag set is owned by the test binary.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds and validates the application configuration.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "A string with the database connection details")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with goose migrations")
		flag.StringVar(&values.SessionCookieName, "c", values.SessionCookieName, "name of the session cookie")
		flag.StringVar(
			&values.SessionSigningSecretKey,
			"s",
			values.SessionSigningSecretKey,
			"base64url-encoded key used to sign session cookies",
		)
		flag.Parse()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.SessionCookieName != "" {
		values.SessionCookieName = valuesFromEnv.SessionCookieName
	}

	if valuesFromEnv.SessionSigningSecretKey != "" {
		values.SessionSigningSecretKey = valuesFromEnv.SessionSigningSecretKey
	}

	if valuesFromEnv.SessionTTL != 0 {
		values.SessionTTL = valuesFromEnv.SessionTTL
	}

	return values, values.validate()
}
