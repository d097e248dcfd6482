package configuration

import (
	stderrors "errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"awsdocs/errors"
)

const (
	packageName = "configuration"
)

// Config holds the application configuration
type Config struct {
	LogLevel             string
	DefaultRegion        string
	EndpointURL          string
	AccessKeyID          string
	AccessSecret         string
	ProviderTimeout      int
	ShutdownTimeout      int
	CORSAllowedOrigins   []string
	RedactUpstreamErrors bool
	ServicesFile         string
	Services             []ServiceConfig
}

// ProviderTimeoutDuration bounds every outbound call to the cloud API.
func (c *Config) ProviderTimeoutDuration() time.Duration {
	return time.Duration(c.ProviderTimeout) * time.Second
}

// ShutdownTimeoutDuration bounds graceful HTTP shutdown.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// Initialize sets up the configuration system
func Initialize() (*Config, error) {
	logger := zap.L().With(
		zap.String("package", packageName),
		zap.String("function", "Initialize"),
	)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DEFAULT_REGION", "ap-northeast-2")
	viper.SetDefault("AWS_ENDPOINT_URL", "")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 15)
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 5)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("REDACT_UPSTREAM_ERRORS", false)
	viper.SetDefault("SERVICES_FILE", "services.hcl")

	viper.AutomaticEnv()

	// Tests point viper at their own file before calling Initialize.
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigFile(".env")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New(errors.ErrConfigParse, "error reading config file",
				map[string]interface{}{
					"config_file": viper.ConfigFileUsed(),
				}, err)
		}
		logger.Info("No .env file found, using environment variables and defaults",
			zap.String("operation", "config_loading"),
		)
	}

	region := strings.TrimSpace(viper.GetString("DEFAULT_REGION"))
	if region == "" {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid DEFAULT_REGION",
			map[string]interface{}{
				"config_key": "DEFAULT_REGION",
			}, nil)
	}
	logger.Info("Default region configured",
		zap.String("region", region),
		zap.String("operation", "config_validation"),
	)

	providerTimeout := viper.GetInt("PROVIDER_TIMEOUT_SECONDS")
	if providerTimeout <= 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid PROVIDER_TIMEOUT_SECONDS",
			map[string]interface{}{
				"config_key": "PROVIDER_TIMEOUT_SECONDS",
				"value":      providerTimeout,
			}, nil)
	}

	shutdownTimeout := viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	if shutdownTimeout <= 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid SHUTDOWN_TIMEOUT_SECONDS",
			map[string]interface{}{
				"config_key": "SHUTDOWN_TIMEOUT_SECONDS",
				"value":      shutdownTimeout,
			}, nil)
	}
	logger.Info("Timeouts configured",
		zap.Int("provider_seconds", providerTimeout),
		zap.Int("shutdown_seconds", shutdownTimeout),
		zap.String("operation", "config_validation"),
	)

	origins := splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		return nil, errors.New(errors.ErrConfigInvalid, "invalid CORS_ALLOWED_ORIGINS",
			map[string]interface{}{
				"config_key": "CORS_ALLOWED_ORIGINS",
			}, nil)
	}

	servicesFile := viper.GetString("SERVICES_FILE")
	services, err := LoadServices(servicesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Services configured",
		zap.String("file", servicesFile),
		zap.Int("count", len(services)),
		zap.String("operation", "config_validation"),
	)

	config := &Config{
		LogLevel:             viper.GetString("LOG_LEVEL"),
		DefaultRegion:        region,
		EndpointURL:          viper.GetString("AWS_ENDPOINT_URL"),
		AccessKeyID:          viper.GetString("AWS_ACCESS_KEY_ID"),
		AccessSecret:         viper.GetString("AWS_SECRET_ACCESS_KEY"),
		ProviderTimeout:      providerTimeout,
		ShutdownTimeout:      shutdownTimeout,
		CORSAllowedOrigins:   origins,
		RedactUpstreamErrors: viper.GetBool("REDACT_UPSTREAM_ERRORS"),
		ServicesFile:         servicesFile,
		Services:             services,
	}

	logger.Info("Configuration loaded successfully",
		zap.String("operation", "config_complete"),
	)
	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
