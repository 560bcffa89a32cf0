package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/souqfin/auctiond/internal/support/exception"
	"github.com/souqfin/auctiond/internal/support/logger"
)

const moduleName = "config"

// envPrefix is the prefix of environment variables that override configuration
// values, e.g. AUCTIOND_SYSTEM_LOGGING_LEVEL or AUCTIOND_NOTIFICATIONS_DISABLED.
const envPrefix = "AUCTIOND"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string `name:"envFilePath" optional:"true"`
}

// loadConfig loads configuration from the embedded YAML and environment
// variables. Intended to be called once during application startup.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	// 1. Defaults, 2. embedded YAML on top of them.
	cfg := NewConfig()
	if err := yaml.Unmarshal(embeddedConfig, cfg); err != nil {
		return nil, exception.NewTaskError(moduleName, "failed to unmarshal embedded config", err, false)
	}

	// 3. Environment variable overrides.
	overrideFromEnv(reflect.ValueOf(&cfg.Auctiond).Elem(), envPrefix)

	return cfg, nil
}

// NewConfigProvider is the Fx provider that loads and provides *Config.
// It also sets the global log level from the loaded configuration.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Auctiond.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Auctiond.System.Logging.Level)

	return cfg, nil
}

// LoadConfig loads configuration from the embedded YAML and environment
// variables, outside of the Fx graph (used by tests and early startup).
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}

// overrideFromEnv walks the struct fields and overrides scalar values from
// environment variables named PREFIX_<YAML_TAG_PATH>. Maps and slices are left
// to the YAML document (per-connection database settings carry secrets via
// ${VAR} expansion in the document itself, not via this pass).
func overrideFromEnv(v reflect.Value, prefix string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + strings.ToUpper(tag)
		fv := v.Field(i)

		switch fv.Kind() {
		case reflect.Struct:
			overrideFromEnv(fv, key)
		case reflect.String:
			if val, ok := os.LookupEnv(key); ok {
				fv.SetString(val)
			}
		case reflect.Int, reflect.Int64:
			if val, ok := os.LookupEnv(key); ok {
				if n, err := strconv.ParseInt(val, 10, 64); err == nil {
					fv.SetInt(n)
				} else {
					logger.Warnf("Ignoring invalid integer for %s: %q", key, val)
				}
			}
		case reflect.Bool:
			if val, ok := os.LookupEnv(key); ok {
				if b, err := strconv.ParseBool(val); err == nil {
					fv.SetBool(b)
				} else {
					logger.Warnf("Ignoring invalid boolean for %s: %q", key, val)
				}
			}
		}
	}
}
