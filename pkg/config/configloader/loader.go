package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Validator interface {
	Validate() error
}

type options struct {
	configFile string
	envFile    string
	defaults   map[string]any
	overrides  map[string]any
}

// Option customizes where Load reads configuration from.
type Option func(*options)

// WithConfigFile sets the YAML file to read. Defaults to config.yaml.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithEnvFile sets the dotenv file to read. Defaults to .env.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// WithDefaults sets values loaded before any other source, keyed by dotted path.
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// WithOverrides sets values loaded after every other source, keyed by dotted path.
func WithOverrides(overrides map[string]any) Option {
	return func(o *options) {
		o.overrides = overrides
	}
}

// Load builds a T from defaults, the YAML file, the dotenv file, <APP>_ environment
// variables and overrides, in increasing priority, then validates it.
func Load[T Validator](appName string, opts ...Option) (T, error) {
	var cfg T
	o := &options{configFile: "config.yaml", envFile: ".env"}
	for _, opt := range opts {
		opt(o)
	}
	// Create a new Koanf instance
	k := koanf.New(".")

	// envPrefix is set to <APP>_ to match environment variables.
	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(appName))

	// 0. Defaults, the lowest priority
	if len(o.defaults) > 0 {
		if err := k.Load(confmap.Provider(o.defaults, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading defaults: %w", err)
		}
	}

	// 1. Load configuration from yaml file
	if err := k.Load(file.Provider(o.configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", o.configFile, err)
		}
	}

	// 2. Load environment variables from .env file
	envTransformer := func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, strings.ToLower(envPrefix))
		return strings.ReplaceAll(key, "_", ".")
	}
	if envFileMap, err := godotenv.Read(o.envFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		// Load the envMap into Koanf
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. Load environment variables from the system
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	// 4. Explicit overrides, the highest priority
	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return cfg, fmt.Errorf("error loading overrides: %w", err)
		}
	}

	// 5. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 6. Validate the configuration
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
