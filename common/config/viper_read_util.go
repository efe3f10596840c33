package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rainbow-me/myapp/common/env"
	"github.com/rainbow-me/myapp/common/logger"
)

const (
	fileFormat     = ".yaml"        // File format of the config files
	relativePath   = "./cmd/config" // Default relative path for config files (base path)
	binaryPath     = "./config"     // Path for binary build config (base path)
	binaryDir      = "target"       // Directory name for the binary target
	binaryInDocker = "app"          // Directory name for Docker deployment
	envVarPrefix   = "env://"       // Prefix for environment variables
)

// YamlReadConfig holds the options used to locate and decode the config file.
type YamlReadConfig struct {
	RelativePath string // Path relative to the current directory
	AbsolutePath string // Absolute path if provided
	DynamicDir   string // Optional dynamic directory
	Environment  env.Environment
	Defaults     map[string]any
}

// ReadConfigOption is a function signature used to set configuration options.
type ReadConfigOption func(*YamlReadConfig)

// WithRelativePath sets a relative path for the config file.
func WithRelativePath(path string) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.RelativePath = path
	}
}

// WithAbsolutePath sets an absolute path for the config file.
func WithAbsolutePath(path string) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.AbsolutePath = path
	}
}

// WithDynamicDir allows setting a dynamic subdirectory for the configuration path.
func WithDynamicDir(dynamicDir string) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.DynamicDir = dynamicDir
	}
}

// WithEnvironment selects the config file by environment instead of reading ENVIRONMENT.
func WithEnvironment(e env.Environment) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.Environment = e
	}
}

// WithDefaults registers default values, keyed by dotted config path.
func WithDefaults(defaults map[string]any) ReadConfigOption {
	return func(config *YamlReadConfig) {
		config.Defaults = defaults
	}
}

// LoadConfig reads <dir>/<environment>.yaml into conf. Environment variables override file values
// (dots in keys become underscores) and "env://NAME" values are replaced by the NAME variable.
func LoadConfig(conf any, log *logger.Logger, options ...ReadConfigOption) error { //nolint:cyclop
	config := &YamlReadConfig{RelativePath: relativePath}
	for _, option := range options {
		option(config)
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}
	log.Debug("Current working directory", logger.String("directory", currentDir))

	// Adjust config path if running from binary target or Docker container
	base := filepath.Base(currentDir)
	if config.AbsolutePath == "" && (strings.Contains(base, binaryDir) || base == binaryInDocker) {
		log.Info("Binary directory detected", logger.String("directory", currentDir))
		config.RelativePath = binaryPath
	}

	pathToConfigDir := config.RelativePath
	if config.AbsolutePath != "" {
		pathToConfigDir = config.AbsolutePath
	}
	if config.DynamicDir != "" {
		pathToConfigDir = filepath.Join(pathToConfigDir, config.DynamicDir)
	}

	currentEnv := config.Environment
	if currentEnv == "" {
		currentEnv, err = env.GetApplicationEnv()
		if err != nil {
			return fmt.Errorf("invalid environment: %w", err)
		}
	}

	filePath := filepath.Join(pathToConfigDir, currentEnv.String()+fileFormat)
	log.Info("Reading config file from path", logger.String("path", filePath))

	v := viper.New()
	for key, value := range config.Defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(filePath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	for _, key := range v.AllKeys() {
		resolveEnvPlaceholder(v, key, log)
	}

	if err = v.Unmarshal(conf); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return nil
}

func resolveEnvPlaceholder(v *viper.Viper, key string, log *logger.Logger) {
	str, ok := v.Get(key).(string)
	if !ok || !strings.HasPrefix(str, envVarPrefix) {
		return
	}
	envVar := str[len(envVarPrefix):]
	if envValue, exists := os.LookupEnv(envVar); exists {
		v.Set(key, envValue)
		log.Info("set environment variable", logger.String("variableName", envVar))
		return
	}
	v.Set(key, "")
	log.Warn("environment variable not found", logger.String("variableName", envVar))
}
