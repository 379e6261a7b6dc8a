//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package config provides configuration management for the rule engine
// using [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the MRE_ prefix
//   - Programmatic defaults
//
// # Configuration File
//
// By default, the engine looks for mre-config.yaml in the current directory.
// Override the location using environment variables:
//
//	MRE_CONFIG_PATH=/etc/ruleengine
//	MRE_CONFIG_FILENAME=production-config
//
// Example configuration file:
//
//	log:
//	  level: ".:info"
//	mock:
//	  enabled: false
//	record:
//	  includerule: true
//	audit:
//	  env:
//	    pod: HOSTNAME
//	    region: AWS_REGION
//
// # Environment Variables
//
// All configuration keys can be set via environment variables with the MRE_
// prefix. Dots in key names become underscores:
//
//	MRE_LOG_LEVEL=.:debug
//	MRE_MOCK_ENABLED=true
//	MRE_RECORD_INCLUDERULE=false
//
// # Configuration Keys
//
// Available configuration options:
//   - log.level: Log level configuration (default: ".:info")
//   - mock.enabled: Use an empty in-memory backend instead of the configured backend
//   - record.includerule: Include the matched rule text in access records (default: true)
//   - audit.env: Map of access log metadata keys to environment variable names
//   - audit.k8s.podinfo: Directory holding Kubernetes Downward API files (default: /etc/podinfo)
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/manetu/ruleengine/internal/logging"
	"github.com/spf13/viper"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all rule engine environment variables.
	// For example, the key "log.level" becomes MRE_LOG_LEVEL.
	EnvVarPrefix string = "MRE"

	// ConfigPathEnv is the environment variable that specifies the directory
	// containing the configuration file.
	ConfigPathEnv string = "MRE_CONFIG_PATH"

	// ConfigFileNameEnv is the environment variable that specifies the
	// configuration file name (without extension).
	ConfigFileNameEnv string = "MRE_CONFIG_FILENAME"

	// ConfigDefaultPath is the default directory to search for config files.
	ConfigDefaultPath string = "."

	// ConfigDefaultFilename is the default configuration file name (without extension).
	ConfigDefaultFilename string = "mre-config"
)

// Configuration key constants for use with [VConfig].
const (
	logLevel string = "log.level"

	// MockEnabled when set to true causes the rule engine to use an empty
	// in-memory backend regardless of any backend configured via
	// [options.WithBackend]. This is useful for unit testing applications
	// that use the rule engine.
	//
	// Set via environment: MRE_MOCK_ENABLED=true
	MockEnabled string = "mock.enabled"

	// RecordIncludeRule controls whether the matched policy's rule text is
	// included in access log records.
	//
	// Default: true
	// Set via environment: MRE_RECORD_INCLUDERULE=false
	RecordIncludeRule string = "record.includerule"

	// AuditEnv defines a mapping from access log metadata keys to environment
	// variable names. The values of the specified environment variables are
	// included in every access log record.
	//
	// Example config:
	//
	//	audit:
	//	  env:
	//	    pod: HOSTNAME
	//	    region: AWS_REGION
	AuditEnv string = "audit.env"

	// AuditK8sPodinfo is the directory holding Kubernetes Downward API files
	// (labels, annotations). When the files are present their contents are
	// merged into access record metadata.
	//
	// Default: /etc/podinfo
	// Set via environment: MRE_AUDIT_K8S_PODINFO=/var/run/podinfo
	AuditK8sPodinfo string = "audit.k8s.podinfo"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance for the rule engine.
	//
	// VConfig provides access to all configuration values. Use the configuration
	// key constants ([MockEnabled], [RecordIncludeRule], etc.) to access specific
	// settings:
	//
	//	if config.VConfig.GetBool(config.MockEnabled) {
	//	    // Using mock backend
	//	}
	//
	// VConfig is initialized automatically when [Load] or [Init] is called.
	// In most cases, applications don't need to access VConfig directly;
	// configuration is handled automatically by [core.NewPolicyEngine].
	VConfig *viper.Viper
	logger  = logging.GetLogger("ruleengine.config")
)

// Init initializes the configuration system without loading config files.
//
// Init sets up Viper with:
//   - Configuration file paths and names
//   - Environment variable handling (MRE_ prefix)
//   - Default values for all configuration keys
//
// This function is safe to call multiple times; subsequent calls are no-ops.
// Most applications don't need to call Init directly; it's called automatically
// by [Load], which is called by [core.NewPolicyEngine].
//
// Call Init explicitly only if you need to set Viper defaults before [Load]
// reads the configuration file.
func Init() {
	once.Do(func() {
		doInitialize()
	})
}

func getConfigPath() string {
	configPath, ok := os.LookupEnv(ConfigPathEnv)
	if ok {
		return configPath
	}

	return ConfigDefaultPath
}

func getConfigFileName() string {
	configName, ok := os.LookupEnv(ConfigFileNameEnv)
	if ok {
		return configName
	}

	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// set up config-file loading:  default is './mre-config.yaml' but can be overridden with $(MRE_CONFIG_PATH)/$(MRE_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// set up envvar handling:  keys such as 'log.level' become 'MRE_LOG_LEVEL'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	// set up VConfig defaults
	VConfig.SetDefault(logLevel, ".:info")
	VConfig.SetDefault(RecordIncludeRule, true)
	VConfig.SetDefault(AuditK8sPodinfo, "/etc/podinfo")
}

// Load initializes configuration and loads settings from files and environment.
//
// Load performs the following steps:
//  1. Calls [Init] if not already called
//  2. Reads the configuration file (if present; missing files are not an error)
//  3. Applies environment variable overrides
//  4. Updates log levels based on configuration
//
// This function is safe to call concurrently from multiple goroutines.
// Subsequent calls after the first successful load are no-ops that return nil.
//
// Load is called automatically by [core.NewPolicyEngine]. Most applications
// don't need to call it directly.
//
// Returns an error if log level configuration is invalid.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// Early log level update from environment variable allows us to debug the config loading.
		earlyLoglevel := os.Getenv("MRE_LOG_LEVEL")
		if earlyLoglevel != "" {
			if err := logging.UpdateLogLevels(earlyLoglevel); err != nil {
				logger.SysErrorf("Failed updating early log level %s: %+v", earlyLoglevel, err)
				loadErr = err
				return
			}
		}

		logger.SysDebugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		// Add the path specified by the env var.
		err := VConfig.ReadInConfig()
		if err != nil {
			// Only log if it's an actual error, not just a missing config file
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.SysWarnf("error reading config; using defaults: %+v", err)
			}
			// fall through to continue loading
			logger.SysDebugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		// Update log levels based on final configuration
		loglevel := VConfig.GetString(logLevel)
		if err := logging.UpdateLogLevels(loglevel); err != nil {
			logger.SysErrorf("Failed updating log level %s: %+v", loglevel, err)
			loadErr = err
			return
		}

		if logger.IsDebugEnabled() {
			VConfig.DebugTo(logger.Out())
		}
	})

	return loadErr
}

// ResetConfig clears all configuration and reinitializes with defaults.
//
// WARNING: This function is intended for testing only. It resets the global
// configuration state, which can cause race conditions in concurrent code.
//
// After calling ResetConfig, the configuration system is reinitialized with
// default values. Any previously loaded configuration file or environment
// variable overrides are discarded.
func ResetConfig() {
	VConfig = nil
	once = sync.Once{}     // reset the sync.Once to allow re-initialization
	loadOnce = sync.Once{} // reset the loadOnce to allow re-loading
	loadErr = nil          // reset any previous load error
	resetK8sCache()
	Init()
	// ignore any reset errors
	_ = Load()
}

// GetAuditEnv returns resolved audit environment metadata for access log records.
//
// This function reads the audit.env configuration section and resolves each
// configured environment variable to its current value. The result is a map
// suitable for inclusion in access log records as metadata.
//
// Configuration format:
//
//	audit:
//	  env:
//	    pod: HOSTNAME
//	    region: AWS_REGION
//
// With HOSTNAME=pod-123 and AWS_REGION=us-east-1, this returns:
//
//	{"pod": "pod-123", "region": "us-east-1"}
//
// Environment variables that are not set will have empty string values in the
// result. Returns an empty map if no audit.env configuration is present.
func GetAuditEnv() map[string]string {
	result := make(map[string]string)

	envConfig := VConfig.GetStringMapString(AuditEnv)
	if envConfig == nil {
		return result
	}

	for key, envVarName := range envConfig {
		result[key] = os.Getenv(envVarName)
	}

	return result
}

// GetAuditMetadata returns the full metadata map for access log records:
// the resolved audit.env entries plus any Kubernetes Downward API labels
// and annotations found under audit.k8s.podinfo.
//
// Labels are keyed as "k8s.label.<name>" and annotations as
// "k8s.annotation.<name>". Outside Kubernetes (no podinfo files) the result
// is just the audit.env entries.
func GetAuditMetadata() map[string]string {
	result := GetAuditEnv()

	for k, v := range getK8sLabels() {
		result["k8s.label."+k] = v
	}
	for k, v := range getK8sAnnotations() {
		result["k8s.annotation."+k] = v
	}

	return result
}
