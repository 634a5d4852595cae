package config

import (
	"fmt"
	"os"

	"github.com/opmodel/apimpub/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// Key is a configuration key and the environment variable overriding it.
type Key struct {
	Name   string
	Env    string
	Secret bool
}

// Keys lists every configuration key.
var Keys = []Key{
	{Name: "service.subscriptionId", Env: "APIMPUB_SUBSCRIPTION_ID"},
	{Name: "service.resourceGroup", Env: "APIMPUB_RESOURCE_GROUP"},
	{Name: "service.name", Env: "APIMPUB_SERVICE_NAME"},
	{Name: "service.url", Env: "APIMPUB_SERVICE_URL"},
	{Name: "service.apiVersion", Env: "APIMPUB_API_VERSION"},
	{Name: "auth.tenantId", Env: "APIMPUB_TENANT_ID"},
	{Name: "auth.clientId", Env: "APIMPUB_CLIENT_ID"},
	{Name: "auth.clientSecret", Env: "APIMPUB_CLIENT_SECRET", Secret: true},
	{Name: "auth.token", Env: "APIMPUB_TOKEN", Secret: true},
	{Name: "auth.authority", Env: "APIMPUB_AUTHORITY"},
	{Name: "auth.audience", Env: "APIMPUB_AUDIENCE"},
	{Name: "publish.concurrency", Env: "APIMPUB_CONCURRENCY"},
	{Name: "publish.qps", Env: "APIMPUB_QPS"},
	{Name: "publish.burst", Env: "APIMPUB_BURST"},
	{Name: "log.timestamps", Env: "APIMPUB_LOG_TIMESTAMPS"},
}

// ResolvedValue is the outcome of resolving one key.
type ResolvedValue struct {
	Key    string
	Value  any
	Source ConfigSource

	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]any

	secret bool
}

// Display returns the value for logging, masking secrets.
func (r ResolvedValue) Display() string {
	return display(r.Value, r.secret)
}

func display(v any, secret bool) string {
	if secret && v != nil && v != "" {
		return "****"
	}
	return fmt.Sprint(v)
}

// resolveKey applies flag > env > config > default precedence to one key.
// Unset candidates are nil.
func resolveKey(k Key, flag, file, def any) ResolvedValue {
	rv := ResolvedValue{Key: k.Name, Shadowed: make(map[ConfigSource]any), secret: k.Secret}

	var env any
	if v, ok := os.LookupEnv(k.Env); ok && v != "" {
		env = v
	}

	candidates := []struct {
		source ConfigSource
		value  any
	}{
		{SourceFlag, flag},
		{SourceEnv, env},
		{SourceConfig, file},
		{SourceDefault, def},
	}
	for _, c := range candidates {
		if c.value == nil {
			continue
		}
		if rv.Source == "" {
			rv.Value = c.value
			rv.Source = c.source
			continue
		}
		rv.Shadowed[c.source] = c.value
	}
	return rv
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPathResult contains the resolved config path and its source.
type ResolveConfigPathResult struct {
	// ConfigPath is the resolved config file path.
	ConfigPath string
	// Source indicates where the config path came from.
	Source ConfigSource
	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) APIMPUB_CONFIG env, (3) ~/.apimpub/config.yaml.
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolveConfigPathResult, error) {
	result := ResolveConfigPathResult{
		Shadowed: make(map[ConfigSource]string),
	}

	envValue := os.Getenv(configEnv)

	paths, err := DefaultPaths()
	if err != nil {
		return result, err
	}
	defaultPath := paths.ConfigFile

	switch {
	case opts.FlagValue != "":
		result.ConfigPath = opts.FlagValue
		result.Source = SourceFlag
		if envValue != "" {
			result.Shadowed[SourceEnv] = envValue
		}
		result.Shadowed[SourceDefault] = defaultPath
	case envValue != "":
		result.ConfigPath = envValue
		result.Source = SourceEnv
		result.Shadowed[SourceDefault] = defaultPath
	default:
		result.ConfigPath = defaultPath
		result.Source = SourceDefault
	}

	return result, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		if v.Source == "" {
			continue
		}
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Display(),
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", display(shadowed, v.secret),
			)
		}
	}
}
