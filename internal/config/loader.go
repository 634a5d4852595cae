package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// configEnv overrides the config file path.
const configEnv = "APIMPUB_CONFIG"

// Loaded is a resolved configuration with the provenance of every key.
type Loaded struct {
	Config *Config

	// Path is the config file that was considered.
	Path string

	// FileFound is false when Path does not exist.
	FileFound bool

	// Values lists every key in Keys order.
	Values []ResolvedValue
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load resolves every key from flags, the environment, the config file at
// configFile and the defaults, in that order of precedence. flags maps keys
// to values of flags the user set explicitly. A missing config file is not
// an error.
func (l *Loader) Load(configFile string, flags map[string]any) (*Loaded, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	loaded := &Loaded{Path: expandedPath}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, oerrors.NewValidationError(err.Error(), expandedPath, "", "the config file must be valid YAML")
		}
	} else {
		loaded.FileFound = true
	}

	defaults := defaultValues()
	resolved := viper.New()
	for _, k := range Keys {
		var file any
		if l.v.IsSet(k.Name) {
			file = l.v.Get(k.Name)
		}
		rv := resolveKey(k, flags[k.Name], file, defaults[k.Name])
		loaded.Values = append(loaded.Values, rv)
		if rv.Source != "" {
			resolved.Set(k.Name, rv.Value)
		}
	}

	var cfg Config
	if err := resolved.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), expandedPath, "", "check the types of configuration values")
	}
	loaded.Config = &cfg

	return loaded, nil
}

// defaultValues flattens DefaultConfig into keys.
func defaultValues() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"service.apiVersion":  d.Service.APIVersion,
		"auth.authority":      d.Auth.Authority,
		"auth.audience":       d.Auth.Audience,
		"publish.concurrency": d.Publish.Concurrency,
		"publish.qps":         d.Publish.QPS,
		"publish.burst":       d.Publish.Burst,
	}
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
