// Package config provides configuration loading and management.
package config

import (
	"github.com/opmodel/apimpub/internal/remote"
)

// ServiceConfig identifies the API-management service.
type ServiceConfig struct {
	// SubscriptionID, ResourceGroup and Name build the management URL of
	// the service. Env: APIMPUB_SUBSCRIPTION_ID, APIMPUB_RESOURCE_GROUP,
	// APIMPUB_SERVICE_NAME
	SubscriptionID string `json:"subscriptionId,omitempty" mapstructure:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup,omitempty" mapstructure:"resourceGroup"`
	Name           string `json:"name,omitempty" mapstructure:"name"`

	// URL overrides the computed service URL.
	// Env: APIMPUB_SERVICE_URL
	URL string `json:"url,omitempty" mapstructure:"url"`

	// APIVersion is the management API version.
	// Env: APIMPUB_API_VERSION, Default: 2022-08-01
	APIVersion string `json:"apiVersion,omitempty" mapstructure:"apiVersion"`
}

// AuthConfig holds the service principal used to obtain tokens, or a
// pre-acquired token.
type AuthConfig struct {
	TenantID     string `json:"tenantId,omitempty" mapstructure:"tenantId"`
	ClientID     string `json:"clientId,omitempty" mapstructure:"clientId"`
	ClientSecret string `json:"clientSecret,omitempty" mapstructure:"clientSecret"`

	// Token is a bearer token used as-is instead of client credentials.
	Token string `json:"token,omitempty" mapstructure:"token"`

	Authority string `json:"authority,omitempty" mapstructure:"authority"`
	Audience  string `json:"audience,omitempty" mapstructure:"audience"`
}

// PublishConfig tunes how hard the service is driven.
type PublishConfig struct {
	// Concurrency limits parallel calls inside one kind. 0 is unlimited.
	Concurrency int `json:"concurrency,omitempty" mapstructure:"concurrency"`

	// QPS and Burst configure the client-side rate limiter.
	QPS   float32 `json:"qps,omitempty" mapstructure:"qps"`
	Burst int     `json:"burst,omitempty" mapstructure:"burst"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `json:"timestamps,omitempty" mapstructure:"timestamps"`
}

// Config represents the apimpub configuration.
// Loaded from ~/.apimpub/config.yaml, validated against embedded CUE schema.
type Config struct {
	Service ServiceConfig `json:"service" mapstructure:"service"`
	Auth    AuthConfig    `json:"auth" mapstructure:"auth"`
	Publish PublishConfig `json:"publish" mapstructure:"publish"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
}

// Defaults.
const (
	DefaultConcurrency = 8
	DefaultQPS         = 10
	DefaultBurst       = 20
)

// DefaultConfig returns a Config with all default values populated.
// Used by `apimpub config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			APIVersion: remote.DefaultAPIVersion,
		},
		Auth: AuthConfig{
			Authority: remote.DefaultAuthority,
			Audience:  remote.DefaultAudience,
		},
		Publish: PublishConfig{
			Concurrency: DefaultConcurrency,
			QPS:         DefaultQPS,
			Burst:       DefaultBurst,
		},
	}
}

// Credentials returns the auth settings as gateway credentials.
func (c *Config) Credentials() remote.Credentials {
	return remote.Credentials{
		TenantID:     c.Auth.TenantID,
		ClientID:     c.Auth.ClientID,
		ClientSecret: c.Auth.ClientSecret,
		Token:        c.Auth.Token,
		Authority:    c.Auth.Authority,
		Audience:     c.Auth.Audience,
	}
}

// ServiceURL returns the configured URL, or the management URL built from
// the service identity. It returns "" when neither is complete.
func (c *Config) ServiceURL() string {
	if c.Service.URL != "" {
		return c.Service.URL
	}
	s := c.Service
	if s.SubscriptionID == "" || s.ResourceGroup == "" || s.Name == "" {
		return ""
	}
	return remote.ServiceURL(remote.DefaultManagementURL, s.SubscriptionID, s.ResourceGroup, s.Name)
}
