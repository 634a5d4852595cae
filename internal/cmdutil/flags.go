// Package cmdutil provides shared command utilities for the publish and plan
// commands. It centralizes flag group management, gateway construction,
// input loading and plan rendering.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// configFlags maps flag names to the configuration keys they override.
var configFlags = map[string]string{
	"service-url":     "service.url",
	"subscription-id": "service.subscriptionId",
	"resource-group":  "service.resourceGroup",
	"service-name":    "service.name",
	"api-version":     "service.apiVersion",
	"concurrency":     "publish.concurrency",
	"qps":             "publish.qps",
	"burst":           "publish.burst",
	"timestamps":      "log.timestamps",
}

// FlagOverrides returns the configuration keys overridden by flags the user
// set explicitly on cmd, including inherited persistent flags.
func FlagOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	for name, key := range configFlags {
		if !cmd.Flags().Changed(name) {
			continue
		}
		overrides[key] = cmd.Flags().Lookup(name).Value.String()
	}
	return overrides
}

// ServiceFlags select the API-management service (publish, plan).
type ServiceFlags struct {
	URL            string
	SubscriptionID string
	ResourceGroup  string
	Name           string
	APIVersion     string
}

// AddTo registers the service flags on the given cobra command.
func (f *ServiceFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.URL, "service-url", "",
		"Service resource URL (env: APIMPUB_SERVICE_URL)")
	cmd.Flags().StringVar(&f.SubscriptionID, "subscription-id", "",
		"Subscription of the service (env: APIMPUB_SUBSCRIPTION_ID)")
	cmd.Flags().StringVar(&f.ResourceGroup, "resource-group", "",
		"Resource group of the service (env: APIMPUB_RESOURCE_GROUP)")
	cmd.Flags().StringVar(&f.Name, "service-name", "",
		"Service name (env: APIMPUB_SERVICE_NAME)")
	cmd.Flags().StringVar(&f.APIVersion, "api-version", "",
		"Management API version (env: APIMPUB_API_VERSION)")
}

// SourceFlags select what is published (publish, plan).
type SourceFlags struct {
	Dir     string
	Overlay string
	Commit  string
	Prune   bool
}

// AddTo registers the source flags on the given cobra command.
func (f *SourceFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Dir, "dir", "d", ".",
		"Artifact directory")
	cmd.Flags().StringVar(&f.Overlay, "overlay", "",
		"Configuration overlay file (JSON or YAML)")
	cmd.Flags().StringVar(&f.Commit, "commit", "",
		"Publish only the files changed by this commit")
	cmd.Flags().BoolVar(&f.Prune, "prune", false,
		"Delete remote resources missing from the artifact directory (full mode only)")
}

// Validate rejects flag combinations no run can honor.
func (f *SourceFlags) Validate() error {
	if f.Prune && f.Commit != "" {
		return oerrors.NewValidationError(
			"--prune and --commit are mutually exclusive", "", "prune",
			"prune runs against the whole artifact directory; drop --commit",
		)
	}
	if f.Dir == "" {
		return fmt.Errorf("%w: --dir must not be empty", oerrors.ErrValidation)
	}
	return nil
}

// TuningFlags shape the traffic sent to the service (publish, plan).
type TuningFlags struct {
	Concurrency int
	QPS         float32
	Burst       int
}

// AddTo registers the tuning flags on the given cobra command.
func (f *TuningFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.Concurrency, "concurrency", 0,
		"Parallel calls per resource kind, 0 for unlimited (env: APIMPUB_CONCURRENCY)")
	cmd.Flags().Float32Var(&f.QPS, "qps", 0,
		"Client-side request rate limit (env: APIMPUB_QPS)")
	cmd.Flags().IntVar(&f.Burst, "burst", 0,
		"Client-side request burst (env: APIMPUB_BURST)")
}
