package cmdutil

import (
	"context"
	"errors"

	"github.com/opmodel/apimpub/internal/config"
	oerrors "github.com/opmodel/apimpub/internal/errors"
	"github.com/opmodel/apimpub/internal/output"
	"github.com/opmodel/apimpub/internal/remote"
)

// NewGateway creates the HTTP gateway for the configured service or returns
// an *ExitError carrying the matching exit code.
func NewGateway(ctx context.Context, cfg *config.Config) (*remote.Client, error) {
	serviceURL := cfg.ServiceURL()
	if serviceURL == "" {
		err := oerrors.NewValidationError(
			"no service configured", "", "service",
			"set service.url, or service.subscriptionId, service.resourceGroup and service.name",
		)
		return nil, &oerrors.ExitError{Code: oerrors.ExitValidationError, Err: err}
	}

	ts, err := remote.TokenSource(ctx, cfg.Credentials())
	if err != nil {
		return nil, &oerrors.ExitError{Code: oerrors.ExitCodeFromError(err), Err: err}
	}

	client, err := remote.NewClient(remote.ClientOptions{
		ServiceURL:  serviceURL,
		APIVersion:  cfg.Service.APIVersion,
		TokenSource: ts,
		QPS:         cfg.Publish.QPS,
		Burst:       cfg.Publish.Burst,
	})
	if err != nil {
		return nil, &oerrors.ExitError{Code: oerrors.ExitValidationError, Err: err}
	}

	output.Debug("gateway ready", "service", serviceURL, "apiVersion", cfg.Service.APIVersion)
	return client, nil
}

// NeedsGateway reports whether a run must reach the service. Dry runs and
// plans only do when pruning or when a service is configured anyway.
func NeedsGateway(cfg *config.Config, dryRun, prune bool) bool {
	return !dryRun || prune || cfg.ServiceURL() != ""
}

// ListProgress shows a spinner around the remote listings of a prune.
func ListProgress(ctx context.Context) func(title string, fn func() error) error {
	return func(title string, fn func() error) error {
		return output.RunWithSpinner(ctx, title, fn)
	}
}

// RemoteError turns permission and connectivity failures from the service
// into detail errors with a hint. Other errors are returned unchanged.
func RemoteError(err error, cfg *config.Config) error {
	var detail *oerrors.DetailError
	if err == nil || errors.As(err, &detail) {
		return err
	}

	ctx := map[string]string{"service": cfg.ServiceURL()}
	switch {
	case errors.Is(err, oerrors.ErrPermission):
		if cfg.Auth.ClientID != "" {
			ctx["clientId"] = cfg.Auth.ClientID
		}
		return oerrors.NewPermissionError(err.Error(), ctx,
			"check auth.clientId and its role assignment on the API Management service")
	case errors.Is(err, oerrors.ErrConnectivity):
		return oerrors.NewConnectivityError(err.Error(), ctx,
			"check service.url and network access to the management endpoint")
	default:
		return err
	}
}
