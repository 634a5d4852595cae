package remote

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	oerrors "github.com/opmodel/apimpub/internal/errors"
)

// Defaults for public cloud endpoints.
const (
	DefaultAuthority     = "https://login.microsoftonline.com"
	DefaultAudience      = "https://management.azure.com"
	DefaultManagementURL = "https://management.azure.com"
)

// Credentials select how requests are authorized. A static token wins over
// client credentials.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	Token        string
	Authority    string
	Audience     string
}

// TokenURL returns the client-credentials token endpoint.
func (c Credentials) TokenURL() string {
	authority := c.Authority
	if authority == "" {
		authority = DefaultAuthority
	}
	return strings.TrimSuffix(authority, "/") + "/" + c.TenantID + "/oauth2/v2.0/token"
}

// Scope returns the OAuth2 scope requested for the audience.
func (c Credentials) Scope() string {
	audience := c.Audience
	if audience == "" {
		audience = DefaultAudience
	}
	return strings.TrimSuffix(audience, "/") + "/.default"
}

// TokenSource builds the token source for the credentials.
func TokenSource(ctx context.Context, c Credentials) (oauth2.TokenSource, error) {
	if c.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"}), nil
	}

	var missing []string
	if c.TenantID == "" {
		missing = append(missing, "auth.tenantId")
	}
	if c.ClientID == "" {
		missing = append(missing, "auth.clientId")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "auth.clientSecret")
	}
	if len(missing) > 0 {
		return nil, oerrors.NewValidationError(
			"no credentials configured: missing "+strings.Join(missing, ", "),
			"", "auth",
			"set auth.token, or auth.tenantId, auth.clientId and auth.clientSecret (or APIMPUB_TOKEN, APIMPUB_TENANT_ID, APIMPUB_CLIENT_ID and APIMPUB_CLIENT_SECRET)",
		)
	}

	cfg := clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL(),
		Scopes:       []string{c.Scope()},
	}
	return oauth2.ReuseTokenSource(nil, cfg.TokenSource(ctx)), nil
}
