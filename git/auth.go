package git

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// AuthProvider resolves the authentication method for a remote URL.
// A nil method with a nil error means no authentication.
type AuthProvider interface {
	Method(remoteURL string) (transport.AuthMethod, error)
}

// AuthProviderFunc adapts a function to AuthProvider.
type AuthProviderFunc func(remoteURL string) (transport.AuthMethod, error)

// Method implements AuthProvider.
func (f AuthProviderFunc) Method(remoteURL string) (transport.AuthMethod, error) {
	return f(remoteURL)
}

// TokenAuth authenticates HTTPS remotes with a personal access token.
type TokenAuth struct {
	// Username sent with the token. Most forges accept any non-empty value.
	Username string

	// Token is the access token.
	Token string

	// Hosts limits the token to these hosts. Empty means every HTTPS host.
	Hosts []string
}

// NewTokenAuth returns a TokenAuth for token limited to hosts.
func NewTokenAuth(token string, hosts ...string) *TokenAuth {
	return &TokenAuth{Username: "x-access-token", Token: token, Hosts: hosts}
}

// Method implements AuthProvider. Non-HTTPS remotes and hosts outside Hosts
// get no authentication.
func (a *TokenAuth) Method(remoteURL string) (transport.AuthMethod, error) {
	if a.Token == "" {
		return nil, nil
	}

	u, err := url.Parse(remoteURL)
	if err != nil || u.Scheme != "https" {
		return nil, nil //nolint:nilerr // unparsable remotes are not ours to authenticate
	}

	if len(a.Hosts) > 0 && !containsHost(a.Hosts, u.Hostname()) {
		return nil, nil
	}

	return &githttp.BasicAuth{Username: a.Username, Password: a.Token}, nil
}

func containsHost(hosts []string, host string) bool {
	for _, h := range hosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}
