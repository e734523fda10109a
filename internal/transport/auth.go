package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// Router is implemented by authenticators that send requests to an API
// host other than the one the call names.
type Router interface {
	APIHost() string
}

// BasicAuth implements HTTP basic authentication. An API token is sent as
// the password of the user "api".
type BasicAuth struct {
	Username string
	Password string
	Token    string
	// Hostname, when set, replaces the call host.
	Hostname string
}

// TokenUser is the basic auth user name that goes with an API token.
const TokenUser = "api"

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request) {
	if a.Token != "" {
		req.SetBasicAuth(TokenUser, a.Token)
		return
	}
	req.SetBasicAuth(a.Username, a.Password)
}

// APIHost implements Router.
func (a *BasicAuth) APIHost() string {
	return a.Hostname
}

// Resolver returns the authenticator for a host.
type Resolver interface {
	ForHost(host string) (Authenticator, error)
}

// ResolverFunc adapts a function to a Resolver.
type ResolverFunc func(host string) (Authenticator, error)

// ForHost implements Resolver.
func (f ResolverFunc) ForHost(host string) (Authenticator, error) {
	return f(host)
}

// Static uses one authenticator for every host.
func Static(auth Authenticator) Resolver {
	return ResolverFunc(func(string) (Authenticator, error) { return auth, nil })
}
