package cmn

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"
)

// TransportArgs configures NewClient. It mirrors the shape the downloader
// package consumes (clientForURL picks between a plain and an
// TLS-skip-verify client), generalized here with an optional proxy, since
// spec.md §1 allows "an optional HTTP proxy" as the only mirror-selection
// mechanism in scope.
type TransportArgs struct {
	UseHTTPS   bool
	SkipVerify bool
	Proxy      string // "" means no proxy; otherwise a URL per net/url
	Timeout    time.Duration
}

// NewClient builds an *http.Client for the given transport arguments. The
// download pipeline (§4.9) never sets a deadline on the client itself -
// spec.md §5 says callers wanting a deadline wrap the whole sync call - so
// Timeout defaults to 0 (no timeout) unless explicitly requested.
func NewClient(args TransportArgs) *http.Client {
	transport := &http.Transport{}
	if args.SkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in, matches teacher's httpsClient
	}
	if args.Proxy != "" {
		if u, err := url.Parse(args.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   args.Timeout,
	}
}

// IsHTTPS reports whether u looks like an https:// URL, the same cheap
// string check the teacher's downloader uses to pick a client.
func IsHTTPS(u string) bool {
	return len(u) >= 8 && u[:8] == "https://"
}
