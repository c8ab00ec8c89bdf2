package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeOrigin converts a user-supplied origin into the serialized form a
// browser would send in the Origin header: lower-case scheme, ASCII (punycode)
// host, explicit port only when given, and no trailing slash.
//
// The built-in origins are already in this form; normalization only matters
// for origins read from the settings file, e.g. "https://bücher.example/".
func NormalizeOrigin(origin string) (string, error) {
	u, err := parseOrigin(origin)
	if err != nil {
		return "", err
	}

	host := u.Hostname()
	if net.ParseIP(host) == nil {
		host, err = idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidOrigin, origin, err) //nolint:errorlint // idna error is detail only
		}
	}
	if port := u.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	}

	return strings.ToLower(u.Scheme) + "://" + host, nil
}

// validateOrigin checks the shape of an origin without rewriting it.
func validateOrigin(origin string) error {
	_, err := parseOrigin(origin)
	return err
}

func parseOrigin(origin string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	return u, nil
}
