package services

import (
	"fmt"
	"net/url"
	"strings"

	"verdict-lab/internal/domain/models"
)

// withScheme prefixes inputs that carry no http(s) scheme with https://
func withScheme(input string) string {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return input
	}
	return "https://" + input
}

// ParseTargetURL parses a url-typed input, defaulting the scheme to https
func ParseTargetURL(input string) (*url.URL, error) {
	u, err := url.Parse(withScheme(input))
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("no host in %q", input)
	}
	return u, nil
}

// TargetHostname derives the host analyzed for domain and url inputs. Only
// url inputs are parsed; domain inputs are used as given.
func TargetHostname(t models.InputType, input string) (string, error) {
	if t != models.InputTypeURL {
		return input, nil
	}
	u, err := ParseTargetURL(input)
	if err != nil {
		return "", err
	}
	return u.Hostname(), nil
}
