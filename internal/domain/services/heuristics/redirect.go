package heuristics

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"verdict-lab/internal/domain/models"
)

var redirectParams = []string{
	"redirect", "redirect_uri", "redirect_url", "redir", "url", "next",
	"return", "returnurl", "return_to", "goto", "dest", "destination",
	"continue", "target", "forward", "out", "link",
}

// EvaluateRedirects looks for query parameters that forward to another site
func (s *Suite) EvaluateRedirects(u *url.URL) models.Evaluation {
	var ev models.Evaluation
	host := strings.ToLower(u.Hostname())

	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !slices.Contains(redirectParams, strings.ToLower(k)) {
			continue
		}
		for _, v := range q[k] {
			target, ok := redirectTarget(v)
			if !ok {
				continue
			}
			if strings.EqualFold(target, host) {
				ev.Add(models.Warn("Internal Redirect", fmt.Sprintf("Parameter %q forwards within %s", k, host), 5))
			} else {
				ev.Add(models.Fail("Open Redirect", fmt.Sprintf("Parameter %q forwards to %s", k, target), 20))
			}
			return ev
		}
	}
	return ev
}

// redirectTarget returns the host a parameter value points at
func redirectTarget(v string) (string, bool) {
	lower := strings.ToLower(v)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "//") {
		return "", false
	}
	if strings.HasPrefix(lower, "//") {
		v = "https:" + v
	}
	t, err := url.Parse(v)
	if err != nil || t.Hostname() == "" {
		return "", false
	}
	return t.Hostname(), true
}
