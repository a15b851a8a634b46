package heuristics

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"verdict-lab/internal/domain/models"
)

var mobilePayloads = map[string]string{
	".apk":             "Android package",
	".xapk":            "Android package bundle",
	".apks":            "Android split package",
	".ipa":             "iOS application archive",
	".mobileconfig":    "iOS configuration profile",
	".mobileprovision": "iOS provisioning profile",
}

var appLureKeywords = []string{"download-app", "install-app", "apk", "sideload", "update-app", "mobile-update"}

// EvaluateMobileThreats checks for sideloaded apps and configuration profiles
func (s *Suite) EvaluateMobileThreats(u *url.URL) models.Evaluation {
	var ev models.Evaluation
	lower := strings.ToLower(u.Path)

	if kind, ok := mobilePayloads[path.Ext(lower)]; ok {
		ev.Add(models.Fail("Mobile Payload", fmt.Sprintf("Link downloads an %s outside an app store", kind), 30))
		return ev
	}

	query := strings.ToLower(u.RawQuery)
	if strings.Contains(query, "itms-services") || strings.Contains(lower, "itms-services") {
		ev.Add(models.Fail("Enterprise App Install", "Link triggers an over-the-air iOS install", 30))
		return ev
	}

	for _, kw := range appLureKeywords {
		if strings.Contains(lower, kw) {
			ev.Add(models.Warn("App Download Lure", fmt.Sprintf("Path mentions %q", kw), 10))
			break
		}
	}
	return ev
}
