package heuristics

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// trustedDomains are well known registrable domains that carry a positive
// reputation signal
var trustedDomains = map[string]bool{
	"google.com": true, "apple.com": true, "icloud.com": true,
	"microsoft.com": true, "live.com": true, "outlook.com": true,
	"amazon.com": true, "facebook.com": true, "fb.com": true,
	"twitter.com": true, "x.com": true, "linkedin.com": true,
	"github.com": true, "paypal.com": true, "netflix.com": true,
	"youtube.com": true, "instagram.com": true, "wikipedia.org": true,
}

// brandDomains maps impersonation targets to their legitimate domain
var brandDomains = map[string]string{
	"paypal":        "paypal.com",
	"amazon":        "amazon.com",
	"apple":         "apple.com",
	"google":        "google.com",
	"microsoft":     "microsoft.com",
	"netflix":       "netflix.com",
	"facebook":      "facebook.com",
	"instagram":     "instagram.com",
	"linkedin":      "linkedin.com",
	"github":        "github.com",
	"usps":          "usps.com",
	"fedex":         "fedex.com",
	"chase":         "chase.com",
	"wellsfargo":    "wellsfargo.com",
	"bankofamerica": "bankofamerica.com",
	"citibank":      "citibank.com",
	"coinbase":      "coinbase.com",
	"binance":       "binance.com",
}

var suspiciousTLDs = map[string]bool{
	"xyz": true, "top": true, "club": true, "work": true, "click": true,
	"link": true, "gq": true, "ml": true, "cf": true, "tk": true,
	"ga": true, "buzz": true, "icu": true, "rest": true, "zip": true,
	"mov": true, "country": true, "cam": true,
}

var urlShorteners = map[string]bool{
	"bit.ly": true, "tinyurl.com": true, "t.co": true, "goo.gl": true,
	"ow.ly": true, "is.gd": true, "buff.ly": true, "adf.ly": true,
	"j.mp": true, "rb.gy": true, "cutt.ly": true, "short.io": true,
	"rebrand.ly": true, "bl.ink": true, "soo.gd": true, "s.id": true,
	"clk.sh": true, "shorturl.at": true, "tiny.cc": true,
}

// free hosting and dynamic DNS suffixes commonly abused for throwaway sites
var freeHostingSuffixes = []string{
	"000webhostapp.com", "weebly.com", "wixsite.com", "blogspot.com",
	"github.io", "netlify.app", "vercel.app", "pages.dev", "workers.dev",
	"firebaseapp.com", "web.app", "herokuapp.com", "glitch.me",
	"duckdns.org", "no-ip.org", "ddns.net", "ngrok.io", "ngrok-free.app",
	"repl.co", "azurewebsites.net",
}

var phishingKeywords = []string{
	"login", "signin", "verify", "secure", "account", "update",
	"confirm", "banking", "password", "credential", "wallet", "support",
}

// registrableDomain returns the eTLD+1 of host, or host itself when it has
// no public suffix parent
func registrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// topLevel returns the last label of host
func topLevel(host string) string {
	host = strings.TrimSuffix(host, ".")
	if i := strings.LastIndexByte(host, '.'); i >= 0 {
		return strings.ToLower(host[i+1:])
	}
	return strings.ToLower(host)
}

// withinSuffix reports whether host equals suffix or is a subdomain of it
func withinSuffix(host, suffix string) bool {
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}
