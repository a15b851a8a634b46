package heuristics

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"verdict-lab/internal/domain/models"
)

var (
	executableExt  = map[string]bool{".exe": true, ".scr": true, ".bat": true, ".cmd": true, ".msi": true, ".vbs": true, ".js": true, ".jar": true, ".ps1": true, ".hta": true, ".dll": true, ".dmg": true, ".pkg": true}
	doubleExt      = regexp.MustCompile(`(?i)\.(pdf|docx?|xlsx?|jpe?g|png|txt|zip)\.(exe|scr|bat|cmd|js|vbs|hta)$`)
	credentialPath = regexp.MustCompile(`(?i)(log-?in|sign-?in|verify|account|password|passwd|wallet|banking|auth|webscr|update-?billing)`)
	emailValue     = regexp.MustCompile(`(?i)[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
)

// EvaluatePath looks at the path and query of a URL
func (s *Suite) EvaluatePath(p, query string) models.Evaluation {
	var ev models.Evaluation
	lower := strings.ToLower(p)

	if m := credentialPath.FindString(lower); m != "" {
		ev.Add(models.Warn("Credential Harvesting Path", fmt.Sprintf("Path mentions %q", m), 15))
	}

	switch {
	case doubleExt.MatchString(lower):
		ev.Add(models.Fail("Double Extension", fmt.Sprintf("File %s disguises an executable", path.Base(lower)), 20))
	case executableExt[path.Ext(lower)]:
		ev.Add(models.Fail("Executable Download", fmt.Sprintf("Path ends in %s", path.Ext(lower)), 25))
	}

	if strings.Contains(p, "../") || strings.Contains(lower, "%2e%2e") {
		ev.Add(models.Warn("Path Traversal", "Path walks up the directory tree", 10))
	}

	if query == "" {
		return ev
	}
	decoded, err := url.QueryUnescape(query)
	if err != nil {
		decoded = query
	}
	if emailValue.MatchString(decoded) {
		ev.Add(models.Warn("Email in Query", "Query carries an email address, typical of targeted phishing links", 10))
	}
	if strings.Contains(strings.ToLower(decoded), "base64,") || strings.Contains(strings.ToLower(decoded), "data:") {
		ev.Add(models.Warn("Inline Data in Query", "Query embeds a data URI", 10))
	}

	return ev
}
