package heuristics

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"verdict-lab/internal/domain/models"
)

// ports associated with backdoors, IRC botnets and remote shells
var riskyPorts = map[int]string{
	21:    "FTP",
	23:    "Telnet",
	1337:  "backdoor",
	4444:  "Metasploit listener",
	5555:  "Android debug bridge",
	6667:  "IRC",
	6697:  "IRC",
	31337: "backdoor",
}

// EvaluatePort flags explicit ports that do not match the scheme
func (s *Suite) EvaluatePort(u *url.URL) models.Evaluation {
	var ev models.Evaluation
	raw := u.Port()
	if raw == "" {
		return ev
	}

	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		ev.Add(models.Fail("Invalid Port", fmt.Sprintf("Port %q is out of range", raw), 15))
		return ev
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case (scheme == "https" && port == 443) || (scheme == "http" && port == 80):
		ev.Add(models.Pass("Standard Port", fmt.Sprintf("Explicit default port %d", port), 0))
	case scheme == "https" && port == 80, scheme == "http" && port == 443:
		ev.Add(models.Warn("Protocol Port Mismatch", fmt.Sprintf("%s on port %d", scheme, port), 10))
	case riskyPorts[port] != "":
		ev.Add(models.Fail("Suspicious Port", fmt.Sprintf("Port %d is commonly used for %s", port, riskyPorts[port]), 20))
	default:
		ev.Add(models.Warn("Non-Standard Port", fmt.Sprintf("Web traffic on port %d", port), 10))
	}
	return ev
}
