package heuristics

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/idna"

	"verdict-lab/internal/domain/models"
)

// scripts checked for homograph mixing inside a single label
var labelScripts = []struct {
	name  string
	table *unicode.RangeTable
}{
	{"Latin", unicode.Latin},
	{"Cyrillic", unicode.Cyrillic},
	{"Greek", unicode.Greek},
	{"Armenian", unicode.Armenian},
	{"Arabic", unicode.Arabic},
	{"Hebrew", unicode.Hebrew},
	{"Han", unicode.Han},
}

// EvaluateIDN inspects punycode and mixed-script labels
func (s *Suite) EvaluateIDN(host string) models.Evaluation {
	var ev models.Evaluation
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	unicodeHost, err := idna.Lookup.ToUnicode(host)
	if err != nil {
		ev.Add(models.Warn("Invalid IDN Encoding", fmt.Sprintf("Host does not follow IDNA rules: %v", err), 10))
		return ev
	}

	if !isInternationalized(host, unicodeHost) {
		ev.Add(models.Pass("Standard Character Set", "Host uses plain ASCII labels", 0))
		return ev
	}

	ev.Add(models.Warn(
		"Internationalized Domain",
		fmt.Sprintf("Host is an IDN that renders as %q", unicodeHost),
		10,
	))

	for _, label := range strings.Split(unicodeHost, ".") {
		if found := scriptsIn(label); len(found) > 1 {
			ev.Add(models.Fail(
				"Mixed Script Homograph",
				fmt.Sprintf("Label %q mixes %s characters", label, strings.Join(found, " and ")),
				30,
			))
			break
		}
	}

	return ev
}

func isInternationalized(host, unicodeHost string) bool {
	if strings.Contains(host, "xn--") {
		return true
	}
	for _, r := range unicodeHost {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

// scriptsIn lists the letter scripts used in label, in table order
func scriptsIn(label string) []string {
	var found []string
	for _, sc := range labelScripts {
		for _, r := range label {
			if unicode.Is(sc.table, r) {
				found = append(found, sc.name)
				break
			}
		}
	}
	return found
}
