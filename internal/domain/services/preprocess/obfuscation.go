package preprocess

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"verdict-lab/internal/domain/models"
)

var (
	percentEscape  = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)
	unicodeEscape  = regexp.MustCompile(`\\u[0-9A-Fa-f]{4}|\\x[0-9A-Fa-f]{2}`)
	base64Payload  = regexp.MustCompile(`^[A-Za-z0-9+/_-]{16,}={0,2}$`)
	decimalIP      = regexp.MustCompile(`^\d{8,10}$`)
	hexIP          = regexp.MustCompile(`^0[xX][0-9A-Fa-f]{1,8}$`)
	dottedIPOctets = regexp.MustCompile(`^(0[xX][0-9A-Fa-f]+|0[0-7]*|[1-9]\d*)(\.(0[xX][0-9A-Fa-f]+|0[0-7]*|[1-9]\d*)){3}$`)
)

// technique is one detected obfuscation method
type technique struct {
	weight   int
	evidence models.HeuristicResult
}

// AnalyzeObfuscation detects and decodes encoding tricks. The decoded
// content always holds the best-effort decoding; callers decide whether to
// use it based on the level.
func (p *Preprocessor) AnalyzeObfuscation(s string) models.ObfuscationResult {
	var found []technique
	decoded := s

	if next, ok := decodeBase64(decoded); ok {
		found = append(found, technique{3, models.Fail(
			"Base64 Encoded Payload",
			"Input is a base64 encoded string that decodes to a network indicator",
			20,
		)})
		decoded = next
	}

	if n := len(percentEscape.FindAllString(decoded, -1)); n > 0 {
		next, rounds := unescapeRepeated(decoded)
		if rounds > 1 {
			found = append(found, technique{2, models.Fail(
				"Double URL Encoding",
				fmt.Sprintf("Input is percent-encoded %d times over", rounds),
				15,
			)})
		} else {
			found = append(found, technique{1, models.Warn(
				"URL Encoding",
				fmt.Sprintf("Input contains %d percent-encoded characters", n),
				5,
			)})
		}
		decoded = next
	}

	if unicodeEscape.MatchString(decoded) {
		found = append(found, technique{2, models.Warn(
			"Escape Sequences",
			"Input contains \\u or \\x escape sequences",
			10,
		)})
		decoded = unescapeSequences(decoded)
	}

	if host, rest, ok := splitHost(decoded); ok {
		if ip, ok := decodeNumericIP(host); ok {
			found = append(found, technique{3, models.Fail(
				"Encoded IP Address",
				fmt.Sprintf("Host %q is a numeric encoding of %s", host, ip),
				20,
			)})
			decoded = strings.Replace(decoded, host+rest, ip+rest, 1)
		}
	}

	weight := 0
	heuristics := make([]models.HeuristicResult, 0, len(found))
	for _, t := range found {
		weight += t.weight
		heuristics = append(heuristics, t.evidence)
	}

	return models.ObfuscationResult{
		Level:          levelFor(weight),
		DecodedContent: decoded,
		Heuristics:     heuristics,
	}
}

func levelFor(weight int) models.ObfuscationLevel {
	switch {
	case weight >= 3:
		return models.ObfuscationHigh
	case weight == 2:
		return models.ObfuscationMedium
	case weight == 1:
		return models.ObfuscationLow
	default:
		return models.ObfuscationNone
	}
}

// decodeBase64 decodes s when it is a base64 string of printable text that
// looks like a host or URL
func decodeBase64(s string) (string, bool) {
	if !base64Payload.MatchString(s) {
		return "", false
	}
	encodings := []*base64.Encoding{
		base64.StdEncoding, base64.URLEncoding,
		base64.RawStdEncoding, base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		b, err := enc.DecodeString(s)
		if err != nil || !utf8.Valid(b) {
			continue
		}
		text := strings.TrimSpace(string(b))
		if text == "" || !strings.Contains(text, ".") || !printable(text) {
			continue
		}
		return text, true
	}
	return "", false
}

func printable(s string) bool {
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// unescapeRepeated percent-decodes until stable (at most 3 rounds) and
// reports how many rounds changed the string
func unescapeRepeated(s string) (string, int) {
	rounds := 0
	for range 3 {
		next, err := url.PathUnescape(s)
		if err != nil || next == s {
			break
		}
		s = next
		rounds++
	}
	return s, rounds
}

// unescapeSequences decodes \uXXXX and \xXX sequences
func unescapeSequences(s string) string {
	return unicodeEscape.ReplaceAllStringFunc(s, func(m string) string {
		v, err := strconv.ParseUint(m[2:], 16, 32)
		if err != nil {
			return m
		}
		return string(rune(v))
	})
}

// splitHost returns the host part of a bare host or URL and whatever follows it
func splitHost(s string) (host, rest string, ok bool) {
	body := s
	if i := strings.Index(body, "://"); i >= 0 {
		body = body[i+3:]
	}
	if i := strings.LastIndex(body[:indexAny(body, "/?#")], "@"); i >= 0 {
		body = body[i+1:]
	}
	end := indexAny(body, ":/?#")
	host, rest = body[:end], body[end:]
	return host, rest, host != ""
}

func indexAny(s, chars string) int {
	if i := strings.IndexAny(s, chars); i >= 0 {
		return i
	}
	return len(s)
}

// decodeNumericIP converts decimal, hex and octal IPv4 notations to dotted
// quad form. Plain dotted decimal addresses are not reported.
func decodeNumericIP(host string) (string, bool) {
	switch {
	case decimalIP.MatchString(host):
		v, err := strconv.ParseUint(host, 10, 32)
		if err != nil {
			return "", false
		}
		return dotted(uint32(v)), true

	case hexIP.MatchString(host):
		v, err := strconv.ParseUint(host[2:], 16, 32)
		if err != nil {
			return "", false
		}
		return dotted(uint32(v)), true

	case dottedIPOctets.MatchString(host):
		parts := strings.Split(host, ".")
		encoded := false
		var octets [4]uint64
		for i, part := range parts {
			v, err := strconv.ParseUint(part, 0, 8)
			if err != nil {
				return "", false
			}
			octets[i] = v
			if len(part) > 1 && part[0] == '0' {
				encoded = true
			}
		}
		if !encoded {
			return "", false
		}
		return fmt.Sprintf("%d.%d.%d.%d", octets[0], octets[1], octets[2], octets[3]), true
	}
	return "", false
}

func dotted(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", v>>24, v>>16&0xff, v>>8&0xff, v&0xff)
}
