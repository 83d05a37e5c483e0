package fqdn

import (
	"regexp"
	"strings"
)

const wildcardPrefix = "*."

// singleLabel matches at most one extra subdomain label, so *.example.com
// covers example.com and www.example.com but not a.b.example.com.
const singleLabel = `([A-Za-z0-9_-]+\.)?`

// Wildcard returns the wildcard certificate name covering domain and its
// immediate subdomains.
func Wildcard(domain string) string {
	return wildcardPrefix + domain
}

// MatchesWildcard reports whether pattern, optionally starting with "*.",
// covers candidate using wildcard certificate rules.
func MatchesWildcard(pattern, candidate string) bool {
	if pattern == "" || candidate == "" {
		return false
	}
	re, err := regexp.Compile(wildcardExpr(strings.ToLower(pattern)))
	if err != nil {
		return false
	}
	return re.MatchString(strings.ToLower(candidate))
}

func wildcardExpr(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	if rest, ok := strings.CutPrefix(pattern, wildcardPrefix); ok {
		b.WriteString(singleLabel)
		pattern = rest
	}
	b.WriteString(regexp.QuoteMeta(pattern))
	b.WriteString("$")
	return b.String()
}
