package urlutil

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Canonicalize lowercases scheme/host, drops fragments and tracking
// parameters, and sorts the query so equal listings reachable through
// decorated URLs compare equal.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" || lk == "ref" || lk == "src" {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Hash returns a short stable hex digest, used for derived identifiers.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

// SameDomain reports whether candidate belongs to the organization's
// domain: the host itself or any subdomain of it.
func SameDomain(rootHost, candidateHost string) bool {
	rootHost = normalizeHost(rootHost)
	candidateHost = normalizeHost(candidateHost)
	if rootHost == "" || candidateHost == "" {
		return false
	}
	if rootHost == candidateHost {
		return true
	}
	return strings.HasSuffix(candidateHost, "."+rootHost) ||
		strings.HasSuffix(rootHost, "."+candidateHost)
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimPrefix(h, "www.")
}

// Resolve makes href absolute against base. Returns "" for unusable links
// (mailto:, javascript:, empty, unparsable).
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
