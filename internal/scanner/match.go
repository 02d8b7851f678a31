package scanner

import (
	"strings"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// WatchTargets returns the distinct watch addresses of companies in input
// order. Companies without a contact email are skipped.
func WatchTargets(companies []domain.Company) []string {
	seen := make(map[string]struct{}, len(companies))
	targets := make([]string, 0, len(companies))
	for i := range companies {
		addr := companies[i].WatchAddress()
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		targets = append(targets, addr)
	}
	return targets
}

// BuildQuery ORs a sender clause per address so one search covers every company.
func BuildQuery(addresses []string) string {
	clauses := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		clauses = append(clauses, "from:"+addr)
	}
	return strings.Join(clauses, " OR ")
}

// containsCaseInsensitive is the sender heuristic: From headers carry display
// names, so a watch address only has to appear somewhere inside the header.
func containsCaseInsensitive(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// MatchCompany returns the first company, in input order, whose watch address
// appears in the From header. Overlapping addresses resolve to whichever
// company comes first.
func MatchCompany(from string, companies []domain.Company) (domain.Company, bool) {
	for i := range companies {
		addr := companies[i].WatchAddress()
		if addr == "" {
			continue
		}
		if containsCaseInsensitive(from, addr) {
			return companies[i], true
		}
	}
	return domain.Company{}, false
}

// IsAlreadyNotified reports whether subject appears in any of the given
// notification messages.
func IsAlreadyNotified(subject string, messages []string) bool {
	if subject == "" {
		return false
	}
	for _, m := range messages {
		if strings.Contains(m, subject) {
			return true
		}
	}
	return false
}

// HeaderValue returns the first header value whose name matches, ignoring case.
func HeaderValue(headers []Header, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
