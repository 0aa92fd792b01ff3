// Package quota decides whether an upstream failure represents credential
// exhaustion (billing/quota/rate-limit) as opposed to a generic, transient
// error that should not trigger a credential cooldown.
package quota

import (
	"regexp"
	"strings"
)

// quotaPattern matches body text that indicates the upstream credential has
// run out of quota, credits, or rate-limit budget.
var quotaPattern = regexp.MustCompile(`insufficient|quota|exceeded|credits|balance|billing|limit.*reached|rate.*limit|overloaded|capacity`)

var quotaStatusCodes = map[int]bool{
	402: true,
	403: true,
	429: true,
}

// IsQuotaError reports whether status/bodyText together indicate a
// quota/billing exhaustion rather than a generic upstream error.
func IsQuotaError(status int, bodyText string) bool {
	if !quotaStatusCodes[status] {
		return false
	}
	return quotaPattern.MatchString(strings.ToLower(bodyText))
}
