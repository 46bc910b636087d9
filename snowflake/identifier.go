package snowflake

import (
	"fmt"
	"regexp"
	"strings"

	om "github.com/cevaris/ordered_map"

	"github.com/bricklake/bricksync/constants"
)

var (
	regexpBadIdentifierChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	regexpRepeatedUnderscore = regexp.MustCompile(`_+`)
	regexpLeadingDigit       = regexp.MustCompile(`^[0-9]`)
)

// SanitizeIdentifier rewrites an arbitrary string into a safe unquoted
// Snowflake identifier. The result is deterministic so the same input always
// maps to the same schema or column name.
func SanitizeIdentifier(s string) string {
	s = regexpBadIdentifierChars.ReplaceAllString(s, "_")
	s = regexpRepeatedUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return constants.SanitisedIdentifierFallback
	}
	if regexpLeadingDigit.MatchString(s) { // if the identifier starts with a digit...
		s = "r_" + s
	}
	return s
}

// SanitizeColumns maps source field names to safe column names, preserving
// the source order. Collisions after sanitising get a numeric suffix so every
// source field keeps a distinct destination column. Keys are the sanitised
// column names, values the original source field names.
func SanitizeColumns(fields []string) *om.OrderedMap {
	retval := om.NewOrderedMap()
	seen := make(map[string]int)
	for _, field := range fields {
		name := SanitizeIdentifier(field)
		key := strings.ToLower(name)
		if n, ok := seen[key]; ok { // if the sanitised name collides...
			seen[key] = n + 1
			name = fmt.Sprintf("%v_%v", name, n+1)
		} else {
			seen[key] = 1
		}
		retval.Set(name, field)
	}
	return retval
}
