package catalog

import "strings"

// compatibilityRule excludes styles from dinners matched by keyword.
type compatibilityRule struct {
	dinnerKeywords []string
	excludedStyles []string
}

var compatibilityRules = []compatibilityRule{
	{
		dinnerKeywords: []string{"champagne", "샴페인", "feast", "축제", "피스트"},
		excludedStyles: []string{"simple", "심플"},
	},
}

func containsAny(s string, keywords []string) bool {
	n := compact(s)
	for _, k := range keywords {
		if strings.Contains(n, compact(k)) {
			return true
		}
	}
	return false
}

// IsStyleCompatible reports whether a style may be served with a dinner.
func IsStyleCompatible(dinnerName, styleName string) bool {
	for _, r := range compatibilityRules {
		if containsAny(dinnerName, r.dinnerKeywords) && containsAny(styleName, r.excludedStyles) {
			return false
		}
	}
	return true
}
