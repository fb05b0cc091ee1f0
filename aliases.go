package expenses

import (
	"regexp"
	"sort"
)

// Merchant aliases clean up the names banks put on transactions. The raw
// name stays in the ledger, the alias only affects display, so re-imports
// keep matching the original and nothing is lost if an alias changes.

// LoadAliases reads the pattern to display-name map from
// merchant_aliases.json. A missing or unreadable file is an empty map.
func LoadAliases(cfg *Config) map[string]string {
	return loadJSONMap(cfg.AliasesFile())
}

// SaveAliases writes the pattern to display-name map.
func SaveAliases(cfg *Config, aliases map[string]string) error {
	return writeJSONFile(cfg, cfg.AliasesFile(), aliases)
}

// Aliaser rewrites raw merchant names to display names.
type Aliaser struct {
	rules []aliasRule
}

type aliasRule struct {
	pattern string
	re      *regexp.Regexp
	alias   string
}

// NewAliaser compiles the alias patterns. Patterns are regular expressions
// matched case-insensitively anywhere in the merchant name, for example
// `POS APPLE\.COM.*` for "POS APPLE.COM/BI 02/08 1". Invalid patterns are
// logged and skipped.
//
// When several patterns match a name the longest pattern wins: longer means
// more specific. Ties break on the pattern text to keep the result stable.
func NewAliaser(patterns map[string]string) *Aliaser {
	a := &Aliaser{rules: make([]aliasRule, 0, len(patterns))}
	for pattern, alias := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", pattern).Msg("skipping invalid merchant alias pattern")
			continue
		}
		a.rules = append(a.rules, aliasRule{pattern: pattern, re: re, alias: alias})
	}
	sort.Slice(a.rules, func(i, j int) bool {
		if len(a.rules[i].pattern) != len(a.rules[j].pattern) {
			return len(a.rules[i].pattern) > len(a.rules[j].pattern)
		}
		return a.rules[i].pattern < a.rules[j].pattern
	})
	return a
}

// Display returns the display name for a raw merchant name: the alias of the
// longest matching pattern, or the name unchanged.
func (a *Aliaser) Display(merchant string) string {
	for _, rule := range a.rules {
		if rule.re.MatchString(merchant) {
			return rule.alias
		}
	}
	return merchant
}
