package feed

import (
	"fmt"
	"regexp"
)

// Built-in discard patterns, used for any category a source config does not
// override. Rules are case-insensitive regular expressions; plain keywords
// work as literal substring rules.

var defaultMarketingPatterns = []string{
	`launching\s+soon`,
	`early\s+access`,
	`limited\s+time`,
	`\d+%\s+off`,
	`buy\s+now`,
	`shop\s+now`,
	`link\s+in\s+bio`,
	`follow\s+for\s+more`,
	`dm\s+me`,
	`subscribe\s+now`,
}

var defaultSelfImprovementPatterns = []string{
	`morning routine`,
	`productivity hack`,
	`life coach`,
	`mindset`,
	`grindset`,
	`hustle`,
	`10x`,
	`growth mindset`,
	`affirmation`,
	`manifest`,
	`self-care`,
	`wellness tips`,
	`habit tracker`,
}

var defaultSpamPatterns = []string{
	`free\s+(?:money|crypto|btc|eth)`,
	`click\s+here`,
	`claim\s+now`,
	`giveaway`,
	`contest\s+alert`,
}

var defaultLowQualityPatterns = []string{
	`^rt\s+`,
	`^\s*\.\s*$`,
	`^wow$`,
	`^amazing$`,
	`^incredible$`,
	`^this\.$`,
}

// DefaultPatterns returns the built-in rule lists keyed by category name,
// in the shape used by source config overrides.
func DefaultPatterns() map[string][]string {
	return map[string][]string{
		string(ReasonMarketing):       defaultMarketingPatterns,
		string(ReasonSelfImprovement): defaultSelfImprovementPatterns,
		string(ReasonSpam):            defaultSpamPatterns,
		string(ReasonLowQuality):      defaultLowQualityPatterns,
	}
}

// PatternStore holds the compiled discard rules for one run. Immutable after
// construction, so it is safe to share across items without locking.
type PatternStore struct {
	sets map[Reason][]*regexp.Regexp
}

// NewPatternStore compiles the built-in rules merged with the given
// overrides. An overridden category replaces the default list entirely; an
// absent category keeps the defaults, so baseline spam protection is never
// silently disabled. Unknown category names and rules that fail to compile
// are ConfigErrors.
func NewPatternStore(overrides map[string][]string) (*PatternStore, error) {
	valid := map[string]Reason{
		string(ReasonMarketing):       ReasonMarketing,
		string(ReasonSelfImprovement): ReasonSelfImprovement,
		string(ReasonSpam):            ReasonSpam,
		string(ReasonLowQuality):      ReasonLowQuality,
	}

	for name := range overrides {
		if _, ok := valid[name]; !ok {
			return nil, &ConfigError{Category: name, Err: fmt.Errorf("unknown pattern category")}
		}
	}

	rules := DefaultPatterns()
	for name, patterns := range overrides {
		rules[name] = patterns
	}

	store := &PatternStore{sets: make(map[Reason][]*regexp.Regexp, len(rules))}
	for name, patterns := range rules {
		category := valid[name]
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, pattern := range patterns {
			re, err := regexp.Compile(`(?i)` + pattern)
			if err != nil {
				return nil, &ConfigError{Category: name, Rule: pattern, Err: err}
			}
			compiled = append(compiled, re)
		}
		store.sets[category] = compiled
	}

	return store, nil
}

// Match tests text against each category in fixed precedence order and
// returns the first category with a matching rule. Rule order within a
// category does not matter: matching is a union.
func (s *PatternStore) Match(text string) (Reason, bool) {
	for _, category := range PatternReasons {
		for _, re := range s.sets[category] {
			if re.MatchString(text) {
				return category, true
			}
		}
	}
	return ReasonNone, false
}

// RuleCount reports how many rules are loaded for a category.
func (s *PatternStore) RuleCount(category Reason) int {
	return len(s.sets[category])
}
