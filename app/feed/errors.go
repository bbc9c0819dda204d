package feed

import (
	"fmt"
)

// ConfigError reports a pattern or threshold configuration problem. It is
// fatal: the run aborts before any scoring happens.
type ConfigError struct {
	Category string
	Rule     string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("invalid configuration for category %q, rule %q: %v", e.Category, e.Rule, e.Err)
	}
	return fmt.Sprintf("invalid configuration for category %q: %v", e.Category, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed input item. It aborts the whole batch:
// silently skipping an item would corrupt the filter summary counts.
type ValidationError struct {
	ItemID string
	Field  string
}

func (e *ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("malformed item: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed item %s: invalid %s", e.ItemID, e.Field)
}
