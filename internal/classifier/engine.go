// Package classifier assigns a category and access level to a document from
// its storage path and filename, and extracts community and owner metadata.
package classifier

import (
	"strings"

	"github.com/timmy/docclass/internal/domain"
)

// Rule maps path and name patterns to a category and access level.
// Path patterns are tested first; name patterns are tested only when no path
// pattern matched.
type Rule struct {
	Category     string
	AccessLevel  domain.AccessLevel
	PathPatterns []Pattern
	NamePatterns []Pattern
}

// Matches reports whether the lower-cased path or name satisfies the rule.
func (r Rule) Matches(path, name string) bool {
	if matchAny(r.PathPatterns, path) {
		return true
	}
	return matchAny(r.NamePatterns, name)
}

// Engine holds an ordered, immutable rule list. The first matching rule wins.
// An Engine is safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over rules in the given order.
// Parameters:
//   - rules: ordered rules; earlier rules take precedence.
// Returns:
//   - *Engine: engine holding a private copy of rules.
func NewEngine(rules []Rule) *Engine {
	owned := make([]Rule, len(rules))
	copy(owned, rules)
	return &Engine{rules: owned}
}

// NewDefaultEngine creates an engine over DefaultRules.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRules())
}

// Classify returns the category and access level of the first rule matching
// path or name. Unmatched input falls back to uncategorized/staff_only.
// Parameters:
//   - path: storage path, may be empty.
//   - name: filename, may be empty.
// Returns:
//   - string: category tag.
//   - domain.AccessLevel: access level pinned by the rule.
func (e *Engine) Classify(path, name string) (string, domain.AccessLevel) {
	pathLower := strings.ToLower(path)
	nameLower := strings.ToLower(name)

	for _, rule := range e.rules {
		if rule.Matches(pathLower, nameLower) {
			return rule.Category, rule.AccessLevel
		}
	}
	return domain.CategoryUncategorized, domain.AccessStaffOnly
}

// Rules returns a copy of the rule list in precedence order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Len returns the number of rules.
func (e *Engine) Len() int {
	return len(e.rules)
}
