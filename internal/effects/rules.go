package effects

import (
	"strings"

	"github.com/KirkDiggler/rpg-muncher/internal/entities"
)

// Matcher decides whether a rule applies to a document name
type Matcher func(name string) bool

// Prefix matches names starting with prefix
func Prefix(prefix string) Matcher {
	return func(name string) bool { return strings.HasPrefix(name, prefix) }
}

// Exact matches one name
func Exact(want string) Matcher {
	return func(name string) bool { return name == want }
}

// Builder adds effects to item. owner is the entity holding item and may be
// read but not modified. A builder returns an error when item lacks the shape
// it needs; the caller then discards its partial work.
type Builder func(owner, item *entities.Entity) error

// Rule pairs a name predicate with the builder it selects
type Rule struct {
	Name  string
	Match Matcher
	Build Builder
}

// Dispatch runs the first rule matching item.Name. It reports the rule that
// ran, or nil when none matched.
func Dispatch(rules []Rule, owner, item *entities.Entity) (*Rule, error) {
	for i := range rules {
		if rules[i].Match(item.Name) {
			return &rules[i], rules[i].Build(owner, item)
		}
	}
	return nil, nil
}
