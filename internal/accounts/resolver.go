package accounts

import (
	"fmt"
	"regexp"
	"strings"
)

// NotTracked is the key returned for accounts that are recognized but
// deliberately left out of the import (checking, savings).
const NotTracked = "not_a_cc"

// UnclassifiedAccountError is returned when no rule matches a token.
// A new institution or card needs a new rule.
type UnclassifiedAccountError struct {
	Token string
}

func (e *UnclassifiedAccountError) Error() string {
	return fmt.Sprintf("unable to classify account %q: no rule matches", e.Token)
}

// Rule maps tokens matching Pattern to Account. An excluding rule maps
// to NotTracked.
type Rule struct {
	Pattern string
	Account string
	re      *regexp.Regexp
}

// NewRule compiles a rule. Patterns are anchored at the start of the
// token; add a trailing $ to also anchor the end.
func NewRule(pattern, account string) (Rule, error) {
	if account == "" {
		return Rule{}, fmt.Errorf("rule %q: empty account", pattern)
	}
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", pattern, err)
	}
	return Rule{Pattern: pattern, Account: account, re: re}, nil
}

// ExcludeRule compiles a rule whose matches are NotTracked.
func ExcludeRule(pattern string) (Rule, error) {
	return NewRule(pattern, NotTracked)
}

// Excludes reports whether the rule drops matching accounts.
func (r Rule) Excludes() bool { return r.Account == NotTracked }

func (r Rule) matches(token string) bool {
	return r.re != nil && r.re.MatchString(token)
}

// Resolver maps raw account tokens (a cell value or a file path) to
// stable account keys. Rules are evaluated in order; the first match wins.
type Resolver struct {
	rules []Rule
}

// NewResolver returns a Resolver over rules. Rules must come from NewRule
// or ExcludeRule.
func NewResolver(rules []Rule) (*Resolver, error) {
	for i, r := range rules {
		if r.re == nil {
			return nil, fmt.Errorf("rule %d (%q) is not compiled", i, r.Pattern)
		}
	}
	return &Resolver{rules: rules}, nil
}

// Rules returns the ordered rule table.
func (r *Resolver) Rules() []Rule {
	return r.rules
}

// Resolve returns the account key for token, NotTracked, or an
// *UnclassifiedAccountError. Matching is case-insensitive.
func (r *Resolver) Resolve(token string) (string, error) {
	lowered := strings.ToLower(token)
	for _, rule := range r.rules {
		if rule.matches(lowered) {
			return rule.Account, nil
		}
	}
	return "", &UnclassifiedAccountError{Token: token}
}
