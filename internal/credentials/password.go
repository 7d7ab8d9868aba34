// Package credentials holds password hashing and the rules applied to
// usernames and passwords at registration.
package credentials

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yukikurage/growmap/internal/constants"
)

// SymbolSet is the punctuation accepted by RequireSymbol in the default policy.
const SymbolSet = "!@#$%^&*()_+-=[]{};:,.<>?/\\|~`"

// SQLLikePatterns are regular expressions for SQL-keyword-like fragments that
// a password may not contain. Matching is case-insensitive.
var SQLLikePatterns = []string{
	`select`,
	`union`,
	`insert`,
	`update`,
	`delete`,
	`drop`,
	`--`,
	`/\*`,
	`['"]\s*(or|and)\b`,
}

// Rule checks a single password property. It returns an empty string when
// the password passes.
type Rule interface {
	Check(password string) string
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(password string) string

func (f RuleFunc) Check(password string) string {
	return f(password)
}

// MinLength requires at least n characters (not bytes).
func MinLength(n int) Rule {
	return RuleFunc(func(password string) string {
		if utf8.RuneCountInString(password) < n {
			return fmt.Sprintf("password must be at least %d characters", n)
		}
		return ""
	})
}

var (
	letterPattern = regexp.MustCompile(`\pL`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

func RequireLetter() Rule {
	return RuleFunc(func(password string) string {
		if !letterPattern.MatchString(password) {
			return "password must contain at least one letter"
		}
		return ""
	})
}

func RequireDigit() Rule {
	return RuleFunc(func(password string) string {
		if !digitPattern.MatchString(password) {
			return "password must contain at least one digit"
		}
		return ""
	})
}

// RequireSymbol requires at least one character from symbols.
func RequireSymbol(symbols string) Rule {
	re := regexp.MustCompile(charClass(symbols))
	return RuleFunc(func(password string) string {
		if !re.MatchString(password) {
			return "password must contain at least one special character"
		}
		return ""
	})
}

// charClass builds a bracket expression matching any rune of set. Every
// ASCII punctuation rune is escaped so '-' and ']' stay literal.
func charClass(set string) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, r := range set {
		if r < utf8.RuneSelf && (unicode.IsPunct(r) || unicode.IsSymbol(r)) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte(']')
	return b.String()
}

// ForbidPatterns rejects passwords matching any of the given expressions.
func ForbidPatterns(patterns ...string) Rule {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+p))
	}
	return RuleFunc(func(password string) string {
		for _, re := range compiled {
			if re.MatchString(password) {
				return "password contains forbidden sequences"
			}
		}
		return ""
	})
}

// PasswordPolicy is an ordered list of rules.
type PasswordPolicy struct {
	Rules []Rule
}

// DefaultPasswordPolicy is the policy applied at registration.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		Rules: []Rule{
			MinLength(constants.MinPasswordLength),
			RequireLetter(),
			RequireDigit(),
			RequireSymbol(SymbolSet),
			ForbidPatterns(SQLLikePatterns...),
		},
	}
}

// Validate returns every violated rule message, in rule order.
func (p PasswordPolicy) Validate(password string) []string {
	var violations []string
	for _, rule := range p.Rules {
		if msg := rule.Check(password); msg != "" {
			violations = append(violations, msg)
		}
	}
	return violations
}

// ErrWeakPassword is the kind of every rejection by a PasswordPolicy.
var ErrWeakPassword = errors.New("password does not meet requirements")
