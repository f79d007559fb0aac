package auth

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password the hash accepts, in bytes.
const MaxPasswordBytes = 72

// SpecialCharacters are the symbols accepted by the special character rule.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// Policy rule identifiers, in evaluation order.
const (
	RuleMinLength = "min_length"
	RuleUppercase = "uppercase"
	RuleLowercase = "lowercase"
	RuleDigit     = "digit"
	RuleSpecial   = "special"
	RuleMaxLength = "max_length"
)

// PolicyViolation names the first password rule that failed.
type PolicyViolation struct {
	Rule    string
	Message string
}

func (v *PolicyViolation) Error() string {
	return v.Message
}

// Is makes a violation match common.ErrWeakPassword (and through it
// common.ErrValidation).
func (v *PolicyViolation) Is(target error) bool {
	return target == common.ErrWeakPassword || target == common.ErrValidation
}

type rule struct {
	name    string
	message string
	ok      func(p string) bool
}

var rules = []rule{
	{RuleMinLength, "Password must be at least 8 characters", func(p string) bool {
		return utf8.RuneCountInString(p) >= MinPasswordLength
	}},
	{RuleUppercase, "Password must contain at least one uppercase letter", func(p string) bool {
		return strings.ContainsFunc(p, func(r rune) bool { return r >= 'A' && r <= 'Z' })
	}},
	{RuleLowercase, "Password must contain at least one lowercase letter", func(p string) bool {
		return strings.ContainsFunc(p, func(r rune) bool { return r >= 'a' && r <= 'z' })
	}},
	{RuleDigit, "Password must contain at least one digit", func(p string) bool {
		return strings.ContainsFunc(p, func(r rune) bool { return r >= '0' && r <= '9' })
	}},
	{RuleSpecial, "Password must contain at least one special character", func(p string) bool {
		return strings.ContainsAny(p, SpecialCharacters)
	}},
	{RuleMaxLength, "Password must be at most 72 bytes long", func(p string) bool {
		return len(p) <= MaxPasswordBytes
	}},
}

// ValidatePassword checks p against the password rules in order and returns
// the first violation, or nil when p is acceptable.
func ValidatePassword(p string) error {
	for _, r := range rules {
		if !r.ok(p) {
			return &PolicyViolation{Rule: r.name, Message: r.message}
		}
	}
	return nil
}
