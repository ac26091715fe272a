package auth

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

//go:embed common_passwords.txt
var commonPasswordList string

const (
	defaultMinPasswordLength = 8
	maxSimilarity            = 0.7
)

var attributeSplitter = regexp.MustCompile(`\W+`)

// PasswordPolicy rejects short, common, fully numeric passwords and ones too
// close to the user's own attributes.
type PasswordPolicy struct {
	MinLength int
	common    map[string]struct{}
}

func NewPasswordPolicy() *PasswordPolicy {
	common := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(commonPasswordList))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			common[strings.ToLower(line)] = struct{}{}
		}
	}

	return &PasswordPolicy{
		MinLength: defaultMinPasswordLength,
		common:    common,
	}
}

// UserAttribute is a value the password must not resemble. Label names it in
// the error message.
type UserAttribute struct {
	Label string
	Value string
}

// Validate returns one message per broken rule, nil when the password passes.
func (p *PasswordPolicy) Validate(password string, attrs ...UserAttribute) []string {
	var problems []string

	if len([]rune(password)) < p.MinLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", p.MinLength))
	}

	if label, ok := tooSimilar(password, attrs); ok {
		problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", label))
	}

	if _, ok := p.common[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}

	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	return problems
}

func tooSimilar(password string, attrs []UserAttribute) (string, bool) {
	pw := strings.ToLower(password)
	for _, attr := range attrs {
		value := strings.ToLower(attr.Value)
		if value == "" {
			continue
		}
		parts := append(attributeSplitter.Split(value, -1), value)
		for _, part := range parts {
			if part == "" || exceedsLengthRatio(pw, part) {
				continue
			}
			if quickRatio(pw, part) >= maxSimilarity {
				return attr.Label, true
			}
		}
	}
	return "", false
}

// exceedsLengthRatio skips attribute parts so much shorter than the password
// that no similarity above the threshold is possible.
func exceedsLengthRatio(password, value string) bool {
	pwLen := len([]rune(password))
	valueLen := len([]rune(value))
	bound := maxSimilarity / 2 * float64(pwLen)
	return pwLen >= 10*valueLen && float64(valueLen) < bound
}

// quickRatio is 2*M/T where M counts characters shared by a and b
// (with multiplicity) and T is their combined length.
func quickRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}

	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}

	matches := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
