package policy

import (
	"bufio"
	"embed"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinLength is the smallest accepted password length in characters.
	MinLength = 8
	// MaxLength bounds input size before hashing.
	MaxLength = 128
	// MinClasses is the number of character classes a password must cover.
	MinClasses = 3
)

// Reason identifies why a password was rejected.
type Reason uint8

const (
	ReasonOK Reason = iota
	ReasonTooShort
	ReasonTooLong
	ReasonTooFewClasses
	ReasonCommonPassword
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonTooShort:
		return "password too short"
	case ReasonTooLong:
		return "password too long"
	case ReasonTooFewClasses:
		return "password needs more character variety"
	case ReasonCommonPassword:
		return "password is too common"
	default:
		return "unknown"
	}
}

//go:embed common_passwords.txt
var blocklistFS embed.FS

var blocklist map[string]struct{}

func init() {
	blocklist = make(map[string]struct{})
	// The blocklist is embedded; failing to read it is a build defect,
	// not a runtime condition, and must not silently disable the rule.
	file, err := blocklistFS.Open("common_passwords.txt")
	if err != nil {
		panic("policy: open embedded blocklist: " + err.Error())
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		entry := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if entry != "" {
			blocklist[entry] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		panic("policy: read embedded blocklist: " + err.Error())
	}
}

// Validate checks a candidate password. Rules apply in order; the first
// failure wins. Length is counted in characters, not bytes.
func Validate(password string) (bool, Reason) {
	length := utf8.RuneCountInString(password)
	if length < MinLength {
		return false, ReasonTooShort
	}
	if length > MaxLength {
		return false, ReasonTooLong
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
		if present {
			classes++
		}
	}
	if classes < MinClasses {
		return false, ReasonTooFewClasses
	}

	if _, blocked := blocklist[strings.ToLower(password)]; blocked {
		return false, ReasonCommonPassword
	}

	return true, ReasonOK
}
