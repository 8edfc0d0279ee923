package auth

import (
	"strings"
	"unicode"
)

// PasswordResult is the outcome of validating a candidate password.
// Errors block acceptance; Suggestions are advisory and only surfaced
// when the password is otherwise valid, since the UI shows one list
// at a time and errors take priority.
type PasswordResult struct {
	Valid       bool     `json:"valid"`
	Score       int      `json:"score"`
	Errors      []string `json:"errors"`
	Suggestions []string `json:"suggestions,omitempty"`
}

const (
	passingScore = 60
	blockedScore = 40 // ceiling when any blocking error is present
	weakScore    = 10 // ceiling for blocklisted or patterned passwords
	softCapScore = 60 // ceiling for repetition / low-variety suggestions
)

// commonPasswords is the case-insensitive blocklist. Deliberately
// short: it exists to stop the handful of passwords that dominate
// credential-stuffing lists, not to replace a breach corpus.
var commonPasswords = map[string]bool{
	"password":    true,
	"password1":   true,
	"password123": true,
	"123456":      true,
	"1234567":     true,
	"12345678":    true,
	"123456789":   true,
	"1234567890":  true,
	"qwerty":      true,
	"qwerty123":   true,
	"abc123":      true,
	"letmein":     true,
	"welcome":     true,
	"welcome1":    true,
	"admin":       true,
	"iloveyou":    true,
	"monkey":      true,
	"dragon":      true,
	"sunshine":    true,
	"princess":    true,
	"football":    true,
	"baseball":    true,
	"trustno1":    true,
	"embervale":   true,
}

// keyboardRuns are adjacency sequences that show up constantly in
// weak passwords. Matched case-insensitively as substrings.
var keyboardRuns = []string{"qwerty", "qwertz", "azerty", "asdfgh", "zxcvbn", "12345", "09876"}

// ValidatePassword scores a candidate password against the account
// policy. Pure and deterministic: the same input always produces the
// same result, so it is safe to run on both client echo and server.
func ValidatePassword(password string) PasswordResult {
	var (
		errs        []string
		suggestions []string
		score       int
		hardCap     = 100
	)

	// Length.
	switch n := len(password); {
	case n < 8:
		errs = append(errs, "must be at least 8 characters long")
	case n < 12:
		score += 10
		suggestions = append(suggestions, "use 12 or more characters for a stronger password")
	default:
		score += 25
	}

	// Character classes.
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if hasUpper {
		score += 15
	} else {
		errs = append(errs, "must contain an uppercase letter")
	}
	if hasLower {
		score += 15
	} else {
		errs = append(errs, "must contain a lowercase letter")
	}
	if hasDigit {
		score += 15
	} else {
		errs = append(errs, "must contain a number")
	}
	if hasSpecial {
		score += 15
	} else {
		errs = append(errs, "must contain a special character")
	}

	lower := strings.ToLower(password)

	// Blocklist and structural patterns cap the score hard: no amount
	// of character-class variety rescues "Qwerty123!".
	if commonPasswords[lower] {
		errs = append(errs, "is a commonly used password")
		hardCap = weakScore
	}
	if pat := weakPattern(lower); pat != "" {
		errs = append(errs, pat)
		hardCap = weakScore
	}

	// Advisory checks: repetition and low variety do not block, but
	// they keep the score out of the top band.
	if hasRepeatedRun(password) {
		suggestions = append(suggestions, "avoid repeating the same sequence of characters")
		if hardCap > softCapScore {
			hardCap = softCapScore
		}
	}
	if varietyRatio(password) < 0.5 {
		suggestions = append(suggestions, "use a wider variety of characters")
		if hardCap > softCapScore {
			hardCap = softCapScore
		}
	} else if varietyRatio(password) >= 0.7 {
		score += 15
	}

	if len(errs) > 0 && hardCap > blockedScore {
		hardCap = blockedScore
	}
	if score > hardCap {
		score = hardCap
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	res := PasswordResult{
		Valid:  len(errs) == 0,
		Score:  score,
		Errors: errs,
	}
	if res.Valid {
		res.Suggestions = suggestions
	}
	return res
}

// weakPattern reports the structural weakness of the whole password,
// or "" when none applies. Checks run on the lower-cased input.
func weakPattern(lower string) string {
	if len(lower) == 0 {
		return ""
	}
	same := true
	for i := 1; i < len(lower); i++ {
		if lower[i] != lower[0] {
			same = false
			break
		}
	}
	if same {
		return "uses a single repeated character"
	}

	if len(lower) >= 4 {
		ascending := true
		for i := 1; i < len(lower); i++ {
			if lower[i] != lower[i-1]+1 {
				ascending = false
				break
			}
		}
		if ascending {
			return "is an ascending character sequence"
		}
	}

	for _, run := range keyboardRuns {
		if strings.Contains(lower, run) {
			return "contains a keyboard sequence"
		}
	}
	return ""
}

// hasRepeatedRun reports whether the password contains a substring of
// length >= 3 immediately followed by an identical copy of itself.
func hasRepeatedRun(s string) bool {
	for n := 3; n*2 <= len(s); n++ {
		for i := 0; i+2*n <= len(s); i++ {
			if s[i:i+n] == s[i+n:i+2*n] {
				return true
			}
		}
	}
	return false
}

// varietyRatio is unique characters divided by total length.
func varietyRatio(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	seen := map[rune]bool{}
	total := 0
	for _, r := range s {
		seen[r] = true
		total++
	}
	return float64(len(seen)) / float64(total)
}
