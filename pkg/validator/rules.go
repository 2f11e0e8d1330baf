package validator

// MinPasswordLength is the shortest password accepted as strong.
const MinPasswordLength = 8

// PasswordSpecials is the fixed set of characters that count as "special".
const PasswordSpecials = "!@#$%^&*"

// IsStrongPassword reports whether pw has at least MinPasswordLength bytes and
// contains an ASCII uppercase letter, a lowercase letter, a digit and one of
// PasswordSpecials. Other characters are allowed and there is no upper bound.
func IsStrongPassword(pw string) bool {
	if len(pw) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for i := 0; i < len(pw); i++ {
		c := pw[i]
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case isSpecial(c):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

func isSpecial(c byte) bool {
	for i := 0; i < len(PasswordSpecials); i++ {
		if PasswordSpecials[i] == c {
			return true
		}
	}
	return false
}

// IsDigits reports whether s consists only of 0-9. The empty string counts,
// so a phone field can be cleared.
func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LooksLikeEmail is a presentation hint only; submission never depends on it.
func LooksLikeEmail(s string) bool {
	if s == "" {
		return false
	}
	return Engine().Var(s, "email") == nil
}
