package util

import (
	"net/url"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// Personal mail providers; contacts on these are flagged during the
// validation pass so campaigns can prefer business addresses.
var personalMailDomains = map[string]bool{
	"gmail.com": true, "yahoo.com": true, "hotmail.com": true,
	"outlook.com": true, "aol.com": true, "icloud.com": true,
	"me.com": true, "live.com": true, "msn.com": true,
	"protonmail.com": true, "mail.com": true, "zoho.com": true,
}

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizePhone reduces a raw phone string to canonical digits, keeping a
// leading +. Returns "" when the result does not look like a phone number
// (7..15 digits).
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	digits := strings.TrimPrefix(s, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	return s
}

// NormalizeWebsite returns a well-formed absolute URL or "". A bare domain
// gets an https scheme prepended.
func NormalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	// a real site host has at least one dot (rules out "localhost" etc.)
	if !strings.Contains(u.Host, ".") {
		return ""
	}
	return u.String()
}

// NormalizeEmail lowercases and verifies basic shape; "" when malformed.
func NormalizeEmail(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || !emailRe.MatchString(raw) {
		return ""
	}
	return raw
}

// FirstEmail scans free text for the first email-shaped token.
func FirstEmail(text string) string {
	return strings.ToLower(emailRe.FindString(text))
}

// IsPersonalEmail reports whether the address uses a consumer mail
// provider rather than a business domain.
func IsPersonalEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	return personalMailDomains[email[at+1:]]
}

// LooksLikePhone is a cheap filter for free-text candidates before
// NormalizePhone does the strict pass.
func LooksLikePhone(text string) bool {
	n := 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			n++
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.' || r == '+':
		default:
			return false
		}
	}
	return n >= 7
}
