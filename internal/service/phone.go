package service

import (
	"regexp"
	"strings"
)

var (
	// El selector de país del widget a veces deja "+54 Argentina" pegado al número.
	countryArtifact = regexp.MustCompile(`(?i)\+?\s*54\s*argentina`)
	nonDigit        = regexp.MustCompile(`[^0-9]`)
	localNumber     = regexp.MustCompile(`^\d{10,11}$`)
)

// cleanPhoneDigits is shared by DisplayPhone and WhatsAppPhone.
func cleanPhoneDigits(raw string) string {
	d := countryArtifact.ReplaceAllString(raw, "")
	d = nonDigit.ReplaceAllString(d, "")
	return strings.TrimPrefix(d, "00")
}

// DisplayPhone formats a phone for humans: "+54 " before a bare 10-11 digit
// local number, "+" before one that already carries 54.
func DisplayPhone(raw string) string {
	d := cleanPhoneDigits(raw)
	switch {
	case localNumber.MatchString(d) && !strings.HasPrefix(d, "54"):
		return "+54 " + d
	case strings.HasPrefix(d, "54"):
		return "+" + d
	default:
		return d
	}
}

// WhatsAppPhone returns the digits wa.me expects for an Argentine mobile (549...).
// It can disagree with DisplayPhone for short or foreign numbers.
func WhatsAppPhone(raw string) string {
	d := cleanPhoneDigits(raw)
	if d == "" {
		return ""
	}
	if !strings.HasPrefix(d, "54") {
		d = "54" + d
	}
	if !strings.HasPrefix(d, "549") {
		d = "549" + d[2:]
	}
	return d
}
