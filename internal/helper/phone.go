package helper

import (
	"fmt"
	"regexp"
	"strings"
)

// WhatsApp user server suffix untuk nomor pribadi.
const UserServerSuffix = "@s.whatsapp.net"

var (
	validPhoneChars = regexp.MustCompile(`^[\d\s\+\-\(\)]+$`)
	nonDigits       = regexp.MustCompile(`[^\d]`)
)

// FormatPhoneNumber converts a raw recipient into a WhatsApp JID string.
// Heuristics: leading 0 is swapped for the default country code, bare
// national numbers get the country code prepended. The normalized number
// must end up with 10-15 digits.
func FormatPhoneNumber(phone, countryCode string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	if !validPhoneChars.MatchString(phone) {
		return "", fmt.Errorf("invalid phone number format: contains invalid characters")
	}

	// Hapus semua karakter kecuali digit
	cleaned := nonDigits.ReplaceAllString(phone, "")
	if cleaned == "" {
		return "", fmt.Errorf("phone number has no digits")
	}

	// Auto-convert 0xxx → <cc>xxx
	if strings.HasPrefix(cleaned, "0") {
		cleaned = countryCode + cleaned[1:]
	} else if countryCode != "" && !strings.HasPrefix(cleaned, countryCode) {
		cleaned = countryCode + cleaned
	}

	if len(cleaned) < 10 {
		return "", fmt.Errorf("phone number too short after normalization")
	}
	if len(cleaned) > 15 {
		return "", fmt.Errorf("invalid phone number length")
	}

	return cleaned + UserServerSuffix, nil
}

// BareNumber strips the JID suffix and any device part back to digits only.
func BareNumber(jid string) string {
	atSplit := strings.SplitN(jid, "@", 2)
	beforeAt := atSplit[0]
	colonSplit := strings.SplitN(beforeAt, ":", 2)
	return colonSplit[0]
}
