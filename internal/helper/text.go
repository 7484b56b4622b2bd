package helper

import "strings"

// Panjang maksimum body yang diterima jaringan untuk pesan teks.
const MaxMessageLength = 4096

// NormalizeBody collapses runs of whitespace and silently truncates the body
// to max runes. Truncation is documented behavior, not an error.
func NormalizeBody(body string, max int) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	if max <= 0 {
		max = MaxMessageLength
	}
	runes := []rune(collapsed)
	if len(runes) > max {
		return string(runes[:max])
	}
	return collapsed
}
