package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^((\+98|0|0098)9\d{9})$`)

// NormalizePhone validates an Iranian mobile number and rewrites it into the
// canonical 09xxxxxxxxx form used as the account identifier.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if !phonePattern.MatchString(phone) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	switch {
	case strings.HasPrefix(phone, "+98"):
		return "0" + phone[3:], nil
	case strings.HasPrefix(phone, "0098"):
		return "0" + phone[4:], nil
	default:
		return phone, nil
	}
}
