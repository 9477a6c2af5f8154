package email

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// GreetingName picks a display name for a recipient, falling back to the
// first word of the address's local part.
func GreetingName(name, address string) string {
	if n := strings.TrimSpace(name); n != "" {
		return strings.Fields(n)[0]
	}
	localPart := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "there"
	}
	return capitalize(parts[0])
}

// FormatAddress renders `Name <addr>`, or the bare address when name is empty.
func FormatAddress(name, address string) string {
	if strings.TrimSpace(name) == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}

// Valid reports whether address parses as a single RFC 5322 address.
func Valid(address string) bool {
	a, err := mail.ParseAddress(address)
	return err == nil && a.Address == address
}

// Mask hides most of the local part for logs: sarah@example.com -> s***@example.com.
func Mask(address string) string {
	at := strings.IndexByte(address, '@')
	if at <= 0 {
		return "***"
	}
	return fmt.Sprintf("%c***%s", []rune(address)[0], address[at:])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
