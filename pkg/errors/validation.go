package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexColorRe matches a 6-digit hex color, with or without a leading '#'.
var hexColorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// ValidateColor validates a caller-supplied hex color.
// Accepts "RRGGBB" and "#RRGGBB"; anything else is rejected.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !hexColorRe.MatchString(color) {
		return New(ErrCodeInvalidColor, "color must be a 6-digit hex value, got %q", color)
	}
	return nil
}

// ValidateTilt validates a tilt angle in degrees.
// The engine supports the full circle but rejects values that would wrap,
// so descriptors stay canonical.
func ValidateTilt(degrees int) error {
	if degrees <= -360 || degrees >= 360 {
		return New(ErrCodeInvalidTilt, "tilt must be within (-360, 360), got %d", degrees)
	}
	return nil
}

// ValidateTemplateID validates a template identifier for safety.
// It rejects identifiers that could be used for path traversal or injection
// when the identifier is interpolated into a locator URL.
func ValidateTemplateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTemplate, "template id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidTemplate, "template id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTemplate, "template id contains control characters")
		}
	}
	for _, pattern := range []string{"..", "//", "\x00", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidTemplate, "template id contains invalid sequence %q", pattern)
		}
	}
	return nil
}
