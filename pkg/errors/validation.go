package errors

import (
	"strings"
	"unicode"
)

// ValidateSegment validates one component of an artifact coordinate
// (group, project, name, version or type) before it becomes part of a
// storage path. field names the component in the error message.
//
// The validation rules are intentionally conservative:
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
//
// Empty segments are accepted; callers decide which fields are required.
func ValidateSegment(field, value string) error {
	if len(value) > 256 {
		return New(ErrCodeInvalidIdentity, "%s too long (max 256 characters)", field)
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidIdentity, "%s contains invalid control characters", field)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return New(ErrCodeInvalidIdentity, "%s contains invalid characters: %q", field, pattern)
		}
	}

	return nil
}

// ValidateGroup validates a dotted group name. Dots are separators, so
// empty labels ("a..b", ".a") are rejected along with everything
// [ValidateSegment] rejects.
func ValidateGroup(group string) error {
	if group == "" {
		return nil
	}
	for _, label := range strings.Split(group, ".") {
		if label == "" {
			return New(ErrCodeInvalidIdentity, "group %q contains an empty label", group)
		}
		if err := ValidateSegment("group", label); err != nil {
			return err
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidConfig, "URL must use http or https scheme")
	}

	return nil
}
