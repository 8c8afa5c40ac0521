package logger

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// RedactEmail masks an email address for safe logging.
// "jane.doe@example.com" → "ja***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactUUID keeps the first segment of a member UUID and masks the rest,
// enough to correlate log lines without identifying the member.
func RedactUUID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i] + "-****"
	}
	if len(id) > 8 {
		return id[:8] + "****"
	}
	return "****"
}

func redactFieldValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") || strings.Contains(key, "recipient") {
		return RedactEmail(val)
	}
	if strings.Contains(key, "member") && strings.Contains(key, "uuid") {
		return RedactUUID(val)
	}
	// Catch emails embedded in generic fields.
	return emailPattern.ReplaceAllStringFunc(val, RedactEmail)
}
