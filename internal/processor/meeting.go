package processor

import (
	"regexp"
	"strings"
)

// meetingCodePattern matches a Meet code such as "abc-defg-hij" inside a URL.
var meetingCodePattern = regexp.MustCompile(`[a-z0-9-]{10,}`)

// MeetingCode reduces a meeting URL to its code. Input without a recognisable
// code is returned trimmed but otherwise unchanged.
func MeetingCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if code := meetingCodePattern.FindString(s); code != "" {
		return code
	}
	return s
}
