package box

import (
	"net/url"
	"strings"
)

// JoinPath builds an API path from a base path and further segments.
// A segment starting with "/" is a fixed path part and only has its
// slashes trimmed. Any other segment is an ID: it is escaped and kept even
// when empty, so "/tasks", "", "/assignments" becomes "/tasks//assignments"
// rather than a different resource.
//
//	JoinPath("/tasks", "1234", "/assignments") // "/tasks/1234/assignments"
func JoinPath(base string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	if base = strings.Trim(base, "/"); base != "" {
		parts = append(parts, base)
	}
	for _, seg := range segments {
		if strings.HasPrefix(seg, "/") {
			if seg = strings.Trim(seg, "/"); seg != "" {
				parts = append(parts, seg)
			}
			continue
		}
		parts = append(parts, url.PathEscape(seg))
	}
	return "/" + strings.Join(parts, "/")
}
