package box

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

// Encode renders the query as a URL-encoded string with keys in sorted order.
// Slices of strings are joined with commas, which is how the API expects
// multi-valued parameters such as fields.
func (q Query) Encode() (string, error) {
	if len(q) == 0 {
		return "", nil
	}

	values := url.Values{}
	for key, raw := range q {
		if raw == nil {
			continue
		}
		var value string
		switch v := raw.(type) {
		case []string:
			value = strings.Join(v, ",")
		default:
			s, err := cast.ToStringE(v)
			if err != nil {
				return "", fmt.Errorf("failed to encode query parameter %q: %w", key, err)
			}
			value = s
		}
		values.Set(key, value)
	}
	return values.Encode(), nil
}
