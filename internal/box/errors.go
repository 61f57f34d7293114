package box

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrNoCredentials is returned when an account has neither a developer token
// nor client credentials configured.
var ErrNoCredentials = errors.New("no Box credentials configured")

// APIError is an unexpected response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("unexpected API response: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	msg := fmt.Sprintf("unexpected API response: %d %s: %s", e.StatusCode, e.Code, e.Message)
	if e.RequestID != "" {
		msg += " (request id " + e.RequestID + ")"
	}
	return msg
}

// newAPIError extracts the error details Box includes in error bodies.
func newAPIError(resp *Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
	if gjson.ValidBytes(resp.Body) {
		parsed := gjson.ParseBytes(resp.Body)
		apiErr.Code = parsed.Get("code").String()
		apiErr.Message = parsed.Get("message").String()
		apiErr.RequestID = parsed.Get("request_id").String()
	}
	return apiErr
}

// StatusCode returns the HTTP status of an APIError anywhere in err's chain,
// or 0 if there is none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
