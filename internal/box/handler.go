package box

import (
	"encoding/json"
	"errors"
	"sync"
)

var errNilResponse = errors.New("request completed without a response")

// ResponseHandler adapts cb into a Handler. Transport errors are passed
// through unchanged, non-2xx responses become an *APIError, and successful
// bodies are handed over undecoded. An empty body, as on 204, is passed as
// nil. cb is invoked at most once no matter how
// often the returned Handler is called.
func ResponseHandler(cb Callback) Handler {
	var once sync.Once
	return func(resp *Response, err error) {
		once.Do(func() {
			if cb == nil {
				return
			}
			switch {
			case err != nil:
				cb(err, nil)
			case resp == nil:
				cb(errNilResponse, nil)
			case resp.StatusCode < 200 || resp.StatusCode > 299:
				cb(newAPIError(resp), nil)
			case len(resp.Body) == 0:
				cb(nil, nil)
			default:
				cb(nil, json.RawMessage(resp.Body))
			}
		})
	}
}
