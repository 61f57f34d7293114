package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MaxParallel bounds the concurrent Box requests of one batch.
const MaxParallel = 4

// Result is the outcome for one ID of a batch.
type Result struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewSuccessResult(id, message string) Result {
	return Result{ID: id, Status: StatusSuccess, Result: message}
}

func NewErrorResult(id string, err error) Result {
	return Result{ID: id, Status: StatusError, Error: err.Error()}
}

// BatchResult is the JSON document returned for a batch.
type BatchResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseStringOrArray reads a list of IDs that must not be empty. See
// ParseList for the accepted shapes.
func ParseStringOrArray(param any, name string) ([]string, error) {
	ids, err := ParseList(param, name)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}
	return ids, nil
}

// ParseList reads a list of IDs given as an array of strings, a JSON array
// inside a string, or a comma separated string. Blank entries of a comma
// separated string are skipped, blank array elements are an error. An
// empty list comes back as a non-nil empty slice.
func ParseList(param any, name string) ([]string, error) {
	switch v := param.(type) {
	case nil:
		return nil, fmt.Errorf("%s is required", name)
	case string:
		if s := strings.TrimSpace(v); strings.HasPrefix(s, "[") && gjson.Valid(s) {
			var items []any
			for _, r := range gjson.Parse(s).Array() {
				items = append(items, r.Value())
			}
			return ParseList(items, name)
		}
		ids := []string{}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ids = append(ids, part)
			}
		}
		return ids, nil
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return ParseList(items, name)
	case []any:
		ids := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			if s == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
			}
			ids = append(ids, s)
		}
		return ids, nil
	}
	return nil, fmt.Errorf("%s must be a string or array of strings", name)
}

// ProcessBatch runs fn for every ID with at most MaxParallel in flight.
// Results keep the order of ids. IDs that had not started when ctx ended
// fail with the context error.
func ProcessBatch(ctx context.Context, ids []string, fn func(ctx context.Context, id string) (string, error)) []Result {
	results := make([]Result, len(ids))

	var g errgroup.Group
	g.SetLimit(MaxParallel)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = run(ctx, id, fn)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func run(ctx context.Context, id string, fn func(ctx context.Context, id string) (string, error)) Result {
	if err := ctx.Err(); err != nil {
		return NewErrorResult(id, err)
	}
	msg, err := fn(ctx, id)
	if err != nil {
		return NewErrorResult(id, err)
	}
	return NewSuccessResult(id, msg)
}

// FormatResults renders results as an indented BatchResult.
func FormatResults(results []Result) string {
	br := BatchResult{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			br.Successful++
		} else {
			br.Failed++
		}
	}
	out, _ := json.MarshalIndent(br, "", "  ")
	return string(out)
}

// Err merges the failed results into one error. It is nil when every ID
// succeeded.
func Err(results []Result) error {
	var merr *multierror.Error
	for _, r := range results {
		if r.Status != StatusSuccess {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", r.ID, errors.New(r.Error)))
		}
	}
	return merr.ErrorOrNil()
}
