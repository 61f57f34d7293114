package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"

	"github.com/teemow/boxmcp/internal/box"
)

// DecodeArgs decodes tool arguments into out, a pointer to a struct with
// mapstructure tags. JSON numbers and strings are converted where the target
// type needs it, so "10" and 10 both decode into an int field.
func DecodeArgs(args map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// QueryArgs are the optional query arguments shared by the read tools.
type QueryArgs struct {
	Fields string `mapstructure:"fields"`
	Limit  int    `mapstructure:"limit"`
	Offset int    `mapstructure:"offset"`
}

// Query builds the Box query string parameters. Zero values are left out.
func (a QueryArgs) Query() box.Query {
	q := box.Query{}
	if fields := ParseFields(a.Fields); len(fields) > 0 {
		q["fields"] = fields
	}
	if a.Limit > 0 {
		q["limit"] = a.Limit
	}
	if a.Offset > 0 {
		q["offset"] = a.Offset
	}
	if len(q) == 0 {
		return nil
	}
	return q
}

// ParseFields splits a comma separated field list and converts each name to
// the snake_case Box expects, so "dueAt, createdBy" becomes
// [due_at created_by].
func ParseFields(fields string) []string {
	var out []string
	for _, f := range strings.Split(fields, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, strcase.ToSnake(f))
	}
	return out
}

// NormalizeDueAt parses a human or machine date and returns it as RFC 3339.
// Empty input stays empty.
func NormalizeDueAt(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return "", fmt.Errorf("invalid due date %q: %w", value, err)
	}
	return t.Format(time.RFC3339), nil
}
