package box

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		segments []string
		want     string
	}{
		{name: "base only", base: "/tasks", want: "/tasks"},
		{name: "id", base: "/task_assignments", segments: []string{"5678"}, want: "/task_assignments/5678"},
		{name: "subresource with slash", base: "/tasks", segments: []string{"1234", "/assignments"}, want: "/tasks/1234/assignments"},
		{name: "trailing slashes", base: "/collections/", segments: []string{"1234", "/items/"}, want: "/collections/1234/items"},
		{name: "id is escaped", base: "/folders", segments: []string{"../users"}, want: "/folders/..%2Fusers"},
		{name: "id with slash is escaped", base: "/collections", segments: []string{"1234/"}, want: "/collections/1234%2F"},
		{name: "empty id kept", base: "/folders", segments: []string{""}, want: "/folders/"},
		{name: "empty id before subresource", base: "/tasks", segments: []string{"", "/assignments"}, want: "/tasks//assignments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPath(tt.base, tt.segments...))
		})
	}
}

func TestQuery_Encode(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "nil", query: nil, want: ""},
		{name: "verbatim key", query: Query{"testQSKey": "testQSValue"}, want: "testQSKey=testQSValue"},
		{name: "numbers and bools", query: Query{"limit": 100, "offset": int64(5), "recursive": true}, want: "limit=100&offset=5&recursive=true"},
		{name: "string slice", query: Query{"fields": []string{"name", "due_at"}}, want: "fields=name%2Cdue_at"},
		{name: "nil value skipped", query: Query{"marker": nil, "limit": "1"}, want: "limit=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query.Encode()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_EncodeUnsupported(t *testing.T) {
	_, err := Query{"bad": struct{}{}}.Encode()
	assert.Error(t, err)
}
