package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want TagList
	}{
		{"array", `{"tags":["calm","sea"]}`, TagList{"calm", "sea"}},
		{"comma string", `{"tags":"calm, sea"}`, TagList{"calm", "sea"}},
		{"space string", `{"tags":"calm sea  sky"}`, TagList{"calm", "sea", "sky"}},
		{"null", `{"tags":null}`, nil},
		{"absent", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreatePostRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Tags)
		})
	}

	var req CreatePostRequest
	assert.Error(t, json.Unmarshal([]byte(`{"tags":42}`), &req))
}
