package metaclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejectedFields(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected []string
	}{
		{
			name:     "multiple fields",
			message:  "(#100) field1, field2 are not valid for fields param",
			expected: []string{"field1", "field2"},
		},
		{
			name:     "single field",
			message:  "(#100) nonsense is not valid for fields param",
			expected: []string{"nonsense"},
		},
		{
			name:     "without code prefix",
			message:  "purchase_roas, reach are not valid for fields param",
			expected: []string{"purchase_roas", "reach"},
		},
		{
			name:     "unrelated error",
			message:  "Invalid OAuth access token",
			expected: nil,
		},
		{
			name:     "empty message",
			message:  "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RejectedFields(tt.message))
		})
	}
}

func TestGraphErrorIsThrottle(t *testing.T) {
	assert.True(t, (&GraphError{Status: 429}).IsThrottle())
	assert.True(t, (&GraphError{Status: 400, Code: 4}).IsThrottle())
	assert.False(t, (&GraphError{Status: 400, Code: 100}).IsThrottle())
	assert.False(t, (*GraphError)(nil).IsThrottle())
}

func TestGraphErrorError(t *testing.T) {
	err := &GraphError{Status: 400, Code: 100, Subcode: 33, Message: "Unsupported get request"}
	assert.Equal(t, "graph api error status=400 code=100 subcode=33: Unsupported get request", err.Error())
}
