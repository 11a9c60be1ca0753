package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchPayload struct {
	Name  Optional[string]   `json:"name"`
	Items Optional[[]string] `json:"items"`
}

func TestOptional_DistinguishesAbsentEmptyAndNull(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantSet   bool
		wantNull  bool
		wantItems []string
	}{
		{"absent", `{"name":"x"}`, false, false, nil},
		{"present empty", `{"items":[]}`, true, false, []string{}},
		{"present values", `{"items":["a","b"]}`, true, false, []string{"a", "b"}},
		{"present null", `{"items":null}`, true, true, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p patchPayload
			require.NoError(t, json.Unmarshal([]byte(tc.body), &p))
			assert.Equal(t, tc.wantSet, p.Items.Set)
			assert.Equal(t, tc.wantNull, p.Items.Null)
			assert.Equal(t, tc.wantItems, p.Items.Value)
		})
	}
}

func TestOptional_Get(t *testing.T) {
	v, ok := Some("abc").Get()
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = Optional[string]{}.Get()
	assert.False(t, ok)

	_, ok = Optional[string]{Set: true, Null: true}.Get()
	assert.False(t, ok)
}

func TestError_MatchesKind(t *testing.T) {
	err := error(NotFound("customer not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "customer not found", err.Error())

	var derr *Error
	require.True(t, errors.As(Validation("bad", map[string]string{"email": "required"}), &derr))
	assert.Equal(t, "required", derr.Fields["email"])
}
