package xlsxtemplate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, sanitizeJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, sanitizeJSONBlock(`{"a":1}`))
	assert.Equal(t, "``` broken", sanitizeJSONBlock("``` broken"))
}

func TestDecodeData(t *testing.T) {
	v, err := DecodeData([]byte(`{"user": {"name": "Ann"}, "items": [1, 2]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"user":  map[string]interface{}{"name": "Ann"},
		"items": []interface{}{1.0, 2.0},
	}, v)

	v, err = DecodeData([]byte("user:\n  name: Ann\nitems:\n  - 1\n  - two\n"))
	require.NoError(t, err)
	m, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"name": "Ann"}, m["user"])
	assert.Equal(t, []interface{}{1, "two"}, m["items"])

	_, err = DecodeData([]byte("   "))
	assert.ErrorIs(t, err, ErrNoData)

	_, err = DecodeData([]byte("{unterminated: [1, 2"))
	assert.Error(t, err)
}

func TestDeepNormalizeYAMLKeys(t *testing.T) {
	in := map[interface{}]interface{}{1: "one", "k": []interface{}{map[interface{}]interface{}{true: "t"}}}
	assert.Equal(t, map[string]interface{}{
		"1": "one",
		"k": []interface{}{map[string]interface{}{"true": "t"}},
	}, deepNormalize(in))
}

func TestDefaultFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09 - Report.xlsx", DefaultFileName(now))
}
