package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat64(t *testing.T) {
	f, err := ParseFloat64(" 42.5 ")
	require.NoError(t, err)
	assert.Equal(t, 42.5, f)

	f, err = ParseFloat64(json.Number("0.001"))
	require.NoError(t, err)
	assert.Equal(t, 0.001, f)

	_, err = ParseFloat64("abc")
	assert.Error(t, err)
	_, err = ParseFloat64(nil)
	assert.Error(t, err)
	_, err = ParseFloat64(true)
	assert.Error(t, err)
}

func TestParseInt64(t *testing.T) {
	i, err := ParseInt64(float64(1700000000000))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), i)

	i, err = ParseInt64("1700000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000001), i)

	_, err = ParseInt64(1.5)
	assert.Error(t, err)
}
