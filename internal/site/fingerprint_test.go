package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintStable(t *testing.T) {
	a, err := fingerprint(map[string]any{"slug": "index", "b": 1}, "<p>x</p>")
	require.NoError(t, err)
	b, err := fingerprint(map[string]any{"b": 1, "slug": "index"}, "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)

	c, err := fingerprint(map[string]any{"slug": "index"}, "<p>y</p>")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
