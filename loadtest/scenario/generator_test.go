package scenario

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vegeta "github.com/tsenart/vegeta/v12/lib"
)

func TestGenerator_ReadOnly(t *testing.T) {
	g := NewGenerator("http://x", 10, 0, 0, 0, 8, true)
	tr := g.Targeter()
	for range 50 {
		var tgt vegeta.Target
		require.NoError(t, tr(&tgt))
		assert.Equal(t, http.MethodGet, tgt.Method)
		assert.True(t, strings.HasPrefix(tgt.URL, "http://x/cache/k"))
	}
}

func TestGenerator_PutBody(t *testing.T) {
	g := NewGenerator("http://x", 10, 0, 1, 0, 16, false)
	tr := g.Targeter()

	var tgt vegeta.Target
	require.NoError(t, tr(&tgt))
	assert.Equal(t, http.MethodPut, tgt.Method)
	assert.Equal(t, "application/json", tgt.Header.Get("Content-Type"))

	var body struct {
		Value string `json:"value"`
		Hard  bool   `json:"hard"`
	}
	require.NoError(t, json.Unmarshal(tgt.Body, &body))
	assert.Len(t, body.Value, 16)
	assert.True(t, body.Hard)
}

func TestGenerator_SweepOnly(t *testing.T) {
	g := NewGenerator("http://x", 10, 1, 0, 1, 8, false)
	tr := g.Targeter()

	var tgt vegeta.Target
	require.NoError(t, tr(&tgt))
	assert.Equal(t, http.MethodPost, tgt.Method)
	assert.Equal(t, "http://x/cache/sweep", tgt.URL)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-1, 0, 1))
	assert.Equal(t, 1.0, clamp(2, 0, 1))
	assert.Equal(t, 0.5, clamp(0.5, 0, 1))
}
