package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataOrder(t *testing.T) {
	t.Run("marshal preserves insertion order", func(t *testing.T) {
		var m Metadata
		m.Set("zeta", "1")
		m.Set("alpha", "2")
		m.Set("mid", "3")

		raw, err := json.Marshal(m)
		require.NoError(t, err)
		assert.Equal(t, `{"zeta":"1","alpha":"2","mid":"3"}`, string(raw))
	})

	t.Run("unmarshal preserves document order", func(t *testing.T) {
		var m Metadata
		require.NoError(t, json.Unmarshal([]byte(`{"b":"2","a":"1","c":"3"}`), &m))
		require.Len(t, m, 3)
		assert.Equal(t, "b", m[0].Key)
		assert.Equal(t, "a", m[1].Key)
		assert.Equal(t, "c", m[2].Key)
	})

	t.Run("set updates in place without reordering", func(t *testing.T) {
		var m Metadata
		m.Set("a", "1")
		m.Set("b", "2")
		m.Set("a", "updated")

		require.Len(t, m, 2)
		assert.Equal(t, "a", m[0].Key)
		assert.Equal(t, "updated", m[0].Value)
	})

	t.Run("non-string values are rejected", func(t *testing.T) {
		var m Metadata
		assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &m))
		assert.Error(t, json.Unmarshal([]byte(`["a"]`), &m))
	})

	t.Run("get reports presence", func(t *testing.T) {
		var m Metadata
		m.Set("a", "1")
		v, ok := m.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "1", v)
		_, ok = m.Get("missing")
		assert.False(t, ok)
	})
}
